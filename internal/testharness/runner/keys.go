package runner

// Action names used in scenario files.
const (
	ActionSeed              = "seed"
	ActionConfigureRegister = "configure_register"
	ActionConfigureBlock    = "configure_block"
	ActionAddField          = "add_field"
	ActionLock              = "lock"
	ActionReset             = "reset"
	ActionPredict           = "predict"
	ActionPredictWrite      = "predict_write"
	ActionReadField         = "read_field"
	ActionReadRegister      = "read_register"
	ActionWrite             = "write"
	ActionListRegisters     = "list_registers"
	ActionDiagnostics       = "diagnostics"
	ActionClose             = "close"
)

// Parameter keys.
const (
	ParamFixture  = "fixture"
	ParamRegister = "register"
	ParamBlock    = "block"
	ParamPath     = "path"
	ParamValue    = "value"
	ParamName     = "name"
	ParamLSB      = "lsb"
	ParamWidth    = "width"
	ParamAccess   = "access"
	ParamReset    = "reset"
	ParamCode     = "code"
)

// Output keys.
const (
	KeyError        = "error"
	KeyErrorMessage = "error_message"
	KeyValue        = "value"
	KeyState        = "state"
	KeyFields       = "fields"
	KeyConflicts    = "conflicts"
	KeyUsedBits     = "used_bits"
	KeyOffset       = "offset"
	KeySize         = "size"
	KeyAccess       = "access"
	KeyEnum         = "enum"
	KeyRegisters    = "registers"
	KeyNames        = "names"
	KeyCount        = "count"
	KeyCodes        = "codes"
	KeyMetadataID   = "metadata_id"
)

// Error kinds reported under KeyError.
const (
	ErrKindNone          = "none"
	ErrKindNotFound      = "not_found"
	ErrKindLocked        = "locked"
	ErrKindUnbuilt       = "unbuilt"
	ErrKindFieldNotFound = "field_not_found"
	ErrKindNotWritable   = "not_writable"
	ErrKindInvalidValue  = "invalid_value"
	ErrKindConnection    = "connection"
	ErrKindOther         = "error"
)

// Keys into engine.ExecutionState.Custom.
const (
	stateSession = "session"
	stateRepo    = "repo"
	stateDir     = "dir"
)

package engine

// Infrastructure keys used internally by the engine.
const (
	InternalStepOutput = "__step_output"
)

// Output keys set by runner handlers and read by engine checkers.
const (
	KeyValue = "value"
	KeyError = "error"
)

// Checker registration names. These are the expectation keys that appear in
// scenario files; any other key is compared by the default checker.
const (
	CheckerNameDefault          = "default"
	CheckerNameValueEquals      = "value_equals"
	CheckerNameValueNot         = "value_not"
	CheckerNameValueGT          = "value_gt"
	CheckerNameValueLTE         = "value_lte"
	CheckerNameValueIn          = "value_in"
	CheckerNameContains         = "contains"
	CheckerNameSaveAs           = "save_as"
	CheckerNameErrorContains    = "error_message_contains"
	CheckerNameValueEqualsSaved = "value_equals_saved"
)

package model

// Access flags for registers and fields.
type Access uint8

const (
	// AccessRead allows reading.
	AccessRead Access = 1 << iota

	// AccessWrite allows writing.
	AccessWrite

	// AccessRO is read-only.
	AccessRO = AccessRead

	// AccessWO is write-only.
	AccessWO = AccessWrite

	// AccessRW is read-write.
	AccessRW = AccessRead | AccessWrite
)

// CanRead returns true if reading is allowed.
func (a Access) CanRead() bool { return a&AccessRead != 0 }

// CanWrite returns true if writing is allowed.
func (a Access) CanWrite() bool { return a&AccessWrite != 0 }

// String returns RO, WO, RW or "-".
func (a Access) String() string {
	switch a {
	case AccessRO:
		return "RO"
	case AccessWO:
		return "WO"
	case AccessRW:
		return "RW"
	default:
		return "-"
	}
}

// NormalizeAccess maps a stored access token to Access.
//
// Only "read-only"/"RO" and "write-only"/"WO" are recognized. Every other
// token, including "writeOnce", "read-writeOnce" and the empty string, maps
// to RW. Callers that need the write-once distinction keep the raw token.
func NormalizeAccess(token string) Access {
	switch token {
	case "read-only", "RO":
		return AccessRO
	case "write-only", "WO":
		return AccessWO
	default:
		return AccessRW
	}
}

// Package model implements the in-memory register model.
//
// # Hierarchy
//
//	Block > Register > Field > EnumValue
//
// A Block groups the registers of one address block, ordered by offset.
// A Register owns an ordered, validated set of Fields through its Layout and
// mirrors the last known register value.
//
// # Lifecycle
//
// Every Register moves through three states:
//
//	Unbuilt --Configure--> Configuring --Lock--> Locked
//
// Fields can only be added while Configuring. Locking is terminal: after Lock,
// structural mutation (AddField, Configure, ClearFields) is rejected with
// ErrLocked and reported as a lock violation. Value operations such as
// Predict, Reset and FieldValue stay available.
//
// # Layout validation
//
// Layout keeps fields ordered by least significant bit. Overflow and overlap
// are recorded as Conflicts and reported through the diagnostic logger, but
// never reject the field. A register built from a malformed description can
// still be inspected.
//
// Overlap is checked only against the new field's immediate neighbours in the
// ordered sequence, so some overlaps between non-adjacent fields are not
// reported.
package model

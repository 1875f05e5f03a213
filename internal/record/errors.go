package record

import "errors"

// Sentinel errors for schema compilation and record access. Returned values
// wrap these with key and value context; match them with errors.Is.
var (
	// ErrUnknownKey reports a key or alias the schema does not declare.
	ErrUnknownKey = errors.New("unknown key")

	// ErrUnsetRequired reports reading a key that has neither an explicit
	// value nor a usable default.
	ErrUnsetRequired = errors.New("unset required key")

	// ErrInvalidValue reports a value that cannot be normalized for its key
	// or falls outside the key's allowed set.
	ErrInvalidValue = errors.New("invalid value")
)

package constraint

import "errors"

var (
	// ErrGrammar reports a line matching none of the rule grammars.
	ErrGrammar = errors.New("invalid constraint grammar")

	// ErrParameterName reports a parameter token outside the allowed
	// vocabulary.
	ErrParameterName = errors.New("invalid parameter name")

	// ErrRule reports an invalid rule construction: unknown kind, wrong
	// component count, or missing range.
	ErrRule = errors.New("invalid constraint rule")
)

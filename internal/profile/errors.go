package profile

import "errors"

var (
	// ErrUnknownModel reports a profile name missing from the registry.
	ErrUnknownModel = errors.New("unknown model")

	// ErrNoTransformPath reports that no chain of registered transforms
	// reaches the requested model.
	ErrNoTransformPath = errors.New("no transform path")
)

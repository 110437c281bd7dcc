package types

import "errors"

// Registry and catalog errors. A non-nil error from a mutating operation
// always means the state is unchanged.
var (
	ErrNotFound           = errors.New("entity not found")
	ErrDuplicate          = errors.New("entity already exists")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidComponent   = errors.New("invalid version component")
	ErrInvalidVersionCode = errors.New("invalid version code")
	ErrInvalidColor       = errors.New("invalid color index")
	ErrInvalidElevation   = errors.New("invalid elevation type")
	ErrInvalidCell        = errors.New("invalid cell reference")
	ErrInvalidData        = errors.New("invalid entity data")
	ErrMeasurementExists  = errors.New("measurement type already present")
)

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

package scan

import (
	"errors"
)

var (
	// ErrDimSizeExceeded is returned when a step or level count does not
	// fit a signed 32-bit integer. No catalog is returned with it.
	ErrDimSizeExceeded = errors.New("dimension size exceeded")
	// ErrUnsupportedFileStructure is returned when the dataset has no
	// variables, or none of them is a data variable.
	ErrUnsupportedFileStructure = errors.New("unsupported file structure")
)

// errVarNotFound prefixes warnings about attributes naming a missing variable.
const errVarNotFound = "NetCDF: Variable not found"

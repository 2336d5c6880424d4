package colour

import "errors"

// ErrInvalidInput is returned for malformed pixel grids, colour codes and reference tables.
var ErrInvalidInput = errors.New("invalid input")

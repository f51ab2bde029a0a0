package circulars

import "errors"

// ErrNotFound indicates the requested circular or reference row does not exist.
var ErrNotFound = errors.New("not found")

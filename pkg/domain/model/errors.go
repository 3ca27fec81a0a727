package model

import "errors"

// ErrNotFound is returned by repositories when no row matches the lookup.
// Backends wrap it with goerr so callers can use errors.Is.
var ErrNotFound = errors.New("not found")

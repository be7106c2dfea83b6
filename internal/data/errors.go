package data

import "errors"

// ErrNotFound is returned when a lookup or targeted write matches no row.
var ErrNotFound = errors.New("record not found")

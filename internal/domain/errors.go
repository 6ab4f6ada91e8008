package domain

import "errors"

// ErrSRSNotFound is returned when an SRS code is not in the catalog.
var ErrSRSNotFound = errors.New("srs not found")

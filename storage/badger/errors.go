package badger

import "errors"

// ErrBackendRequired is returned when a store is created without a backend.
var ErrBackendRequired = errors.New("badger backend required")

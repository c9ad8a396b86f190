package geo

import (
	"errors"
	"fmt"
)

// ErrMalformedGeoObject is the only error kind this package returns. It always
// points at bad upstream data (missing or non-numeric fields), never at the
// computation itself.
var ErrMalformedGeoObject = errors.New("malformed geo object")

var (
	errMissing   = errors.New("field is missing")
	errNotFinite = errors.New("coordinate is not finite")
)

// MalformedGeoObjectError describes which field could not be used and why.
type MalformedGeoObjectError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedGeoObjectError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedGeoObject, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s %q: %v", ErrMalformedGeoObject, e.Field, e.Value, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *MalformedGeoObjectError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedGeoObject) hold for every instance.
func (e *MalformedGeoObjectError) Is(target error) bool {
	return target == ErrMalformedGeoObject
}

func malformed(field, value string, err error) error {
	return &MalformedGeoObjectError{Field: field, Value: value, Err: err}
}

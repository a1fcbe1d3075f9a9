package application

import "errors"

var (
	// ErrNotFound covers every lookup miss, including malformed ids.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidCredentials is returned on a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned when no valid identity accompanies the call.
	ErrUnauthorized = errors.New("not authorized")

	// ErrForbidden is returned when the caller's role or ownership does not
	// permit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when a unique constraint rejects a write, such
	// as a second review on the same bootcamp or a second pending upgrade
	// request.
	ErrConflict = errors.New("already exists")

	// ErrBootcampExists is returned when a non-admin publisher tries to
	// create a second bootcamp.
	ErrBootcampExists = errors.New("user has already created a bootcamp")

	// ErrUpstream is returned when a third-party dependency (geocoder, mail
	// provider) fails in a way the caller cannot fix.
	ErrUpstream = errors.New("upstream service unavailable")

	// ErrValidation is returned for request payloads or parameters that fail
	// domain validation outside of binding.
	ErrValidation = errors.New("validation failed")
)

package secret

import "errors"

// Sentinel errors for secret resolution.
var (
	ErrSecretNotFound  = errors.New("secret not found")
	ErrAccessDenied    = errors.New("access to secret denied")
	ErrMalformedSecret = errors.New("malformed secret payload")
	ErrEmptySecret     = errors.New("secret has no string value")
)

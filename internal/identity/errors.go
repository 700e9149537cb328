package identity

import "errors"

var (
	ErrEmailExists        = errors.New("identity: email already registered")
	ErrInvalidCredentials = errors.New("identity: invalid email or password")
	ErrProvider           = errors.New("identity: provider request failed")
	ErrInvalidToken       = errors.New("identity: invalid or expired token")
	ErrWeakPassword       = errors.New("identity: password must be at least 6 characters and contain an uppercase and a lowercase letter")
)

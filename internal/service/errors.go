package service

import "errors"

// Validation errors are raised before any remote call.
var (
	ErrLocationRequired = errors.New("please select your location")
	ErrInvalidDuration  = errors.New("duration type must be hours or days")
	ErrInvalidStatus    = errors.New("unknown booking status")
	ErrInvalidRole      = errors.New("role must be user or admin")
	ErrSelfRoleChange   = errors.New("you cannot change your own role")
	ErrTargetRequired   = errors.New("target user email is required")
	ErrInvalidService   = errors.New("invalid service")
	ErrFeaturesRequired = errors.New("please add at least one feature")
	ErrProfileRequired  = errors.New("name, email and contact are required")
)

// Permission errors.
var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrOwnService           = errors.New("you cannot book your own service")
	ErrNotOwner             = errors.New("booking belongs to another user")
	ErrNotServiceOwner      = errors.New("service belongs to another user")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrTerminalState        = errors.New("no action available")
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrCheckCancelled    = errors.New("access check cancelled")
	ErrLoginRateLimited  = errors.New("too many login attempts, try again later")
	ErrInvalidLoginState = errors.New("login state is invalid or expired")
	ErrFederatedDisabled = errors.New("federated login is not configured")
	ErrSessionNotFound   = errors.New("session not found or expired")
	ErrNotifyQueueFull   = errors.New("notification queue is full")
)

package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRemote возвращается при любом сбое удалённого API: сеть, таймаут, не-2xx ответ
	ErrRemote = errors.New("remote api: request failed")

	// ErrUnauthorized возвращается на 401/403: сессия больше не действительна
	ErrUnauthorized = errors.New("remote api: unauthorized")

	// ErrNotFound возвращается на 404
	ErrNotFound = errors.New("remote api: not found")

	// ErrInvalidResponse возвращается, если тело ответа не удалось разобрать
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrRemote)
)

// StatusError is a non-2xx answer of the remote API.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote api: %s %s: http %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("remote api: %s %s: http %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match the sentinel for the status class.
func (e *StatusError) Unwrap() []error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return []error{ErrUnauthorized}
	case http.StatusNotFound:
		return []error{ErrNotFound, ErrRemote}
	default:
		return []error{ErrRemote}
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

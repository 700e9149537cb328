package api

import (
	"errors"
	"net/http"

	"carebook/internal/identity"
	"carebook/internal/remote"
	"carebook/internal/service"
)

var badRequestErrors = []error{
	service.ErrLocationRequired,
	service.ErrInvalidDuration,
	service.ErrInvalidStatus,
	service.ErrInvalidRole,
	service.ErrSelfRoleChange,
	service.ErrTargetRequired,
	service.ErrInvalidService,
	service.ErrFeaturesRequired,
	service.ErrProfileRequired,
	service.ErrInvalidLoginState,
	identity.ErrWeakPassword,
}

var forbiddenErrors = []error{
	service.ErrOwnService,
	service.ErrNotOwner,
	service.ErrNotServiceOwner,
	service.ErrTransitionNotAllowed,
}

var unauthorizedErrors = []error{
	service.ErrUnauthenticated,
	service.ErrSessionNotFound,
	identity.ErrInvalidCredentials,
	identity.ErrInvalidToken,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps a service error to its HTTP response. A remote 401/403 ends the session.
func (s *HTTPServer) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		if session, ok := sessionFrom(r.Context()); ok {
			if logoutErr := s.svc.Sessions.Logout(r.Context(), session.ID); logoutErr != nil {
				s.logger.Error().Err(logoutErr).Str("session_id", session.ID).Msg("forced logout failed")
			}
		}
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("remote rejected credentials, session closed")
		writeLoginRedirect(w, "session expired, please sign in again")
	case isAny(err, badRequestErrors):
		writeError(w, http.StatusBadRequest, rootMessage(err))
	case isAny(err, forbiddenErrors):
		writeError(w, http.StatusForbidden, rootMessage(err))
	case isAny(err, unauthorizedErrors):
		writeLoginRedirect(w, rootMessage(err))
	case errors.Is(err, service.ErrTerminalState):
		writeError(w, http.StatusConflict, service.ErrTerminalState.Error())
	case errors.Is(err, identity.ErrEmailExists):
		writeError(w, http.StatusConflict, identity.ErrEmailExists.Error())
	case errors.Is(err, service.ErrLoginRateLimited):
		writeError(w, http.StatusTooManyRequests, service.ErrLoginRateLimited.Error())
	case errors.Is(err, service.ErrBookingNotFound), errors.Is(err, remote.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrFederatedDisabled):
		writeError(w, http.StatusNotFound, service.ErrFederatedDisabled.Error())
	case errors.Is(err, remote.ErrRemote), errors.Is(err, identity.ErrProvider):
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("upstream failure")
		writeError(w, http.StatusBadGateway, "upstream service unavailable, please try again")
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// rootMessage is the message of the innermost wrapped error, which is the user-facing one.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

package api

import (
	"context"
	"net/http"
	"strings"

	"carebook/internal/metrics"
	"carebook/internal/models"
	"carebook/internal/remote"
	"carebook/internal/service"
)

const loginPath = "/login"

type ctxKey int

const sessionCtxKey ctxKey = iota

func withSession(ctx context.Context, session *models.Session) context.Context {
	ctx = context.WithValue(ctx, sessionCtxKey, session)
	return remote.WithToken(ctx, session.IDToken)
}

func sessionFrom(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(sessionCtxKey).(*models.Session)
	return session, ok && session != nil
}

// identityFrom returns the signed-in identity; the zero value when there is none.
func identityFrom(ctx context.Context) models.Identity {
	if session, ok := sessionFrom(ctx); ok {
		return session.Identity
	}
	return models.Identity{}
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func writeLoginRedirect(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": message, "redirect": loginPath})
}

// requireSession resolves the bearer token to a live session.
func (s *HTTPServer) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeLoginRedirect(w, "authentication required")
			return
		}

		session, err := s.svc.Sessions.Resolve(r.Context(), token)
		if err != nil {
			s.logger.Debug().Err(err).Msg("session resolve failed")
			writeLoginRedirect(w, "session expired, please sign in again")
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// checkAccess runs the admin gate for the request and waits for its decision.
// The admin check endpoint is public, so the role lookup carries no bearer token.
func (s *HTTPServer) checkAccess(r *http.Request) (service.AccessState, *models.Session, error) {
	token := bearerToken(r)

	var session *models.Session
	resolve := func(ctx context.Context) (*models.Identity, error) {
		if token == "" {
			return nil, nil
		}
		resolved, err := s.svc.Sessions.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		session = resolved
		return &resolved.Identity, nil
	}

	check := s.svc.Gate.Begin(r.Context(), resolve)
	state, err := check.Wait(r.Context())
	if err != nil {
		check.Cancel()
		return service.PendingState(), nil, err
	}

	metrics.IncAccessDecision(string(state.Decision()))
	return state, session, nil
}

// requireAdmin lets a request through only when the gate decides it is permitted.
func (s *HTTPServer) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, session, err := s.checkAccess(r)
		if err != nil {
			s.logger.Warn().Err(err).Msg("access check abandoned")
			writeError(w, http.StatusServiceUnavailable, "access check did not complete")
			return
		}

		switch state.Decision() {
		case service.DecisionRedirectLogin:
			writeLoginRedirect(w, "authentication required")
		case service.DecisionAccessDenied:
			writeError(w, http.StatusForbidden, "access denied")
		case service.DecisionPermitted:
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		default:
			writeError(w, http.StatusServiceUnavailable, "access check did not complete")
		}
	})
}

package repository

import (
	"context"
	"sync/atomic"
	"time"

	"carebook/internal/domain"
	"carebook/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverSessionRepository serves from Redis and switches to memory while Redis is unavailable.
type FailoverSessionRepository struct {
	primary   domain.SessionRepository
	fallback  domain.SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// usePrimary reports whether the primary should be tried for the next call.
func (r *FailoverSessionRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverSessionRepository) primaryFailed(op string, err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Str("op", op).Msg("Primary session repository failed, falling back to memory")
	}
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverSessionRepository) primaryOK() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary session repository recovered")
	}
}

func (r *FailoverSessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	if r.usePrimary() {
		session, err := r.primary.GetSession(ctx, id)
		if err == nil {
			r.primaryOK()
			return session, nil
		}
		r.primaryFailed("get_session", err)
	}
	return r.fallback.GetSession(ctx, id)
}

func (r *FailoverSessionRepository) SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.SaveSession(ctx, session, ttl)
		if err == nil {
			r.primaryOK()
			return nil
		}
		r.primaryFailed("save_session", err)
	}
	return r.fallback.SaveSession(ctx, session, ttl)
}

// DeleteSession removes the session from both stores so a logout survives a failover switch.
func (r *FailoverSessionRepository) DeleteSession(ctx context.Context, id string) error {
	fallbackErr := r.fallback.DeleteSession(ctx, id)
	if r.usePrimary() {
		err := r.primary.DeleteSession(ctx, id)
		if err == nil {
			r.primaryOK()
			return fallbackErr
		}
		r.primaryFailed("delete_session", err)
	}
	return fallbackErr
}

func (r *FailoverSessionRepository) SaveLoginState(ctx context.Context, state string, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.SaveLoginState(ctx, state, ttl)
		if err == nil {
			r.primaryOK()
			return nil
		}
		r.primaryFailed("save_login_state", err)
	}
	return r.fallback.SaveLoginState(ctx, state, ttl)
}

func (r *FailoverSessionRepository) ConsumeLoginState(ctx context.Context, state string) (bool, error) {
	if r.usePrimary() {
		ok, err := r.primary.ConsumeLoginState(ctx, state)
		if err == nil {
			r.primaryOK()
			if ok {
				return true, nil
			}
			// state may have been issued while the primary was down
			return r.fallback.ConsumeLoginState(ctx, state)
		}
		r.primaryFailed("consume_login_state", err)
	}
	return r.fallback.ConsumeLoginState(ctx, state)
}

func (r *FailoverSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.primaryOK()
			return allowed, nil
		}
		r.primaryFailed("check_rate_limit", err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}

package repository

import (
	"context"
	"sync"
	"time"

	"carebook/internal/models"
)

type MemorySessionRepository struct {
	sessions    sync.Map
	loginStates sync.Map
	rateLimits  sync.Map
	rateMu      sync.Mutex
	now         func() time.Time
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{now: time.Now}
}

type sessionEntry struct {
	session   *models.Session
	expiresAt time.Time
}

func (r *MemorySessionRepository) GetSession(_ context.Context, id string) (*models.Session, error) {
	val, ok := r.sessions.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(sessionEntry)
	if r.now().After(entry.expiresAt) {
		r.sessions.Delete(id)
		return nil, nil
	}
	return entry.session, nil
}

func (r *MemorySessionRepository) SaveSession(_ context.Context, session *models.Session, ttl time.Duration) error {
	r.sessions.Store(session.ID, sessionEntry{session: session, expiresAt: r.now().Add(ttl)})
	return nil
}

func (r *MemorySessionRepository) DeleteSession(_ context.Context, id string) error {
	r.sessions.Delete(id)
	return nil
}

func (r *MemorySessionRepository) SaveLoginState(_ context.Context, state string, ttl time.Duration) error {
	r.loginStates.Store(state, r.now().Add(ttl))
	return nil
}

func (r *MemorySessionRepository) ConsumeLoginState(_ context.Context, state string) (bool, error) {
	val, ok := r.loginStates.LoadAndDelete(state)
	if !ok {
		return false, nil
	}
	return !r.now().After(val.(time.Time)), nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySessionRepository) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.rateMu.Lock()
	defer r.rateMu.Unlock()

	now := r.now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"carebook/internal/domain"
	"carebook/internal/events"
	"carebook/internal/logging"
	"carebook/internal/models"

	"github.com/rs/zerolog"
)

// Roster is the admin's local list of user records.
type Roster struct {
	mu    sync.RWMutex
	order []string
	users map[string]*models.User
}

func NewRoster(users []*models.User) *Roster {
	r := &Roster{
		order: make([]string, 0, len(users)),
		users: make(map[string]*models.User, len(users)),
	}
	for _, u := range users {
		if u == nil {
			continue
		}
		key := models.NormalizeEmail(u.Email)
		if _, dup := r.users[key]; !dup {
			r.order = append(r.order, key)
		}
		cp := *u
		if cp.Role == "" {
			cp.Role = models.RoleUser
		}
		r.users[key] = &cp
	}
	return r
}

// Get returns a copy of the user record for email.
func (r *Roster) Get(email string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[models.NormalizeEmail(email)]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

// Apply sets the role of a user already on the roster.
func (r *Roster) Apply(email string, role models.Role) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[models.NormalizeEmail(email)]
	if !ok {
		return false
	}
	u.Role = role
	return true
}

func (r *Roster) Snapshot() []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, *r.users[key])
	}
	return out
}

type UserService struct {
	admin    domain.AdminStore
	users    domain.UserStore
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewUserService(admin domain.AdminStore, users domain.UserStore, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{
		admin:    admin,
		users:    users,
		eventBus: eventBus,
		logger:   logger,
	}
}

// LoadRoster fetches all user records on behalf of actor.
func (s *UserService) LoadRoster(ctx context.Context, actor models.Identity) (*Roster, error) {
	users, err := s.admin.ListUsers(ctx, actor.Email)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return NewRoster(users), nil
}

// SetRole changes target's role. An actor can never change their own role; that is
// rejected before the remote store is contacted. roster may be nil.
func (s *UserService) SetRole(ctx context.Context, actor models.Identity, roster *Roster, target string, role models.Role) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return ErrTargetRequired
	}
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if actor.Is(target) {
		s.logger.Warn().Str("user", logging.MaskEmail(actor.Email)).Msg("self role change rejected")
		return ErrSelfRoleChange
	}

	if err := s.admin.SetUserRole(ctx, actor.Email, target, role); err != nil {
		s.logger.Error().Err(err).
			Str("target", logging.MaskEmail(target)).
			Str("role", string(role)).
			Msg("failed to set user role")
		return fmt.Errorf("set role of %s: %w", target, err)
	}

	if roster != nil {
		roster.Apply(target, role)
	}

	s.logger.Info().
		Str("target", logging.MaskEmail(target)).
		Str("role", string(role)).
		Str("by", logging.MaskEmail(actor.Email)).
		Msg("user role changed")

	if s.eventBus != nil {
		payload := events.RoleEventPayload{TargetEmail: target, Role: string(role), ChangedBy: actor.Email}
		if err := s.eventBus.PublishJSON(events.EventRoleChanged, payload); err != nil {
			s.logger.Error().Err(err).Str("event_type", events.EventRoleChanged).Msg("publish event error")
		}
	}
	return nil
}

// SaveProfile upserts the user profile in the remote store.
func (s *UserService) SaveProfile(ctx context.Context, user *models.User) error {
	if strings.TrimSpace(user.Email) == "" {
		return ErrProfileRequired
	}
	if err := s.users.UpsertUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user", logging.MaskEmail(user.Email)).Msg("failed to save user profile")
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

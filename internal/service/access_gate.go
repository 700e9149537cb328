package service

import (
	"context"
	"sync"

	"carebook/internal/logging"
	"carebook/internal/models"

	"github.com/rs/zerolog"
)

// Decision is what a privileged screen should render.
type Decision string

const (
	DecisionVerifying     Decision = "verifying"
	DecisionRedirectLogin Decision = "redirect_login"
	DecisionAccessDenied  Decision = "access_denied"
	DecisionPermitted     Decision = "permitted"
)

// AccessState joins identity and role resolution: Pending until both have settled,
// then Ready with the identity (nil when unauthenticated) and the admin flag.
type AccessState struct {
	ready    bool
	identity *models.Identity
	isAdmin  bool
}

// PendingState is the state before identity and role are both known.
func PendingState() AccessState {
	return AccessState{}
}

// ReadyState is a settled state. isAdmin is ignored without an identity.
func ReadyState(identity *models.Identity, isAdmin bool) AccessState {
	return AccessState{ready: true, identity: identity, isAdmin: identity != nil && isAdmin}
}

func (s AccessState) Ready() bool { return s.ready }

func (s AccessState) Identity() *models.Identity { return s.identity }

func (s AccessState) IsAdmin() bool { return s.ready && s.isAdmin }

func (s AccessState) Decision() Decision {
	switch {
	case !s.ready:
		return DecisionVerifying
	case s.identity == nil:
		return DecisionRedirectLogin
	case !s.isAdmin:
		return DecisionAccessDenied
	default:
		return DecisionPermitted
	}
}

// IdentityResolver yields the current identity, or nil when nobody is signed in.
type IdentityResolver func(ctx context.Context) (*models.Identity, error)

type adminChecker interface {
	CheckAdmin(ctx context.Context, email string) (bool, error)
}

// AccessGate answers whether an identity is an administrator. It keeps no role data:
// every check asks the access-control store again.
type AccessGate struct {
	roles  adminChecker
	logger *zerolog.Logger
}

func NewAccessGate(roles adminChecker, logger *zerolog.Logger) *AccessGate {
	return &AccessGate{roles: roles, logger: logger}
}

// IsAdmin is a single fail-closed role lookup.
func (g *AccessGate) IsAdmin(ctx context.Context, identity *models.Identity) bool {
	if identity == nil || identity.Email == "" {
		return false
	}
	ok, err := g.roles.CheckAdmin(ctx, identity.Email)
	if err != nil {
		g.logger.Warn().Err(err).Str("user", logging.MaskEmail(identity.Email)).Msg("admin check failed, treating as not admin")
		return false
	}
	return ok
}

// Begin starts resolving identity and then role in the background.
func (g *AccessGate) Begin(ctx context.Context, resolve IdentityResolver) *AccessCheck {
	ctx, cancel := context.WithCancel(ctx)
	check := &AccessCheck{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(check.done)
		defer cancel()

		identity, err := resolve(ctx)
		if err != nil {
			g.logger.Debug().Err(err).Msg("identity resolution failed, treating as signed out")
			identity = nil
		}
		if ctx.Err() != nil {
			return
		}

		isAdmin := identity != nil && g.IsAdmin(ctx, identity)
		if ctx.Err() != nil {
			return
		}
		check.publish(ReadyState(identity, isAdmin))
	}()

	return check
}

// AccessCheck is one in-flight access resolution.
type AccessCheck struct {
	mu        sync.RWMutex
	state     AccessState
	cancelled bool
	done      chan struct{}
	cancel    context.CancelFunc
}

func (c *AccessCheck) publish(state AccessState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return
	}
	c.state = state
}

// State reports the current state without blocking.
func (c *AccessCheck) State() AccessState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Wait blocks until the check has settled, ctx is done or the check is cancelled.
func (c *AccessCheck) Wait(ctx context.Context) (AccessState, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		return PendingState(), ctx.Err()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cancelled || !c.state.Ready() {
		return PendingState(), ErrCheckCancelled
	}
	return c.state, nil
}

// Cancel abandons the check; its result is never published.
func (c *AccessCheck) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	c.mu.Unlock()
	c.cancel()
}

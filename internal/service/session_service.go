package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carebook/internal/domain"
	"carebook/internal/identity"
	"carebook/internal/logging"
	"carebook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const loginStateTTL = 10 * time.Minute

// Registration is the sign-up form.
type Registration struct {
	NID      string
	Name     string
	Email    string
	Contact  string
	Password string
}

// AuthResult is handed back to the UI after a successful sign-in.
type AuthResult struct {
	Session     *models.Session `json:"-"`
	AccessToken string          `json:"accessToken"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Identity    models.Identity `json:"user"`
}

type SessionOptions struct {
	LoginAttempts        int
	LoginWindow          time.Duration
	FederatedProviderID  string
	FederatedRedirectURL string
}

type profileSaver interface {
	SaveProfile(ctx context.Context, user *models.User) error
}

type SessionService struct {
	provider  domain.IdentityProvider
	federated domain.FederatedFlow
	sessions  domain.SessionRepository
	profiles  profileSaver
	tokens    *identity.TokenManager
	opts      SessionOptions
	logger    *zerolog.Logger
	now       func() time.Time
}

// NewSessionService wires account flows. federated may be nil when federated login is off.
func NewSessionService(
	provider domain.IdentityProvider,
	federated domain.FederatedFlow,
	sessions domain.SessionRepository,
	profiles profileSaver,
	tokens *identity.TokenManager,
	opts SessionOptions,
	logger *zerolog.Logger,
) *SessionService {
	return &SessionService{
		provider:  provider,
		federated: federated,
		sessions:  sessions,
		profiles:  profiles,
		tokens:    tokens,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates the provider account, stores the profile and signs the user in.
func (s *SessionService) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	if reg.Email == "" || reg.Name == "" || strings.TrimSpace(reg.Contact) == "" {
		return nil, ErrProfileRequired
	}
	if err := identity.ValidatePassword(reg.Password); err != nil {
		return nil, err
	}

	account, err := s.provider.SignUp(ctx, reg.Email, reg.Password, reg.Name)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	profile := &models.User{
		NID:     strings.TrimSpace(reg.NID),
		Name:    reg.Name,
		Email:   account.Identity.Email,
		Contact: strings.TrimSpace(reg.Contact),
	}
	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}

	return s.startSession(ctx, account)
}

// Login signs in with email and password, limited per email.
func (s *SessionService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, identity.ErrInvalidCredentials
	}

	key := "login:" + models.NormalizeEmail(email)
	allowed, err := s.sessions.CheckRateLimit(ctx, key, s.opts.LoginAttempts, s.opts.LoginWindow)
	if err != nil {
		s.logger.Error().Err(err).Msg("login rate limit check failed")
	} else if !allowed {
		s.logger.Warn().Str("user", logging.MaskEmail(email)).Msg("login rate limited")
		return nil, ErrLoginRateLimited
	}

	account, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return s.startSession(ctx, account)
}

// FederatedStart returns the provider consent URL for a fresh single-use state.
func (s *SessionService) FederatedStart(ctx context.Context) (string, error) {
	if s.federated == nil {
		return "", ErrFederatedDisabled
	}
	state := uuid.NewString()
	if err := s.sessions.SaveLoginState(ctx, state, loginStateTTL); err != nil {
		return "", fmt.Errorf("save login state: %w", err)
	}
	return s.federated.AuthCodeURL(state), nil
}

// FederatedCallback completes federated login and upserts the profile.
func (s *SessionService) FederatedCallback(ctx context.Context, state, code string) (*AuthResult, error) {
	if s.federated == nil {
		return nil, ErrFederatedDisabled
	}
	if state == "" || code == "" {
		return nil, ErrInvalidLoginState
	}

	ok, err := s.sessions.ConsumeLoginState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("consume login state: %w", err)
	}
	if !ok {
		return nil, ErrInvalidLoginState
	}

	accessToken, err := s.federated.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	account, err := s.provider.SignInWithIdp(ctx, s.opts.FederatedProviderID, accessToken, s.opts.FederatedRedirectURL)
	if err != nil {
		return nil, fmt.Errorf("federated sign in: %w", err)
	}

	profile := &models.User{
		Name:     account.Identity.DisplayName,
		Email:    account.Identity.Email,
		PhotoURL: account.Identity.PhotoURL,
	}
	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}

	return s.startSession(ctx, account)
}

// Resolve maps a carebook access token to its live session.
func (s *SessionService) Resolve(ctx context.Context, accessToken string) (*models.Session, error) {
	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil || session.Expired(s.now()) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Logout deletes the session. Unknown sessions are not an error.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info().Str("session_id", sessionID).Msg("session closed")
	return nil
}

func (s *SessionService) startSession(ctx context.Context, account *models.ProviderSession) (*AuthResult, error) {
	if account == nil || account.Identity.Email == "" {
		return nil, errors.New("start session: provider returned no email")
	}

	now := s.now().UTC()
	ttl := s.tokens.TTL()
	session := &models.Session{
		ID:        uuid.NewString(),
		Identity:  account.Identity,
		IDToken:   account.IDToken,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.sessions.SaveSession(ctx, session, ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, expires, err := s.tokens.Issue(session.ID, session.Identity.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("session_id", session.ID).Str("user", logging.MaskEmail(session.Identity.Email)).Msg("session started")
	return &AuthResult{
		Session:     session,
		AccessToken: token,
		ExpiresAt:   expires,
		Identity:    session.Identity,
	}, nil
}

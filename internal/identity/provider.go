package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"carebook/internal/models"

	"github.com/rs/zerolog"
)

// Provider talks to the REST accounts API of the external identity provider.
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zerolog.Logger
}

func NewProvider(baseURL, apiKey string, timeout time.Duration, logger *zerolog.Logger) *Provider {
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type profileRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type idpRequest struct {
	PostBody          string `json:"postBody"`
	RequestURI        string `json:"requestUri"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IsNewUser    bool   `json:"isNewUser"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp creates an email/password account and sets its display name.
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (*models.ProviderSession, error) {
	var res accountResponse
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := p.call(ctx, "accounts:signUp", req, &res); err != nil {
		return nil, err
	}

	if displayName != "" {
		var updated accountResponse
		upd := profileRequest{IDToken: res.IDToken, DisplayName: displayName, ReturnSecureToken: true}
		if err := p.call(ctx, "accounts:update", upd, &updated); err != nil {
			return nil, err
		}
		res.DisplayName = displayName
		if updated.IDToken != "" {
			res.IDToken = updated.IDToken
			res.RefreshToken = updated.RefreshToken
			res.ExpiresIn = updated.ExpiresIn
		}
	}

	session := toSession(res)
	session.NewUser = true
	return session, nil
}

// SignIn authenticates with email and password.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.ProviderSession, error) {
	var res accountResponse
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := p.call(ctx, "accounts:signInWithPassword", req, &res); err != nil {
		return nil, err
	}
	return toSession(res), nil
}

// SignInWithIdp exchanges a federated provider access token for a provider session.
func (p *Provider) SignInWithIdp(ctx context.Context, providerID, accessToken, requestURI string) (*models.ProviderSession, error) {
	postBody := url.Values{
		"access_token": {accessToken},
		"providerId":   {providerID},
	}
	req := idpRequest{PostBody: postBody.Encode(), RequestURI: requestURI, ReturnSecureToken: true}

	var res accountResponse
	if err := p.call(ctx, "accounts:signInWithIdp", req, &res); err != nil {
		return nil, err
	}
	return toSession(res), nil
}

func (p *Provider) call(ctx context.Context, method string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrProvider, method, err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", p.baseURL, method, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: build %s: %w", ErrProvider, method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProvider, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		p.logger.Warn().Str("method", method).Int("status", resp.StatusCode).Str("reason", e.Error.Message).Msg("identity provider rejected request")
		return mapProviderError(method, resp.StatusCode, e.Error.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrProvider, method, err)
	}
	return nil
}

func mapProviderError(method string, status int, message string) error {
	// messages look like "INVALID_PASSWORD" or "WEAK_PASSWORD : Password should be at least 6 characters"
	code, _, _ := strings.Cut(message, " ")
	switch code {
	case "EMAIL_EXISTS":
		return ErrEmailExists
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return ErrInvalidCredentials
	case "WEAK_PASSWORD":
		return ErrWeakPassword
	case "INVALID_IDP_RESPONSE", "INVALID_ID_TOKEN":
		return ErrInvalidToken
	}
	return fmt.Errorf("%w: %s: http %d %s", ErrProvider, method, status, message)
}

func toSession(res accountResponse) *models.ProviderSession {
	var ttl time.Duration
	if secs, err := strconv.Atoi(res.ExpiresIn); err == nil {
		ttl = time.Duration(secs) * time.Second
	}
	return &models.ProviderSession{
		Identity: models.Identity{
			Email:       res.Email,
			DisplayName: res.DisplayName,
			PhotoURL:    res.PhotoURL,
		},
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    ttl,
		NewUser:      res.IsNewUser,
	}
}

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"carebook/internal/metrics"

	"github.com/rs/zerolog"
)

const maxErrorBody = 512

// Client calls the remote REST API that owns services, bookings and user records.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger
}

// NewClient constructs a client with baseURL and per-request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	l := logger.With().Str("component", "remote").Logger()
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     &l,
	}
}

func (c *Client) doGet(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, query, nil, out)
}

func (c *Client) doPost(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPost, path, nil, body, out)
}

func (c *Client) doPatch(ctx context.Context, op, path string, query url.Values, body any) error {
	return c.do(ctx, op, http.MethodPatch, path, query, body, nil)
}

func (c *Client) doPut(ctx context.Context, op, path string, body any) error {
	return c.do(ctx, op, http.MethodPut, path, nil, body, nil)
}

func (c *Client) doDelete(ctx context.Context, op, path string) error {
	return c.do(ctx, op, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveRemote(op, outcome(err), time.Since(start).Seconds())
		if err != nil {
			c.logger.Warn().Err(err).Str("op", op).Str("method", method).Str("path", path).Msg("remote call failed")
		}
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %w", ErrRemote, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrRemote, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.addHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRemote, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrInvalidResponse, method, path, err)
	}
	return nil
}

func (c *Client) addHeaders(ctx context.Context, req *http.Request) {
	if token, ok := TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func escape(segment string) string {
	return url.PathEscape(segment)
}

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	divisionsCacheKey    = "geo:divisions"
	districtsCacheKeyFmt = "geo:districts:%s"
)

// FallbackDivisions are served when the reference service cannot be reached.
var FallbackDivisions = []string{
	"Dhaka",
	"Chittagong",
	"Rajshahi",
	"Khulna",
	"Barishal",
	"Sylhet",
	"Rangpur",
	"Mymensingh",
}

// Client resolves divisions and districts from the geographic reference service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

type divisionsResponse struct {
	Data []struct {
		Division string `json:"division"`
	} `json:"data"`
}

type districtsResponse struct {
	Data []struct {
		District string `json:"district"`
	} `json:"data"`
}

func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// UseRedisCache configures optional Redis caching for lookups.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// Divisions returns the division names, or FallbackDivisions when the lookup fails.
func (c *Client) Divisions(ctx context.Context) []string {
	var names []string
	if c.readCache(ctx, divisionsCacheKey, &names) {
		return names
	}

	var resp divisionsResponse
	if err := c.doGet(ctx, c.baseURL+"/divisions", &resp); err != nil {
		c.logger.Warn().Err(err).Msg("division lookup failed, using static list")
		return append([]string(nil), FallbackDivisions...)
	}

	names = make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.Division != "" {
			names = append(names, d.Division)
		}
	}
	if len(names) == 0 {
		return append([]string(nil), FallbackDivisions...)
	}

	c.writeCache(ctx, divisionsCacheKey, names)
	return names
}

// Districts returns the districts of division; empty when the lookup fails.
func (c *Client) Districts(ctx context.Context, division string) []string {
	division = strings.TrimSpace(division)
	if division == "" {
		return []string{}
	}

	cacheKey := fmt.Sprintf(districtsCacheKeyFmt, strings.ToLower(division))
	var names []string
	if c.readCache(ctx, cacheKey, &names) {
		return names
	}

	var resp districtsResponse
	if err := c.doGet(ctx, c.baseURL+"/division/"+url.PathEscape(division), &resp); err != nil {
		c.logger.Warn().Err(err).Str("division", division).Msg("district lookup failed")
		return []string{}
	}

	names = make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.District != "" {
			names = append(names, d.District)
		}
	}

	c.writeCache(ctx, cacheKey, names)
	return names
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("geo cache write failed")
	}
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"carebook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Remote     RemoteConfig     `yaml:"remote"`
	Identity   IdentityConfig   `yaml:"identity"`
	Geo        GeoConfig        `yaml:"geo"`
	Redis      RedisConfig      `yaml:"redis"`
	Session    SessionConfig    `yaml:"session"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port           int                `yaml:"port"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	RateLimit      APIRateLimitConfig `yaml:"rate_limit"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// RemoteConfig points at the REST API that owns services, bookings and users.
type RemoteConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

type IdentityConfig struct {
	BaseURL     string          `yaml:"base_url"`
	APIKey      string          `yaml:"api_key"`
	TokenSecret string          `yaml:"token_secret"`
	Federated   FederatedConfig `yaml:"federated"`
}

// FederatedConfig configures the OAuth2 authorization-code login.
type FederatedConfig struct {
	Enabled      bool     `yaml:"enabled"`
	ProviderID   string   `yaml:"provider_id"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	AuthURL      string   `yaml:"auth_url"`
	TokenURL     string   `yaml:"token_url"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

type GeoConfig struct {
	BaseURL         string `yaml:"base_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type SessionConfig struct {
	TTLSeconds         int `yaml:"ttl_seconds"`
	LoginAttempts      int `yaml:"login_attempts"`
	LoginWindowSeconds int `yaml:"login_window_seconds"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

func (s SessionConfig) LoginWindow() time.Duration {
	return time.Duration(s.LoginWindowSeconds) * time.Second
}

type TelegramConfig struct {
	BotToken     string  `yaml:"bot_token"`
	AdminChatIDs []int64 `yaml:"admin_chat_ids"`
	Debug        bool    `yaml:"debug"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// Загружаем .env файл если существует
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Remote.BaseURL == "" {
		return errors.New("remote.base_url is required")
	}

	if c.Identity.BaseURL == "" {
		return errors.New("identity.base_url is required")
	}

	if len(c.Identity.TokenSecret) < 32 {
		return errors.New("identity.token_secret must be at least 32 characters")
	}

	if f := c.Identity.Federated; f.Enabled {
		if f.ClientID == "" || f.AuthURL == "" || f.TokenURL == "" || f.RedirectURL == "" {
			return errors.New("identity.federated requires client_id, auth_url, token_url and redirect_url")
		}
	}

	if len(c.Telegram.AdminChatIDs) > 0 && c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required when admin_chat_ids are set")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "carebook"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.RateLimit.RPS == 0 {
		c.HTTP.RateLimit.RPS = 20
	}
	if c.HTTP.RateLimit.Burst == 0 {
		c.HTTP.RateLimit.Burst = 40
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Remote.TimeoutSeconds == 0 {
		c.Remote.TimeoutSeconds = models.DefaultRemoteTimeout
	}

	if c.Identity.Federated.ProviderID == "" {
		c.Identity.Federated.ProviderID = "google.com"
	}
	if len(c.Identity.Federated.Scopes) == 0 {
		c.Identity.Federated.Scopes = []string{"openid", "email", "profile"}
	}

	if c.Geo.BaseURL == "" {
		c.Geo.BaseURL = "https://bdapis.com/api/v1.2"
	}
	if c.Geo.TimeoutSeconds == 0 {
		c.Geo.TimeoutSeconds = models.DefaultRemoteTimeout
	}
	if c.Geo.CacheTTLSeconds == 0 {
		c.Geo.CacheTTLSeconds = models.DefaultGeoCacheTTL
	}

	if c.Session.TTLSeconds == 0 {
		c.Session.TTLSeconds = models.DefaultSessionTTL
	}
	if c.Session.LoginAttempts == 0 {
		c.Session.LoginAttempts = models.DefaultLoginAttempts
	}
	if c.Session.LoginWindowSeconds == 0 {
		c.Session.LoginWindowSeconds = models.DefaultLoginWindow
	}
}

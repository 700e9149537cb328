package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carebook/internal/api"
	"carebook/internal/config"
	"carebook/internal/domain"
	"carebook/internal/events"
	"carebook/internal/geo"
	"carebook/internal/identity"
	"carebook/internal/logging"
	"carebook/internal/metrics"
	"carebook/internal/remote"
	"carebook/internal/repository"
	"carebook/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const telegramTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, base, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := logging.Component(base, "api-main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}

	startMetrics(ctx, cfg, logger)

	eventBus := events.NewEventBus()
	eventBus.OnError(func(event *events.Event, err error) {
		logger.Error().Err(err).Str("event_type", event.Type).Msg("event handler failed")
	})
	initNotifier(ctx, cfg, eventBus, base)

	svc := buildServices(cfg, redisClient, eventBus, base)
	httpServer := api.NewHTTPServer(cfg.HTTP, svc, logging.Component(base, "http"))
	return serve(ctx, httpServer, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		logger.Warn().Msg("redis is not configured, sessions are kept in memory")
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		// the failover repository keeps retrying the primary
		logger.Warn().Err(err).Msg("redis connection failed, starting on the in-memory fallback")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return client
}

func sessionRepository(redisClient *redis.Client, logger *zerolog.Logger) domain.SessionRepository {
	memory := repository.NewMemorySessionRepository()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverSessionRepository(
		repository.NewRedisSessionRepository(redisClient),
		memory,
		logging.Component(logger, "sessions"),
	)
}

func buildServices(
	cfg *config.Config,
	redisClient *redis.Client,
	eventBus *events.EventBus,
	logger *zerolog.Logger,
) api.Services {
	remoteClient := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout(), logger)

	geoClient := geo.NewClient(cfg.Geo.BaseURL, time.Duration(cfg.Geo.TimeoutSeconds)*time.Second, logging.Component(logger, "geo"))
	if redisClient != nil {
		geoClient.UseRedisCache(redisClient, time.Duration(cfg.Geo.CacheTTLSeconds)*time.Second)
	}

	provider := identity.NewProvider(cfg.Identity.BaseURL, cfg.Identity.APIKey, cfg.Remote.Timeout(), logging.Component(logger, "identity"))
	tokens := identity.NewTokenManager(cfg.Identity.TokenSecret, cfg.Session.TTL())

	var federated domain.FederatedFlow
	if cfg.Identity.Federated.Enabled {
		federated = identity.NewOAuthFlow(cfg.Identity.Federated)
		logger.Info().Str("provider", cfg.Identity.Federated.ProviderID).Msg("federated login enabled")
	}

	serviceLogger := logging.Component(logger, "service")
	users := service.NewUserService(remoteClient, remoteClient, eventBus, serviceLogger)
	bookings := service.NewBookingService(remoteClient, remoteClient, eventBus, serviceLogger)

	sessions := service.NewSessionService(
		provider,
		federated,
		sessionRepository(redisClient, logger),
		users,
		tokens,
		service.SessionOptions{
			LoginAttempts:        cfg.Session.LoginAttempts,
			LoginWindow:          cfg.Session.LoginWindow(),
			FederatedProviderID:  cfg.Identity.Federated.ProviderID,
			FederatedRedirectURL: cfg.Identity.Federated.RedirectURL,
		},
		logging.Component(logger, "sessions"),
	)

	return api.Services{
		Sessions:  sessions,
		Catalog:   service.NewCatalogService(remoteClient, serviceLogger),
		Bookings:  bookings,
		Users:     users,
		Dashboard: service.NewDashboardService(remoteClient, bookings, serviceLogger),
		Gate:      service.NewAccessGate(remoteClient, logging.Component(logger, "access")),
		Geo:       geoClient,
	}
}

func initNotifier(ctx context.Context, cfg *config.Config, eventBus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" || len(cfg.Telegram.AdminChatIDs) == 0 {
		return
	}

	botAPI, err := tgbotapi.NewBotAPIWithClient(
		cfg.Telegram.BotToken,
		tgbotapi.APIEndpoint,
		&http.Client{Timeout: telegramTimeout},
	)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, admin notifications disabled")
		return
	}
	botAPI.Debug = cfg.Telegram.Debug

	notifier := service.NewAdminNotifier(
		service.NewTelegramService(botAPI),
		cfg.Telegram.AdminChatIDs,
		logging.Component(logger, "notifier"),
	)
	notifier.Subscribe(eventBus)
	go notifier.Run(ctx)
	logger.Info().Str("bot", botAPI.Self.UserName).Int("chats", len(cfg.Telegram.AdminChatIDs)).Msg("admin notifications enabled")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Str("http_addr", httpServer.Addr()).Msg("carebook API started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("carebook API stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"rezum-backend/internal/analyses"
	"rezum-backend/internal/llm"
	"rezum-backend/internal/llm/gemini"
	"rezum-backend/internal/llm/openai"
	"rezum-backend/internal/services/health"
	"rezum-backend/internal/shared/config"
	"rezum-backend/internal/shared/server"
	"rezum-backend/internal/shared/telemetry"
	"rezum-backend/internal/uploads"
	"rezum-backend/internal/web"
)

const redisPingTimeout = 5 * time.Second

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine

	Redis           *redis.Client
	FilesRepo       uploads.Repo
	StoreName       string
	LLM             llm.Client
	UploadsService  *uploads.Service
	AnalysesService *analyses.Service
	UploadsHandler  *uploads.Handler
	AnalysisHandler *analyses.Handler
	WebHandler      *web.Handler
}

// Option overrides a dependency, mostly for tests.
type Option func(*options)

type options struct {
	llm   llm.Client
	redis *redis.Client
}

// WithLLM replaces the provider client built from config.
func WithLLM(c llm.Client) Option {
	return func(o *options) { o.llm = c }
}

// WithRedis supplies an existing Redis client for FILE_STORE=redis.
func WithRedis(c *redis.Client) Option {
	return func(o *options) { o.redis = c }
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.LLMProvider) == "" {
		cfg.LLMProvider = "gemini"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = uploads.DefaultMaxBytes
	}
	if cfg.LogLevel != "" || cfg.LogFormat != "" {
		if err := telemetry.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
			return nil, fmt.Errorf("configure logging: %w", err)
		}
	}
	ctx := context.Background()

	app := &App{Config: cfg}

	if err := buildStore(ctx, app, o.redis); err != nil {
		return nil, err
	}

	client := o.llm
	if client == nil {
		base, err := buildLLM(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client = llm.WithRetry(base, cfg.LLMProvider, llm.RetryPolicy{
			MaxAttempts: cfg.LLMMaxAttempts,
			BaseDelay:   cfg.LLMRetryBaseDelay,
			Timeout:     cfg.LLMTimeout,
		})
	}
	app.LLM = client

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   app.Config,
		Uploads:  app.UploadsHandler,
		Analyses: app.AnalysisHandler,
		Web:      app.WebHandler,
		Health:   health.NewService(app.StoreName, cfg.LLMProvider, app.storePinger()),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"store":        app.StoreName,
		"llm_provider": cfg.LLMProvider,
		"llm_model":    cfg.LLMModel,
		"max_upload":   cfg.MaxUploadBytes,
	})
	return app, nil
}

func (a *App) storePinger() health.Pinger {
	if p, ok := a.FilesRepo.(health.Pinger); ok {
		return p
	}
	return nil
}

// Close releases external connections.
func (a *App) Close() error {
	if a.Redis != nil {
		return a.Redis.Close()
	}
	return nil
}

func buildStore(ctx context.Context, app *App, client *redis.Client) error {
	cfg := app.Config
	if cfg.FileStore != "redis" {
		app.FilesRepo = uploads.NewMemoryRepo()
		app.StoreName = "memory"
		return nil
	}

	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	repo := uploads.NewRedisRepo(client, cfg.RedisPrefix)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		_ = client.Close()
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"addr": cfg.RedisAddr, "err": err})
			app.FilesRepo = uploads.NewMemoryRepo()
			app.StoreName = "memory"
			return nil
		}
		return fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	app.Redis = client
	app.FilesRepo = repo
	app.StoreName = "redis"
	return nil
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"provider": "openai"})
			return llm.PlaceholderClient{Reason: "OPENAI_API_KEY is empty"}, nil
		}
		c, err := openai.NewClient(openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
			telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"provider": "gemini"})
			return llm.PlaceholderClient{Reason: "GOOGLE_API_KEY is empty"}, nil
		}
		c, err := gemini.NewClient(ctx, gemini.Options{
			APIKey:  cfg.GoogleAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func buildServices(ctx context.Context, app *App) error {
	app.UploadsService = uploads.NewService(app.FilesRepo, app.Config.MaxUploadBytes)
	if err := app.UploadsService.SyncMetrics(ctx); err != nil {
		telemetry.Warn("bootstrap.metrics_sync_failed", map[string]any{"err": err})
	}
	app.AnalysesService = analyses.NewService(app.UploadsService, app.LLM, app.Config.LLMProvider)

	webHandler, err := web.NewHandler(app.AnalysesService, app.Config.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	app.UploadsHandler = uploads.NewHandler(app.UploadsService)
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.WebHandler = webHandler
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

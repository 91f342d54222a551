package cmd

import (
	"fmt"
	"os"
	"time"

	tomlrepo "github.com/codex-platform/codex-cli/internal/adapters/repo/toml"
	chainstore "github.com/codex-platform/codex-cli/internal/adapters/secrets/chain"
	filestore "github.com/codex-platform/codex-cli/internal/adapters/secrets/file"
	"github.com/codex-platform/codex-cli/internal/adapters/transport/httpx"
	"github.com/codex-platform/codex-cli/internal/application"
	"github.com/codex-platform/codex-cli/internal/config"
	"github.com/codex-platform/codex-cli/internal/gateway"
	"github.com/codex-platform/codex-cli/internal/logging"
	"github.com/codex-platform/codex-cli/internal/ports"
	"github.com/codex-platform/codex-cli/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type app struct {
	service   *application.Service
	auth      *application.AuthService
	telemetry *telemetry.Telemetry
	logger    zerolog.Logger
	now       func() time.Time
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg, err := config.Load(viper.New(), homeDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	tel, err := telemetry.New(cfg.Telemetry, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("configure telemetry: %w", err)
	}

	secretStore, err := newSecretStore(cfg.Secrets)
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}

	transport, err := httpx.New(cfg.API.BaseURL,
		httpx.WithTimeout(cfg.API.Timeout),
		httpx.WithCookieStore(secretStore),
		httpx.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("wire api transport: %w", err)
	}

	clock := ports.SystemClock{}
	sessions, err := tomlrepo.NewSessionStore(cfg.Session.Path, clock)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	gw, err := gateway.New(transport, application.NewSessionGuard(sessions, transport),
		gateway.WithRefreshTimeout(cfg.Gateway.RefreshTimeout),
		gateway.WithRetryAfterFailedRefresh(cfg.Gateway.RetryAfterFailedRefresh),
		gateway.WithLogger(logger),
		gateway.WithMetrics(gateway.NewMetrics(tel.Registry())),
		gateway.WithTracerProvider(tel.TracerProvider()),
	)
	if err != nil {
		return nil, fmt.Errorf("wire gateway: %w", err)
	}

	return &app{
		service:   application.NewService(gw),
		auth:      application.NewAuthService(transport, gw, sessions, transport, clock),
		telemetry: tel,
		logger:    logger,
		now:       clock.Now,
	}, nil
}

func newSecretStore(cfg config.SecretsConfig) (ports.SecretStore, error) {
	if cfg.Backend == config.SecretsBackendFile {
		return filestore.NewStore(cfg.Dir), nil
	}

	store, err := chainstore.NewPassFirstWithFileFallback(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Package config loads CLI settings from ~/.codex-cli/config.toml and CODEX_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "CODEX"

	// DirName is the per-user configuration directory under $HOME.
	DirName = ".codex-cli"

	KeyAPIBaseURL                     = "api.base_url"
	KeyAPITimeout                     = "api.timeout"
	KeyGatewayRefreshTimeout          = "gateway.refresh_timeout"
	KeyGatewayRetryAfterFailedRefresh = "gateway.retry_after_failed_refresh"
	KeySessionPath                    = "session.path"
	KeySecretsDir                     = "secrets.dir"
	KeySecretsBackend                 = "secrets.backend"
	KeyLogLevel                       = "log.level"
	KeyLogFormat                      = "log.format"
	KeyTelemetryTraces                = "telemetry.traces"
	KeyTelemetryMetricsFile           = "telemetry.metrics_file"

	defaultBaseURL        = "http://localhost:8080/api"
	defaultAPITimeout     = 30 * time.Second
	defaultRefreshTimeout = 10 * time.Second
	defaultLogLevel       = "warn"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Secret store backends. SecretsBackendPass tries pass(1) first and falls back
// to files under secrets.dir.
const (
	SecretsBackendPass = "pass"
	SecretsBackendFile = "file"
)

var (
	ErrInvalidBaseURL   = errors.New("invalid api base url")
	ErrInvalidTimeout   = errors.New("invalid timeout")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidBackend   = errors.New("invalid secrets backend")
)

type Config struct {
	API       APIConfig
	Gateway   GatewayConfig
	Session   SessionConfig
	Secrets   SecretsConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type GatewayConfig struct {
	RefreshTimeout          time.Duration
	RetryAfterFailedRefresh bool
}

type SessionConfig struct {
	Path string
}

type SecretsConfig struct {
	Dir     string
	Backend string
}

type LogConfig struct {
	Level  string
	Format string
}

// TelemetryConfig controls span export and the metrics dump. Spans are always
// recorded so their trace context reaches the API; Traces only adds export.
type TelemetryConfig struct {
	Traces      bool
	MetricsFile string
}

// Load reads the config file from homeDir/.codex-cli when present and applies
// defaults and environment overrides. Values already Set on cfg win.
func Load(cfg *viper.Viper, homeDir string) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	dir := filepath.Join(homeDir, DirName)
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(dir)

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(KeyAPIBaseURL, defaultBaseURL)
	cfg.SetDefault(KeyAPITimeout, defaultAPITimeout)
	cfg.SetDefault(KeyGatewayRefreshTimeout, defaultRefreshTimeout)
	cfg.SetDefault(KeyGatewayRetryAfterFailedRefresh, false)
	cfg.SetDefault(KeySessionPath, filepath.Join(dir, "session.toml"))
	cfg.SetDefault(KeySecretsDir, filepath.Join(dir, "secrets"))
	cfg.SetDefault(KeySecretsBackend, SecretsBackendPass)
	cfg.SetDefault(KeyLogLevel, defaultLogLevel)
	cfg.SetDefault(KeyLogFormat, LogFormatConsole)
	cfg.SetDefault(KeyTelemetryTraces, false)
	cfg.SetDefault(KeyTelemetryMetricsFile, "")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	loaded := Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(cfg.GetString(KeyAPIBaseURL)), "/"),
			Timeout: cfg.GetDuration(KeyAPITimeout),
		},
		Gateway: GatewayConfig{
			RefreshTimeout:          cfg.GetDuration(KeyGatewayRefreshTimeout),
			RetryAfterFailedRefresh: cfg.GetBool(KeyGatewayRetryAfterFailedRefresh),
		},
		Session: SessionConfig{Path: cfg.GetString(KeySessionPath)},
		Secrets: SecretsConfig{
			Dir:     cfg.GetString(KeySecretsDir),
			Backend: strings.ToLower(strings.TrimSpace(cfg.GetString(KeySecretsBackend))),
		},
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(cfg.GetString(KeyLogLevel))),
			Format: strings.ToLower(strings.TrimSpace(cfg.GetString(KeyLogFormat))),
		},
		Telemetry: TelemetryConfig{
			Traces:      cfg.GetBool(KeyTelemetryTraces),
			MetricsFile: strings.TrimSpace(cfg.GetString(KeyTelemetryMetricsFile)),
		},
	}

	if err := loaded.Validate(); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func (c Config) Validate() error {
	var errs []error

	parsed, err := url.Parse(c.API.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err))
	case parsed.Scheme != "http" && parsed.Scheme != "https", parsed.Host == "":
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.API.BaseURL))
	}

	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidTimeout, KeyAPITimeout, c.API.Timeout))
	}
	if c.Gateway.RefreshTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidTimeout, KeyGatewayRefreshTimeout, c.Gateway.RefreshTimeout))
	}

	if c.Log.Format != LogFormatConsole && c.Log.Format != LogFormatJSON {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format))
	}

	if c.Session.Path == "" {
		errs = append(errs, errors.New("session path is empty"))
	}
	if c.Secrets.Dir == "" {
		errs = append(errs, errors.New("secrets dir is empty"))
	}
	if c.Secrets.Backend != SecretsBackendPass && c.Secrets.Backend != SecretsBackendFile {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidBackend, c.Secrets.Backend))
	}

	return errors.Join(errs...)
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/teams-token-grabber/internal/logger"
	"github.com/oshokin/teams-token-grabber/internal/token"
	"github.com/oshokin/teams-token-grabber/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// AppURL is the entry URL of the web application the session is opened on.
	AppURL string `mapstructure:"app_url"`
	// AppDomain is the host of the authenticated application.
	AppDomain string `mapstructure:"app_domain"`
	// LoginDomains are the identity-provider hosts that serve the sign-in pages.
	LoginDomains []string `mapstructure:"login_domains"`
	// ProfileDir is the persistent browser profile directory. Empty means the state directory default.
	ProfileDir string `mapstructure:"profile_dir"`
	// BrowserPath is an explicit Chrome/Chromium binary. Empty means autodetect or download.
	BrowserPath string `mapstructure:"browser_path"`
	// UserAgent overrides the User-Agent reported by headless sessions.
	UserAgent string `mapstructure:"user_agent"`
	// Timeout is the overall deadline of one acquisition run (e.g., "300s", "5m").
	Timeout string `mapstructure:"timeout"`
	// PollInterval is the pause between two polling ticks.
	PollInterval string `mapstructure:"poll_interval"`
	// NavigationTimeout bounds the wait for the entry page and reloads.
	NavigationTimeout string `mapstructure:"navigation_timeout"`
	// StaleThreshold is the number of consecutive ticks on the application without tokens
	// after which the cached session is considered stale.
	StaleThreshold int `mapstructure:"stale_threshold"`
	// TokenEndpointMarkers are URL substrings identifying token-endpoint responses.
	TokenEndpointMarkers []string `mapstructure:"token_endpoint_markers"`
	// TokenCacheMarker is the storage key substring of cached access tokens.
	TokenCacheMarker string `mapstructure:"token_cache_marker"`
	// LegacyAuthority is the identity-provider domain embedded in legacy storage keys.
	LegacyAuthority string `mapstructure:"legacy_authority"`
	// PurgeKeyPatterns are storage key substrings removed when a stale session is recovered.
	PurgeKeyPatterns []string `mapstructure:"purge_key_patterns"`
	// MinTokenLength is the length a captured value must exceed to be taken as a real token.
	MinTokenLength int `mapstructure:"min_token_length"`
	// PlaceholderTokens are dummy values that are never accepted as tokens.
	PlaceholderTokens []string `mapstructure:"placeholder_tokens"`
	// Resources lists the resource scopes a run must obtain tokens for.
	Resources []token.Scope `mapstructure:"resources"`
	// OutputFormat is the payload encoding: "json" or "yaml".
	OutputFormat string `mapstructure:"output_format"`
	// Headless runs the browser without a window (set by the command).
	Headless bool
	// ForceFresh deletes the browser profile before launching (set by the command).
	ForceFresh bool
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedTimeout is the parsed run deadline.
	ParsedTimeout time.Duration
	// ParsedPollInterval is the parsed polling interval.
	ParsedPollInterval time.Duration
	// ParsedNavigationTimeout is the parsed navigation timeout.
	ParsedNavigationTimeout time.Duration
	// Catalog is the validated set of resource scopes.
	Catalog token.Catalog
	// ResolvedProfileDir is the absolute profile directory used by the run.
	ResolvedProfileDir string
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".teams-token-grabber.yaml"

	// EnvPrefix is the prefix of environment variables overriding configuration keys.
	EnvPrefix = "TTG"

	// DefaultAppURL is the Teams web client entry URL.
	DefaultAppURL = "https://teams.microsoft.com/v2"

	// DefaultAppDomain is the Teams web client host.
	DefaultAppDomain = "teams.microsoft.com"

	// DefaultTimeout is the default run deadline.
	DefaultTimeout = 300 * time.Second

	// DefaultPollInterval is the default pause between polling ticks.
	DefaultPollInterval = 1 * time.Second

	// DefaultNavigationTimeout is the default navigation timeout.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultStaleThreshold is the default number of stalled ticks before recovery.
	DefaultStaleThreshold = 5

	// DefaultTokenCacheMarker is the storage key substring of MSAL access token entries.
	DefaultTokenCacheMarker = "accesstoken"

	// DefaultLegacyAuthority is the authority domain embedded in legacy MSAL cache keys.
	DefaultLegacyAuthority = "login.windows.net"

	// OutputFormatJSON encodes the payload as JSON.
	OutputFormatJSON = "json"

	// OutputFormatYAML encodes the payload as YAML.
	OutputFormatYAML = "yaml"
)

// Static error definitions for better error handling.
var (
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidAppURL indicates that the application URL is not an absolute http(s) URL.
	ErrInvalidAppURL = errors.New("app_url must be an absolute http(s) URL")
	// ErrEmptyAppDomain indicates that the application domain is missing.
	ErrEmptyAppDomain = errors.New("app_domain cannot be empty")
	// ErrEmptyLoginDomains indicates that no identity-provider domains were configured.
	ErrEmptyLoginDomains = errors.New("login_domains cannot be empty")
	// ErrInvalidTimeout indicates that the run deadline is not positive.
	ErrInvalidTimeout = errors.New("timeout must be positive")
	// ErrInvalidPollInterval indicates that the polling interval is not positive.
	ErrInvalidPollInterval = errors.New("poll_interval must be positive")
	// ErrInvalidNavigationTimeout indicates that the navigation timeout is not positive.
	ErrInvalidNavigationTimeout = errors.New("navigation_timeout must be positive")
	// ErrInvalidStaleThreshold indicates that the stale threshold is not a positive integer.
	ErrInvalidStaleThreshold = errors.New("stale_threshold must be a positive integer")
	// ErrEmptyTokenEndpointMarkers indicates that no token endpoint markers were configured.
	ErrEmptyTokenEndpointMarkers = errors.New("token_endpoint_markers cannot be empty")
	// ErrEmptyTokenCacheMarker indicates that the token cache marker is missing.
	ErrEmptyTokenCacheMarker = errors.New("token_cache_marker cannot be empty")
	// ErrInvalidMinTokenLength indicates that the minimum token length is negative.
	ErrInvalidMinTokenLength = errors.New("min_token_length cannot be negative")
	// ErrUnknownOutputFormat indicates that the output format is not supported.
	ErrUnknownOutputFormat = errors.New("unknown output format")
)

// LoadConfig loads configuration settings from defaults, an optional YAML file and the environment.
// A missing file is an error only when its name was given explicitly.
func LoadConfig(configFilename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	isExplicit := configFilename != ""
	if !isExplicit {
		configFilename = DefaultConfigFilename
	}

	v.SetConfigFile(configFilename)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if isExplicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("app_url", DefaultAppURL)
	v.SetDefault("app_domain", DefaultAppDomain)
	v.SetDefault("login_domains", []string{"login.microsoftonline.com", "login.live.com"})
	v.SetDefault("profile_dir", "")
	v.SetDefault("browser_path", "")
	v.SetDefault("user_agent", "")
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("poll_interval", DefaultPollInterval.String())
	v.SetDefault("navigation_timeout", DefaultNavigationTimeout.String())
	v.SetDefault("stale_threshold", DefaultStaleThreshold)
	v.SetDefault("token_endpoint_markers", []string{"/oauth2/v2.0/token", "/oauth2/token"})
	v.SetDefault("token_cache_marker", DefaultTokenCacheMarker)
	v.SetDefault("legacy_authority", DefaultLegacyAuthority)
	v.SetDefault("purge_key_patterns", []string{
		"accesstoken",
		"idtoken",
		"refreshtoken",
		"msal.token.keys",
		"msal.account.keys",
	})
	v.SetDefault("min_token_length", token.DefaultMinLength)
	v.SetDefault("placeholder_tokens", token.DefaultPlaceholders())
	v.SetDefault("resources", scopesToMaps(token.DefaultCatalog()))
	v.SetDefault("output_format", OutputFormatJSON)
}

func scopesToMaps(catalog token.Catalog) []map[string]any {
	result := make([]map[string]any, 0, len(catalog))
	for _, scope := range catalog {
		result = append(result, map[string]any{
			"name":     scope.Name,
			"resource": scope.Resource,
		})
	}

	return result
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	appURL, err := url.Parse(strings.TrimSpace(cfg.AppURL))
	if err != nil || appURL.Host == "" || (appURL.Scheme != "https" && appURL.Scheme != "http") {
		return fmt.Errorf("%w: '%s'", ErrInvalidAppURL, cfg.AppURL)
	}

	cfg.AppURL = appURL.String()

	cfg.AppDomain = strings.TrimSpace(cfg.AppDomain)
	if cfg.AppDomain == "" {
		return ErrEmptyAppDomain
	}

	cfg.LoginDomains = utils.Dedupe(cfg.LoginDomains)
	if len(cfg.LoginDomains) == 0 {
		return ErrEmptyLoginDomains
	}

	if cfg.ParsedTimeout, err = parsePositiveDuration(cfg.Timeout, "timeout", ErrInvalidTimeout); err != nil {
		return err
	}

	if cfg.ParsedPollInterval, err = parsePositiveDuration(
		cfg.PollInterval, "poll interval", ErrInvalidPollInterval); err != nil {
		return err
	}

	if cfg.ParsedNavigationTimeout, err = parsePositiveDuration(
		cfg.NavigationTimeout, "navigation timeout", ErrInvalidNavigationTimeout); err != nil {
		return err
	}

	if cfg.StaleThreshold <= 0 {
		return ErrInvalidStaleThreshold
	}

	cfg.TokenEndpointMarkers = utils.Dedupe(cfg.TokenEndpointMarkers)
	if len(cfg.TokenEndpointMarkers) == 0 {
		return ErrEmptyTokenEndpointMarkers
	}

	cfg.TokenCacheMarker = strings.TrimSpace(cfg.TokenCacheMarker)
	if cfg.TokenCacheMarker == "" {
		return ErrEmptyTokenCacheMarker
	}

	cfg.PurgeKeyPatterns = utils.Dedupe(cfg.PurgeKeyPatterns)

	if cfg.MinTokenLength < 0 {
		return ErrInvalidMinTokenLength
	}

	if cfg.Catalog, err = token.NewCatalog(cfg.Resources...); err != nil {
		return fmt.Errorf("failed to parse resources: %w", err)
	}

	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	if cfg.OutputFormat != OutputFormatJSON && cfg.OutputFormat != OutputFormatYAML {
		return fmt.Errorf("%w: '%s'", ErrUnknownOutputFormat, cfg.OutputFormat)
	}

	if cfg.ResolvedProfileDir, err = ResolveProfileDir(cfg.ProfileDir); err != nil {
		return fmt.Errorf("failed to resolve profile directory: %w", err)
	}

	return nil
}

// Validator returns the token validator described by the configuration.
func (c *Config) Validator() token.Validator {
	return token.Validator{
		MinLength:    c.MinTokenLength,
		Placeholders: c.PlaceholderTokens,
	}
}

func parsePositiveDuration(value, name string, errNotPositive error) (time.Duration, error) {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	if parsed <= 0 {
		return 0, errNotPositive
	}

	return parsed, nil
}

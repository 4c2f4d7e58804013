package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	API        APIConfig
	Cache      CacheConfig
	Redis      RedisConfig
	TokenStore TokenStoreConfig
	Session    SessionConfig
	Metrics    MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"warn"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"console"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL           string        `envconfig:"STOREFRONT_API_BASE_URL" required:"true"`
	RequestTimeout    time.Duration `envconfig:"STOREFRONT_API_REQUEST_TIMEOUT" default:"15s"`
	RefreshPath       string        `envconfig:"STOREFRONT_API_REFRESH_PATH" default:"/auth/refresh"`
	RefreshCookieName string        `envconfig:"STOREFRONT_API_REFRESH_COOKIE" default:"refreshToken"`
	UserAgent         string        `envconfig:"STOREFRONT_API_USER_AGENT" default:"storefront-cli"`
}

type CacheConfig struct {
	Driver    string        `envconfig:"STOREFRONT_CACHE_DRIVER" default:"memory"`
	StaleTime time.Duration `envconfig:"STOREFRONT_CACHE_STALE_TIME" default:"5m"`
	Namespace string        `envconfig:"STOREFRONT_CACHE_NAMESPACE" default:"sf"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type TokenStoreConfig struct {
	Driver     string `envconfig:"STOREFRONT_TOKEN_STORE_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"STOREFRONT_TOKEN_STORE_PATH" default:"storefront.db"`
}

type SessionConfig struct {
	// Guest cart/wishlist merge endpoints exist server side; calling them
	// after login stays opt-in until the backend confirms the behaviour.
	MergeGuestOnLogin bool   `envconfig:"STOREFRONT_SESSION_MERGE_GUEST" default:"false"`
	HomeRoute         string `envconfig:"STOREFRONT_SESSION_HOME_ROUTE" default:"/"`
	LoginRoute        string `envconfig:"STOREFRONT_SESSION_LOGIN_ROUTE" default:"/login"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"STOREFRONT_METRICS_ENABLED" default:"true"`
}

func (c *Config) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url, got %q", EnvAPIBaseURL, c.API.BaseURL)
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvAPIRequestTimeout)
	}

	switch strings.ToLower(c.Cache.Driver) {
	case CacheDriverMemory:
	case CacheDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis cache", EnvRedisURL, EnvRedisAddr)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvCacheDriver, c.Cache.Driver)
	}

	switch strings.ToLower(c.TokenStore.Driver) {
	case TokenStoreMemory:
	case TokenStoreSQLite:
		if strings.TrimSpace(c.TokenStore.SQLitePath) == "" {
			return fmt.Errorf("%s is required for the sqlite token store", EnvTokenStorePath)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvTokenStoreDriver, c.TokenStore.Driver)
	}
	return nil
}

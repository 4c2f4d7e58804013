package config

import (
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://shop.test/api/v1" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if got := cfg.API.RequestTimeout; got != 15*time.Second {
		t.Fatalf("expected request timeout 15s, got %v", got)
	}
	if cfg.API.RefreshPath != "/auth/refresh" {
		t.Fatalf("unexpected refresh path %q", cfg.API.RefreshPath)
	}
	if cfg.Cache.StaleTime != 5*time.Minute {
		t.Fatalf("expected default stale time 5m, got %v", cfg.Cache.StaleTime)
	}
	if cfg.TokenStore.SQLitePath != "storefront.db" {
		t.Fatalf("unexpected sqlite path %q", cfg.TokenStore.SQLitePath)
	}
	if cfg.Session.MergeGuestOnLogin {
		t.Fatalf("guest merge must be opt-in")
	}
	if cfg.Session.LoginRoute != "/login" || cfg.Session.HomeRoute != "/" {
		t.Fatalf("unexpected routes %+v", cfg.Session)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "")
	if _, err := Load(); err == nil {
		t.Fatal("expected missing base url to return an error")
	}
}

func TestLoad_RejectsNonHTTPBaseURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvAPIBaseURL, "ftp://shop.test")
	if _, err := Load(); err == nil {
		t.Fatal("expected ftp base url to be rejected")
	}
}

func TestLoad_RedisCacheNeedsAddress(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCacheDriver, CacheDriverRedis)
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvRedisAddr, "")
	if _, err := Load(); err == nil {
		t.Fatal("expected redis cache without address to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected redis url %q", cfg.Redis.URL)
	}
}

func TestLoad_UnknownDrivers(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvTokenStoreDriver, "keychain")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown token store driver to fail")
	}

	setMinimalEnv(t)
	t.Setenv(EnvCacheDriver, "memcached")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown cache driver to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAPIBaseURL, "https://shop.test/api/v1")
	t.Setenv(EnvCacheDriver, CacheDriverMemory)
	t.Setenv(EnvTokenStoreDriver, TokenStoreSQLite)
	t.Setenv(EnvSessionMerge, "false")
	t.Setenv(EnvAPIRequestTimeout, "15s")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}

package config

import (
	"os"
	"time"

	"github.com/jrsteele09/go-auth-client/session"
)

const (
	appNameVar      = "APP_NAME"
	apiBaseURLVar   = "API_BASE_URL"
	requestTimeout  = "REQUEST_TIMEOUT"
	refreshLeeway   = "REFRESH_LEEWAY"
	storeBackendVar = "STORE_BACKEND"
	storeDirVar     = "STORE_DIR"
	redisAddrVar    = "REDIS_ADDR"
	namespaceVar    = "STORAGE_NAMESPACE"
)

// Store backend selectors for STORE_BACKEND.
const (
	StoreBackendFile  = "file"
	StoreBackendRedis = "redis"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go Auth Client")
}

// GetAPIBaseURL returns the base URL of the remote API, e.g.
// "http://localhost:8000/api".
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8000/api")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	return getDuration(requestTimeout, 10*time.Second)
}

// GetRefreshLeeway returns how far ahead of access-token expiry the
// pipeline refreshes proactively. Zero disables the check.
func (EnvVars) GetRefreshLeeway() time.Duration {
	return getDuration(refreshLeeway, 0)
}

func (EnvVars) GetStoreBackend() string {
	return GetEnv(storeBackendVar, StoreBackendFile)
}

func (EnvVars) GetStoreDir() string {
	if dir := os.Getenv(storeDirVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.go-auth-client"
	}
	return home + "/.go-auth-client"
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (EnvVars) GetStorageNamespace() string {
	return GetEnv(namespaceVar, session.DefaultNamespace)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

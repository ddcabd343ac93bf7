package config

import "time"

type Config interface {
	ClientConfig
	StoreConfig
}

type ClientConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetRefreshLeeway() time.Duration
}

type StoreConfig interface {
	GetStoreBackend() string
	GetStoreDir() string
	GetRedisAddr() string
	GetStorageNamespace() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}

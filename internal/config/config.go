package config

type Config interface {
	EnvConfig
	AuthConfig
	RedisConfig
	MediaConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetAdminUsernames() []string
}

type mainConfig struct {
	EnvVars
	Auth
	Redis
	Media
}

func New() Config {
	return mainConfig{}
}

package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	CorsConfig
	PortalConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
	GetRedisAddr() string
	GetRedisDB() int
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Portal
	Security
}

// New reads the environment. Call it after LoadDotEnv.
func New() Config {
	return mainConfig{Portal: loadPortal()}
}

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment. Existing variables win, missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

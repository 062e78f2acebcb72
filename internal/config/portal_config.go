package config

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
)

type PortalConfig interface {
	GetAPIBaseURL() string
	GetAPIBasePath() string
	GetAPITimeout() time.Duration
	GetUserCacheTTL() time.Duration
}

// Portal holds the API client settings, read once when the config is created.
type Portal struct {
	APIBaseURL   string        `env:"API_BASE_URL,   default=http://localhost:8000"`
	APIBasePath  string        `env:"API_BASE_PATH,  default=/wp-json/affiliate-portal/v1"`
	APITimeout   time.Duration `env:"API_TIMEOUT,    default=0s"`
	UserCacheTTL time.Duration `env:"USER_CACHE_TTL, default=5m"`
}

var _ PortalConfig = Portal{}

func defaultPortal() Portal {
	return Portal{
		APIBaseURL:   "http://localhost:8000",
		APIBasePath:  "/wp-json/affiliate-portal/v1",
		UserCacheTTL: 5 * time.Minute,
	}
}

// loadPortal reads the portal settings. A malformed value falls back to the defaults.
func loadPortal() Portal {
	var p Portal
	if err := envconfig.Process(context.Background(), &p); err != nil {
		log.Warn().Err(err).Msg("invalid portal settings, using defaults")
		return defaultPortal()
	}
	def := defaultPortal()
	if p.APIBaseURL == "" {
		p.APIBaseURL = def.APIBaseURL
	}
	if p.APIBasePath == "" {
		p.APIBasePath = def.APIBasePath
	}
	if p.UserCacheTTL <= 0 {
		p.UserCacheTTL = def.UserCacheTTL
	}
	return p
}

// GetAPIBaseURL returns the origin of the portal REST API (e.g., "https://portal.example.com")
func (p Portal) GetAPIBaseURL() string {
	return strings.TrimRight(p.APIBaseURL, "/")
}

// GetAPIBasePath is the fixed prefix every endpoint lives under.
func (p Portal) GetAPIBasePath() string {
	return p.APIBasePath
}

// GetAPITimeout of zero leaves the transport default in place.
func (p Portal) GetAPITimeout() time.Duration {
	return p.APITimeout
}

func (p Portal) GetUserCacheTTL() time.Duration {
	return p.UserCacheTTL
}

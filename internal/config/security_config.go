package config

import "time"

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetSessionCookieName() string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetMaxSessionAge bounds the browser session cookie and its stored credential.
func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 7*24*time.Hour)
}

func (Security) GetSessionCookieName() string {
	return "portal_session"
}

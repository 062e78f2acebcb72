// Package server is the portal web front end. It maps each browser to a
// sessions.Session, runs the page guards and renders page data as JSON.
package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/internal/config"
	"github.com/jrsteele09/go-affiliate-portal/server/loginsession"
	"github.com/jrsteele09/go-affiliate-portal/token"
	"github.com/jrsteele09/go-affiliate-portal/token/memrepo"
	"github.com/rs/zerolog/log"
)

// TokenRepoFactory returns the credential storage for a browser session.
type TokenRepoFactory func(sessionID string) token.Repo

// MemoryTokenRepos keeps every browser's credential in process memory.
func MemoryTokenRepos() TokenRepoFactory {
	return func(string) token.Repo {
		return memrepo.New()
	}
}

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	apiBaseURL    string
	httpClient    *http.Client
	loginSessions loginsession.Repo
	tokenRepos    TokenRepoFactory
	nowTime       func() time.Time // nowTime function (injectable for testing)
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithHTTPClient sets the client used to reach the portal API.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Server) {
		if hc != nil {
			s.httpClient = hc
		}
	}
}

func New(config config.Config, loginSessions loginsession.Repo, tokenRepos TokenRepoFactory, options ...Option) (*Server, error) {
	if loginSessions == nil {
		return nil, fmt.Errorf("[Server New] login session repo is required")
	}
	if tokenRepos == nil {
		tokenRepos = MemoryTokenRepos()
	}

	s := &Server{
		env:           config.GetEnv(),
		mux:           http.NewServeMux(),
		config:        config,
		apiBaseURL:    apiclient.JoinBaseURL(config.GetAPIBaseURL(), config.GetAPIBasePath()),
		httpClient:    &http.Client{Timeout: config.GetAPITimeout()},
		loginSessions: loginSessions,
		tokenRepos:    tokenRepos,
		nowTime:       time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	if err := validateBaseURL(s.apiBaseURL); err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("api base url %q must be an absolute http(s) url", raw)
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// PurgeSessions drops browser sessions idle for longer than the max session age.
func (s *Server) PurgeSessions() int {
	purged := s.loginSessions.Purge(s.nowTime().Add(-s.config.GetMaxSessionAge()))
	if purged > 0 {
		log.Info().Int("count", purged).Msg("purged idle browser sessions")
	}
	return purged
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

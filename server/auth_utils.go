package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/internal/metrics"
	"github.com/jrsteele09/go-affiliate-portal/server/loginsession"
	"github.com/jrsteele09/go-affiliate-portal/sessions"
	"github.com/jrsteele09/go-affiliate-portal/token"
	"github.com/rs/zerolog/log"
)

func (s *Server) SetLoginSessionCookie(w http.ResponseWriter, sessionID string, r *http.Request, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// browserSession returns the session for the request's cookie, creating one
// (and setting the cookie) when the browser has none or it has expired.
// An id with no in-memory entry is only re-attached when shared token storage
// still holds a credential for it, so a signed-in browser survives a restart
// but a made-up id is never adopted.
func (s *Server) browserSession(w http.ResponseWriter, r *http.Request) *sessions.Session {
	now := s.nowTime()
	maxAge := s.config.GetMaxSessionAge()

	if cookie, err := r.Cookie(s.config.GetSessionCookieName()); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			entry, err := s.loginSessions.Get(cookie.Value)
			switch {
			case err == nil && now.Sub(entry.LastSeen) < maxAge:
				s.touch(cookie.Value, entry, now)
				return entry.Session
			case err == nil:
				s.discardBrowserSession(cookie.Value)
				log.Debug().Str("session_id", cookie.Value).Msg("browser session expired")
			case s.hasStoredCredential(cookie.Value):
				return s.attach(cookie.Value, now)
			default:
				log.Debug().Str("session_id", cookie.Value).Msg("ignoring unknown browser session")
			}
		}
	}

	id := uuid.NewString()
	sess := s.attach(id, now)
	s.SetLoginSessionCookie(w, id, r, int(maxAge.Seconds()))
	return sess
}

// newBrowserSession attaches an empty session under a fresh id. No cookie is
// set until rotateBrowserSession commits to it.
func (s *Server) newBrowserSession() (string, *sessions.Session) {
	id := uuid.NewString()
	return id, s.attach(id, s.nowTime())
}

// rotateBrowserSession points the browser at id and discards the session its
// cookie referred to, stored credential included.
func (s *Server) rotateBrowserSession(w http.ResponseWriter, r *http.Request, id string) {
	if cookie, err := r.Cookie(s.config.GetSessionCookieName()); err == nil && cookie.Value != id {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			s.discardBrowserSession(cookie.Value)
			metrics.SessionClearedTotal.WithLabelValues("rotated").Inc()
		}
	}
	s.SetLoginSessionCookie(w, id, r, int(s.config.GetMaxSessionAge().Seconds()))
}

func (s *Server) discardBrowserSession(id string) {
	var err error
	if entry, getErr := s.loginSessions.Get(id); getErr == nil {
		err = entry.Session.Clear()
	} else {
		err = token.NewStore(s.tokenRepos(id), token.WithLogger(log.Logger)).Clear()
	}
	if err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("failed to clear browser session credential")
	}
	_ = s.loginSessions.Delete(id)
}

func (s *Server) hasStoredCredential(sessionID string) bool {
	_, ok := token.NewStore(s.tokenRepos(sessionID), token.WithLogger(log.Logger)).Get()
	return ok
}

func (s *Server) attach(sessionID string, now time.Time) *sessions.Session {
	sess := sessions.New(
		token.NewStore(s.tokenRepos(sessionID), token.WithLogger(log.Logger)),
		sessions.WithUserCacheTTL(s.config.GetUserCacheTTL()),
		sessions.WithNowTime(s.nowTime),
		sessions.WithLogger(log.Logger.With().Str("session_id", sessionID).Logger()),
	)
	if err := s.loginSessions.Upsert(sessionID, &loginsession.Entry{Session: sess, CreatedAt: now, LastSeen: now}); err != nil {
		log.Error().Err(err).Msg("failed to record browser session")
	}
	return sess
}

func (s *Server) touch(sessionID string, entry *loginsession.Entry, now time.Time) {
	_ = s.loginSessions.Upsert(sessionID, &loginsession.Entry{Session: entry.Session, CreatedAt: entry.CreatedAt, LastSeen: now})
}

// clientFor builds an API client for the browser session with a navigator
// positioned at location. The navigator records any redirect the client
// decides on so the handler can turn it into a response.
func (s *Server) clientFor(w http.ResponseWriter, r *http.Request, location string) (*apiclient.Client, *apiclient.PathNavigator, error) {
	return s.newClient(s.browserSession(w, r), location)
}

func (s *Server) newClient(sess *sessions.Session, location string) (*apiclient.Client, *apiclient.PathNavigator, error) {
	nav := apiclient.NewPathNavigator(location)
	client, err := apiclient.New(s.apiBaseURL, sess,
		apiclient.WithHTTPClient(s.httpClient),
		apiclient.WithNavigator(nav),
		apiclient.WithLogger(log.Logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return client, nav, nil
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, path+"?error="+url.QueryEscape(errorMsg))
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the request body is JSON rather than a form post.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/users"
	"github.com/rs/zerolog/log"
)

type loginView struct {
	Page    string `json:"page"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	Redirect string         `json:"redirect"`
	UserID   users.ID       `json:"user_id"`
	Role     users.RoleType `json:"role"`
}

// LoginPageHandler renders the login page, or sends an already signed in
// user to their dashboard.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, _, err := s.clientFor(w, r, RouteLogin)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		if client.Session().HasCredential() {
			if user, err := client.CurrentUser(r.Context()); err == nil {
				redirectSuccess(w, r, user.HomePath())
				return
			}
		}
		writeJSON(w, http.StatusOK, loginView{
			Page:    "login",
			Error:   r.URL.Query().Get("error"),
			Message: r.URL.Query().Get("message"),
		})
	}
}

func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form loginForm
		if wantsJSON(r) {
			if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
		} else {
			form.Email = r.FormValue("email")
			form.Password = r.FormValue("password")
		}

		// Sign in on a fresh browser session; the id only replaces the
		// browser's cookie once the API accepts the credentials.
		sessionID, sess := s.newBrowserSession()
		client, _, err := s.newClient(sess, RouteLogin)
		if err != nil {
			s.discardBrowserSession(sessionID)
			writeInternalError(w, err)
			return
		}

		resp, err := client.Login(r.Context(), form.Email, form.Password)
		if err != nil {
			s.discardBrowserSession(sessionID)
			status, msg := loginFailure(err)
			log.Info().Err(err).Str("email", form.Email).Msg("login failed")
			if wantsJSON(r) {
				writeJSON(w, status, map[string]string{"error": msg})
				return
			}
			redirectWithError(w, r, RouteLogin, msg)
			return
		}

		s.rotateBrowserSession(w, r, sessionID)

		home := (&users.Profile{Role: resp.Role}).HomePath()
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, loginResult{Redirect: home, UserID: resp.UserID, Role: resp.Role})
			return
		}
		redirectSuccess(w, r, home)
	}
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, apiclient.ErrInvalidRequest):
		return http.StatusBadRequest, "Email and password are required"
	case errors.Is(err, apiclient.ErrAuthentication):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, apiclient.ErrAuthorization):
		// Pending or rejected accounts
		if apiErr, ok := apiclient.AsAPIError(err); ok {
			return http.StatusForbidden, apiErr.Message
		}
		return http.StatusForbidden, "Your account is not active"
	case errors.Is(err, apiclient.ErrNetwork):
		return http.StatusBadGateway, "The portal is unavailable, please try again later"
	default:
		return http.StatusBadGateway, "Login failed"
	}
}

// RegisterHandler creates an affiliate account. The visitor stays logged out
// until an admin approves the account.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiclient.RegisterRequest
		if wantsJSON(r) {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
		} else {
			req = apiclient.RegisterRequest{
				Email:        r.FormValue("email"),
				Password:     r.FormValue("password"),
				FirstName:    r.FormValue("first_name"),
				LastName:     r.FormValue("last_name"),
				Username:     r.FormValue("username"),
				Phone:        r.FormValue("phone"),
				ReferralCode: strings.TrimSpace(r.FormValue("referral_code")),
			}
		}

		client, _, err := s.clientFor(w, r, RouteAuthRegister)
		if err != nil {
			writeInternalError(w, err)
			return
		}

		resp, err := client.Register(r.Context(), req)
		if err != nil {
			writeAPIError(w, err)
			return
		}
		if wantsJSON(r) {
			writeJSON(w, http.StatusCreated, resp)
			return
		}
		redirectSuccess(w, r, RouteLogin+"?message=Registration+received,+awaiting+approval")
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, nav, err := s.clientFor(w, r, r.URL.Path)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		if err := client.Logout(); err != nil {
			log.Error().Err(err).Msg("logout could not clear stored credential")
		}
		target, ok := nav.Redirected()
		if !ok {
			target = RouteLogin
		}
		redirectSuccess(w, r, target)
	}
}

package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-affiliate-portal/auth"
	"github.com/jrsteele09/go-affiliate-portal/internal/metrics"
	"github.com/jrsteele09/go-affiliate-portal/users"
	"github.com/pkg/errors"
)

var validator = auth.NewValidator()

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token       string         `json:"token"`
	UserID      users.ID       `json:"user_id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name,omitempty"`
	Role        users.RoleType `json:"role"`
	AffiliateID string         `json:"affiliate_id,omitempty"`
}

// RegisterRequest is the self-service signup payload.
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username,omitempty"`
	Phone        string `json:"phone,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"` // Affiliate id of the sponsor
}

// RegisterResponse is returned by a successful registration. The token is
// informational only; new accounts stay logged out until an admin approves them.
type RegisterResponse struct {
	UserID      users.ID         `json:"user_id"`
	AffiliateID string           `json:"affiliate_id"`
	Token       string           `json:"token,omitempty"`
	Status      users.StatusType `json:"status,omitempty"`
	Message     string           `json:"message,omitempty"`
}

// Login exchanges credentials for a bearer token and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.TrimSpace(email)
	if err := validator.ValidateUserCredentials(email, password); err != nil {
		return nil, fmt.Errorf("[Client.Login] %w", err)
	}

	resp, err := sendJSON[LoginResponse](ctx, c, http.MethodPost, PathLogin, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("[Client.Login] %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("[Client.Login] %w: response has no token", ErrDecode)
	}
	resp.Role = users.ParseRole(string(resp.Role))

	if err := c.session.ReplaceCredential(resp.Token); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] store credential")
	}
	c.logger.Info().Str("user_id", resp.UserID.String()).Str("role", string(resp.Role)).Msg("logged in")
	return resp, nil
}

// Register creates an affiliate account. It never touches the session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.ReferralCode = strings.TrimSpace(req.ReferralCode)
	err := validator.ValidateRegistration(auth.Registration{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return nil, fmt.Errorf("[Client.Register] %w", err)
	}

	resp, err := sendJSON[RegisterResponse](ctx, c, http.MethodPost, PathRegister, req)
	if err != nil {
		return nil, fmt.Errorf("[Client.Register] %w", err)
	}
	if resp.Status == "" {
		resp.Status = users.StatusPending
	}
	c.logger.Info().Str("user_id", resp.UserID.String()).Str("affiliate_id", resp.AffiliateID).Msg("registered, awaiting approval")
	return resp, nil
}

// Logout clears the session and navigates to the login page.
func (c *Client) Logout() error {
	err := c.session.Clear()
	metrics.SessionClearedTotal.WithLabelValues("logout").Inc()
	c.navigator.Redirect(LoginPath)
	if err != nil {
		return errors.Wrap(err, "[Client.Logout]")
	}
	return nil
}

// CurrentUser returns the authenticated user's profile, served from the
// session cache while it is fresh.
//
// Without a credential the cache is dropped and the request is still sent so
// the API's 401 drives the usual logout path.
func (c *Client) CurrentUser(ctx context.Context) (*users.Profile, error) {
	if !c.session.HasCredential() {
		c.session.InvalidateUser()
	} else if profile, ok := c.session.CachedUser(); ok {
		metrics.UserCacheTotal.WithLabelValues("hit").Inc()
		return profile, nil
	}
	metrics.UserCacheTotal.WithLabelValues("miss").Inc()

	generation := c.session.Generation()
	profile, err := getJSON[users.Profile](ctx, c, PathCurrentUser, nil)
	if err != nil {
		c.session.InvalidateUser()
		return nil, fmt.Errorf("[Client.CurrentUser] %w", err)
	}
	profile.Role = users.ParseRole(string(profile.Role))

	if !c.session.StoreUser(profile, c.session.Now(), generation) {
		metrics.UserCacheTotal.WithLabelValues("discarded").Inc()
		if !c.session.HasCredential() {
			return nil, fmt.Errorf("[Client.CurrentUser] %w", ErrAuthentication)
		}
		return nil, fmt.Errorf("[Client.CurrentUser] %w", ErrSessionChanged)
	}
	return profile, nil
}

// UpdateProfile saves editable profile fields and drops the cached user.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*users.Profile, error) {
	profile, err := sendJSON[users.Profile](ctx, c, http.MethodPut, PathCurrentUser, update)
	c.session.InvalidateUser()
	if err != nil {
		return nil, fmt.Errorf("[Client.UpdateProfile] %w", err)
	}
	profile.Role = users.ParseRole(string(profile.Role))
	return profile, nil
}

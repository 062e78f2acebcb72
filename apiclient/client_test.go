package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/sessions"
	"github.com/jrsteele09/go-affiliate-portal/token"
	tokenfakerepo "github.com/jrsteele09/go-affiliate-portal/token/repofake"
	"github.com/jrsteele09/go-affiliate-portal/users"
	"github.com/stretchr/testify/require"
)

const basePath = "/wp-json/affiliate-portal/v1"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeAPI is a scripted portal API. Handlers are keyed by "METHOD /path".
type fakeAPI struct {
	t        *testing.T
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	calls    map[string]int
	auth     []string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{t: t, handlers: map[string]http.HandlerFunc{}, calls: map[string]int{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) handle(route string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[route] = h
}

func (a *fakeAPI) Calls(route string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[route]
}

func (a *fakeAPI) LastAuth() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.auth) == 0 {
		return ""
	}
	return a.auth[len(a.auth)-1]
}

func (a *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + strings.TrimPrefix(r.URL.Path, basePath)
	a.mu.Lock()
	a.calls[route]++
	a.auth = append(a.auth, r.Header.Get("Authorization"))
	h, ok := a.handlers[route]
	a.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func writeJSON(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

func meHandler(role string) http.HandlerFunc {
	return writeJSON(http.StatusOK, map[string]any{
		"id": 7, "email": "jane@example.com", "role": role, "affiliate_id": "AFF-7", "status": "approved",
	})
}

type fixture struct {
	api    *fakeAPI
	client *apiclient.Client
	sess   *sessions.Session
	repo   *tokenfakerepo.FakeTokenRepo
	nav    *apiclient.PathNavigator
	clock  *fakeClock
}

func setup(t *testing.T, location string) *fixture {
	t.Helper()
	api, srv := newFakeAPI(t)
	repo := tokenfakerepo.NewFakeTokenRepo()
	clock := &fakeClock{now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
	sess := sessions.New(token.NewStore(repo), sessions.WithNowTime(clock.Now))
	nav := apiclient.NewPathNavigator(location)
	client, err := apiclient.New(apiclient.JoinBaseURL(srv.URL, basePath), sess, apiclient.WithNavigator(nav), apiclient.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return &fixture{api: api, client: client, sess: sess, repo: repo, nav: nav, clock: clock}
}

func TestNew_Validation(t *testing.T) {
	sess := sessions.New(nil)

	_, err := apiclient.New("https://portal.example.com/wp-json/affiliate-portal/v1", nil)
	require.Error(t, err)

	_, err = apiclient.New("ftp://portal.example.com", sess)
	require.Error(t, err)

	c, err := apiclient.New("https://portal.example.com/api/", sess)
	require.NoError(t, err)
	require.Same(t, sess, c.Session())
}

func TestJoinBaseURL(t *testing.T) {
	require.Equal(t, "https://a.example/wp-json/x/v1", apiclient.JoinBaseURL("https://a.example/", "/wp-json/x/v1/"))
}

func TestRequest_BearerOnlyWithCredential(t *testing.T) {
	f := setup(t, "/dashboard")
	f.api.handle("GET /dashboard/stats", writeJSON(http.StatusOK, map[string]any{"total_earnings": 12.5}))

	_, err := f.client.DashboardStats(context.Background())
	require.NoError(t, err)
	require.Empty(t, f.api.LastAuth())

	require.NoError(t, f.sess.ReplaceCredential("abc"))
	stats, err := f.client.DashboardStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer abc", f.api.LastAuth())
	require.InDelta(t, 12.5, stats.TotalEarnings, 0.001)
}

func TestRequest_UnauthorizedClearsSessionAndRedirects(t *testing.T) {
	f := setup(t, "/dashboard/commissions")
	require.NoError(t, f.sess.ReplaceCredential("expired"))
	f.api.handle("GET /commissions", writeJSON(http.StatusUnauthorized, map[string]any{"code": "jwt_auth_invalid_token", "message": "Expired token"}))

	_, err := f.client.Commissions(context.Background(), apiclient.ListOptions{})
	require.ErrorIs(t, err, apiclient.ErrAuthentication)
	require.NotErrorIs(t, err, apiclient.ErrAPI)

	apiErr, ok := apiclient.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Authentication required", apiErr.Message)

	require.False(t, f.sess.HasCredential())
	_, err = f.repo.Get(token.DefaultKey)
	require.ErrorIs(t, err, token.ErrNotFound)
	require.Equal(t, []string{apiclient.LoginPath}, f.nav.History())
}

func TestRequest_UnauthorizedOnLoginPageDoesNotRedirect(t *testing.T) {
	f := setup(t, apiclient.LoginPath)
	f.api.handle("POST /auth/login", writeJSON(http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"}))

	_, err := f.client.Login(context.Background(), "jane@example.com", "wrong")
	require.ErrorIs(t, err, apiclient.ErrAuthentication)
	_, redirected := f.nav.Redirected()
	require.False(t, redirected)
}

func TestRequest_ForbiddenKeepsSession(t *testing.T) {
	f := setup(t, "/dashboard/admin")
	require.NoError(t, f.sess.ReplaceCredential("abc"))
	f.api.handle("GET /users/me", meHandler("affiliate"))
	f.api.handle("GET /admin/stats", writeJSON(http.StatusForbidden, map[string]any{}))

	_, err := f.client.CurrentUser(context.Background())
	require.NoError(t, err)

	_, err = f.client.AdminStats(context.Background())
	require.ErrorIs(t, err, apiclient.ErrAuthorization)
	apiErr, ok := apiclient.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, "You do not have permission to perform this action", apiErr.Message)

	require.True(t, f.sess.HasCredential())
	_, cached := f.sess.CachedUser()
	require.True(t, cached)
	require.Empty(t, f.nav.History())
}

func TestRequest_GenericErrorCarriesBody(t *testing.T) {
	f := setup(t, "/dashboard")
	require.NoError(t, f.sess.ReplaceCredential("abc"))
	f.api.handle("GET /transactions", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("database unavailable"))
	})
	f.api.handle("POST /payments/payouts", writeJSON(http.StatusUnprocessableEntity, map[string]any{
		"code": "insufficient_balance", "message": "Balance too low", "data": map[string]int{"status": 422},
	}))

	_, err := f.client.Transactions(context.Background(), apiclient.ListOptions{})
	require.ErrorIs(t, err, apiclient.ErrAPI)
	apiErr, _ := apiclient.AsAPIError(err)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Equal(t, "database unavailable", apiErr.Message)

	_, err = f.client.RequestPayout(context.Background(), apiclient.PayoutRequest{Amount: 50, MethodID: "3"})
	require.ErrorIs(t, err, apiclient.ErrAPI)
	apiErr, _ = apiclient.AsAPIError(err)
	require.Equal(t, "insufficient_balance", apiErr.Code)
	require.Equal(t, "Balance too low", apiErr.Message)

	require.True(t, f.sess.HasCredential())
}

func TestRequest_NetworkError(t *testing.T) {
	sess := sessions.New(nil)
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := apiclient.New(base, sess)
	require.NoError(t, err)

	_, err = client.Guides(context.Background())
	require.ErrorIs(t, err, apiclient.ErrNetwork)
	_, ok := apiclient.AsAPIError(err)
	require.False(t, ok)
}

func TestRequest_DecodeError(t *testing.T) {
	f := setup(t, "/dashboard")
	f.api.handle("GET /marketing/links", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := f.client.ReferralLink(context.Background())
	require.ErrorIs(t, err, apiclient.ErrDecode)
}

func TestLogin_StoresCredentialThenOneFetch(t *testing.T) {
	f := setup(t, apiclient.LoginPath)
	f.api.handle("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "jane@example.com", body["email"])
		require.Equal(t, "secret", body["password"])
		writeJSON(http.StatusOK, map[string]any{"token": "tok-1", "user_id": 7, "email": "jane@example.com", "role": "affiliate"})(w, r)
	})
	f.api.handle("GET /users/me", meHandler("affiliate"))

	resp, err := f.client.Login(context.Background(), " jane@example.com ", "secret")
	require.NoError(t, err)
	require.Equal(t, users.ID("7"), resp.UserID)
	require.Equal(t, users.RoleAffiliate, resp.Role)

	stored, err := f.repo.Get(token.DefaultKey)
	require.NoError(t, err)
	require.Equal(t, "tok-1", stored)

	for i := 0; i < 3; i++ {
		profile, err := f.client.CurrentUser(context.Background())
		require.NoError(t, err)
		require.Equal(t, users.ID("7"), profile.ID)
	}
	require.Equal(t, 1, f.api.Calls("GET /users/me"))
	require.Equal(t, "Bearer tok-1", f.api.LastAuth())
}

func TestLogin_ReplacesPreviousUser(t *testing.T) {
	f := setup(t, apiclient.LoginPath)
	f.api.handle("GET /users/me", meHandler("admin"))
	require.NoError(t, f.sess.ReplaceCredential("admin-token"))
	admin, err := f.client.CurrentUser(context.Background())
	require.NoError(t, err)
	require.True(t, admin.IsAdmin())

	f.api.handle("POST /auth/login", writeJSON(http.StatusOK, map[string]any{"token": "tok-2", "user_id": 8, "role": "affiliate"}))
	f.api.handle("GET /users/me", meHandler("affiliate"))

	_, err = f.client.Login(context.Background(), "joe@example.com", "pw")
	require.NoError(t, err)

	profile, err := f.client.CurrentUser(context.Background())
	require.NoError(t, err)
	require.False(t, profile.IsAdmin())
	require.Equal(t, 2, f.api.Calls("GET /users/me"))
}

func TestLogin_Validation(t *testing.T) {
	f := setup(t, apiclient.LoginPath)

	_, err := f.client.Login(context.Background(), "", "pw")
	require.ErrorIs(t, err, apiclient.ErrInvalidRequest)

	f.api.handle("POST /auth/login", writeJSON(http.StatusOK, map[string]any{"user_id": 1}))
	_, err = f.client.Login(context.Background(), "a@b.c", "pw")
	require.ErrorIs(t, err, apiclient.ErrDecode)
	require.False(t, f.sess.HasCredential())
}

func TestRegister_DoesNotStoreToken(t *testing.T) {
	f := setup(t, "/register")
	f.api.handle("POST /auth/register", writeJSON(http.StatusCreated, map[string]any{
		"user_id": 12, "affiliate_id": "AFF-12", "token": "should-not-be-stored",
	}))

	resp, err := f.client.Register(context.Background(), apiclient.RegisterRequest{
		Email: "new@example.com", Password: "pw", FirstName: "New", LastName: "Person", ReferralCode: "AFF-7",
	})
	require.NoError(t, err)
	require.Equal(t, "AFF-12", resp.AffiliateID)
	require.Equal(t, users.StatusPending, resp.Status)
	require.False(t, f.sess.HasCredential())
	require.Zero(t, f.repo.Writes())
}

func TestLogout_ClearsAndRedirects(t *testing.T) {
	f := setup(t, "/dashboard")
	require.NoError(t, f.sess.ReplaceCredential("abc"))
	f.api.handle("GET /users/me", meHandler("affiliate"))
	_, err := f.client.CurrentUser(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.client.Logout())
	require.False(t, f.sess.HasCredential())
	_, cached := f.sess.CachedUser()
	require.False(t, cached)
	target, ok := f.nav.Redirected()
	require.True(t, ok)
	require.Equal(t, apiclient.LoginPath, target)

	require.NoError(t, f.client.Logout(), "logout is idempotent")
}

func TestCurrentUser_RefetchAfterTTL(t *testing.T) {
	f := setup(t, "/dashboard")
	require.NoError(t, f.sess.ReplaceCredential("abc"))
	f.api.handle("GET /users/me", meHandler("affiliate"))

	_, err := f.client.CurrentUser(context.Background())
	require.NoError(t, err)

	f.clock.Advance(sessions.DefaultUserCacheTTL - time.Second)
	_, err = f.client.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, f.api.Calls("GET /users/me"))

	f.clock.Advance(time.Second)
	_, err = f.client.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, f.api.Calls("GET /users/me"))
}

func TestCurrentUser_WithoutCredentialAsksAPI(t *testing.T) {
	f := setup(t, "/dashboard")
	f.api.handle("GET /users/me", writeJSON(http.StatusUnauthorized, map[string]any{"code": "rest_not_logged_in"}))

	_, err := f.client.CurrentUser(context.Background())
	require.ErrorIs(t, err, apiclient.ErrAuthentication)
	require.Equal(t, []string{apiclient.LoginPath}, f.nav.History())
}

func TestCurrentUser_FetchResolvingAfterLogoutIsDiscarded(t *testing.T) {
	f := setup(t, "/dashboard")
	require.NoError(t, f.sess.ReplaceCredential("abc"))

	arrived := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.api.handle("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(arrived) })
		<-release
		meHandler("admin")(w, r)
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := f.client.CurrentUser(context.Background())
		errCh <- err
	}()

	<-arrived
	require.NoError(t, f.client.Logout())
	close(release)

	err := <-errCh
	require.ErrorIs(t, err, apiclient.ErrAuthentication)
	_, cached := f.sess.CachedUser()
	require.False(t, cached)
}

func TestCurrentUser_FetchResolvingAfterReloginIsDiscarded(t *testing.T) {
	f := setup(t, "/dashboard")
	require.NoError(t, f.sess.ReplaceCredential("admin-token"))

	arrived := make(chan struct{})
	release := make(chan struct{})
	var first atomic.Bool
	f.api.handle("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		if first.CompareAndSwap(false, true) {
			close(arrived)
			<-release
			meHandler("admin")(w, r)
			return
		}
		meHandler("affiliate")(w, r)
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := f.client.CurrentUser(context.Background())
		errCh <- err
	}()

	<-arrived
	require.NoError(t, f.sess.ReplaceCredential("affiliate-token"))
	close(release)

	require.ErrorIs(t, <-errCh, apiclient.ErrSessionChanged)

	profile, err := f.client.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, users.RoleAffiliate, profile.Role)
}

func TestRequest_UnauthorizedForReplacedCredentialKeepsNewSession(t *testing.T) {
	f := setup(t, "/dashboard/commissions")
	require.NoError(t, f.sess.ReplaceCredential("old-token"))

	arrived := make(chan struct{})
	release := make(chan struct{})
	f.api.handle("GET /commissions", func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		writeJSON(http.StatusUnauthorized, map[string]any{"code": "jwt_auth_invalid_token"})(w, r)
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := f.client.Commissions(context.Background(), apiclient.ListOptions{})
		errCh <- err
	}()

	<-arrived
	require.NoError(t, f.sess.ReplaceCredential("new-token"))
	close(release)

	err := <-errCh
	require.ErrorIs(t, err, apiclient.ErrSessionChanged)
	require.ErrorIs(t, err, apiclient.ErrAuthentication)

	cred, ok := f.sess.Credential()
	require.True(t, ok)
	require.Equal(t, "new-token", cred)
	_, redirected := f.nav.Redirected()
	require.False(t, redirected)
}

func TestUpdateProfile_InvalidatesCache(t *testing.T) {
	f := setup(t, "/dashboard/profile")
	require.NoError(t, f.sess.ReplaceCredential("abc"))
	f.api.handle("GET /users/me", meHandler("affiliate"))
	f.api.handle("PUT /users/me", func(w http.ResponseWriter, r *http.Request) {
		var upd apiclient.ProfileUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&upd))
		require.Equal(t, "Janie", upd.DisplayName)
		writeJSON(http.StatusOK, map[string]any{"id": "7", "display_name": "Janie", "role": "affiliate"})(w, r)
	})

	_, err := f.client.CurrentUser(context.Background())
	require.NoError(t, err)

	profile, err := f.client.UpdateProfile(context.Background(), apiclient.ProfileUpdate{DisplayName: "Janie"})
	require.NoError(t, err)
	require.Equal(t, "Janie", profile.DisplayName)

	_, cached := f.sess.CachedUser()
	require.False(t, cached)
}

package server

import (
	"net/http"

	"github.com/jrsteele09/go-affiliate-portal/guard"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Affiliate pages (super admins are sent to the admin dashboard)
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.PageHandler(guard.RequireNonSuperAdmin, affiliatePages, "overview"), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteDashboardSection, ChainMiddleware(s.PageHandler(guard.RequireNonSuperAdmin, affiliatePages, ""), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteProfile, ChainMiddleware(s.ProfileUpdateHandler(), s.HTMLMiddleWare()...))

	// Admin pages
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.PageHandler(guard.RequireAdmin, adminPages, "overview"), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAdminSection, ChainMiddleware(s.PageHandler(guard.RequireAdmin, adminPages, ""), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAdminUserDecision, ChainMiddleware(s.AdminUserDecisionHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
}

func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectSuccess(w, r, RouteDashboard)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "app": s.config.GetAppName()})
	}
}

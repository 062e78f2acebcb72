package server

import "github.com/jrsteele09/go-affiliate-portal/apiclient"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteLogin        = apiclient.LoginPath
	RouteAuthLogin    = "/auth/login"
	RouteAuthRegister = "/auth/register"
	RouteAuthLogout   = "/auth/logout"

	// Affiliate Routes
	RouteDashboard        = apiclient.DashboardPath
	RouteDashboardSection = "/dashboard/{section}"
	RouteProfile          = "/dashboard/profile"

	// Admin Routes
	RouteAdminDashboard    = apiclient.AdminDashboardPath
	RouteAdminSection      = "/dashboard/admin/{section}"
	RouteAdminUsers        = "/dashboard/admin/users"
	RouteAdminUserDecision = "/dashboard/admin/users/{id}/{action}"

	// Operational Routes
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"
)

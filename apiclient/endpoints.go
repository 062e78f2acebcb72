package apiclient

// API endpoint paths, relative to the base URL.
const (
	PathLogin       = "/auth/login"
	PathRegister    = "/auth/register"
	PathCurrentUser = "/users/me"

	PathDashboardStats    = "/dashboard/stats"
	PathReferrals         = "/referrals"
	PathNetwork           = "/referrals/network"
	PathTransactions      = "/transactions"
	PathCommissions       = "/commissions"
	PathCommissionSummary = "/commissions/summary"
	PathPayouts           = "/payments/payouts"
	PathPaymentMethods    = "/payments/methods"
	PathLeaderboard       = "/leaderboard"
	PathGuides            = "/guides"
	PathMarketing         = "/marketing/materials"
	PathReferralLink      = "/marketing/links"

	PathAdminStats           = "/admin/stats"
	PathAdminUsers           = "/admin/users"
	PathAdminCommissions     = "/admin/commissions"
	PathAdminCommissionRates = "/admin/commission-rates"
	PathAdminPayouts         = "/admin/payouts"
	PathAdminProcessPayouts  = "/admin/payouts/process"
)

package users

import "strings"

// RoleType is the portal role attached to an account.
type RoleType string

const (
	RoleAffiliate  RoleType = "affiliate"   // Regular affiliate, sees the affiliate dashboard
	RoleAdmin      RoleType = "admin"       // Manages affiliates, commissions and payouts
	RoleSuperAdmin RoleType = "super_admin" // Admin of all tenants, never sees the affiliate dashboard
)

// StatusType is the approval state of an account.
type StatusType string

const (
	StatusPending  StatusType = "pending"
	StatusApproved StatusType = "approved"
	StatusRejected StatusType = "rejected"
)

// Profile is the authenticated user as returned by the portal API.
type Profile struct {
	ID          ID         `json:"id"`                     // Unique identifier for the user
	Email       string     `json:"email"`                  // User's email address
	Username    string     `json:"username,omitempty"`     // Login name
	FirstName   string     `json:"first_name,omitempty"`   // First name of the user
	LastName    string     `json:"last_name,omitempty"`    // Last name of the user
	DisplayName string     `json:"display_name,omitempty"` // Name shown in the dashboard header
	Role        RoleType   `json:"role"`                   // Portal role
	AffiliateID string     `json:"affiliate_id,omitempty"` // Only set for affiliate accounts
	Status      StatusType `json:"status,omitempty"`       // Approval status
	TenantID    string     `json:"tenant_id,omitempty"`    // Tenant the account belongs to
}

// ParseRole normalises a role string. Unknown values fall back to affiliate,
// the least privileged role.
func ParseRole(s string) RoleType {
	switch RoleType(strings.ToLower(strings.TrimSpace(s))) {
	case RoleSuperAdmin:
		return RoleSuperAdmin
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleAffiliate
	}
}

// Rank orders roles: super_admin > admin > affiliate.
func (r RoleType) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return 2
	case RoleAdmin:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether r is at least as privileged as required.
func (r RoleType) Satisfies(required RoleType) bool {
	return r.Rank() >= required.Rank()
}

// IsAdmin returns true for admin and super_admin.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role.Satisfies(RoleAdmin)
}

// IsSuperAdmin returns true if the user has super admin privileges
func (p *Profile) IsSuperAdmin() bool {
	return p != nil && p.Role == RoleSuperAdmin
}

// HasAffiliate reports whether the account is linked to an affiliate record.
func (p *Profile) HasAffiliate() bool {
	return p != nil && p.AffiliateID != ""
}

// FullName joins first and last name, falling back to the display name and then the email.
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name != "" {
		return name
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Email
}

// HomePath is the dashboard a user lands on after login.
func (p *Profile) HomePath() string {
	if p.IsAdmin() {
		return "/dashboard/admin"
	}
	return "/dashboard"
}

package apiclient

import (
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-affiliate-portal/users"
)

// ListOptions are the common paging and filter parameters of list endpoints.
type ListOptions struct {
	Page    int
	PerPage int
	Status  string
	Search  string
	Period  string // e.g. "month", "year", "all"
}

// Values encodes the options as query parameters, omitting zero values.
func (o ListOptions) Values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(o.PerPage))
	}
	if o.Status != "" {
		v.Set("status", o.Status)
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	if o.Period != "" {
		v.Set("period", o.Period)
	}
	return v
}

// Page describes the paging of a list response.
type Page struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	PaymentEmail string `json:"payment_email,omitempty"`
}

type DashboardStats struct {
	TotalEarnings      float64 `json:"total_earnings"`
	PendingCommissions float64 `json:"pending_commissions"`
	PaidCommissions    float64 `json:"paid_commissions"`
	AvailableBalance   float64 `json:"available_balance"`
	TotalReferrals     int     `json:"total_referrals"`
	DirectReferrals    int     `json:"direct_referrals"`
	ClicksThisMonth    int     `json:"clicks_this_month"`
	ConversionRate     float64 `json:"conversion_rate"`
	Currency           string  `json:"currency,omitempty"`
}

// LevelBreakdown is one level of the multi-level commission structure.
type LevelBreakdown struct {
	Level      int     `json:"level"`
	Members    int     `json:"members"`
	Rate       float64 `json:"rate"`
	Commission float64 `json:"commission"`
}

// ReferralNode is an affiliate in a referral network. Level 1 are direct referrals.
type ReferralNode struct {
	UserID          users.ID         `json:"user_id"`
	AffiliateID     string           `json:"affiliate_id"`
	Name            string           `json:"name"`
	Email           string           `json:"email,omitempty"`
	Level           int              `json:"level"`
	Status          users.StatusType `json:"status,omitempty"`
	JoinedAt        string           `json:"joined_at,omitempty"`
	TotalCommission float64          `json:"total_commission"`
	Children        []ReferralNode   `json:"children,omitempty"`
}

// Size counts the node and all of its descendants.
func (n ReferralNode) Size() int {
	size := 1
	for _, child := range n.Children {
		size += child.Size()
	}
	return size
}

// Depth is the number of levels below and including the node.
func (n ReferralNode) Depth() int {
	deepest := 0
	for _, child := range n.Children {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

type ReferralList struct {
	Referrals []ReferralNode `json:"referrals"`
	Page
}

// Network is the referral tree below the current affiliate with per-level totals.
type Network struct {
	Root         ReferralNode     `json:"root"`
	Levels       []LevelBreakdown `json:"levels"`
	TotalMembers int              `json:"total_members"`
	MaxDepth     int              `json:"max_depth"`
}

type Transaction struct {
	ID          users.ID `json:"id"`
	Type        string   `json:"type"` // commission, payout, adjustment
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency,omitempty"`
	Status      string   `json:"status"`
	Description string   `json:"description,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Page
}

type Commission struct {
	ID          users.ID `json:"id"`
	AffiliateID string   `json:"affiliate_id"`
	ReferralID  string   `json:"referral_id,omitempty"`
	OrderID     string   `json:"order_id,omitempty"`
	Amount      float64  `json:"amount"`
	Rate        float64  `json:"rate"`
	Level       int      `json:"level"`
	Status      string   `json:"status"` // pending, approved, paid, rejected
	CreatedAt   string   `json:"created_at"`
}

type CommissionList struct {
	Commissions []Commission `json:"commissions"`
	Page
}

type CommissionSummary struct {
	Total    float64          `json:"total"`
	Pending  float64          `json:"pending"`
	Approved float64          `json:"approved"`
	Paid     float64          `json:"paid"`
	ByLevel  []LevelBreakdown `json:"by_level"`
	Currency string           `json:"currency,omitempty"`
}

type Payout struct {
	ID          users.ID `json:"id"`
	AffiliateID string   `json:"affiliate_id,omitempty"`
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency,omitempty"`
	Status      string   `json:"status"` // requested, processing, paid, failed
	MethodID    users.ID `json:"method_id,omitempty"`
	Reference   string   `json:"reference,omitempty"`
	RequestedAt string   `json:"requested_at"`
	ProcessedAt string   `json:"processed_at,omitempty"`
}

type PayoutList struct {
	Payouts []Payout `json:"payouts"`
	Page
}

type PayoutRequest struct {
	Amount   float64  `json:"amount"`
	MethodID users.ID `json:"method_id"`
}

type PaymentMethod struct {
	ID        users.ID          `json:"id"`
	Type      string            `json:"type"` // paypal, bank_transfer, crypto
	Label     string            `json:"label"`
	Details   map[string]string `json:"details,omitempty"`
	IsDefault bool              `json:"is_default"`
}

type PaymentMethodInput struct {
	Type      string            `json:"type"`
	Label     string            `json:"label"`
	Details   map[string]string `json:"details"`
	IsDefault bool              `json:"is_default"`
}

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	AffiliateID string  `json:"affiliate_id"`
	Name        string  `json:"name"`
	Earnings    float64 `json:"earnings"`
	Referrals   int     `json:"referrals"`
}

type Leaderboard struct {
	Period  string             `json:"period"`
	Entries []LeaderboardEntry `json:"entries"`
}

type Guide struct {
	ID       users.ID `json:"id"`
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Category string   `json:"category,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	URL      string   `json:"url"`
}

type MarketingMaterial struct {
	ID         users.ID `json:"id"`
	Title      string   `json:"title"`
	Type       string   `json:"type"` // banner, email, social
	URL        string   `json:"url"`
	Dimensions string   `json:"dimensions,omitempty"`
	Content    string   `json:"content,omitempty"`
}

type ReferralLink struct {
	AffiliateID string `json:"affiliate_id"`
	Code        string `json:"code"`
	URL         string `json:"url"`
}

type AdminStats struct {
	TotalAffiliates    int     `json:"total_affiliates"`
	PendingApprovals   int     `json:"pending_approvals"`
	TotalCommissions   float64 `json:"total_commissions"`
	PendingCommissions float64 `json:"pending_commissions"`
	PendingPayouts     float64 `json:"pending_payouts"`
	PaidThisMonth      float64 `json:"paid_this_month"`
	Currency           string  `json:"currency,omitempty"`
}

// AdminUser is an account as seen in the approval queue.
type AdminUser struct {
	users.Profile
	SponsorID    string `json:"sponsor_id,omitempty"`
	RegisteredAt string `json:"registered_at"`
}

type AdminUserList struct {
	Users []AdminUser `json:"users"`
	Page
}

// ApprovalDecision carries an optional note for approve/reject.
type ApprovalDecision struct {
	Reason string `json:"reason,omitempty"`
}

type ApprovalResult struct {
	UserID  users.ID         `json:"user_id"`
	Status  users.StatusType `json:"status"`
	Message string           `json:"message,omitempty"`
}

type LevelRate struct {
	Level int     `json:"level"`
	Rate  float64 `json:"rate"`
}

type CommissionRates struct {
	Levels []LevelRate `json:"levels"`
}

type ProcessPayoutsRequest struct {
	PayoutIDs []users.ID `json:"payout_ids"`
}

type ProcessPayoutsResult struct {
	BatchID   string     `json:"batch_id"`
	Processed int        `json:"processed"`
	Failed    []users.ID `json:"failed,omitempty"`
	Total     float64    `json:"total"`
}

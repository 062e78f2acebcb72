package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-affiliate-portal/users"
)

func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	return getJSON[DashboardStats](ctx, c, PathDashboardStats, nil)
}

// Referrals lists direct referrals of the current affiliate.
func (c *Client) Referrals(ctx context.Context, opts ListOptions) (*ReferralList, error) {
	return getJSON[ReferralList](ctx, c, PathReferrals, opts.Values())
}

// Network returns the referral tree down to maxDepth levels (0 lets the API decide).
func (c *Client) Network(ctx context.Context, maxDepth int) (*Network, error) {
	q := url.Values{}
	if maxDepth > 0 {
		q.Set("depth", fmt.Sprint(maxDepth))
	}
	return getJSON[Network](ctx, c, PathNetwork, q)
}

func (c *Client) Transactions(ctx context.Context, opts ListOptions) (*TransactionList, error) {
	return getJSON[TransactionList](ctx, c, PathTransactions, opts.Values())
}

func (c *Client) Commissions(ctx context.Context, opts ListOptions) (*CommissionList, error) {
	return getJSON[CommissionList](ctx, c, PathCommissions, opts.Values())
}

func (c *Client) CommissionSummary(ctx context.Context) (*CommissionSummary, error) {
	return getJSON[CommissionSummary](ctx, c, PathCommissionSummary, nil)
}

func (c *Client) Payouts(ctx context.Context, opts ListOptions) (*PayoutList, error) {
	return getJSON[PayoutList](ctx, c, PathPayouts, opts.Values())
}

func (c *Client) RequestPayout(ctx context.Context, req PayoutRequest) (*Payout, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("[Client.RequestPayout] %w: amount must be positive", ErrInvalidRequest)
	}
	return sendJSON[Payout](ctx, c, http.MethodPost, PathPayouts, req)
}

func (c *Client) PaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	methods, err := getJSON[[]PaymentMethod](ctx, c, PathPaymentMethods, nil)
	if err != nil {
		return nil, err
	}
	return *methods, nil
}

func (c *Client) AddPaymentMethod(ctx context.Context, in PaymentMethodInput) (*PaymentMethod, error) {
	if in.Type == "" {
		return nil, fmt.Errorf("[Client.AddPaymentMethod] %w: type is required", ErrInvalidRequest)
	}
	return sendJSON[PaymentMethod](ctx, c, http.MethodPost, PathPaymentMethods, in)
}

func (c *Client) DeletePaymentMethod(ctx context.Context, id users.ID) error {
	if id == "" {
		return fmt.Errorf("[Client.DeletePaymentMethod] %w: id is required", ErrInvalidRequest)
	}
	return c.Request(ctx, http.MethodDelete, PathPaymentMethods+"/"+url.PathEscape(id.String()), nil, nil)
}

func (c *Client) Leaderboard(ctx context.Context, period string) (*Leaderboard, error) {
	return getJSON[Leaderboard](ctx, c, PathLeaderboard, ListOptions{Period: period}.Values())
}

func (c *Client) Guides(ctx context.Context) ([]Guide, error) {
	guides, err := getJSON[[]Guide](ctx, c, PathGuides, nil)
	if err != nil {
		return nil, err
	}
	return *guides, nil
}

func (c *Client) MarketingMaterials(ctx context.Context, kind string) ([]MarketingMaterial, error) {
	q := url.Values{}
	if kind != "" {
		q.Set("type", kind)
	}
	materials, err := getJSON[[]MarketingMaterial](ctx, c, PathMarketing, q)
	if err != nil {
		return nil, err
	}
	return *materials, nil
}

func (c *Client) ReferralLink(ctx context.Context) (*ReferralLink, error) {
	return getJSON[ReferralLink](ctx, c, PathReferralLink, nil)
}

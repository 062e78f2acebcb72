package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-affiliate-portal/users"
)

func (c *Client) AdminStats(ctx context.Context) (*AdminStats, error) {
	return getJSON[AdminStats](ctx, c, PathAdminStats, nil)
}

// AdminUsers lists accounts; filter the approval queue with Status "pending".
func (c *Client) AdminUsers(ctx context.Context, opts ListOptions) (*AdminUserList, error) {
	list, err := getJSON[AdminUserList](ctx, c, PathAdminUsers, opts.Values())
	if err != nil {
		return nil, err
	}
	for i := range list.Users {
		list.Users[i].Role = users.ParseRole(string(list.Users[i].Role))
	}
	return list, nil
}

func (c *Client) AdminApproveUser(ctx context.Context, id users.ID, decision ApprovalDecision) (*ApprovalResult, error) {
	return c.decideUser(ctx, id, "approve", decision)
}

func (c *Client) AdminRejectUser(ctx context.Context, id users.ID, decision ApprovalDecision) (*ApprovalResult, error) {
	return c.decideUser(ctx, id, "reject", decision)
}

func (c *Client) decideUser(ctx context.Context, id users.ID, action string, decision ApprovalDecision) (*ApprovalResult, error) {
	if id == "" {
		return nil, fmt.Errorf("[Client.decideUser] %w: user id is required", ErrInvalidRequest)
	}
	path := fmt.Sprintf("%s/%s/%s", PathAdminUsers, url.PathEscape(id.String()), action)
	return sendJSON[ApprovalResult](ctx, c, http.MethodPost, path, decision)
}

func (c *Client) AdminCommissions(ctx context.Context, opts ListOptions) (*CommissionList, error) {
	return getJSON[CommissionList](ctx, c, PathAdminCommissions, opts.Values())
}

func (c *Client) AdminUpdateCommissionRates(ctx context.Context, rates CommissionRates) (*CommissionRates, error) {
	for _, l := range rates.Levels {
		if l.Level < 1 || l.Rate < 0 || l.Rate > 100 {
			return nil, fmt.Errorf("[Client.AdminUpdateCommissionRates] %w: level %d rate %v", ErrInvalidRequest, l.Level, l.Rate)
		}
	}
	return sendJSON[CommissionRates](ctx, c, http.MethodPut, PathAdminCommissionRates, rates)
}

func (c *Client) AdminPayouts(ctx context.Context, opts ListOptions) (*PayoutList, error) {
	return getJSON[PayoutList](ctx, c, PathAdminPayouts, opts.Values())
}

func (c *Client) AdminProcessPayouts(ctx context.Context, ids []users.ID) (*ProcessPayoutsResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("[Client.AdminProcessPayouts] %w: no payouts selected", ErrInvalidRequest)
	}
	return sendJSON[ProcessPayoutsResult](ctx, c, http.MethodPost, PathAdminProcessPayouts, ProcessPayoutsRequest{PayoutIDs: ids})
}

package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/users"
	"github.com/stretchr/testify/require"
)

func TestListOptions_Values(t *testing.T) {
	require.Empty(t, apiclient.ListOptions{}.Values())

	v := apiclient.ListOptions{Page: 2, PerPage: 20, Status: "pending", Search: "jane"}.Values()
	require.Equal(t, "2", v.Get("page"))
	require.Equal(t, "20", v.Get("per_page"))
	require.Equal(t, "pending", v.Get("status"))
	require.Equal(t, "jane", v.Get("search"))
}

func TestReferralNode_SizeAndDepth(t *testing.T) {
	root := apiclient.ReferralNode{Children: []apiclient.ReferralNode{
		{Children: []apiclient.ReferralNode{{}, {Children: []apiclient.ReferralNode{{}}}}},
		{},
	}}
	require.Equal(t, 6, root.Size())
	require.Equal(t, 4, root.Depth())
}

func TestNetwork_PassesDepth(t *testing.T) {
	f := setup(t, "/dashboard/network")
	require.NoError(t, f.sess.ReplaceCredential("abc"))
	f.api.handle("GET /referrals/network", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "3", r.URL.Query().Get("depth"))
		writeJSON(http.StatusOK, map[string]any{
			"root":          map[string]any{"user_id": 7, "children": []any{map[string]any{"user_id": 8, "level": 1}}},
			"total_members": 1,
			"levels":        []any{map[string]any{"level": 1, "members": 1, "rate": 10}},
		})(w, r)
	})

	network, err := f.client.Network(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, users.ID("8"), network.Root.Children[0].UserID)
	require.Len(t, network.Levels, 1)
}

func TestCommissions_ListAndPaging(t *testing.T) {
	f := setup(t, "/dashboard/commissions")
	require.NoError(t, f.sess.ReplaceCredential("abc"))
	f.api.handle("GET /commissions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "approved", r.URL.Query().Get("status"))
		writeJSON(http.StatusOK, map[string]any{
			"commissions": []any{map[string]any{"id": 1, "amount": 9.5, "level": 2, "status": "approved"}},
			"total":       1, "page": 1, "per_page": 10, "total_pages": 1,
		})(w, r)
	})

	list, err := f.client.Commissions(context.Background(), apiclient.ListOptions{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, list.Commissions, 1)
	require.Equal(t, 2, list.Commissions[0].Level)
	require.Equal(t, 1, list.Total)
}

func TestPaymentMethods(t *testing.T) {
	f := setup(t, "/dashboard/payments")
	require.NoError(t, f.sess.ReplaceCredential("abc"))
	f.api.handle("GET /payments/methods", writeJSON(http.StatusOK, []any{map[string]any{"id": 3, "type": "paypal", "label": "Main", "is_default": true}}))
	f.api.handle("DELETE /payments/methods/3", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	methods, err := f.client.PaymentMethods(context.Background())
	require.NoError(t, err)
	require.Len(t, methods, 1)
	require.True(t, methods[0].IsDefault)

	require.NoError(t, f.client.DeletePaymentMethod(context.Background(), methods[0].ID))
	require.Equal(t, 1, f.api.Calls("DELETE /payments/methods/3"))

	_, err = f.client.AddPaymentMethod(context.Background(), apiclient.PaymentMethodInput{})
	require.ErrorIs(t, err, apiclient.ErrInvalidRequest)
	_, err = f.client.RequestPayout(context.Background(), apiclient.PayoutRequest{Amount: 0})
	require.ErrorIs(t, err, apiclient.ErrInvalidRequest)
}

func TestAdminUsers_ApproveReject(t *testing.T) {
	f := setup(t, "/dashboard/admin/users")
	require.NoError(t, f.sess.ReplaceCredential("admin-token"))
	f.api.handle("GET /admin/users", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "pending", r.URL.Query().Get("status"))
		writeJSON(http.StatusOK, map[string]any{
			"users": []any{map[string]any{"id": 12, "email": "new@example.com", "role": "Affiliate", "status": "pending"}},
			"total": 1,
		})(w, r)
	})
	f.api.handle("POST /admin/users/12/approve", writeJSON(http.StatusOK, map[string]any{"user_id": 12, "status": "approved"}))
	f.api.handle("POST /admin/users/12/reject", func(w http.ResponseWriter, r *http.Request) {
		var d apiclient.ApprovalDecision
		require.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		require.Equal(t, "duplicate", d.Reason)
		writeJSON(http.StatusOK, map[string]any{"user_id": 12, "status": "rejected"})(w, r)
	})

	list, err := f.client.AdminUsers(context.Background(), apiclient.ListOptions{Status: string(users.StatusPending)})
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	require.Equal(t, users.RoleAffiliate, list.Users[0].Role)

	res, err := f.client.AdminApproveUser(context.Background(), list.Users[0].ID, apiclient.ApprovalDecision{})
	require.NoError(t, err)
	require.Equal(t, users.StatusApproved, res.Status)

	res, err = f.client.AdminRejectUser(context.Background(), "12", apiclient.ApprovalDecision{Reason: "duplicate"})
	require.NoError(t, err)
	require.Equal(t, users.StatusRejected, res.Status)

	_, err = f.client.AdminApproveUser(context.Background(), "", apiclient.ApprovalDecision{})
	require.ErrorIs(t, err, apiclient.ErrInvalidRequest)
}

func TestAdminCommissionRates_Validation(t *testing.T) {
	f := setup(t, "/dashboard/admin/commissions")
	require.NoError(t, f.sess.ReplaceCredential("admin-token"))
	f.api.handle("PUT /admin/commission-rates", writeJSON(http.StatusOK, map[string]any{"levels": []any{map[string]any{"level": 1, "rate": 10}}}))

	_, err := f.client.AdminUpdateCommissionRates(context.Background(), apiclient.CommissionRates{Levels: []apiclient.LevelRate{{Level: 0, Rate: 5}}})
	require.ErrorIs(t, err, apiclient.ErrInvalidRequest)

	rates, err := f.client.AdminUpdateCommissionRates(context.Background(), apiclient.CommissionRates{Levels: []apiclient.LevelRate{{Level: 1, Rate: 10}}})
	require.NoError(t, err)
	require.Len(t, rates.Levels, 1)
}

func TestAdminProcessPayouts(t *testing.T) {
	f := setup(t, "/dashboard/admin/payouts")
	require.NoError(t, f.sess.ReplaceCredential("admin-token"))
	f.api.handle("POST /admin/payouts/process", func(w http.ResponseWriter, r *http.Request) {
		var req apiclient.ProcessPayoutsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []users.ID{"1", "2"}, req.PayoutIDs)
		writeJSON(http.StatusOK, map[string]any{"batch_id": "B-1", "processed": 2, "total": 150})(w, r)
	})

	_, err := f.client.AdminProcessPayouts(context.Background(), nil)
	require.ErrorIs(t, err, apiclient.ErrInvalidRequest)

	res, err := f.client.AdminProcessPayouts(context.Background(), []users.ID{"1", "2"})
	require.NoError(t, err)
	require.Equal(t, 2, res.Processed)
}

func TestPathNavigator(t *testing.T) {
	nav := apiclient.NewPathNavigator("/dashboard")
	_, ok := nav.Redirected()
	require.False(t, ok)

	nav.Redirect("/login")
	nav.Redirect("/dashboard/admin")
	require.Equal(t, "/dashboard/admin", nav.Location())
	last, ok := nav.Redirected()
	require.True(t, ok)
	require.Equal(t, "/dashboard/admin", last)
	require.Equal(t, []string{"/login", "/dashboard/admin"}, nav.History())
}

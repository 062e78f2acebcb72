package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/guard"
	"github.com/jrsteele09/go-affiliate-portal/users"
	"github.com/rs/zerolog/log"
)

type guardFunc func(context.Context, guard.UserSource) guard.Result

// pageLoader fetches the data a page shows.
type pageLoader func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error)

// PageView is the payload of every dashboard page.
type PageView struct {
	Page string         `json:"page"`
	User *users.Profile `json:"user"`
	Data any            `json:"data,omitempty"`
}

// PageHandler guards a page and renders its data. section fixes the page; an
// empty section is taken from the {section} path value.
func (s *Server) PageHandler(g guardFunc, pages map[string]pageLoader, section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := section
		if name == "" {
			name = r.PathValue("section")
		}
		load, ok := pages[name]
		if !ok {
			http.NotFound(w, r)
			return
		}

		client, nav, err := s.clientFor(w, r, r.URL.Path)
		if err != nil {
			writeInternalError(w, err)
			return
		}

		res := g(r.Context(), client)
		if !res.Allowed() {
			redirectSuccess(w, r, res.Redirect)
			return
		}

		data, err := load(r.Context(), client, r)
		if target, ok := nav.Redirected(); ok {
			redirectSuccess(w, r, target)
			return
		}
		if err != nil {
			writeAPIError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, PageView{Page: name, User: res.User, Data: data})
	}
}

var affiliatePages = map[string]pageLoader{
	"overview": func(ctx context.Context, c *apiclient.Client, _ *http.Request) (any, error) {
		return c.DashboardStats(ctx)
	},
	"commissions": func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error) {
		summary, err := c.CommissionSummary(ctx)
		if err != nil {
			return nil, err
		}
		list, err := c.Commissions(ctx, listOptions(r))
		if err != nil {
			return nil, err
		}
		return map[string]any{"summary": summary, "commissions": list}, nil
	},
	"payouts": func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error) {
		return c.Payouts(ctx, listOptions(r))
	},
	"referrals": func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error) {
		return c.Referrals(ctx, listOptions(r))
	},
	"network": func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error) {
		depth, _ := strconv.Atoi(r.URL.Query().Get("depth"))
		return c.Network(ctx, depth)
	},
	"transactions": func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error) {
		return c.Transactions(ctx, listOptions(r))
	},
	"payments": func(ctx context.Context, c *apiclient.Client, _ *http.Request) (any, error) {
		return c.PaymentMethods(ctx)
	},
	"leaderboard": func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error) {
		return c.Leaderboard(ctx, r.URL.Query().Get("period"))
	},
	"guides": func(ctx context.Context, c *apiclient.Client, _ *http.Request) (any, error) {
		return c.Guides(ctx)
	},
	"marketing": func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error) {
		link, err := c.ReferralLink(ctx)
		if err != nil {
			return nil, err
		}
		materials, err := c.MarketingMaterials(ctx, r.URL.Query().Get("type"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"link": link, "materials": materials}, nil
	},
	"profile": func(ctx context.Context, c *apiclient.Client, _ *http.Request) (any, error) {
		return c.CurrentUser(ctx)
	},
}

var adminPages = map[string]pageLoader{
	"overview": func(ctx context.Context, c *apiclient.Client, _ *http.Request) (any, error) {
		return c.AdminStats(ctx)
	},
	"users": func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error) {
		opts := listOptions(r)
		if opts.Status == "" {
			opts.Status = string(users.StatusPending)
		}
		return c.AdminUsers(ctx, opts)
	},
	"commissions": func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error) {
		return c.AdminCommissions(ctx, listOptions(r))
	},
	"payouts": func(ctx context.Context, c *apiclient.Client, r *http.Request) (any, error) {
		return c.AdminPayouts(ctx, listOptions(r))
	},
}

func listOptions(r *http.Request) apiclient.ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return apiclient.ListOptions{
		Page:    page,
		PerPage: perPage,
		Status:  q.Get("status"),
		Search:  q.Get("search"),
		Period:  q.Get("period"),
	}
}

// ProfileUpdateHandler saves the signed in user's profile.
func (s *Server) ProfileUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, nav, err := s.clientFor(w, r, RouteProfile)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		if res := guard.RequireAuth(r.Context(), client); !res.Allowed() {
			redirectSuccess(w, r, res.Redirect)
			return
		}

		var update apiclient.ProfileUpdate
		if wantsJSON(r) {
			if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
		} else {
			update = apiclient.ProfileUpdate{
				FirstName:    r.FormValue("first_name"),
				LastName:     r.FormValue("last_name"),
				DisplayName:  r.FormValue("display_name"),
				Phone:        r.FormValue("phone"),
				PaymentEmail: r.FormValue("payment_email"),
			}
		}

		profile, err := client.UpdateProfile(r.Context(), update)
		if target, ok := nav.Redirected(); ok {
			redirectSuccess(w, r, target)
			return
		}
		if err != nil {
			writeAPIError(w, err)
			return
		}
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, profile)
			return
		}
		redirectSuccess(w, r, RouteProfile)
	}
}

// AdminUserDecisionHandler approves or rejects a pending account.
func (s *Server) AdminUserDecisionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := r.PathValue("action")
		if action != "approve" && action != "reject" {
			http.NotFound(w, r)
			return
		}

		client, nav, err := s.clientFor(w, r, RouteAdminUsers)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		if res := guard.RequireAdmin(r.Context(), client); !res.Allowed() {
			redirectSuccess(w, r, res.Redirect)
			return
		}

		id := users.ID(r.PathValue("id"))
		decision := apiclient.ApprovalDecision{Reason: r.FormValue("reason")}
		var result *apiclient.ApprovalResult
		if action == "approve" {
			result, err = client.AdminApproveUser(r.Context(), id, decision)
		} else {
			result, err = client.AdminRejectUser(r.Context(), id, decision)
		}
		if target, ok := nav.Redirected(); ok {
			redirectSuccess(w, r, target)
			return
		}
		if err != nil {
			if wantsJSON(r) {
				writeAPIError(w, err)
				return
			}
			_, msg := apiFailure(err)
			redirectWithError(w, r, RouteAdminUsers, msg)
			return
		}

		log.Info().Str("user_id", id.String()).Str("action", action).Msg("account reviewed")
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, result)
			return
		}
		redirectSuccess(w, r, RouteAdminUsers)
	}
}

// apiFailure maps a client error onto a response status and user-facing message.
func apiFailure(err error) (int, string) {
	if errors.Is(err, apiclient.ErrInvalidRequest) {
		return http.StatusBadRequest, err.Error()
	}
	if errors.Is(err, apiclient.ErrSessionChanged) {
		return http.StatusConflict, "Your session changed, please reload the page"
	}
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status, apiErr.Message
		}
		return http.StatusBadGateway, apiErr.Message
	}
	return http.StatusBadGateway, "The portal is unavailable, please try again later"
}

func writeAPIError(w http.ResponseWriter, err error) {
	status, msg := apiFailure(err)
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
}

package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/guard"
	"github.com/jrsteele09/go-affiliate-portal/users"
	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Review affiliate applications (admins only)",
	}
	cmd.AddCommand(adminPendingCmd(), adminDecisionCmd("approve"), adminDecisionCmd("reject"))
	return cmd
}

// adminClient returns a client once the stored credential is known to belong to an admin.
func adminClient(ctx context.Context) (*apiclient.Client, error) {
	client, err := newCLIClient()
	if err != nil {
		return nil, err
	}
	if res := guard.RequireAdmin(ctx, client); !res.Allowed() {
		if res.Redirect == apiclient.LoginPath {
			return nil, fmt.Errorf("not signed in")
		}
		return nil, fmt.Errorf("admin role required")
	}
	return client, nil
}

func adminPendingCmd() *cobra.Command {
	opts := apiclient.ListOptions{Status: string(users.StatusPending)}

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List accounts awaiting approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := adminClient(cmd.Context())
			if err != nil {
				return err
			}
			list, err := client.AdminUsers(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().IntVar(&opts.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 0, "Results per page")
	return cmd
}

func adminDecisionCmd(action string) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   action + " <user-id>",
		Short: fmt.Sprintf("%s a pending account", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := adminClient(cmd.Context())
			if err != nil {
				return err
			}
			decision := apiclient.ApprovalDecision{Reason: reason}
			var result *apiclient.ApprovalResult
			if action == "approve" {
				result, err = client.AdminApproveUser(cmd.Context(), users.ID(args[0]), decision)
			} else {
				result, err = client.AdminRejectUser(cmd.Context(), users.ID(args[0]), decision)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Note recorded with the decision")
	return cmd
}

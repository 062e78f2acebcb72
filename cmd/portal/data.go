package main

import (
	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/users"
	"github.com/spf13/cobra"
)

func addListFlags(cmd *cobra.Command, opts *apiclient.ListOptions) {
	cmd.Flags().IntVar(&opts.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 0, "Results per page")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status")
}

func commissionsCmd() *cobra.Command {
	var (
		opts    apiclient.ListOptions
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "commissions",
		Short: "List your commissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newCLIClient()
			if err != nil {
				return err
			}
			if summary {
				s, err := client.CommissionSummary(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s)
			}
			list, err := client.Commissions(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	addListFlags(cmd, &opts)
	cmd.Flags().BoolVar(&summary, "summary", false, "Show totals per level instead of the list")
	return cmd
}

func payoutsCmd() *cobra.Command {
	var (
		opts    apiclient.ListOptions
		request apiclient.PayoutRequest
		method  string
	)

	cmd := &cobra.Command{
		Use:   "payouts",
		Short: "List payouts, or request one with --amount",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newCLIClient()
			if err != nil {
				return err
			}
			if request.Amount > 0 {
				request.MethodID = users.ID(method)
				p, err := client.RequestPayout(cmd.Context(), request)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			}
			list, err := client.Payouts(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	addListFlags(cmd, &opts)
	cmd.Flags().Float64Var(&request.Amount, "amount", 0, "Request a payout of this amount")
	cmd.Flags().StringVar(&method, "method", "", "Payment method id for the payout request")
	return cmd
}

func networkCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Show your referral network",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newCLIClient()
			if err != nil {
				return err
			}
			network, err := client.Network(cmd.Context(), depth)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), network)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "Levels to include (default decided by the API)")
	return cmd
}

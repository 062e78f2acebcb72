package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/token"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the credential",
		Example: `  portal login --email jane@example.com --password s3cret
  PORTAL_PASSWORD=s3cret portal login --email jane@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("PORTAL_PASSWORD")
			}
			client, err := newCLIClient()
			if err != nil {
				return err
			}
			resp, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", resp.Email, resp.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (default $PORTAL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newCLIClient()
			if err != nil {
				return err
			}
			return client.Logout()
		},
	}
}

func registerCmd() *cobra.Command {
	var req apiclient.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Apply for an affiliate account",
		Long: `Create an affiliate account. New accounts must be approved by an
admin before they can sign in, so this never stores a credential.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("PORTAL_PASSWORD")
			}
			client, err := newCLIClient()
			if err != nil {
				return err
			}
			resp, err := client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password (default $PORTAL_PASSWORD)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&req.Username, "username", "", "Login name")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&req.ReferralCode, "referral-code", "", "Affiliate id of your sponsor")
	for _, name := range []string{"email", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newCLIClient()
			if err != nil {
				return err
			}
			user, err := client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Decode the stored credential",
		Long: `Print the claims of the stored credential without contacting the API.
The signature is not verified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newCLIClient()
			if err != nil {
				return err
			}
			raw, ok := client.Session().Credential()
			if !ok {
				return errors.New("not signed in")
			}
			claims, err := token.Inspect(raw)
			if err != nil {
				return err
			}
			if claims.Expired(time.Now()) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Credential has expired.")
			}
			return printJSON(cmd.OutOrStdout(), claims)
		},
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/internal/config"
	"github.com/jrsteele09/go-affiliate-portal/internal/logger"
	"github.com/jrsteele09/go-affiliate-portal/sessions"
	"github.com/jrsteele09/go-affiliate-portal/token"
	"github.com/jrsteele09/go-affiliate-portal/token/filerepo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "portal",
		Short: "Affiliate portal client and web front end",
		Long: `portal talks to the affiliate portal REST API.

The credential from "portal login" is kept in the data folder
($FOLDER, default ./data) and reused by every other command until
"portal logout" or until the API rejects it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envFile != "" {
				config.LoadDotEnv(envFile)
			} else {
				config.LoadDotEnv()
			}
			c := config.New()
			logger.Init(logger.Options{Level: c.GetLogLevel(), Pretty: c.GetEnv() == "DEV"})
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file (default .env)")

	rootCmd.AddCommand(
		serveCmd(),
		loginCmd(),
		logoutCmd(),
		registerCmd(),
		whoamiCmd(),
		tokenCmd(),
		commissionsCmd(),
		payoutsCmd(),
		networkCmd(),
		adminCmd(),
	)
	return rootCmd
}

// newCLIClient builds a client whose credential persists in the data folder.
func newCLIClient() (*apiclient.Client, error) {
	c := config.New()
	repo := filerepo.NewInFolder(c.GetDataFolder())
	sess := sessions.New(
		token.NewStore(repo, token.WithLogger(log.Logger)),
		sessions.WithUserCacheTTL(c.GetUserCacheTTL()),
		sessions.WithLogger(log.Logger),
	)
	return apiclient.New(
		apiclient.JoinBaseURL(c.GetAPIBaseURL(), c.GetAPIBasePath()),
		sess,
		apiclient.WithHTTPClient(newHTTPClient(c)),
		apiclient.WithNavigator(cliNavigator{}),
		apiclient.WithLogger(log.Logger),
	)
}

// cliNavigator tells the user to log in again when the API ends the session.
type cliNavigator struct{}

func (cliNavigator) Location() string { return "" }

func (cliNavigator) Redirect(path string) {
	if path == apiclient.LoginPath {
		fmt.Fprintln(os.Stderr, "Session ended, run \"portal login\" to sign in again.")
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

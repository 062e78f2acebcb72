package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-affiliate-portal/internal/config"
	"github.com/jrsteele09/go-affiliate-portal/server"
	"github.com/jrsteele09/go-affiliate-portal/server/loginsession"
	"github.com/jrsteele09/go-affiliate-portal/token"
	"github.com/jrsteele09/go-affiliate-portal/token/redisrepo"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portal web front end",
		Long: `Serve the affiliate and admin dashboards.

Browser sessions keep their credential in Redis when REDIS_ADDR is
set, otherwise in memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), port)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Address to listen on (default $PORT)")
	return cmd
}

func run(ctx context.Context, port string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c := config.New()
	if port == "" {
		port = c.GetPort()
	}
	displayAppname(c.GetAppName())

	tokenRepos := server.MemoryTokenRepos()
	if addr := c.GetRedisAddr(); addr != "" {
		rdb, err := redisrepo.Connect(ctx, redisrepo.Config{Addr: addr, DB: c.GetRedisDB()})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		tokenRepos = redisTokenRepos(rdb, c.GetMaxSessionAge())
		log.Info().Str("addr", addr).Int("db", c.GetRedisDB()).Msg("browser sessions stored in redis")
	}

	handler, err := server.New(c, loginsession.NewInMemoryLoginSessionRepo(), tokenRepos)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: port, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(srv)
	}()
	go purgeSessions(ctx, handler)

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func redisTokenRepos(rdb *redis.Client, ttl time.Duration) server.TokenRepoFactory {
	return func(sessionID string) token.Repo {
		return redisrepo.New(rdb, sessionID, ttl)
	}
}

func purgeSessions(ctx context.Context, s *server.Server) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PurgeSessions()
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func newHTTPClient(c config.PortalConfig) *http.Client {
	return &http.Client{Timeout: c.GetAPITimeout()}
}

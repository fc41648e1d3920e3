package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/runnasync/internal/config"
	"github.com/claude/runnasync/internal/feed"
	"github.com/claude/runnasync/internal/intervals"
	appmcp "github.com/claude/runnasync/internal/mcp"
	"github.com/claude/runnasync/internal/runna"
	httpapi "github.com/claude/runnasync/internal/server"
	"github.com/claude/runnasync/internal/syncer"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"tailscale.com/tsnet"
)

var mcpHTTP bool

func init() {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP interface over stdio or HTTP",
		Long: `Mcp exposes the training calendar to MCP clients: preview_workout,
get_upcoming_workouts, list_planned_events, get_sync_status and the
runnasync://schedule resource. Everything is read-only; uploads happen
through the sync command.

By default the server speaks stdio for local clients such as Claude
Desktop. With --http it serves the streamable HTTP transport on
server.host:server.port (or over tsnet when server.tailscale.enabled
is set), gated by server.api_key when one is configured.`,
		RunE: runMCP,
	}
	mcpCmd.Flags().BoolVar(&mcpHTTP, "http", false, "serve streamable HTTP on server.host:server.port instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	units, err := runna.ParseDistanceUnit(cfg.Sync.Units)
	if err != nil {
		return err
	}

	// Tools degrade individually: preview always works, schedule tools
	// need the feed URL, event tools need intervals credentials. Missing
	// pieces surface as tool errors instead of refusing to start.
	planner := syncer.New(feed.NewClient(), nil, nil, log)

	var remote appmcp.RemoteCalendar
	if cfg.Intervals.APIKey != "" {
		remote = intervals.NewClient(cfg.Intervals.BaseURL, cfg.Intervals.AthleteID, cfg.Intervals.APIKey)
	}

	var journal appmcp.JournalReader
	db, closeJournal := openJournal(cfg, log)
	defer closeJournal()
	if db != nil {
		journal = db
	}

	defaults := appmcp.Defaults{
		ICSURL:        cfg.Feed.ICSURL,
		Units:         units,
		EasyPaceSecMi: cfg.Sync.EasyPaceSecMi,
	}
	s := appmcp.New(planner, remote, journal, defaults, Version, log)

	if !mcpHTTP {
		// Stdio transport: stdout carries protocol frames, logging is
		// already on stderr.
		return server.ServeStdio(s)
	}

	return serveHTTP(cfg, server.NewStreamableHTTPServer(s), log)
}

func serveHTTP(cfg *config.Config, mcpHandler http.Handler, log *slog.Logger) error {
	srv := httpapi.New(mcpHandler, cfg.Server.APIKey, Version, log)

	var listener net.Listener
	if cfg.Server.Tailscale.Enabled {
		stateDir, err := config.ExpandPath(cfg.Server.Tailscale.StateDir)
		if err != nil {
			return err
		}
		tsServer := &tsnet.Server{
			Hostname: cfg.Server.Tailscale.Hostname,
			Dir:      stateDir,
			AuthKey:  cfg.Server.Tailscale.AuthKey,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Server.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		var err error
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "plain HTTP (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
	return nil
}

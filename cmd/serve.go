package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/attachehq/attache/internal/approval"
	"github.com/attachehq/attache/internal/audit"
	"github.com/attachehq/attache/internal/authflow"
	"github.com/attachehq/attache/internal/config"
	"github.com/attachehq/attache/internal/google"
	"github.com/attachehq/attache/internal/instrumentation"
	"github.com/attachehq/attache/internal/logging"
	"github.com/attachehq/attache/internal/prompts"
	"github.com/attachehq/attache/internal/resources"
	"github.com/attachehq/attache/internal/server"
	"github.com/attachehq/attache/internal/store"
	"github.com/attachehq/attache/internal/tools/approval_tools"
	"github.com/attachehq/attache/internal/tools/assistant_tools"
	"github.com/attachehq/attache/internal/tools/auth_tools"
	"github.com/attachehq/attache/internal/tools/calendar_tools"
	"github.com/attachehq/attache/internal/tools/contacts_tools"
	"github.com/attachehq/attache/internal/tools/gmail_tools"
	"github.com/attachehq/attache/internal/tools/web_tools"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode          bool
		dbPath             string
		httpAddr           string
		googleClientID     string
		googleClientSecret string
		googleRedirectURI  string
		authRequestTTL     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server over stdio.

A sidecar HTTP listener runs alongside it for the Google OAuth
callback, health probes, and Prometheus metrics.

Google OAuth Configuration:
  --google-client-id and --google-client-secret flags
  OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars.
  The redirect URI must point at the sidecar listener, e.g.
  http://127.0.0.1:8484/oauth/google/callback.

  Without credentials the server still starts; the Google tools
  report the missing configuration when called.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; real environments set variables directly
			_ = godotenv.Load()

			settings := config.Load()
			if debugMode {
				settings.LogLevel = "debug"
			}
			if cmd.Flags().Changed("db") {
				settings.DBPath = dbPath
			}
			if cmd.Flags().Changed("http-addr") {
				settings.HTTPAddr = httpAddr
			}
			if googleClientID != "" {
				settings.GoogleClientID = googleClientID
			}
			if googleClientSecret != "" {
				settings.GoogleClientSecret = googleClientSecret
			}
			if googleRedirectURI != "" {
				settings.GoogleRedirectURI = googleRedirectURI
			}
			if cmd.Flags().Changed("auth-request-ttl") {
				settings.AuthRequestTTL = authRequestTTL
			}

			return runServe(settings)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&dbPath, "db", "attache.db", "SQLite database path. Can also use ATTACHE_DB env var.")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "127.0.0.1:8484", "Sidecar HTTP listener address (OAuth callback, health, metrics). Can also use ATTACHE_HTTP_ADDR env var.")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&googleRedirectURI, "google-redirect-uri", "", "OAuth redirect URI pointing at the sidecar callback. Can also use GOOGLE_REDIRECT_URI env var.")
	cmd.Flags().DurationVar(&authRequestTTL, "auth-request-ttl", 10*time.Minute, "How long a begun authorization may wait for its callback. Can also use AUTH_REQUEST_TTL env var.")

	return cmd
}

func runServe(settings config.Settings) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the MCP transport; logs go to stderr
	logger := logging.New(os.Stderr, settings.LogLevel)

	st, err := store.New(logger, settings.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	if err := st.EnsureUsable(); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}

	metrics := instrumentation.NewMetrics(prometheus.DefaultRegisterer)

	var providers []authflow.Provider
	googleProvider, err := google.NewProvider(settings)
	if err != nil {
		if !errors.Is(err, authflow.ErrNotConfigured) {
			return fmt.Errorf("failed to configure Google provider: %w", err)
		}
		logger.Warn("google OAuth not configured; google tools will report the missing settings", logging.Err(err))
		googleProvider = nil
	} else {
		providers = append(providers, googleProvider)
	}

	flows := authflow.NewManager(logger, st, settings.AuthRequestTTL, providers...)
	gate := approval.NewGate(logger, st)
	recorder := audit.NewRecorder(logger, st)

	serverContext := server.NewServerContext(shutdownCtx, settings, logger, st, gate, recorder, flows, googleProvider, metrics)
	defer serverContext.Shutdown()

	mcpSrv := mcpserver.NewMCPServer("attache", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithPromptCapabilities(false),
	)

	if err := registerAll(mcpSrv, serverContext); err != nil {
		return err
	}

	// sidecar listener for the OAuth callback, health and metrics
	httpSrv := server.NewHTTPServer(serverContext, settings.HTTPAddr)
	httpDone := make(chan error, 1)
	go func() {
		defer close(httpDone)
		if err := httpSrv.Start(); err != nil {
			httpDone <- err
		}
	}()
	logger.Info("sidecar HTTP listener started", "addr", settings.HTTPAddr)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	var serveErr error
	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverDone:
		serveErr = err
	case err := <-httpDone:
		if err != nil {
			serveErr = fmt.Errorf("sidecar HTTP listener failed: %w", err)
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := httpSrv.Shutdown(stopCtx); err != nil {
		logger.Error("failed to stop sidecar HTTP listener", logging.Err(err))
	}

	if serveErr != nil {
		return fmt.Errorf("server stopped with error: %w", serveErr)
	}
	return nil
}

// registerAll registers all MCP tools, resources, and prompts
func registerAll(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{
			name: "Auth",
			register: func() error {
				return auth_tools.RegisterAuthTools(mcpSrv, sc)
			},
		},
		{
			name: "Approval",
			register: func() error {
				return approval_tools.RegisterApprovalTools(mcpSrv, sc)
			},
		},
		{
			name: "Gmail",
			register: func() error {
				return gmail_tools.RegisterGmailTools(mcpSrv, sc)
			},
		},
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, sc)
			},
		},
		{
			name: "Contacts",
			register: func() error {
				return contacts_tools.RegisterContactsTools(mcpSrv, sc)
			},
		},
		{
			name: "Web",
			register: func() error {
				return web_tools.RegisterWebTools(mcpSrv, sc)
			},
		},
		{
			name: "Assistant",
			register: func() error {
				return assistant_tools.RegisterAssistantTools(mcpSrv, sc)
			},
		},
		{
			name: "State Resources",
			register: func() error {
				return resources.RegisterStateResources(mcpSrv, sc)
			},
		},
		{
			name: "Prompts",
			register: func() error {
				return prompts.RegisterPrompts(mcpSrv)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

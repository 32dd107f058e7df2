package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/mcpserver"
	"github.com/raysh454/wcag131/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(e *env) *cobra.Command {
	var flags struct {
		addr string
	}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.addr != "" {
				e.cfg.Server.ListenAddr = flags.addr
			}
			return runServe(cmd.Context(), e)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "Listen address (default from config)")
	return cmd
}

// runServe serves until ctx is done, then drains in-flight requests.
func runServe(ctx context.Context, e *env) (err error) {
	srv, err := server.NewServer(server.Config{
		ListenAddr:    e.cfg.Server.ListenAddr,
		AllowedOrigin: e.cfg.Server.AllowedOrigin,
		AppConfig:     e.cfg,
		Logger:        e.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := srv.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	httpSrv := srv.HTTPServer()
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	e.logger.Info("listening", logging.F("addr", httpSrv.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	e.logger.Info("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}

func newMCPCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server over stdio",
		Long: "Serves the audit_html, audit_url, get_audit and list_audits tools\n" +
			"over stdin/stdout. Logs go to stderr.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			orch, err := e.orchestrator()
			if err != nil {
				return err
			}
			defer closeOrch(orch, &err)

			srv, err := mcpserver.NewServer(orch, Version, e.logger)
			if err != nil {
				return err
			}
			e.logger.Info("starting MCP server over stdio")
			return srv.Run(cmd.Context())
		},
	}
}

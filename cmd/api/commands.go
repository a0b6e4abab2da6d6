package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tagmarks/tagmarks-server/internal/config"
	"github.com/tagmarks/tagmarks-server/internal/di"
	"github.com/tagmarks/tagmarks-server/internal/di/providers"
	"github.com/tagmarks/tagmarks-server/internal/logger"
	"github.com/tagmarks/tagmarks-server/internal/service"
)

func newRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "tagmarks",
		Short:         "Bookmark server with tag resolution and LLM tag suggestions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.BindFlags(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), v)
			},
		},
		&cobra.Command{
			Use:   "reindex",
			Short: "Rebuild the search index from the store and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runReindex(cmd.Context(), v)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the server version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), providers.Version)
			},
		},
	)

	return root
}

func runServe(ctx context.Context, v *viper.Viper) error {
	injector := di.NewContainer(v)

	srv, err := di.Bootstrap(injector)
	if err != nil {
		injector.Shutdown()
		return fmt.Errorf("bootstrap server: %w", err)
	}

	cfg := do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		injector.Shutdown()
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	log.WithField("addr", ln.Addr().String()).Info("HTTP server listening")

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down server gracefully...")
	case serveErr = <-served:
		log.WithError(serveErr).Error("HTTP server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// The container stops dependents first: HTTP, then the enrichment
	// queue, then the index and the stores.
	if report := injector.ShutdownWithContext(shutdownCtx); !report.Succeed {
		log.Error("Shutdown error", "error", report.Error())
		serveErr = errors.Join(serveErr, errors.New("unclean shutdown"))
	}

	log.Info("Goodbye")
	return serveErr
}

func runReindex(ctx context.Context, v *viper.Viper) error {
	injector := di.NewContainer(v)
	defer injector.Shutdown()

	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	searchService, err := do.Invoke[*service.SearchService](injector)
	if err != nil {
		return err
	}

	if err := searchService.ReindexAll(ctx); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}

	count, _ := searchService.DocumentCount()
	do.MustInvoke[*logger.Logger](injector).Info("Search index rebuilt", "documents", count)
	return nil
}

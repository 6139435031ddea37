// Command fake-server serves every <resource>.json file in a data directory
// as a mock REST collection.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/spf13/cobra"

	"github.com/stevemurr/fake-server/config"
	"github.com/stevemurr/fake-server/handler"
	"github.com/stevemurr/fake-server/logging"
	"github.com/stevemurr/fake-server/store"
)

// Version is injected during build.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "fake-server: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fake-server",
		Short: "Mock REST server backed by JSON files",
		Long: `fake-server loads every <resource>.json file in the data directory and
serves it as a REST collection at /{resource} and /{resource}/{id}.
Mutations are written back to the resource file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the server (default command)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "resources",
		Short: "List the resources in the data directory and their item counts",
		Args:  cobra.NoArgs,
		RunE:  runResources,
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fake-server %s\n", Version)
		},
	})
	return root
}

func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: cmd.ErrOrStderr(),
	})
	return cfg, logger, nil
}

func runResources(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	s, err := store.New(cfg.Backend, cfg.DataDir, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	out := cmd.OutOrStdout()
	for _, name := range s.Resources() {
		fmt.Fprintf(out, "%-20s %d\n", name, s.Len(name))
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := store.New(cfg.Backend, cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open store (backend=%s, data=%s): %w", cfg.Backend, cfg.DataDir, err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("failed to close store", "err", err)
		}
	}()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler.New(s, logger),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	printBanner(cmd.OutOrStdout(), cfg.BaseURL(), s.Resources())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func printBanner(w io.Writer, baseURL string, resources []string) {
	fmt.Fprintf(w, `Fake server running at %s

Available resources: %s

For each resource, you can use:
- GET    /{resource}           - Get all items
- GET    /{resource}/{id}      - Get single item
- POST   /{resource}           - Create new item
- PUT    /{resource}           - Update item
- DELETE /{resource}/{id}      - Delete item
`, baseURL, strings.Join(resources, ", "))
}

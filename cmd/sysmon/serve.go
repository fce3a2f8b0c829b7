package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/tidytray/pkg/monitor/broadcaster"
	"github.com/jamesainslie/tidytray/pkg/monitor/server"
	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/sysinfo"
)

const shutdownTimeout = 5 * time.Second

var (
	serveListen string
	serveBin    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve queries and the memory-update stream over HTTP",
	Long: `Serve samples memory once per memory.poll_interval and publishes each value
as a memory-update Server-Sent Event on /api/events.

Endpoints:
  GET /healthz
  GET /api/disks
  GET /api/temperatures
  GET /api/system
  GET /api/events[?name=memory-update]`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default: server.listen)")
	serveCmd.Flags().BoolVar(&serveBin, "bin", false, "also publish recycle bin sizes as bin-size events")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Get(binaryName)

	listen := cfg.Server.Listen
	if serveListen != "" {
		listen = serveListen
	}

	provider := sysinfo.New()
	b := broadcaster.New()
	defer b.Close()

	m, err := newMonitor(provider, serveBin)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{Listen: listen}, provider, b)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listen, err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m.start(ctx, b)
	m.watch()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	fmt.Fprintf(cmd.OutOrStdout(), "sysmon listening on http://%s\n", srv.Addr())

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Close(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", "error", err)
	}
	return <-serveErr
}

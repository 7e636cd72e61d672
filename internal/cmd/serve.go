package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sitemetrics/sitemetrics-go/internal/server"
)

var (
	serveHost string
	servePort int
	serveDev  bool
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API",
		Long: `Serve the read-only dashboard API:

  GET /api/status
  GET /api/projects?sort=&stage=&min_score=&band=&delayed=
  GET /api/projects/:code
  GET /api/portfolio
  GET /api/diagnostics
  GET /api/export.csv
  GET /api/export.xlsx

The data source is re-read on every request. Stop with Ctrl-C.`,
		RunE: runServe,
	}
	cmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	cmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	cmd.Flags().BoolVar(&serveDev, "dev", false, "gin debug mode")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.cfg.Sitemetrics.Server
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveDev {
		cfg.DevMode = true
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(s.provider, s.builder(), cfg, s.logger)
	cmd.Printf("Serving %s on http://%s/api\n", s.provider.Name(), cfg.Addr())
	return srv.Run(ctx)
}

package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/adlytica/toolkit/internal/pkg/metrics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the long-lived maintenance process (metrics endpoint, token sweep)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			c := cron.New()
			if _, err := c.AddFunc("@every 1m", func() {
				a.resets.SweepTokens(context.Background())
			}); err != nil {
				return err
			}
			c.Start()
			defer c.Stop()

			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			a.log.Infof("maintenance process listening on %s", a.cfg.Metrics.Addr)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-stop:
			}
			return srv.Close()
		},
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gympulse/pulse-cli/internal/refresh"
	"github.com/gympulse/pulse-cli/internal/resilience"
	"github.com/gympulse/pulse-cli/internal/sensor"
	"github.com/gympulse/pulse-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the occupancy API server and refresh loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		feed := sensor.NewSimulatedFeed(env.Live.Reading,
			sensor.WithDelay(time.Duration(cfg.Sensor.DelayMs)*time.Millisecond),
			sensor.WithFailurePercent(cfg.Sensor.FailurePercent),
			sensor.WithRateLimit(cfg.Sensor.RatePerSecond, cfg.Sensor.RateBurst),
		)

		retryCfg := resilience.DefaultRetryConfig()
		retryCfg.MaxAttempts = cfg.Refresh.RetryMaxAttempts
		retryCfg.OnRetry = resilience.RetryLogger("sensor", "fetch")

		breakerCfg := resilience.DefaultCircuitBreakerConfig()
		breakerCfg.FailureThreshold = cfg.Refresh.BreakerThreshold

		engine := refresh.NewEngine(feed, env.Directory,
			refresh.WithInterval(time.Duration(cfg.Refresh.IntervalSecs)*time.Second),
			refresh.WithRetryConfig(retryCfg),
			refresh.WithBreaker(resilience.NewCircuitBreaker(breakerCfg)),
		)

		srv := server.New(env.Directory, env.Store, env.CheckIns, env.Live, env.Synth, env.Verifier,
			server.WithEngine(engine))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Router(),
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			if err := engine.Run(ctx); err != nil && !eris.Is(err, context.Canceled) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			return httpSrv.Shutdown(cmd.Context())
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

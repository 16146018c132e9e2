package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsphweid/dreamland/api"
	"github.com/jsphweid/dreamland/config"
	"github.com/jsphweid/dreamland/db"
	"github.com/jsphweid/dreamland/game"
	"github.com/jsphweid/dreamland/loop"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	serveWatch bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.addr")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the tempo when the config file changes")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the game over HTTP",
	Long:  `Serves the game over HTTP and streams its events over a websocket at /events.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cobra.CheckErr(serve(ctx, cfg))
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := slog.Default()
	store, err := db.Open(db.Options{
		Backend:  cfg.Store.Backend,
		Path:     cfg.Store.Path,
		Table:    cfg.Store.Table,
		Endpoint: cfg.Store.Endpoint,
		Region:   cfg.Store.Region,
	})
	if err != nil {
		return errors.Wrap(err, "opening store")
	}

	l := loop.New(logger)
	g, err := game.New(cfg, game.WithRunner(l), game.WithStore(store), game.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopDone := make(chan error, 1)
	go func() { loopDone <- l.Run(ctx) }()

	if err := l.Do(ctx, func() { g.Start(ctx) }); err != nil {
		return errors.Wrap(err, "starting game")
	}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Post(g.Tick)
			}
		}
	}()

	if serveWatch {
		go func() {
			err := config.Watch(ctx, configPath, logger, func(next config.Config) {
				l.Post(func() {
					if err := g.SetTempo(next.Tempo.BPM); err != nil {
						logger.Warn("could not apply tempo", "err", err)
					}
				})
			})
			if err != nil {
				logger.Error("config watch stopped", "err", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.New(g, cfg.Server, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		cancel()
		<-loopDone
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "err", err)
	}
	cancel()
	<-loopDone
	g.Close()
	return nil
}

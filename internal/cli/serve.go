// serve.go

package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"shop-backend/internal/api"
	"shop-backend/internal/auth"
	"shop-backend/internal/cart"
	"shop-backend/internal/catalog"
	"shop-backend/internal/config"
	"shop-backend/internal/identity"
	"shop-backend/internal/metrics"
	"shop-backend/internal/notify"
	"shop-backend/internal/store"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().String("http-addr", ":8080", "listen address")
	_ = v.BindPFlag("http_addr", cmd.Flags().Lookup("http-addr"))
	return cmd
}

// server holds the wired HTTP handler and what must be released on shutdown.
type server struct {
	handler http.Handler
	hub     *notify.Hub
	catalog *catalog.Service
	kafka   *notify.KafkaNotifier
}

func newServer(cfg config.Config, stores store.Stores, logger *zap.Logger) *server {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	rec := metrics.New()
	hub := notify.NewHub(16)
	sinks := notify.Multi{hub}
	var kafka *notify.KafkaNotifier
	if len(cfg.KafkaBrokers) > 0 {
		kafka = notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, kafka)
		logger.Info("kafka_notifier_enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	catalogSvc := catalog.NewService(stores.Products, sinks, rec)
	idn := identity.NewService(stores.Users, stores.Carts,
		auth.NewHasher(cfg.BcryptCost), auth.NewTokens(cfg.JWTSecret, cfg.JWTExpires))
	router := api.NewRouter(api.Deps{
		Catalog:      catalogSvc,
		Carts:        cart.NewEngine(stores, rec),
		Identity:     idn,
		Hub:          hub,
		Metrics:      rec,
		Logger:       logger,
		CookieName:   cfg.JWTCookieName,
		CookieSecure: cfg.Env == "prod",
		CORSOrigins:  cfg.CORSOrigins,
	})
	return &server{handler: router, hub: hub, catalog: catalogSvc, kafka: kafka}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	stores, release, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	s := newServer(cfg, stores, logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv.RegisterOnShutdown(s.hub.Close)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listen", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("http_server_error", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown_signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_error", zap.Error(err))
	}
	s.catalog.Wait()
	if s.kafka != nil {
		if err := s.kafka.Close(); err != nil {
			logger.Warn("kafka_close_failed", zap.Error(err))
		}
	}
	logger.Info("service_stopped")
	return nil
}

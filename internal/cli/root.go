// root.go

// Package cli wires configuration, storage and services behind cobra commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"shop-backend/internal/config"
	"shop-backend/internal/logging"
	"shop-backend/internal/store"
	"shop-backend/internal/store/memstore"
	"shop-backend/internal/store/mongostore"
)

// NewRootCommand builds the command tree on its own viper instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	root := &cobra.Command{
		Use:           "shop-backend",
		Short:         "E-commerce backend: catalog, carts, checkout and accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if f := v.GetString("config"); f != "" {
				v.SetConfigFile(f)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config %s: %w", f, err)
				}
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("store", "mongo", "storage backend: mongo|memory")
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("store", flags.Lookup("store"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(newServeCommand(v), newSeedCommand(v))
	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.NewLogger(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// openStores returns the configured backend and a func that releases it.
func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Stores, func(), error) {
	switch cfg.Store {
	case "memory":
		logger.Warn("store_memory", zap.String("note", "data is lost on exit"))
		return memstore.New(), func() {}, nil
	case "mongo", "":
		client, err := mongostore.Connect(ctx, cfg.MongoURL, cfg.MongoTimeout)
		if err != nil {
			return store.Stores{}, nil, err
		}
		release := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Warn("mongo_disconnect_failed", zap.Error(err))
			}
		}
		db := client.Database(cfg.MongoDB)
		ictx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
		defer cancel()
		if err := mongostore.EnsureIndexes(ictx, db); err != nil {
			release()
			return store.Stores{}, nil, err
		}
		logger.Info("mongo_connected", zap.String("db", cfg.MongoDB))
		return mongostore.New(db), release, nil
	default:
		return store.Stores{}, nil, fmt.Errorf("unknown store %q (want mongo or memory)", cfg.Store)
	}
}

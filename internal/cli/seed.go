// seed.go

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"shop-backend/internal/auth"
	"shop-backend/internal/config"
	"shop-backend/internal/identity"
	"shop-backend/internal/models"
	"shop-backend/internal/store"
)

type seedAccount struct {
	in   identity.RegisterInput
	role models.Role
}

func defaultAccounts(password string) []seedAccount {
	return []seedAccount{
		{in: identity.RegisterInput{FirstName: "Admin", LastName: "Test", Email: "admin@test.com", Age: 30, Password: password}, role: models.RoleAdmin},
		{in: identity.RegisterInput{FirstName: "User", LastName: "Test", Email: "user@test.com", Age: 25, Password: password}, role: models.RoleUser},
	}
}

func newSeedCommand(v *viper.Viper) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or upgrade the admin and user test accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			stores, release, err := openStores(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer release()
			return seed(cmd, cfg, stores, defaultAccounts(password))
		},
	}
	cmd.Flags().StringVar(&password, "password", "123456", "password for newly created accounts")
	return cmd
}

func seed(cmd *cobra.Command, cfg config.Config, stores store.Stores, accounts []seedAccount) error {
	idn := identity.NewService(stores.Users, stores.Carts,
		auth.NewHasher(cfg.BcryptCost), auth.NewTokens(cfg.JWTSecret, cfg.JWTExpires))
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for _, acc := range accounts {
		u, created, err := idn.EnsureAccount(ctx, acc.in, acc.role)
		if err != nil {
			return fmt.Errorf("seed %s: %w", acc.in.Email, err)
		}
		action := "updated"
		if created {
			action = "created"
		}
		zap.L().Info("seed_account", zap.String("email", u.Email), zap.String("role", string(u.Role)), zap.Bool("created", created))
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) cart=%s\n", action, u.Email, u.Role, u.Cart.Hex())
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-storefront/config"
	"go-storefront/repositories"
	"go-storefront/server"
	"go-storefront/services"
	"go-storefront/utils"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant admin rights to a registered user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(cmd.Context(), args[0], true)
	},
}

var demoteCmd = &cobra.Command{
	Use:   "demote <email>",
	Short: "Revoke admin rights from a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(cmd.Context(), args[0], false)
	},
}

// indexesCmd creates the unique indexes the store relies on.
var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		client, err := utils.ConnectDB(cmd.Context(), cfg.MongoURI)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		return repositories.EnsureIndexes(cmd.Context(), client.Database(cfg.MongoDatabase))
	},
}

func init() {
	rootCmd.AddCommand(promoteCmd, demoteCmd, indexesCmd)
}

func setAdmin(ctx context.Context, email string, isAdmin bool) error {
	cfg := config.Load()
	if cfg.StoreDriver == config.StoreMemory {
		return fmt.Errorf("STORE_DRIVER=%s keeps no users between runs", cfg.StoreDriver)
	}
	logger := utils.NewLogger(cfg)

	store, err := server.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	users := services.NewUserService(store.Users, store.Carts, nil, utils.NopMailer{}, logger)
	user, err := users.SetAdmin(ctx, email, isAdmin)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"email": user.Email, "isAdmin": user.IsAdmin}).Info("user role updated")
	return nil
}

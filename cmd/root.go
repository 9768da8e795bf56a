package cmd

import (
	"context"
	"fmt"
	"os"

	"go-inventory-stock/internal/config"
	"go-inventory-stock/internal/logger"
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/internal/service"
	"go-inventory-stock/pkg/database"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket API.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run migrations manually.",
	Long:  `Applies the gorm schema and seeds default branch, privileges, roles and admin user.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		seed(cmd.Context(), db, log)
		log.Info("migration finished")
		return nil
	},
}

var ReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare stored stock with the transaction ledger of a branch.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		code, _ := cmd.Flags().GetString("branch")
		branch, err := repository.NewBranchRepo(db).FindByCode(cmd.Context(), code)
		if err != nil {
			return fmt.Errorf("branch %q: %w", code, err)
		}

		svc := service.NewReconcileService(repository.NewProductRepo(db), repository.NewTransactionRepo(db), log)
		drifts, err := svc.Run(cmd.Context(), branch.ID)
		if err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		for _, d := range drifts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tstored=%d\tledger=%d\tdelta=%d\n",
				d.ProductID, d.ProductName, d.Stored, d.Ledger, d.Delta)
		}
		if len(drifts) > 0 {
			return fmt.Errorf("%d products drifted", len(drifts))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "branch is consistent")
		return nil
	},
}

func Execute(ctx context.Context) {
	rootCmd := &cobra.Command{
		Use:           "inventory",
		Short:         "Branch inventory stock service",
		SilenceUsage:  true,
		RunE:          ServeCmd.RunE,
	}
	ReconcileCmd.Flags().String("branch", defaultBranchCode, "Branch code to reconcile")
	rootCmd.AddCommand(ServeCmd, MigrateCmd, ReconcileCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads env and config, builds the logger and opens the database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	if envErr != nil {
		log.Debug(".env file not found, relying on system env")
	}

	db, err := database.ConnectDB(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, log, db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Branch{},
		&model.Product{},
		&model.StockTransaction{},
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.ViewState{},
	)
}

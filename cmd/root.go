package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/logger"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:           "printshop",
		Short:         "Print shop management API",
		Long:          `printshop runs the print shop management API and its maintenance tasks`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML configuration file (overrides CONFIG_FILE)")
	rootCmd.AddCommand(serveCmd, initDBCmd, demoDataCmd, createAdminCmd, markOverdueCmd, versionCmd)
}

// Execute runs the command line
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app is the process state shared by every command
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	cleanup []func()
}

// bootstrap loads configuration, installs the logger, connects and migrates the
// database and, when configured, connects Redis for document numbering.
func bootstrap(ctx context.Context) (*app, error) {
	if configFile != "" {
		if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, restore, err := logger.Install(logger.Options{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		FilePath: cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}
	a.cleanup = append(a.cleanup, func() { _ = log.Sync() }, restore)

	if err := config.ConnectDatabase(cfg); err != nil {
		a.close()
		return nil, err
	}
	db := config.GetDB()
	a.cleanup = append(a.cleanup, func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := models.AutoMigrate(db); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := config.ConnectRedis(ctx, cfg); err != nil {
		a.close()
		return nil, err
	}
	if rdb := config.GetRedis(); rdb != nil {
		services.SetSequencer(services.NewRedisSequencer(rdb))
		a.cleanup = append(a.cleanup, func() { rdb.Close() })
	}

	log.Info("bootstrap complete",
		zap.String("env", cfg.GoEnv),
		zap.String("db_driver", cfg.DBDriver),
		zap.Bool("redis", config.GetRedis() != nil))
	return a, nil
}

// close releases resources in reverse order of acquisition
func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

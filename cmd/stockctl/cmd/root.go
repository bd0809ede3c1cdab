// Package cmd holds the stockctl commands
package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/vikasavnish/mandacarubroker/internal/config"
	"github.com/vikasavnish/mandacarubroker/internal/db"
	"github.com/vikasavnish/mandacarubroker/internal/logger"
)

var (
	envFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "stockctl",
	Short: "Mandacaru Broker stock service - operator CLI",
	Long: `Mandacaru Broker stock service - operator CLI

Commands:
    migrate     create or update the stock schema
    seed        insert the reference stocks
    routes      print the HTTP routes served by the server
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(routesCmd)
}

// initConfig loads the env file, then the configuration and logger
func initConfig() error {
	if err := godotenv.Load(envFile); err != nil && verbose {
		fmt.Printf("Warning: %s not found, using environment variables\n", envFile)
	}

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	if verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.Logging.Format = "pretty"
	cfg.Logging.FileEnabled = false
	return logger.Init(cfg.Logging, "stockctl", config.Version)
}

// openDatabase connects without migrating; commands decide that themselves
func openDatabase() (*gorm.DB, error) {
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("storage driver %q has no database to work on", cfg.Database.Driver)
	}

	dbCfg := cfg.Database
	dbCfg.AutoMigrate = false
	return db.Connect(dbCfg)
}

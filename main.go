package main

import (
	"fmt"
	"os"

	"livebait-directory/config"
	"livebait-directory/database"
	"livebait-directory/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app is what every subcommand needs: settings and a logger.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "livebait",
		Short:         "Live bait shop directory: loader, API server and maintenance tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			a.log = utils.NewLogger(a.cfg.LogLevel, a.cfg.LogFormat)
			// Config warnings go through the package logger.
			logrus.SetLevel(a.log.GetLevel())
			logrus.SetFormatter(a.log.Formatter)
		},
	}

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newImportCmd(a))
	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newSeedRegionsCmd(a))
	cmd.AddCommand(newStaticMapsCmd(a))
	cmd.AddCommand(newHashPasswordCmd())
	return cmd
}

// connect validates the config and opens the database.
func (a *app) connect(requireJWT bool) (*gorm.DB, error) {
	if err := a.cfg.Validate(requireJWT); err != nil {
		return nil, withCode(exitConfig, err)
	}

	db, err := database.Connect(a.cfg.DatabaseURL)
	if err != nil {
		return nil, withCode(exitDB, errors.Wrap(err, "connect to database"))
	}
	return db, nil
}

func (a *app) migrate(db *gorm.DB) error {
	if err := database.Migrate(db); err != nil {
		return withCode(exitDB, errors.Wrap(err, "run migrations"))
	}
	a.log.Info("Migrations applied")
	return nil
}

func closeDB(db *gorm.DB, log logrus.FieldLogger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("Error closing database connection")
		return
	}
	log.Debug("Database connection closed")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}

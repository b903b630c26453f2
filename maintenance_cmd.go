package main

import (
	"bufio"
	"fmt"
	"strings"

	"livebait-directory/database"
	"livebait-directory/firebase"
	"livebait-directory/regions"
	"livebait-directory/staticmap"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the directory tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.connect(false)
			if err != nil {
				return err
			}
			defer closeDB(db, a.log)
			return a.migrate(db)
		},
	}
}

func newSeedRegionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-regions",
		Short: "Create a region row for every allowed region",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.connect(false)
			if err != nil {
				return err
			}
			defer closeDB(db, a.log)

			created, err := database.SeedRegions(db, regions.Default(), a.log)
			if err != nil {
				return withCode(exitDB, err)
			}
			a.log.WithField("created", created).Info("Regions seeded")
			return nil
		},
	}
}

func newStaticMapsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "staticmaps",
		Short: "Store static map images for listings that have none",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.MapsServerKey == "" {
				return withCode(exitConfig, staticmap.ErrNoKey)
			}
			db, err := a.connect(false)
			if err != nil {
				return err
			}
			defer closeDB(db, a.log)

			ctx := cmd.Context()
			fbApp, err := firebase.NewApp(ctx, a.cfg.GoogleCredentials, a.log)
			if err != nil {
				return withCode(exitRemote, err)
			}
			storage, err := firebase.NewStorage(fbApp, a.cfg.FirebaseBucket, a.log)
			if err != nil {
				return withCode(exitConfig, err)
			}

			res, err := staticmap.NewBackfiller(db, storage, a.cfg.MapsServerKey, a.log).Run(ctx, limit)
			if err != nil {
				return withCode(exitDB, err)
			}
			a.log.WithFields(logrus.Fields{"stored": res.Stored, "failed": res.Failed}).Info("Static map backfill finished")
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum listings to process (0 for all)")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.Wrap(err, "read password")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := hashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

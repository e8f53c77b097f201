package main

import (
	"github.com/spf13/cobra"

	"github.com/mudhay027/ritaitutor/config"
	srv "github.com/mudhay027/ritaitutor/internal/server"
)

func migrateCMD() *cobra.Command {
	var migDir string
	var direction string
	var steps int
	var cfgPath string

	var migrate = &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			dsn, err := cfg.Storage.Postgres.DSN()
			if err != nil {
				return err
			}
			return srv.Migrate(migDir, dsn, direction, steps)
		},
	}
	migrate.Flags().StringVar(&migDir, "dir", "file://migrations", "migrations source (file://migrations)")
	migrate.Flags().StringVar(&direction, "direction", "up", "up or down")
	migrate.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	migrate.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.json)")

	return migrate
}

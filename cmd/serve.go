package main

import (
	"github.com/spf13/cobra"

	"github.com/mudhay027/ritaitutor/config"
	srv "github.com/mudhay027/ritaitutor/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the tutoring HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			return srv.Run(cfg)
		},
	}
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.json)")

	return serve
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/aldinh777/rc-template-sg/internal/build"
)

func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			if err := build.New(cfg, build.Options{}).Clean(); err != nil {
				return err
			}
			success("Removed %s", displayPath(cfg, cfg.OutputPath()))
			return nil
		},
	}
}

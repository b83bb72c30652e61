package main

import (
	"fmt"

	"github.com/danmuck/iacctl/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Manage iacctl.toml",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			path := pathArg(args)
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(c.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Load and check a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load(pathArg(args))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.OutOrStdout(), "ok: chunk_size=%d envelope_version=%d deeplink=%s?%s=\n",
				cfg.ChunkSize, cfg.EnvelopeVersion, cfg.DeepLinkHost, cfg.DeepLinkParam)
			return err
		},
	}

	c.AddCommand(initCmd, validateCmd)
	return c
}

func pathArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "iacctl.toml"
}

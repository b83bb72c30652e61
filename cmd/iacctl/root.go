package main

import (
	"fmt"

	"github.com/danmuck/iacctl/internal/config"
	"github.com/danmuck/iacctl/internal/observability"
	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/danmuck/iacctl/internal/serializer"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	cfg        config.Config
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{cfg: config.Default()}
	c := &cobra.Command{
		Use:           "iacctl",
		Short:         "Encode and decode air-gapped IAC frames",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if opts.configPath != "" {
				cfg, err := config.Load(opts.configPath)
				if err != nil {
					return err
				}
				opts.cfg = cfg
			}
			observability.InitLogger("iacctl", opts.cfg.LogLevel)
			return nil
		},
	}
	c.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to iacctl.toml")

	c.AddCommand(
		newEncodeCommand(opts),
		newDecodeCommand(opts),
		newConfigCommand(),
		newSchemasCommand(opts),
	)
	return c
}

func (o *rootOptions) registry() (*schema.Registry, error) {
	if o.cfg.SchemaDir == "" {
		return schema.Default()
	}
	b, err := schema.DefaultBuilder()
	if err != nil {
		return nil, err
	}
	if err := schema.LoadDir(b, o.cfg.SchemaDir); err != nil {
		return nil, fmt.Errorf("schema_dir %s: %w", o.cfg.SchemaDir, err)
	}
	return b.Build(), nil
}

func (o *rootOptions) serializer() (*serializer.Serializer, error) {
	reg, err := o.registry()
	if err != nil {
		return nil, err
	}
	return serializer.New(
		serializer.WithRegistry(reg),
		serializer.WithVersion(o.cfg.EnvelopeVersion),
		serializer.WithDeepLink(o.cfg.DeepLinkHost, o.cfg.DeepLinkParam),
		serializer.WithValidator("btc", serializer.BitcoinAddresses),
	)
}

package main

import (
	"fmt"

	"github.com/danmuck/iacctl/internal/protocol/schema"
	"github.com/spf13/cobra"
)

func newSchemasCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List registered message layouts",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			reg, err := root.registry()
			if err != nil {
				return err
			}
			for _, key := range reg.Keys() {
				if _, err := fmt.Fprintln(c.OutOrStdout(), schema.DocumentName(key)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

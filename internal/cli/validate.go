package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the merged configuration (no network I/O)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK (target %s, listen %s, every %s)\n",
				cfg.PDU.DataURL(), cfg.Listen.ListenAddr(), cfg.Polling.Interval)
			return nil
		},
	}
}

package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/pdu-exporter/internal/infra/logger"
	"github.com/aalvaropc/pdu-exporter/internal/infra/pduclient"
	"github.com/aalvaropc/pdu-exporter/internal/ui/tui"
)

func watchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live terminal view of the PDU readings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			// The TUI owns the terminal; logs only go to a file when one is set.
			logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
			if cfg.Log.File == "" {
				logCfg.Output = io.Discard
			}
			cleanup, err := logger.Setup(logCfg)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			src := pduclient.New(cfg.PDU, pduclient.WithLogger(logger.L()))
			return tui.Run(cmd.Context(), tui.Deps{
				Source:   src,
				Interval: cfg.Polling.Interval,
				Target:   src.URL(),
				Logger:   logger.L(),
			})
		},
	}
}

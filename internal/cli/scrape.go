package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/infra/logger"
	"github.com/aalvaropc/pdu-exporter/internal/infra/pduclient"
	"github.com/aalvaropc/pdu-exporter/internal/infra/snapshotstore"
	"github.com/aalvaropc/pdu-exporter/internal/usecase"
)

func scrapeCmd(opts *rootOptions) *cobra.Command {
	var format string
	var saveDir string

	c := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the PDU document once and print what would be exported",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "pretty" && format != "json" {
				return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			cleanup, err := logger.Setup(logger.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				File:   cfg.Log.File,
			})
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			src := pduclient.New(cfg.PDU, pduclient.WithLogger(logger.L()))
			uc := usecase.NewScrape(src, nil, usecase.WithLogger(logger.L()))

			snap, err := uc.Execute(cmd.Context())
			if err != nil {
				if format == "json" {
					_ = printScrapeError(cmd.OutOrStdout(), src.URL(), err)
				}
				return err
			}

			var id string
			if saveDir != "" {
				id, err = snapshotstore.NewJSONStore(saveDir).SaveSnapshot(snap)
				if err != nil {
					_ = printSnapshot(cmd.OutOrStdout(), snap, "", format)
					return err
				}
			}

			return printSnapshot(cmd.OutOrStdout(), snap, id, format)
		},
	}

	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().StringVar(&saveDir, "save-dir", "", "Save the snapshot as JSON under this directory")
	return c
}

func printSnapshot(w io.Writer, snap domain.Snapshot, id string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		payload := map[string]any{
			"snapshot": snap,
		}
		if id != "" {
			payload["snapshot_id"] = id
		}
		return enc.Encode(payload)
	case "pretty", "":
		printPrettySnapshot(w, snap, id)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printScrapeError(w io.Writer, target string, err error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"target": target,
		"error":  domain.NewRunError(err),
		"stage":  domain.StageOf(err),
	})
}

func printPrettySnapshot(w io.Writer, snap domain.Snapshot, id string) {
	fmt.Fprintf(w, "Host:     %s\n", snap.Host)
	fmt.Fprintf(w, "Fetched:  %s\n", snap.FetchedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Devices:  %d (%d exported)\n", len(snap.Devices), countExported(snap))
	fmt.Fprintf(w, "Outlets:  %d\n", snap.OutletCount())
	if id != "" {
		fmt.Fprintf(w, "Saved as: %s\n", id)
	}
	fmt.Fprintln(w)

	for _, d := range snap.Devices {
		mark := "✓"
		if !d.Exported() {
			mark = "-"
		}
		fmt.Fprintf(w, "%s %s (%s) id=%s\n", mark, d.Name, d.Type, d.ID)
		if !d.Exported() {
			fmt.Fprintf(w, "  skipped: no outlets\n\n")
			continue
		}

		for _, f := range d.Fields {
			fmt.Fprintf(w, "  %s = %s\n", f.Key, f.Value)
		}
		fmt.Fprintf(w, "  outlets:\n")
		for _, o := range d.Outlets {
			fmt.Fprintf(w, "    [%s] %-3s %-16s amps=%g watts=%g kwh=%g\n", o.Status, o.Num, o.Name, o.Amps, o.Watts, o.KWattHrs)
		}
		fmt.Fprintln(w)
	}

	if len(snap.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings:\n")
		for _, msg := range snap.Warnings {
			fmt.Fprintf(w, "  ✗ %s\n", msg)
		}
	}
}

func countExported(snap domain.Snapshot) int {
	n := 0
	for _, d := range snap.Devices {
		if d.Exported() {
			n++
		}
	}
	return n
}

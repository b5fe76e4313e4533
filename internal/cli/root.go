package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aalvaropc/pdu-exporter/internal/buildinfo"
	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/infra/config"
	"github.com/aalvaropc/pdu-exporter/internal/usecase"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configFile  string
	envFile     string
	snapshotDir string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          buildinfo.Name,
		Short:        "Prometheus exporter for metered/switched PDUs (data.xml)",
		Version:      buildinfo.String(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file (default .env when present)")
	cmd.PersistentFlags().StringVar(&opts.snapshotDir, "snapshot-dir", "", "serve: archive every successful snapshot as JSON under this directory")
	addConfigFlags(cmd.PersistentFlags())

	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(scrapeCmd(opts))
	cmd.AddCommand(watchCmd(opts))
	cmd.AddCommand(validateCmd(opts))
	cmd.AddCommand(initCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// addConfigFlags registers one flag per config.Bindings entry. Defaults are
// shown for help only; unchanged flags never override env or file values.
func addConfigFlags(fs *pflag.FlagSet) {
	d := domain.DefaultConfig()

	fs.String("pdu-address", "", "PDU host or IP (env PDU_ADDRESS)")
	fs.Int("pdu-port", d.PDU.Port, "PDU HTTP port (env PDU_PORT)")
	fs.String("pdu-scheme", d.PDU.Scheme, "http|https (env PDU_SCHEME)")
	fs.String("pdu-path", d.PDU.Path, "path of the XML document (env PDU_PATH)")
	fs.Int("pdu-timeout", int(d.PDU.RequestTimeout.Seconds()), "request timeout in seconds (env PDU_REQUEST_TIMEOUT)")
	fs.Int64("pdu-max-bytes", d.PDU.MaxDocumentBytes, "maximum size of the XML document (env PDU_MAX_DOCUMENT_BYTES)")
	fs.Bool("pdu-insecure", false, "skip TLS verification (env PDU_INSECURE_SKIP_VERIFY)")
	fs.Int("interval", int(d.Polling.Interval.Seconds()), "seconds between polls (env POLLING_INTERVAL_SECONDS)")
	fs.String("listen-address", d.Listen.Address, "metrics bind address (env LISTEN_ADDRESS)")
	fs.Int("listen-port", d.Listen.Port, "metrics port (env LISTEN_PORT)")
	fs.Bool("drop-stale", false, "drop series missing from the latest document (env DROP_STALE_SERIES)")
	fs.String("log-level", d.Log.Level, "debug|info|warn|error (env LOG_LEVEL)")
	fs.String("log-format", d.Log.Format, "text|json (env LOG_FORMAT)")
	fs.String("log-file", "", "write logs to this file instead of stderr (env LOG_FILE)")
}

func loaderFor(cmd *cobra.Command, opts *rootOptions) config.Loader {
	return config.Loader{Options: config.Options{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
		Flags:      cmd.Flags(),
	}}
}

// loadConfig loads and validates the merged configuration.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (domain.Config, error) {
	return usecase.NewValidateConfig(loaderFor(cmd, opts)).Execute(cmd.Context())
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/ports"
)

// DefaultEnvFile is read when present; a missing one is not an error.
const DefaultEnvFile = ".env"

// Options controls where configuration is read from.
type Options struct {
	// ConfigFile is an optional YAML file.
	ConfigFile string
	// EnvFile overrides DefaultEnvFile; an explicit file must exist.
	EnvFile string
	// Flags, when set, override every other source for flags the user changed.
	Flags *pflag.FlagSet
}

// Binding ties a config key to its environment variable and flag.
type Binding struct {
	Key  string
	Env  string
	Flag string
}

// Bindings lists every configurable key.
var Bindings = []Binding{
	{"pdu.address", "PDU_ADDRESS", "pdu-address"},
	{"pdu.port", "PDU_PORT", "pdu-port"},
	{"pdu.scheme", "PDU_SCHEME", "pdu-scheme"},
	{"pdu.path", "PDU_PATH", "pdu-path"},
	{"pdu.request_timeout_seconds", "PDU_REQUEST_TIMEOUT", "pdu-timeout"},
	{"pdu.max_document_bytes", "PDU_MAX_DOCUMENT_BYTES", "pdu-max-bytes"},
	{"pdu.insecure_skip_verify", "PDU_INSECURE_SKIP_VERIFY", "pdu-insecure"},
	{"polling_interval_seconds", "POLLING_INTERVAL_SECONDS", "interval"},
	{"listen.address", "LISTEN_ADDRESS", "listen-address"},
	{"listen.port", "LISTEN_PORT", "listen-port"},
	{"metrics.drop_stale", "DROP_STALE_SERIES", "drop-stale"},
	{"log.level", "LOG_LEVEL", "log-level"},
	{"log.format", "LOG_FORMAT", "log-format"},
	{"log.file", "LOG_FILE", "log-file"},
}

// Load merges defaults < config file < environment (.env included) < flags.
// The result is not validated; call domain.Config.Validate.
func Load(opts Options) (domain.Config, error) {
	if err := LoadEnvFile(opts.EnvFile); err != nil {
		return domain.Config{}, err
	}

	base := domain.DefaultConfig()
	if strings.TrimSpace(opts.ConfigFile) != "" {
		var err error
		base, err = LoadFile(opts.ConfigFile, base)
		if err != nil {
			return domain.Config{}, err
		}
	}

	v := viper.New()
	setDefaults(v, base)

	for _, b := range Bindings {
		if err := v.BindEnv(b.Key, b.Env); err != nil {
			return domain.Config{}, bindError(b.Key, err)
		}
		if opts.Flags == nil {
			continue
		}
		if f := opts.Flags.Lookup(b.Flag); f != nil {
			if err := v.BindPFlag(b.Key, f); err != nil {
				return domain.Config{}, bindError(b.Key, err)
			}
		}
	}

	return fromViper(v)
}

// LoadEnvFile exports variables from a dotenv file without overriding
// variables already present in the environment.
func LoadEnvFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &domain.OpError{
			Op:   "config.load_env_file",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	if err := gotenv.Load(path); err != nil {
		return &domain.OpError{
			Op:   "config.load_env_file",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return nil
}

// LoadFile reads a YAML config file and applies it on top of base.
func LoadFile(path string, base domain.Config) (domain.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return base, &domain.OpError{
			Op:   "config.load_file",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y YAMLConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return base, &domain.OpError{
			Op:   "config.load_file",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return MapFile(path, y, base)
}

func setDefaults(v *viper.Viper, c domain.Config) {
	v.SetDefault("pdu.address", c.PDU.Address)
	v.SetDefault("pdu.port", c.PDU.Port)
	v.SetDefault("pdu.scheme", c.PDU.Scheme)
	v.SetDefault("pdu.path", c.PDU.Path)
	v.SetDefault("pdu.request_timeout_seconds", int(c.PDU.RequestTimeout/time.Second))
	v.SetDefault("pdu.max_document_bytes", c.PDU.MaxDocumentBytes)
	v.SetDefault("pdu.insecure_skip_verify", c.PDU.InsecureSkipVerify)
	v.SetDefault("polling_interval_seconds", int(c.Polling.Interval/time.Second))
	v.SetDefault("listen.address", c.Listen.Address)
	v.SetDefault("listen.port", c.Listen.Port)
	v.SetDefault("metrics.drop_stale", c.Metrics.DropStale)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
	v.SetDefault("log.file", c.Log.File)
}

func fromViper(v *viper.Viper) (domain.Config, error) {
	r := reader{v: v}

	cfg := domain.Config{
		PDU: domain.PDUConfig{
			Address:            strings.TrimSpace(v.GetString("pdu.address")),
			Port:               r.int("pdu.port"),
			Scheme:             strings.ToLower(v.GetString("pdu.scheme")),
			Path:               v.GetString("pdu.path"),
			RequestTimeout:     seconds(r.int("pdu.request_timeout_seconds")),
			MaxDocumentBytes:   r.int64("pdu.max_document_bytes"),
			InsecureSkipVerify: r.bool("pdu.insecure_skip_verify"),
		},
		Polling: domain.PollingConfig{
			Interval: seconds(r.int("polling_interval_seconds")),
		},
		Listen: domain.ListenConfig{
			Address: v.GetString("listen.address"),
			Port:    r.int("listen.port"),
		},
		Metrics: domain.MetricsConfig{
			DropStale: r.bool("metrics.drop_stale"),
		},
		Log: domain.LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
			File:   v.GetString("log.file"),
		},
	}

	if r.err != nil {
		return domain.Config{}, r.err
	}
	return cfg, nil
}

// reader keeps the first conversion error so malformed values are not
// silently read as zero.
type reader struct {
	v   *viper.Viper
	err error
}

func (r *reader) int(key string) int {
	n, err := cast.ToIntE(strings.TrimSpace(cast.ToString(r.v.Get(key))))
	if err != nil && r.err == nil {
		r.err = invalidValue(key, r.v.Get(key), err)
	}
	return n
}

func (r *reader) int64(key string) int64 {
	n, err := cast.ToInt64E(strings.TrimSpace(cast.ToString(r.v.Get(key))))
	if err != nil && r.err == nil {
		r.err = invalidValue(key, r.v.Get(key), err)
	}
	return n
}

func (r *reader) bool(key string) bool {
	b, err := cast.ToBoolE(r.v.Get(key))
	if err != nil && r.err == nil {
		r.err = invalidValue(key, r.v.Get(key), err)
	}
	return b
}

func invalidValue(key string, raw any, err error) error {
	return &domain.OpError{
		Op:   "config.load",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("field %s: invalid value %q: %v: %w", key, cast.ToString(raw), err, domain.ErrInvalidConfig),
	}
}

func bindError(key string, err error) error {
	return &domain.OpError{
		Op:   "config.bind",
		Kind: domain.KindExecution,
		Err:  fmt.Errorf("key %s: %w", key, err),
	}
}

// Loader adapts Load to ports.ConfigLoader.
type Loader struct {
	Options Options
}

var _ ports.ConfigLoader = Loader{}

func (l Loader) LoadConfig() (domain.Config, error) {
	return Load(l.Options)
}

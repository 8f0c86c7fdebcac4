package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/Chiplis/Photon-solana-contracts/internal/aggregator"
	"github.com/Chiplis/Photon-solana-contracts/internal/collector"
	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/internal/ledger"
	"github.com/Chiplis/Photon-solana-contracts/internal/transport/rabbitmq"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

const (
	// EnvPrefix prefixes every environment override, e.g. PHOTON_RABBITMQ_CONNECT_HOST
	EnvPrefix = "PHOTON"
	// FileName is the config file looked up in the home directory
	FileName = "config"
)

const (
	LogFormatPlain = "plain"
	LogFormatJSON  = "json"
)

// LogConfig selects the level and encoding of the daemon logs.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GovConfig names the governance protocol signatures are verified against and the
// registry entry emitted bundles are applied to.
type GovConfig struct {
	GovProtocol    string `mapstructure:"gov_protocol"`
	TargetProtocol string `mapstructure:"target_protocol"`
}

// TelemetryConfig configures metric collection and the HTTP endpoint serving
// metrics and registry queries.
type TelemetryConfig struct {
	Enabled                 bool   `mapstructure:"enabled"`
	ServiceName             string `mapstructure:"service_name"`
	PrometheusRetentionTime int64  `mapstructure:"prometheus_retention_time"`
	ListenAddress           string `mapstructure:"listen_address"`
}

// Config is the complete photond configuration.
type Config struct {
	Log        LogConfig         `mapstructure:"log"`
	Gov        GovConfig         `mapstructure:"gov"`
	Ledger     ledger.Config     `mapstructure:"ledger"`
	RabbitMQ   rabbitmq.Config   `mapstructure:"rabbitmq"`
	Aggregator aggregator.Config `mapstructure:"aggregator"`
	Collector  collector.Config  `mapstructure:"collector"`
	Telemetry  TelemetryConfig   `mapstructure:"telemetry"`
}

// DefaultConfig returns the default photond configuration.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatPlain,
		},
		Gov: GovConfig{
			GovProtocol: types.DefaultGovProtocolName,
		},
		Ledger:     ledger.DefaultConfig(),
		RabbitMQ:   rabbitmq.DefaultConfig(),
		Aggregator: aggregator.DefaultConfig(),
		Telemetry: TelemetryConfig{
			Enabled:                 true,
			ServiceName:             "photond",
			PrometheusRetentionTime: 60,
			ListenAddress:           "127.0.0.1:26660",
		},
	}
}

// GovProtocolID returns the configured governance protocol identity.
func (c Config) GovProtocolID() (types.ProtocolID, error) {
	return types.ParseProtocolID(c.Gov.GovProtocol)
}

// TargetProtocolID returns the registry entry bundles are applied to, defaulting to
// the governance protocol.
func (c Config) TargetProtocolID() (types.ProtocolID, error) {
	if c.Gov.TargetProtocol == "" {
		return c.GovProtocolID()
	}
	return types.ParseProtocolID(c.Gov.TargetProtocol)
}

// Validate checks every section used by the daemon.
func (c Config) Validate() error {
	switch c.Log.Format {
	case LogFormatPlain, LogFormatJSON:
	default:
		return sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "unsupported log format %q", c.Log.Format)
	}
	if _, err := c.GovProtocolID(); err != nil {
		return sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "gov protocol: %v", err)
	}
	if _, err := c.TargetProtocolID(); err != nil {
		return sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "target protocol: %v", err)
	}
	if err := c.Ledger.Validate(); err != nil {
		return err
	}
	if err := c.RabbitMQ.Validate(); err != nil {
		return err
	}
	return c.Aggregator.Validate()
}

// SetDefaults registers every configuration key with its default value, so that
// environment overrides apply to keys absent from the config file.
func SetDefaults(v *viper.Viper, cfg Config) {
	defaults := map[string]interface{}{
		"log.level":  cfg.Log.Level,
		"log.format": cfg.Log.Format,

		"gov.gov_protocol":    cfg.Gov.GovProtocol,
		"gov.target_protocol": cfg.Gov.TargetProtocol,

		"ledger.backend":      cfg.Ledger.Backend,
		"ledger.genesis_file": cfg.Ledger.GenesisFile,
		"ledger.executor":     cfg.Ledger.Executor,

		"rabbitmq.connect.host":            cfg.RabbitMQ.Connect.Host,
		"rabbitmq.connect.port":            cfg.RabbitMQ.Connect.Port,
		"rabbitmq.connect.user":            cfg.RabbitMQ.Connect.User,
		"rabbitmq.connect.password":        cfg.RabbitMQ.Connect.Password,
		"rabbitmq.connect.vhost":           cfg.RabbitMQ.Connect.VHost,
		"rabbitmq.binding.exchange":        cfg.RabbitMQ.Binding.Exchange,
		"rabbitmq.binding.exchange_kind":   cfg.RabbitMQ.Binding.ExchangeKind,
		"rabbitmq.binding.routing_key":     cfg.RabbitMQ.Binding.RoutingKey,
		"rabbitmq.binding.queue":           cfg.RabbitMQ.Binding.Queue,
		"rabbitmq.reconnect.initial_delay": cfg.RabbitMQ.Reconnect.InitialDelay,
		"rabbitmq.reconnect.max_delay":     cfg.RabbitMQ.Reconnect.MaxDelay,
		"rabbitmq.reconnect.multiplier":    cfg.RabbitMQ.Reconnect.Multiplier,
		"rabbitmq.reconnect.jitter":        cfg.RabbitMQ.Reconnect.Jitter,
		"rabbitmq.reconnect.max_attempts":  cfg.RabbitMQ.Reconnect.MaxAttempts,
		"rabbitmq.consumer_tag":            cfg.RabbitMQ.ConsumerTag,
		"rabbitmq.prefetch":                cfg.RabbitMQ.Prefetch,

		"aggregator.retention_window": cfg.Aggregator.RetentionWindow,
		"aggregator.prune_interval":   cfg.Aggregator.PruneInterval,
		"aggregator.max_pending":      cfg.Aggregator.MaxPending,
		"aggregator.max_completed":    cfg.Aggregator.MaxCompleted,
		"aggregator.signature_cache":  cfg.Aggregator.SignatureCache,

		"collector.private_key": cfg.Collector.PrivateKey,
		"collector.key_file":    cfg.Collector.KeyFile,

		"telemetry.enabled":                   cfg.Telemetry.Enabled,
		"telemetry.service_name":              cfg.Telemetry.ServiceName,
		"telemetry.prometheus_retention_time": cfg.Telemetry.PrometheusRetentionTime,
		"telemetry.listen_address":            cfg.Telemetry.ListenAddress,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Load reads the configuration from file, or from the config file in home when file is
// empty, applying PHOTON_ prefixed environment overrides. A missing config file in
// home is not an error.
func Load(v *viper.Viper, home, file string) (Config, error) {
	cfg := DefaultConfig()
	SetDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return cfg, sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "failed to read config file: %v", err)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(home)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return cfg, sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "failed to read config file: %v", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "failed to decode config: %v", err)
	}

	if cfg.Ledger.GenesisFile != "" && !filepath.IsAbs(cfg.Ledger.GenesisFile) {
		cfg.Ledger.GenesisFile = filepath.Join(home, cfg.Ledger.GenesisFile)
	}
	return cfg, nil
}

// DefaultHome returns $HOME/.photon, or .photon when the home directory is unknown.
func DefaultHome() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".photon"
	}
	return filepath.Join(userHome, ".photon")
}

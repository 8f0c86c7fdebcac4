package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/version"

	"github.com/Chiplis/Photon-solana-contracts/cmd/photond/config"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/client/cli"
)

const (
	appName = "photond"

	flagConfig    = "config"
	flagLogLevel  = "log_level"
	flagLogFormat = "log_format"
)

// appContext is the state shared by subcommands once the configuration is loaded.
type appContext struct {
	home   string
	cfg    config.Config
	logger log.Logger
}

// NewRootCmd creates the photond root command.
func NewRootCmd() *cobra.Command {
	if version.AppName == "" {
		version.AppName = appName
	}

	app := &appContext{}
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Cross-chain governance relay",
		Long:          "photond verifies keeper-attested governance operations and applies them to the protocol registry.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd)
		},
	}

	rootCmd.PersistentFlags().String(flags.FlagHome, config.DefaultHome(), "Directory for config and data")
	rootCmd.PersistentFlags().String(flagConfig, "", "Config file, defaults to config.{toml,yaml,json} in the home directory")
	rootCmd.PersistentFlags().String(flagLogLevel, "", "Log level, overrides log.level")
	rootCmd.PersistentFlags().String(flagLogFormat, "", "Log format (plain|json), overrides log.format")

	rootCmd.AddCommand(
		StartCmd(app),
		AttestCmd(app),
		cli.GetEncodeCmd(),
		cli.GetFingerprintCmd(),
		cli.GetQuorumCmd(),
		cli.GetQueryCmd(config.DefaultHome()),
		version.NewVersionCommand(),
	)

	return rootCmd
}

func (app *appContext) load(cmd *cobra.Command) error {
	home, err := cmd.Flags().GetString(flags.FlagHome)
	if err != nil {
		return err
	}
	file, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return err
	}

	v := viper.New()
	cfg, err := config.Load(v, home, file)
	if err != nil {
		return err
	}

	if level, _ := cmd.Flags().GetString(flagLogLevel); level != "" {
		cfg.Log.Level = level
	}
	if format, _ := cmd.Flags().GetString(flagLogFormat); format != "" {
		cfg.Log.Format = format
	}

	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	app.home, app.cfg, app.logger = home, cfg, logger
	return nil
}

// newLogger builds a level filtered tendermint logger writing to w.
func newLogger(cfg config.LogConfig, w io.Writer) (log.Logger, error) {
	var logger log.Logger
	switch cfg.Format {
	case config.LogFormatJSON:
		logger = log.NewTMJSONLogger(log.NewSyncWriter(w))
	default:
		logger = log.NewTMLogger(log.NewSyncWriter(w))
	}

	option, err := log.AllowLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, option), nil
}

package rabbitmq

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
)

// ConnectConfig addresses the broker.
type ConnectConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	VHost    string `mapstructure:"vhost"`
}

// BindingConfig names the exchange, routing key and queue keeper messages flow
// through.
type BindingConfig struct {
	Exchange     string `mapstructure:"exchange"`
	ExchangeKind string `mapstructure:"exchange_kind"`
	RoutingKey   string `mapstructure:"routing_key"`
	Queue        string `mapstructure:"queue"`
}

// ReconnectConfig is the exponential backoff applied between connection attempts.
// MaxAttempts of zero retries forever.
type ReconnectConfig struct {
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
	Multiplier   float64       `mapstructure:"multiplier"`
	Jitter       bool          `mapstructure:"jitter"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// Config is the complete AMQP transport configuration.
type Config struct {
	Connect     ConnectConfig   `mapstructure:"connect"`
	Binding     BindingConfig   `mapstructure:"binding"`
	Reconnect   ReconnectConfig `mapstructure:"reconnect"`
	ConsumerTag string          `mapstructure:"consumer_tag"`
	Prefetch    int             `mapstructure:"prefetch"`
}

// DefaultConfig returns a configuration for a local broker.
func DefaultConfig() Config {
	return Config{
		Connect: ConnectConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
			VHost:    "/",
		},
		Binding: BindingConfig{
			Exchange:     "keeper",
			ExchangeKind: amqp.ExchangeTopic,
			RoutingKey:   "keeper.operations",
			Queue:        "keeper.operations",
		},
		Reconnect: ReconnectConfig{
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2,
			Jitter:       true,
		},
		ConsumerTag: "photond",
		Prefetch:    64,
	}
}

// URL returns the AMQP URI of the broker.
func (c ConnectConfig) URL() string {
	return amqp.URI{
		Scheme:   "amqp",
		Host:     c.Host,
		Port:     c.Port,
		Username: c.User,
		Password: c.Password,
		Vhost:    c.VHost,
	}.String()
}

// Validate returns an error when the configuration cannot be used to connect.
func (c Config) Validate() error {
	if c.Connect.Host == "" {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "rabbitmq host cannot be empty")
	}
	if c.Connect.Port <= 0 || c.Connect.Port > 65535 {
		return sdkerrors.Wrapf(photonerrors.ErrInvalidConfig, "invalid rabbitmq port %d", c.Connect.Port)
	}
	if c.Binding.Exchange == "" || c.Binding.RoutingKey == "" {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "rabbitmq exchange and routing key are required")
	}
	if c.Reconnect.InitialDelay < 0 || c.Reconnect.MaxDelay < 0 {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "reconnect delays cannot be negative")
	}
	if c.Reconnect.MaxAttempts < 0 {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "reconnect attempts cannot be negative")
	}
	if c.Prefetch < 0 {
		return sdkerrors.Wrap(photonerrors.ErrInvalidConfig, "prefetch cannot be negative")
	}
	return nil
}

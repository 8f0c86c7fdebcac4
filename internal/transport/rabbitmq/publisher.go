package rabbitmq

import (
	"context"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/Chiplis/Photon-solana-contracts/internal/transport"
)

// Publisher sends keeper messages to the configured exchange and routing key.
type Publisher struct {
	cfg    Config
	client *client
	logger log.Logger
}

var _ transport.Publisher = (*Publisher)(nil)

// NewPublisher creates a Publisher. The connection is opened on first use.
func NewPublisher(cfg Config, logger log.Logger) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logger.With("module", "transport/rabbitmq")
	return &Publisher{
		cfg:    cfg,
		client: newClient(cfg, logger),
		logger: logger,
	}, nil
}

// Publish encodes msg as a persistent JSON message. A failed publish drops the
// connection and is tried once more on a fresh one.
func (p *Publisher) Publish(ctx context.Context, msg transport.KeeperMsg) error {
	bz, err := transport.EncodeKeeperMsg(msg)
	if err != nil {
		return err
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         bz,
	}

	for attempt := 0; attempt < 2; attempt++ {
		ch, _, err := p.client.channel(ctx)
		if err != nil {
			return err
		}

		err = ch.Publish(p.cfg.Binding.Exchange, p.cfg.Binding.RoutingKey, false, false, publishing)
		if err == nil {
			p.logger.Debug("keeper message published", "exchange", p.cfg.Binding.Exchange, "routing_key", p.cfg.Binding.RoutingKey, "bytes", len(bz))
			return nil
		}

		p.logger.Error("failed to publish keeper message", "attempt", attempt+1, "error", err.Error())
		p.client.reset()
		if attempt == 1 {
			return errors.Wrap(err, "failed to publish keeper message")
		}
	}
	return nil
}

// Close closes the underlying connection.
func (p *Publisher) Close() error {
	return p.client.close()
}

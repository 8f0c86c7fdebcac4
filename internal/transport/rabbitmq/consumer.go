package rabbitmq

import (
	"context"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tendermint/tendermint/libs/log"

	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/internal/telemetry"
	"github.com/Chiplis/Photon-solana-contracts/internal/transport"
)

// Consumer reads keeper messages from the configured queue. Messages are
// acknowledged once the handler returns; undecodable or rejected messages are
// negatively acknowledged without requeue.
type Consumer struct {
	cfg    Config
	client *client
	logger log.Logger
}

var _ transport.Consumer = (*Consumer)(nil)

// NewConsumer creates a Consumer. The configuration must name a queue.
func NewConsumer(cfg Config, logger log.Logger) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Binding.Queue == "" {
		return nil, errors.New("rabbitmq consumer requires a queue")
	}
	logger = logger.With("module", "transport/rabbitmq")
	return &Consumer{
		cfg:    cfg,
		client: newClient(cfg, logger),
		logger: logger,
	}, nil
}

// Consume delivers messages to handler until ctx is cancelled. A lost connection is
// reestablished with the configured backoff; Consume only returns early when the
// reconnect attempts are exhausted.
func (c *Consumer) Consume(ctx context.Context, handler transport.Handler) error {
	defer c.client.close()

	for {
		err := c.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, photonerrors.ErrReconnectExhausted) {
			return err
		}

		c.logger.Error("rabbitmq consumer interrupted, reconnecting", "error", err.Error())
		c.client.reset()
	}
}

func (c *Consumer) consumeOnce(ctx context.Context, handler transport.Handler) error {
	ch, closed, err := c.client.channel(ctx)
	if err != nil {
		return err
	}

	if c.cfg.Prefetch > 0 {
		if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
			return errors.Wrap(err, "failed to set prefetch")
		}
	}

	deliveries, err := ch.Consume(c.cfg.Binding.Queue, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to consume from %s", c.cfg.Binding.Queue)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return errors.New("rabbitmq connection closed")
			}
			return errors.Wrap(amqpErr, "rabbitmq connection closed")
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			c.handle(ctx, d, handler)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery, handler transport.Handler) {
	msg, err := transport.DecodeKeeperMsg(d.Body)
	if err != nil {
		telemetry.ReportTransportMessage("undecodable")
		c.logger.Error("dropping undecodable keeper message", "delivery_tag", d.DeliveryTag, "error", err.Error())
		c.nack(d)
		return
	}

	if err := handler(ctx, msg); err != nil {
		telemetry.ReportTransportMessage("rejected")
		c.logger.Info("keeper message rejected", "delivery_tag", d.DeliveryTag, "error", err.Error())
		c.nack(d)
		return
	}

	telemetry.ReportTransportMessage("accepted")
	if err := d.Ack(false); err != nil {
		c.logger.Error("failed to ack keeper message", "delivery_tag", d.DeliveryTag, "error", err.Error())
	}
}

func (c *Consumer) nack(d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		c.logger.Error("failed to nack keeper message", "delivery_tag", d.DeliveryTag, "error", err.Error())
	}
}

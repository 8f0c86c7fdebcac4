package rabbitmq

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tendermint/tendermint/libs/log"
)

// client owns a single AMQP connection and channel and reestablishes both with
// backoff after a failure.
type client struct {
	cfg    Config
	logger log.Logger

	rngMtx sync.Mutex
	rng    *rand.Rand

	mtx    sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed <-chan *amqp.Error
}

func newClient(cfg Config, logger log.Logger) *client {
	return &client{
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// channel returns the open channel and the close notification of its connection,
// connecting first when needed.
func (c *client) channel(ctx context.Context) (*amqp.Channel, <-chan *amqp.Error, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.ch != nil {
		return c.ch, c.closed, nil
	}

	err := retry(ctx, c.cfg.Reconnect, c.logger, c.lockedRand(), func() error {
		conn, err := amqp.Dial(c.cfg.Connect.URL())
		if err != nil {
			return errors.Wrapf(err, "failed to dial %s:%d", c.cfg.Connect.Host, c.cfg.Connect.Port)
		}

		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return errors.Wrap(err, "failed to open channel")
		}

		if err := declareTopology(ch, c.cfg.Binding); err != nil {
			conn.Close()
			return err
		}

		c.conn, c.ch = conn, ch
		c.closed = conn.NotifyClose(make(chan *amqp.Error, 1))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	c.logger.Info("connected to rabbitmq", "host", c.cfg.Connect.Host, "exchange", c.cfg.Binding.Exchange, "routing_key", c.cfg.Binding.RoutingKey)
	return c.ch, c.closed, nil
}

// reset drops the current connection so the next call to channel reconnects.
func (c *client) reset() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			c.logger.Debug("closing rabbitmq connection", "error", err.Error())
		}
	}
	c.conn, c.ch, c.closed = nil, nil, nil
}

func (c *client) close() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.ch, c.closed = nil, nil, nil
	if err != nil && !errors.Is(err, amqp.ErrClosed) {
		return errors.Wrap(err, "failed to close rabbitmq connection")
	}
	return nil
}

// lockedRand returns a rand source safe for concurrent use by the caller.
func (c *client) lockedRand() *rand.Rand {
	c.rngMtx.Lock()
	defer c.rngMtx.Unlock()
	return rand.New(rand.NewSource(c.rng.Int63()))
}

func declareTopology(ch *amqp.Channel, binding BindingConfig) error {
	kind := binding.ExchangeKind
	if kind == "" {
		kind = amqp.ExchangeTopic
	}
	if err := ch.ExchangeDeclare(binding.Exchange, kind, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "failed to declare exchange %s", binding.Exchange)
	}
	if binding.Queue == "" {
		return nil
	}
	if _, err := ch.QueueDeclare(binding.Queue, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "failed to declare queue %s", binding.Queue)
	}
	if err := ch.QueueBind(binding.Queue, binding.RoutingKey, binding.Exchange, false, nil); err != nil {
		return errors.Wrapf(err, "failed to bind queue %s to %s", binding.Queue, binding.Exchange)
	}
	return nil
}

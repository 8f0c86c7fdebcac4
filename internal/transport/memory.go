package transport

import (
	"context"
	"sync"

	"github.com/tendermint/tendermint/libs/log"

	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
)

// DefaultMemoryBufferSize is the per-consumer queue length of a MemoryBroker.
const DefaultMemoryBufferSize = 256

// MemoryBroker is an in-process Publisher and Consumer. Every published message is
// encoded, then fanned out to each active consumer, mirroring a fanout exchange with
// one queue per consumer.
type MemoryBroker struct {
	logger     log.Logger
	bufferSize int

	mtx    sync.RWMutex
	subs   map[int]*memoryQueue
	nextID int

	done      chan struct{}
	closeOnce sync.Once
}

type memoryQueue struct {
	msgs chan []byte
	done chan struct{}
}

var (
	_ Publisher = (*MemoryBroker)(nil)
	_ Consumer  = (*MemoryBroker)(nil)
)

// NewMemoryBroker creates a broker with per-consumer queues of bufferSize messages.
func NewMemoryBroker(logger log.Logger, bufferSize int) *MemoryBroker {
	if bufferSize <= 0 {
		bufferSize = DefaultMemoryBufferSize
	}
	return &MemoryBroker{
		logger:     logger.With("module", "transport/memory"),
		bufferSize: bufferSize,
		subs:       make(map[int]*memoryQueue),
		done:       make(chan struct{}),
	}
}

// Publish encodes msg and enqueues it for every consumer. It blocks while a consumer
// queue is full, until ctx is done.
func (b *MemoryBroker) Publish(ctx context.Context, msg KeeperMsg) error {
	bz, err := EncodeKeeperMsg(msg)
	if err != nil {
		return err
	}

	select {
	case <-b.done:
		return photonerrors.ErrTransportClosed
	default:
	}

	for _, q := range b.queues() {
		select {
		case q.msgs <- bz:
		case <-q.done:
			// consumer went away, the message is dropped with its queue
		case <-b.done:
			return photonerrors.ErrTransportClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Consume registers a consumer queue and delivers messages to handler until ctx is
// cancelled or the broker is closed. Undecodable messages are logged and dropped.
func (b *MemoryBroker) Consume(ctx context.Context, handler Handler) error {
	q, id, err := b.subscribe()
	if err != nil {
		return err
	}
	defer b.unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return photonerrors.ErrTransportClosed
		case bz := <-q.msgs:
			msg, err := DecodeKeeperMsg(bz)
			if err != nil {
				b.logger.Error("dropping undecodable keeper message", "error", err.Error())
				continue
			}
			if err := handler(ctx, msg); err != nil {
				b.logger.Debug("keeper message rejected", "error", err.Error())
			}
		}
	}
}

// Close stops every consumer. Publishing to a closed broker fails.
func (b *MemoryBroker) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// Subscribers returns the number of active consumers.
func (b *MemoryBroker) Subscribers() int {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	return len(b.subs)
}

func (b *MemoryBroker) queues() []*memoryQueue {
	b.mtx.RLock()
	defer b.mtx.RUnlock()

	queues := make([]*memoryQueue, 0, len(b.subs))
	for _, q := range b.subs {
		queues = append(queues, q)
	}
	return queues
}

func (b *MemoryBroker) subscribe() (*memoryQueue, int, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	select {
	case <-b.done:
		return nil, 0, photonerrors.ErrTransportClosed
	default:
	}

	id := b.nextID
	b.nextID++
	q := &memoryQueue{msgs: make(chan []byte, b.bufferSize), done: make(chan struct{})}
	b.subs[id] = q
	return q, id, nil
}

func (b *MemoryBroker) unsubscribe(id int) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if q, ok := b.subs[id]; ok {
		close(q.done)
		delete(b.subs, id)
	}
}

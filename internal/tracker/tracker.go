// Package tracker records metadata about every inbound request without
// holding up the request itself. Records are queued and handed to the
// configured sinks by a single background worker.
package tracker

import (
	"alcyxob/gym-tracker/internal/domain"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBuffer = 256
	sinkTimeout   = 2 * time.Second
)

// Sink receives request records. A failing sink only costs its own record.
type Sink interface {
	Name() string
	Record(ctx context.Context, record domain.RequestRecord) error
}

// Tracker fans request records out to sinks.
type Tracker struct {
	sinks   []Sink
	queue   chan domain.RequestRecord
	logger  *zap.Logger
	dropped atomic.Uint64

	// mu guards closed and the close of queue against concurrent sends.
	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
	done      chan struct{}
}

// New creates a Tracker. Call Start before Track.
func New(logger *zap.Logger, buffer int, sinks ...Sink) *Tracker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Tracker{
		sinks:  sinks,
		queue:  make(chan domain.RequestRecord, buffer),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (t *Tracker) Start() {
	t.startOnce.Do(func() {
		go t.run()
	})
}

// Track enqueues record. It never blocks; when the queue is full the record
// is dropped and false is returned. Records tracked after Close are ignored.
func (t *Tracker) Track(record domain.RequestRecord) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return false
	}
	select {
	case t.queue <- record:
		return true
	default:
		if n := t.dropped.Add(1); n == 1 || n%100 == 0 {
			t.logger.Warn("request tracker queue full, dropping records", zap.Uint64("dropped", n))
		}
		return false
	}
}

// Dropped reports how many records were discarded because the queue was full.
func (t *Tracker) Dropped() uint64 {
	return t.dropped.Load()
}

// Close stops accepting records and waits for queued ones to be delivered,
// or for ctx to expire.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		t.Start()
		close(t.queue)
	}
	t.mu.Unlock()
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tracker) run() {
	defer close(t.done)
	for record := range t.queue {
		for _, sink := range t.sinks {
			t.deliver(sink, record)
		}
	}
}

func (t *Tracker) deliver(sink Sink, record domain.RequestRecord) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("request tracker sink panicked", zap.String("sink", sink.Name()), zap.Any("panic", r))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := sink.Record(ctx, record); err != nil {
		t.logger.Warn("request tracker sink failed",
			zap.String("sink", sink.Name()), zap.String("path", record.Path), zap.Error(err))
	}
}

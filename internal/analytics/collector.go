package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Publisher delivers one keyed message. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
}

// Collector forwards QueryEvents to a Publisher from a background goroutine.
// Track never blocks: when the buffer is full or the collector is closed the
// event is dropped and counted.
type Collector struct {
	publisher Publisher
	eventCh   chan QueryEvent
	dropped   prometheus.Counter
	logger    *slog.Logger
	done      chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewCollector buffers up to bufferSize events. dropped may be nil.
func NewCollector(publisher Publisher, bufferSize int, dropped prometheus.Counter) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Collector{
		publisher: publisher,
		eventCh:   make(chan QueryEvent, bufferSize),
		dropped:   dropped,
		logger:    slog.Default().With("component", "analytics-collector"),
		done:      make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

func (c *Collector) Track(event QueryEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.drop(event, "collector closed")
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.drop(event, "buffer full")
	}
}

// Close stops accepting events and waits for the buffered ones to be sent.
// It must follow Start; later calls are no-ops.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.eventCh)
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) drop(event QueryEvent, reason string) {
	if c.dropped != nil {
		c.dropped.Inc()
	}
	c.logger.Warn("analytics event dropped", "reason", reason, "query", event.Query)
}

func (c *Collector) publish(ctx context.Context, event QueryEvent) {
	if err := c.publisher.Publish(ctx, string(event.Type), event); err != nil {
		c.logger.Error("failed to publish query event", "query", event.Query, "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}

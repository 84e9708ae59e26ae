package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrNotWatching = errors.New("provider location is not being watched")

// LocationSink persists one provider location sample.
type LocationSink interface {
	RecordProviderLocation(ctx context.Context, providerID uuid.UUID, p Point, at time.Time) error
}

type sample struct {
	point Point
	at    time.Time
}

// Watch consumes the location samples of one online provider.
type Watch struct {
	providerID uuid.UUID
	updates    chan sample
	cancel     context.CancelFunc
	done       chan struct{}
	once       sync.Once
}

// stop cancels the watch and waits for its goroutine. Safe to call repeatedly.
func (w *Watch) stop() {
	w.once.Do(w.cancel)
	<-w.done
}

// Presence owns the location watches of online providers, at most one per
// provider.
type Presence struct {
	mu      sync.Mutex
	watches map[uuid.UUID]*Watch
	sink    LocationSink
	buffer  int
	log     zerolog.Logger
}

func NewPresence(sink LocationSink, buffer int, log zerolog.Logger) *Presence {
	if buffer <= 0 {
		buffer = 1
	}
	return &Presence{
		watches: make(map[uuid.UUID]*Watch),
		sink:    sink,
		buffer:  buffer,
		log:     log,
	}
}

// Start begins watching providerID, replacing any previous watch.
func (p *Presence) Start(providerID uuid.UUID) {
	ctx, w := p.newWatch(providerID)

	p.mu.Lock()
	previous := p.watches[providerID]
	p.watches[providerID] = w
	p.mu.Unlock()

	if previous != nil {
		previous.stop()
	}

	go p.run(ctx, w)
	p.log.Debug().Str("provider_id", providerID.String()).Msg("location watch started")
}

// Ensure starts a watch for providerID unless one is already running.
// It reports whether a watch was started.
func (p *Presence) Ensure(providerID uuid.UUID) bool {
	p.mu.Lock()
	if _, ok := p.watches[providerID]; ok {
		p.mu.Unlock()
		return false
	}
	ctx, w := p.newWatch(providerID)
	p.watches[providerID] = w
	p.mu.Unlock()

	go p.run(ctx, w)
	p.log.Debug().Str("provider_id", providerID.String()).Msg("location watch started")
	return true
}

func (p *Presence) newWatch(providerID uuid.UUID) (context.Context, *Watch) {
	ctx, cancel := context.WithCancel(context.Background())
	return ctx, &Watch{
		providerID: providerID,
		updates:    make(chan sample, p.buffer),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Push queues a sample for providerID. When the queue is full the oldest
// queued sample is discarded.
func (p *Presence) Push(providerID uuid.UUID, pt Point) error {
	p.mu.Lock()
	w, ok := p.watches[providerID]
	p.mu.Unlock()
	if !ok {
		return ErrNotWatching
	}

	if offer(w.updates, sample{point: pt, at: time.Now()}) {
		p.log.Debug().Str("provider_id", providerID.String()).Msg("location queue full, oldest sample dropped")
	}
	return nil
}

// Watching reports whether providerID has an active watch.
func (p *Presence) Watching(providerID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.watches[providerID]
	return ok
}

// Stop ends the watch of providerID if there is one.
func (p *Presence) Stop(providerID uuid.UUID) {
	p.mu.Lock()
	w, ok := p.watches[providerID]
	delete(p.watches, providerID)
	p.mu.Unlock()

	if ok {
		w.stop()
		p.log.Debug().Str("provider_id", providerID.String()).Msg("location watch stopped")
	}
}

func (p *Presence) StopAll() {
	p.mu.Lock()
	watches := p.watches
	p.watches = make(map[uuid.UUID]*Watch)
	p.mu.Unlock()

	for _, w := range watches {
		w.stop()
	}
}

func (p *Presence) run(ctx context.Context, w *Watch) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-w.updates:
			if err := p.sink.RecordProviderLocation(ctx, w.providerID, s.point, s.at); err != nil {
				if ctx.Err() != nil {
					return
				}
				p.log.Warn().Err(err).Str("provider_id", w.providerID.String()).Msg("failed to record provider location")
			}
		}
	}
}

// offer enqueues s without blocking, evicting the oldest entry when ch is
// full. It reports whether an entry was evicted.
func offer(ch chan sample, s sample) (dropped bool) {
	for {
		select {
		case ch <- s:
			return dropped
		default:
		}
		select {
		case <-ch:
			dropped = true
		default:
		}
	}
}

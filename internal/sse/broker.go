// Package sse streams module changes and writing statistics to browser clients
// as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// Event types emitted by the broker.
const (
	ModuleCreated = "module.created"
	ModuleUpdated = "module.updated"
	ModuleDeleted = "module.deleted"
	StatsUpdated  = "stats.updated"
)

// Event is one message on the stream. Data is sent as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ModuleChange is the payload of module events. A deleted module only carries its slug.
type ModuleChange struct {
	Slug         string `json:"slug"`
	Title        string `json:"title,omitempty"`
	Kapitel      string `json:"kapitel,omitempty"`
	Unterkapitel string `json:"unterkapitel,omitempty"`
	Status       string `json:"status,omitempty"`
}

// Catalog supplies module details and statistics for event payloads.
// *modulestore.Store satisfies it.
type Catalog interface {
	Get(slug string) (*models.Module, error)
	Stats() (models.Stats, error)
}

// Option configures a Broker.
type Option func(*Broker)

// WithCatalog fills module events with metadata and stats events with the
// current statistics. Without a catalog module events carry only the slug and
// no stats events are sent.
func WithCatalog(c Catalog) Option {
	return func(b *Broker) { b.catalog = c }
}

// WithLogger sets the logger for payload lookup failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Broker) { b.logger = l }
}

// WithHeartbeat sends a comment line to idle clients every d so proxies keep
// the connection open. Zero disables it.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) { b.heartbeat = d }
}

// Broker fans events out to subscribed clients.
//
// A single loop goroutine owns the client set, the event sequence and the
// stats throttle. Statistics are computed outside the loop so disk reads never
// stall delivery.
type Broker struct {
	statsMin  time.Duration
	heartbeat time.Duration
	catalog   Catalog
	logger    *slog.Logger

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changedCh     chan struct{}
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. stats.updated is sent at most once per
// statsThrottle; changes inside the window produce one trailing update.
func NewBroker(statsThrottle time.Duration, opts ...Option) *Broker {
	if statsThrottle <= 0 {
		statsThrottle = 2 * time.Second
	}

	b := &Broker{
		statsMin:      statsThrottle,
		heartbeat:     30 * time.Second,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changedCh:     make(chan struct{}, 1),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		seq       uint64
		lastStats time.Time
		trailing  *time.Timer
		trailingC <-chan time.Time
	)
	defer func() {
		if trailing != nil {
			trailing.Stop()
		}
	}()

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			b.logger.Warn("sse: encode event", slog.String("type", event.Type), slog.String("error", err.Error()))
			return
		}
		seq++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload))
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	refreshStats := func() {
		lastStats = time.Now()
		go b.publishStats()
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case <-b.changedCh:
			if b.catalog == nil || trailingC != nil {
				continue
			}
			if wait := b.statsMin - time.Since(lastStats); wait > 0 {
				trailing = time.NewTimer(wait)
				trailingC = trailing.C
				continue
			}
			refreshStats()

		case <-trailingC:
			trailing, trailingC = nil, nil
			refreshStats()

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func (b *Broker) publishStats() {
	st, err := b.catalog.Stats()
	if err != nil {
		b.logger.Warn("sse: compute stats", slog.String("error", err.Error()))
		return
	}
	b.Publish(Event{Type: StatsUpdated, Data: st})
}

// Close stops the loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishModuleEvent announces a module change and schedules a stats update.
// kind is "created", "updated" or "deleted"; other kinds are ignored.
func (b *Broker) PublishModuleEvent(kind, slug string) {
	var typ string
	switch kind {
	case "created":
		typ = ModuleCreated
	case "updated":
		typ = ModuleUpdated
	case "deleted":
		typ = ModuleDeleted
	default:
		return
	}

	change := ModuleChange{Slug: slug}
	if typ != ModuleDeleted && b.catalog != nil {
		m, err := b.catalog.Get(slug)
		if err != nil {
			b.logger.Warn("sse: load module", slog.String("slug", slug), slog.String("error", err.Error()))
		} else {
			change.Title = m.Title
			change.Kapitel = m.Kapitel
			change.Unterkapitel = m.Unterkapitel
			change.Status = m.Status
		}
	}

	b.Publish(Event{Type: typ, Data: change})
	if b.closed.Load() {
		return
	}
	select {
	case b.changedCh <- struct{}{}:
	default:
		// A change is already queued; one stats refresh covers both.
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A new client first
// receives the current statistics.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	if b.catalog != nil {
		if st, err := b.catalog.Stats(); err == nil {
			payload, _ := json.Marshal(st)
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", StatsUpdated, payload)
		}
	}
	flusher.Flush()

	var tick <-chan time.Time
	if b.heartbeat > 0 {
		t := time.NewTicker(b.heartbeat)
		defer t.Stop()
		tick = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

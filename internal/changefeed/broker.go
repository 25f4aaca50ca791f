// Package changefeed fans out store change notifications to in-process subscribers.
package changefeed

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collection names a stored collection that can change.
type Collection string

// Known collections. The names match the postgres tables.
const (
	Drivers    Collection = "drivers"
	Categories Collection = "categories"
)

// All lists every collection, used for resync after a lost connection.
var All = []Collection{Categories, Drivers}

// Change describes one write. ID and Op are informational; subscribers re-read the collection.
type Change struct {
	Collection Collection `json:"collection"`
	Op         string     `json:"op"`
	ID         string     `json:"id"`
}

// Broker delivers changes to subscriptions without ever blocking the publisher.
type Broker struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	counter *prometheus.CounterVec
}

// NewBroker creates a broker. counter may be nil.
func NewBroker(counter *prometheus.CounterVec) *Broker {
	return &Broker{
		subs:    make(map[*Subscription]struct{}),
		counter: counter,
	}
}

// Subscribe registers interest in the given collections, or all when none are given.
func (b *Broker) Subscribe(collections ...Collection) *Subscription {
	if len(collections) == 0 {
		collections = All
	}
	s := &Subscription{
		b:       b,
		want:    make(map[Collection]bool, len(collections)),
		pending: make(map[Collection]struct{}, len(collections)),
		notify:  make(chan struct{}, 1),
	}
	for _, c := range collections {
		s.want[c] = true
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish marks the collection dirty for every interested subscriber.
func (b *Broker) Publish(ch Change) {
	if b.counter != nil {
		b.counter.WithLabelValues(string(ch.Collection)).Inc()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		s.mark(ch.Collection)
	}
}

// Resync marks every collection dirty for every subscriber.
func (b *Broker) Resync() {
	for _, c := range All {
		b.Publish(Change{Collection: c, Op: "resync"})
	}
}

func (b *Broker) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

// Subscription coalesces notifications: any number of changes to a collection
// between two Drain calls are reported once.
type Subscription struct {
	b      *Broker
	want   map[Collection]bool
	notify chan struct{}

	mu      sync.Mutex
	pending map[Collection]struct{}
	closed  bool
}

func (s *Subscription) mark(c Collection) {
	if !s.want[c] {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending[c] = struct{}{}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// C signals that at least one collection is pending.
func (s *Subscription) C() <-chan struct{} { return s.notify }

// Drain returns and clears the pending collections in a stable order.
func (s *Subscription) Drain() []Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Collection, 0, len(s.pending))
	for c := range s.pending {
		out = append(out, c)
	}
	clear(s.pending)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.b.remove(s)
}

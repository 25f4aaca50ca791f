package livemap

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sulytrack/internal/changefeed"
	"sulytrack/internal/domain"
	"sulytrack/internal/geo"
	"sulytrack/internal/logx"
)

const (
	defaultZoom       = 13
	defaultLocateWait = 5 * time.Second
	reloadRetry       = time.Second
	loadTimeout       = 3 * time.Second
)

type categoryLister interface {
	List(ctx context.Context) ([]domain.VehicleCategory, error)
}

type driverLister interface {
	List(ctx context.Context) ([]domain.Driver, error)
}

// HubDeps groups the collaborators of Hub. Index, Sessions and Logger are optional.
type HubDeps struct {
	Categories    categoryLister
	Drivers       driverLister
	Broker        *changefeed.Broker
	Index         geo.Index
	Sessions      prometheus.Gauge
	Logger        logx.Logger
	Center        domain.Point
	Zoom          int
	LocateTimeout time.Duration
}

// Hub caches one snapshot of both stores and fans changes out to every map session.
type Hub struct {
	cats          categoryLister
	drivers       driverLister
	broker        *changefeed.Broker
	index         geo.Index
	gauge         prometheus.Gauge
	logger        logx.Logger
	center        domain.Point
	zoom          int
	locateTimeout time.Duration

	mu         sync.RWMutex
	categories []domain.VehicleCategory
	driverList []domain.Driver
	sessions   map[*session]struct{}

	readyOnce sync.Once
	ready     chan struct{}
}

// NewHub creates a Hub. Sessions stay initializing until Run has loaded the first snapshot.
func NewHub(d HubDeps) *Hub {
	h := &Hub{
		cats:          d.Categories,
		drivers:       d.Drivers,
		broker:        d.Broker,
		index:         d.Index,
		gauge:         d.Sessions,
		logger:        d.Logger,
		center:        d.Center,
		zoom:          d.Zoom,
		locateTimeout: d.LocateTimeout,
		sessions:      make(map[*session]struct{}),
		ready:         make(chan struct{}),
	}
	if h.index == nil {
		h.index = geo.Nop{}
	}
	if h.logger == nil {
		h.logger = logx.Nop()
	}
	if h.center == (domain.Point{}) {
		h.center = domain.CityCenter
	}
	if h.zoom <= 0 {
		h.zoom = defaultZoom
	}
	if h.locateTimeout <= 0 {
		h.locateTimeout = defaultLocateWait
	}
	return h
}

// Ready is closed once the first snapshot of both collections is loaded.
func (h *Hub) Ready() <-chan struct{} { return h.ready }

// Run keeps the snapshot current until ctx is canceled.
// Only collections reported by the change feed are re-read.
func (h *Hub) Run(ctx context.Context) error {
	sub := h.broker.Subscribe(changefeed.All...)
	defer sub.Close()

	pending := map[changefeed.Collection]bool{}
	for _, c := range changefeed.All {
		pending[c] = true
	}

	retry := time.NewTimer(0)
	defer retry.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.C():
			for _, c := range sub.Drain() {
				pending[c] = true
			}
		case <-retry.C:
		}

		if len(pending) == 0 {
			continue
		}
		if err := h.reload(ctx, pending); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			h.logger.Error("map snapshot reload failed", logx.Err(err))
			retry.Reset(reloadRetry)
			continue
		}
		h.readyOnce.Do(func() { close(h.ready) })
		h.syncIndex(ctx)
		h.broadcast()
	}
}

// reload re-reads the pending collections and clears them on success.
func (h *Hub) reload(ctx context.Context, pending map[changefeed.Collection]bool) error {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	if pending[changefeed.Categories] {
		cats, err := h.cats.List(ctx)
		if err != nil {
			return err
		}
		h.mu.Lock()
		h.categories = cats
		h.mu.Unlock()
		delete(pending, changefeed.Categories)
	}
	if pending[changefeed.Drivers] {
		drivers, err := h.drivers.List(ctx)
		if err != nil {
			return err
		}
		h.mu.Lock()
		h.driverList = drivers
		h.mu.Unlock()
		delete(pending, changefeed.Drivers)
	}
	return nil
}

func (h *Hub) syncIndex(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	if err := h.index.Replace(ctx, members(h.Markers(domain.CategoryFilterAll))); err != nil {
		h.logger.Warn("geo index sync failed", logx.Err(err))
	}
}

func (h *Hub) broadcast() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions {
		s.poke()
	}
}

// Markers renders the current snapshot under filter.
func (h *Hub) Markers(filter string) []Marker {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return VisibleMarkers(h.categories, h.driverList, filter)
}

// NearbyMarker is a visible marker with its distance from the query center.
type NearbyMarker struct {
	Marker
	DistanceKm float64 `json:"distanceKm"`
}

// Nearby answers a radius search from the geo index, scanning the snapshot when the index cannot.
func (h *Hub) Nearby(ctx context.Context, q geo.Query) ([]NearbyMarker, error) {
	visible := h.Markers(domain.CategoryFilterAll)

	hits, err := h.index.Nearby(ctx, q)
	if err != nil {
		if !errors.Is(err, geo.ErrUnavailable) {
			h.logger.Warn("geo index query failed, scanning snapshot", logx.Err(err))
		}
		hits = geo.Scan(members(visible), q)
	}

	byID := make(map[string]Marker, len(visible))
	for _, m := range visible {
		byID[m.DriverID] = m
	}
	out := make([]NearbyMarker, 0, len(hits))
	for _, hit := range hits {
		m, ok := byID[hit.ID]
		if !ok {
			continue
		}
		out = append(out, NearbyMarker{Marker: m, DistanceKm: hit.DistanceKm})
	}
	return out, nil
}

// Categories returns the cached categories.
func (h *Hub) Categories() []domain.VehicleCategory {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]domain.VehicleCategory(nil), h.categories...)
}

func (h *Hub) attach(s *session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
	if h.gauge != nil {
		h.gauge.Inc()
	}
}

func (h *Hub) detach(s *session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
	if h.gauge != nil {
		h.gauge.Dec()
	}
}

// Serve runs one map session over conn until the viewer leaves or ctx is canceled.
// conn is closed on return.
func (h *Hub) Serve(ctx context.Context, conn Conn) error {
	s := newSession(h, conn)
	h.attach(s)
	defer h.detach(s)
	defer conn.Close()
	return s.run(ctx)
}

package livemap_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"sulytrack/internal/changefeed"
	"sulytrack/internal/domain"
	"sulytrack/internal/geo"
	"sulytrack/internal/service/livemap"
)

type memStore struct {
	mu          sync.Mutex
	categories  []domain.VehicleCategory
	drivers     []domain.Driver
	driverLoads int
}

type categoryView struct{ *memStore }

func (v categoryView) List(context.Context) ([]domain.VehicleCategory, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]domain.VehicleCategory(nil), v.categories...), nil
}

type driverView struct{ *memStore }

func (v driverView) List(context.Context) ([]domain.Driver, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.driverLoads++
	return append([]domain.Driver(nil), v.drivers...), nil
}

func (m *memStore) setAvailable(id string, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.drivers {
		if m.drivers[i].ID == id {
			m.drivers[i].IsAvailable = available
		}
	}
}

func (m *memStore) loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.driverLoads
}

type fakeConn struct {
	in     chan livemap.ClientMessage
	out    chan livemap.Frame
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan livemap.ClientMessage),
		out:    make(chan livemap.Frame, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadJSON(v any) error {
	select {
	case m := <-c.in:
		*v.(*livemap.ClientMessage) = m
		return nil
	case <-c.closed:
		return errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteJSON(v any) error {
	select {
	case c.out <- v.(livemap.Frame):
		return nil
	case <-c.closed:
		return errors.New("use of closed connection")
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) say(t *testing.T, m livemap.ClientMessage) {
	t.Helper()
	select {
	case c.in <- m:
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not read %q", m.Type)
	}
}

// await returns the first frame satisfying ok.
func (c *fakeConn) await(t *testing.T, ok func(livemap.Frame) bool) livemap.Frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-c.out:
			if ok(f) {
				return f
			}
		case <-deadline:
			t.Fatal("timed out waiting for frame")
		}
	}
}

func ready(f livemap.Frame) bool {
	return f.Type == livemap.FrameState && f.State == livemap.StateReady
}

type fixture struct {
	store  *memStore
	broker *changefeed.Broker
	hub    *livemap.Hub
	gauge  prometheus.Gauge
}

func startHub(t *testing.T, store *memStore, locateTimeout time.Duration) *fixture {
	t.Helper()
	f := &fixture{
		store:  store,
		broker: changefeed.NewBroker(nil),
		gauge:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "map_sessions_active"}),
	}
	f.hub = livemap.NewHub(livemap.HubDeps{
		Categories:    categoryView{store},
		Drivers:       driverView{store},
		Broker:        f.broker,
		Sessions:      f.gauge,
		LocateTimeout: locateTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = f.hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-f.hub.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("hub never loaded")
	}
	return f
}

func (f *fixture) serve(t *testing.T) (*fakeConn, <-chan error) {
	t.Helper()
	conn := newFakeConn()
	errc := make(chan error, 1)
	go func() { errc <- f.hub.Serve(context.Background(), conn) }()
	t.Cleanup(func() { _ = conn.Close() })
	return conn, errc
}

func TestHub_AvailabilityToggleReachesSession(t *testing.T) {
	t.Parallel()

	store := &memStore{
		categories: []domain.VehicleCategory{taxi},
		drivers:    []domain.Driver{ranj(false)},
	}
	f := startHub(t, store, time.Minute)
	conn, _ := f.serve(t)

	first := conn.await(t, func(fr livemap.Frame) bool { return fr.Type == livemap.FrameState })
	require.Equal(t, livemap.StateInitializing, first.State)

	conn.say(t, livemap.ClientMessage{Type: livemap.MsgLocateDenied})
	fr := conn.await(t, ready)
	require.Empty(t, fr.Markers)
	require.Equal(t, &livemap.Position{Lat: domain.CityCenter.Lat, Lng: domain.CityCenter.Lng}, fr.Center)
	require.Equal(t, 13, fr.Zoom)
	require.Equal(t, "all", fr.Filter)

	store.setAvailable("ranj", true)
	f.broker.Publish(changefeed.Change{Collection: changefeed.Drivers, Op: "update", ID: "ranj"})

	fr = conn.await(t, func(fr livemap.Frame) bool { return ready(fr) && len(fr.Markers) == 1 })
	m := fr.Markers[0]
	require.Equal(t, "ranj", m.DriverID)
	require.Equal(t, "Car", m.Icon)
	require.Equal(t, "#FFD700", m.Color)
	require.Equal(t, livemap.Position{Lat: 35.56, Lng: 45.43}, m.Position)

	store.setAvailable("ranj", false)
	f.broker.Publish(changefeed.Change{Collection: changefeed.Drivers, Op: "update", ID: "ranj"})
	conn.await(t, func(fr livemap.Frame) bool { return ready(fr) && len(fr.Markers) == 0 })
}

func TestHub_LocateTimeoutFallsBackToCenter(t *testing.T) {
	t.Parallel()

	f := startHub(t, &memStore{}, 20*time.Millisecond)
	conn, _ := f.serve(t)

	fr := conn.await(t, ready)
	require.Equal(t, domain.CityCenter.Lat, fr.Center.Lat)
	require.Equal(t, domain.CityCenter.Lng, fr.Center.Lng)
}

func TestHub_LocateAndRecenter(t *testing.T) {
	t.Parallel()

	f := startHub(t, &memStore{}, time.Minute)
	conn, _ := f.serve(t)

	lat, lng := 35.55, 45.40
	conn.say(t, livemap.ClientMessage{Type: livemap.MsgLocate, Lat: &lat, Lng: &lng})
	fr := conn.await(t, ready)
	require.Equal(t, &livemap.Position{Lat: lat, Lng: lng}, fr.Center)

	// a second fix is ignored
	other := 10.0
	conn.say(t, livemap.ClientMessage{Type: livemap.MsgLocate, Lat: &other, Lng: &other})
	conn.say(t, livemap.ClientMessage{Type: livemap.MsgRecenter})
	fr = conn.await(t, func(fr livemap.Frame) bool { return fr.Type == livemap.FrameRecenter })
	require.Equal(t, &livemap.Position{Lat: lat, Lng: lng}, fr.Center)
	require.Equal(t, 13, fr.Zoom)
}

func TestHub_FilterSelectAndClear(t *testing.T) {
	t.Parallel()

	b := domain.Driver{ID: "bus1", VehicleType: "bus", IsApproved: true, IsAvailable: true, Location: domain.CityCenter}
	store := &memStore{
		categories: []domain.VehicleCategory{taxi, bus},
		drivers:    []domain.Driver{ranj(true), b},
	}
	f := startHub(t, store, time.Minute)
	conn, _ := f.serve(t)

	conn.say(t, livemap.ClientMessage{Type: livemap.MsgLocateDenied})
	fr := conn.await(t, ready)
	require.Len(t, fr.Markers, 2)

	conn.say(t, livemap.ClientMessage{Type: livemap.MsgSelect, DriverID: "ranj"})
	fr = conn.await(t, func(fr livemap.Frame) bool { return ready(fr) && fr.Selected != nil })
	require.Equal(t, "ranj", fr.Selected.DriverID)

	conn.say(t, livemap.ClientMessage{Type: livemap.MsgSelect, DriverID: "bus1"})
	fr = conn.await(t, func(fr livemap.Frame) bool { return ready(fr) && fr.Selected != nil && fr.Selected.DriverID == "bus1" })

	// filtering the selected driver out of view clears the overlay
	conn.say(t, livemap.ClientMessage{Type: livemap.MsgFilter, Category: "taxi"})
	fr = conn.await(t, func(fr livemap.Frame) bool { return ready(fr) && fr.Filter == "taxi" })
	require.Nil(t, fr.Selected)
	require.Len(t, fr.Markers, 1)

	conn.say(t, livemap.ClientMessage{Type: livemap.MsgSelect, DriverID: "ranj"})
	conn.await(t, func(fr livemap.Frame) bool { return ready(fr) && fr.Selected != nil })
	conn.say(t, livemap.ClientMessage{Type: livemap.MsgClose})
	fr = conn.await(t, func(fr livemap.Frame) bool { return ready(fr) && fr.Selected == nil })
	require.Equal(t, "taxi", fr.Filter)
}

func TestHub_SelectionClearedWhenDriverLeaves(t *testing.T) {
	t.Parallel()

	store := &memStore{categories: []domain.VehicleCategory{taxi}, drivers: []domain.Driver{ranj(true)}}
	f := startHub(t, store, time.Minute)
	conn, _ := f.serve(t)

	conn.say(t, livemap.ClientMessage{Type: livemap.MsgLocateDenied})
	conn.await(t, ready)
	conn.say(t, livemap.ClientMessage{Type: livemap.MsgSelect, DriverID: "ranj"})
	conn.await(t, func(fr livemap.Frame) bool { return ready(fr) && fr.Selected != nil })

	store.setAvailable("ranj", false)
	f.broker.Publish(changefeed.Change{Collection: changefeed.Drivers})
	fr := conn.await(t, func(fr livemap.Frame) bool { return ready(fr) && len(fr.Markers) == 0 })
	require.Nil(t, fr.Selected)
}

func TestHub_SelectInvisibleAndUnknownMessage(t *testing.T) {
	t.Parallel()

	f := startHub(t, &memStore{}, time.Minute)
	conn, _ := f.serve(t)

	conn.say(t, livemap.ClientMessage{Type: livemap.MsgLocateDenied})
	conn.await(t, ready)

	conn.say(t, livemap.ClientMessage{Type: livemap.MsgSelect, DriverID: "ghost"})
	fr := conn.await(t, func(fr livemap.Frame) bool { return fr.Type == livemap.FrameError })
	require.Equal(t, "driver not visible", fr.Error)

	conn.say(t, livemap.ClientMessage{Type: "dance"})
	fr = conn.await(t, func(fr livemap.Frame) bool { return fr.Type == livemap.FrameError })
	require.Equal(t, "unknown message type", fr.Error)
}

func TestHub_ReloadsOnlyChangedCollection(t *testing.T) {
	t.Parallel()

	store := &memStore{categories: []domain.VehicleCategory{taxi}, drivers: []domain.Driver{ranj(true)}}
	f := startHub(t, store, time.Minute)
	conn, _ := f.serve(t)
	conn.say(t, livemap.ClientMessage{Type: livemap.MsgLocateDenied})
	conn.await(t, ready)
	require.Equal(t, 1, store.loads())

	store.mu.Lock()
	store.categories = []domain.VehicleCategory{{ID: "taxi", Label: "Taxi", Color: "#000000", IconName: "Car"}}
	store.mu.Unlock()
	f.broker.Publish(changefeed.Change{Collection: changefeed.Categories, Op: "update", ID: "taxi"})

	fr := conn.await(t, func(fr livemap.Frame) bool {
		return ready(fr) && len(fr.Markers) == 1 && fr.Markers[0].Color == "#000000"
	})
	require.Equal(t, "Car", fr.Markers[0].Icon)
	require.Equal(t, 1, store.loads(), "driver list must not be re-read for a category change")
}

func TestHub_SessionGaugeAndClose(t *testing.T) {
	t.Parallel()

	f := startHub(t, &memStore{}, time.Minute)
	conn, errc := f.serve(t)
	conn.await(t, func(fr livemap.Frame) bool { return fr.State == livemap.StateInitializing })
	require.Equal(t, 1.0, testutil.ToFloat64(f.gauge))

	require.NoError(t, conn.Close())
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end")
	}
	require.Equal(t, 0.0, testutil.ToFloat64(f.gauge))
}

func TestHub_NearbyScansSnapshotWithoutIndex(t *testing.T) {
	t.Parallel()

	far := ranj(true)
	far.ID, far.Location = "far", domain.Point{Lng: 45.60, Lat: 35.60}
	store := &memStore{categories: []domain.VehicleCategory{taxi}, drivers: []domain.Driver{far, ranj(true), ranj(false)}}
	store.drivers[2].ID = "off"
	f := startHub(t, store, time.Minute)

	got, err := f.hub.Nearby(context.Background(), geo.Query{Center: domain.CityCenter, RadiusKm: 50})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "ranj", got[0].DriverID)
	require.Equal(t, "far", got[1].DriverID)
	require.Greater(t, got[1].DistanceKm, got[0].DistanceKm)
}

package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"sulytrack/internal/changefeed"
	"sulytrack/internal/domain"
	"sulytrack/internal/geo"
	"sulytrack/internal/http/handlers"
	"sulytrack/internal/service/livemap"
)

type stubMap struct {
	markersFn func(filter string) []livemap.Marker
	nearbyFn  func(ctx context.Context, q geo.Query) ([]livemap.NearbyMarker, error)
}

func (s stubMap) Markers(filter string) []livemap.Marker { return s.markersFn(filter) }

func (s stubMap) Nearby(ctx context.Context, q geo.Query) ([]livemap.NearbyMarker, error) {
	return s.nearbyFn(ctx, q)
}

func (stubMap) Serve(context.Context, livemap.Conn) error { return errors.New("not used") }

func TestMapHandler_Markers_DefaultsToAll(t *testing.T) {
	t.Parallel()

	var got string
	h := handlers.NewMapHandler(testLogger(nil), stubMap{markersFn: func(filter string) []livemap.Marker {
		got = filter
		return []livemap.Marker{{DriverID: "d1", Category: "taxi", Color: "#FACC15"}}
	}})

	rr := httptest.NewRecorder()
	h.Markers(rr, httptest.NewRequest(http.MethodGet, "/api/map/markers", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, domain.CategoryFilterAll, got)
	require.Contains(t, rr.Body.String(), `"filter":"all"`)
	require.Contains(t, rr.Body.String(), `"driverId":"d1"`)
}

func TestMapHandler_Nearby(t *testing.T) {
	t.Parallel()

	h := handlers.NewMapHandler(testLogger(nil), stubMap{nearbyFn: func(_ context.Context, q geo.Query) ([]livemap.NearbyMarker, error) {
		require.Equal(t, 2.5, q.RadiusKm)
		require.Equal(t, "bus", q.Category)
		require.Equal(t, 50, q.Limit)
		return []livemap.NearbyMarker{{Marker: livemap.Marker{DriverID: "b1"}, DistanceKm: 0.4}}, nil
	}})

	rr := httptest.NewRecorder()
	h.Nearby(rr, httptest.NewRequest(http.MethodGet, "/api/map/nearby?lat=35.56&lng=45.43&radiusKm=2.5&category=bus", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"driverId":"b1"`)

	rr = httptest.NewRecorder()
	h.Nearby(rr, httptest.NewRequest(http.MethodGet, "/api/map/nearby?lat=abc", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

type staticCategories []domain.VehicleCategory

func (s staticCategories) List(context.Context) ([]domain.VehicleCategory, error) { return s, nil }

type staticDrivers []domain.Driver

func (s staticDrivers) List(context.Context) ([]domain.Driver, error) { return s, nil }

func TestMapHandler_Socket(t *testing.T) {
	t.Parallel()

	d := sampleDriver()
	d.IsAvailable = true
	hub := livemap.NewHub(livemap.HubDeps{
		Categories:    staticCategories{{ID: "taxi", Label: "Taxi", Color: "#FACC15", IconName: "Car"}},
		Drivers:       staticDrivers{d},
		Broker:        changefeed.NewBroker(nil),
		LocateTimeout: time.Minute,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Run(ctx) }()
	<-hub.Ready()

	r := chi.NewRouter()
	r.Get("/ws/map", handlers.NewMapHandler(testLogger(nil), hub).Socket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/map", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(raw), `"markers":[]`)
	var fr livemap.Frame
	require.NoError(t, json.Unmarshal(raw, &fr))
	require.Equal(t, livemap.FrameState, fr.Type)
	require.Equal(t, livemap.StateInitializing, fr.State)

	lat, lng := 35.57, 45.44
	require.NoError(t, conn.WriteJSON(livemap.ClientMessage{Type: livemap.MsgLocate, Lat: &lat, Lng: &lng}))

	for fr.State != livemap.StateReady {
		require.NoError(t, conn.ReadJSON(&fr))
	}
	require.Equal(t, &livemap.Position{Lat: lat, Lng: lng}, fr.Center)
	require.Len(t, fr.Markers, 1)
	require.Equal(t, "d1", fr.Markers[0].DriverID)
	require.Equal(t, "icons/car.svg", fr.Markers[0].IconAsset)
}

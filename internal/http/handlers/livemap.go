package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"sulytrack/internal/domain"
	"sulytrack/internal/geo"
	"sulytrack/internal/logx"
	"sulytrack/internal/service/livemap"
)

const (
	defaultRadiusKm = 5.0
	maxRadiusKm     = 50.0
	defaultNearby   = 50
	maxNearby       = 200

	wsReadLimit    = 4 << 10
	wsWriteTimeout = 10 * time.Second
)

// MapHandler serves marker snapshots, radius search and the live map websocket.
type MapHandler struct {
	view     mapView
	logger   logx.Logger
	upgrader websocket.Upgrader
}

// NewMapHandler creates a MapHandler. The map is public, so any origin may connect.
func NewMapHandler(logger logx.Logger, view mapView) *MapHandler {
	return &MapHandler{
		view:   view,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

type markersResponse struct {
	Filter  string           `json:"filter"`
	Markers []livemap.Marker `json:"markers"`
}

func categoryParam(r *http.Request) string {
	if c := r.URL.Query().Get("category"); c != "" {
		return c
	}
	return domain.CategoryFilterAll
}

// Markers handles GET /api/map/markers?category=all|<id>.
func (h *MapHandler) Markers(w http.ResponseWriter, r *http.Request) {
	filter := categoryParam(r)
	writeJSON(h.logger, w, r, http.StatusOK, markersResponse{Filter: filter, Markers: h.view.Markers(filter)})
}

// Nearby handles GET /api/map/nearby?lat=&lng=&radiusKm=&category=&limit=.
// @Summary Visible drivers near a point
// @Tags public
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radiusKm query number false "Search radius, km (default 5, max 50)"
// @Param category query string false "Category id or all"
// @Success 200 {array} livemap.NearbyMarker
// @Failure 400 {object} ErrorResponse "invalid input"
// @Router /api/map/nearby [get]
func (h *MapHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q, errs := parseNearby(r)
	if err := errs.OrNil(); err != nil {
		writeServiceError(h.logger, w, r, err, "")
		return
	}
	list, err := h.view.Nearby(r.Context(), q)
	if err != nil {
		writeServiceError(h.logger, w, r, err, "")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, list)
}

func parseNearby(r *http.Request) (geo.Query, domain.ValidationErrors) {
	v := r.URL.Query()
	errs := domain.ValidationErrors{}
	q := geo.Query{RadiusKm: defaultRadiusKm, Limit: defaultNearby, Category: categoryParam(r)}

	lat, err := strconv.ParseFloat(v.Get("lat"), 64)
	if err != nil {
		errs["lat"] = "must be a number"
	}
	lng, err := strconv.ParseFloat(v.Get("lng"), 64)
	if err != nil {
		errs["lng"] = "must be a number"
	}
	q.Center = domain.Point{Lng: lng, Lat: lat}
	if len(errs) == 0 && !q.Center.Valid() {
		errs["location"] = "coordinates out of range"
	}
	if s := v.Get("radiusKm"); s != "" {
		rad, err := strconv.ParseFloat(s, 64)
		if err != nil || rad <= 0 || rad > maxRadiusKm {
			errs["radiusKm"] = "must be in (0, 50]"
		}
		q.RadiusKm = rad
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxNearby {
			errs["limit"] = "must be in [1, 200]"
		}
		q.Limit = n
	}
	return q, errs
}

// Socket handles GET /ws/map and runs a live map session until the viewer leaves.
func (h *MapHandler) Socket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		h.logger.Debug("websocket upgrade failed", logx.String("request_id", reqID(r.Context())), logx.Err(err))
		return
	}
	conn.SetReadLimit(wsReadLimit)

	if err := h.view.Serve(r.Context(), wsConn{conn}); err != nil {
		h.logger.Info("map session ended", logx.String("request_id", reqID(r.Context())), logx.Err(err))
	}
}

// wsConn bounds every write so a stalled viewer cannot hold its session forever.
type wsConn struct {
	*websocket.Conn
}

func (c wsConn) WriteJSON(v any) error {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return c.Conn.WriteJSON(v)
}

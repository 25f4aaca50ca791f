package livemap

import (
	"context"
	"errors"
	"reflect"
	"time"

	"sulytrack/internal/domain"
	"sulytrack/internal/logx"
)

// Session states. There is no terminal state: a session ends with its connection.
const (
	StateInitializing = "initializing"
	StateReady        = "ready"
)

// Client message types.
const (
	MsgLocate       = "locate"
	MsgLocateDenied = "locate_denied"
	MsgFilter       = "filter"
	MsgSelect       = "select"
	MsgClose        = "close"
	MsgRecenter     = "recenter"
)

// Server frame types.
const (
	FrameState    = "state"
	FrameRecenter = "recenter"
	FrameError    = "error"
)

// outboundQueue bounds frames waiting for a slow viewer.
const outboundQueue = 32

// ErrSlowClient ends a session whose viewer does not keep up with updates.
var ErrSlowClient = errors.New("map client too slow")

// Conn is the message transport of a session. *websocket.Conn satisfies it.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// ClientMessage is a viewer request.
type ClientMessage struct {
	Type     string   `json:"type"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Category string   `json:"category,omitempty"`
	DriverID string   `json:"driverId,omitempty"`
}

// Frame is a server push.
type Frame struct {
	Type     string    `json:"type"`
	State    string    `json:"state,omitempty"`
	Center   *Position `json:"center,omitempty"`
	Zoom     int       `json:"zoom,omitempty"`
	Filter   string    `json:"filter,omitempty"`
	Markers  []Marker  `json:"markers"`
	Selected *Marker   `json:"selected"`
	Error    string    `json:"error,omitempty"`
}

type session struct {
	hub     *Hub
	conn    Conn
	updates chan struct{}
	out     chan Frame

	located  bool
	center   domain.Point
	filter   string
	selected string
	last     *Frame
}

func newSession(h *Hub, conn Conn) *session {
	return &session{
		hub:     h,
		conn:    conn,
		updates: make(chan struct{}, 1),
		out:     make(chan Frame, outboundQueue),
		filter:  domain.CategoryFilterAll,
	}
}

// poke signals a snapshot change without blocking the hub.
func (s *session) poke() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *session) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inbox := make(chan ClientMessage)
	readErr := make(chan error, 1)
	writeErr := make(chan error, 1)
	go s.read(ctx, inbox, readErr)
	go s.write(ctx, writeErr)

	if err := s.send(Frame{Type: FrameState, State: StateInitializing, Filter: s.filter, Markers: []Marker{}}); err != nil {
		return err
	}

	locate := time.NewTimer(s.hub.locateTimeout)
	defer locate.Stop()
	ready := s.hub.Ready()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			s.hub.logger.Debug("map session closed by client", logx.Err(err))
			return nil
		case err := <-writeErr:
			return err
		case <-locate.C:
			if !s.located {
				s.resolve(s.hub.center)
			}
		case <-ready:
			ready = nil
		case <-s.updates:
		case msg := <-inbox:
			if err := s.handle(msg); err != nil {
				return err
			}
		}
		if err := s.render(ready == nil); err != nil {
			return err
		}
	}
}

func (s *session) read(ctx context.Context, inbox chan<- ClientMessage, errc chan<- error) {
	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			errc <- err
			return
		}
		select {
		case inbox <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) write(ctx context.Context, errc chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-s.out:
			if err := s.conn.WriteJSON(f); err != nil {
				errc <- err
				return
			}
		}
	}
}

func (s *session) send(f Frame) error {
	select {
	case s.out <- f:
		return nil
	default:
		return ErrSlowClient
	}
}

// resolve fixes the viewer location once. Later locate messages are ignored.
func (s *session) resolve(p domain.Point) {
	if s.located {
		return
	}
	s.located = true
	s.center = p
}

func (s *session) handle(msg ClientMessage) error {
	switch msg.Type {
	case MsgLocate:
		p := s.hub.center
		if msg.Lat != nil && msg.Lng != nil {
			if cand := (domain.Point{Lng: *msg.Lng, Lat: *msg.Lat}); cand.Valid() {
				p = cand
			}
		}
		s.resolve(p)
	case MsgLocateDenied:
		s.resolve(s.hub.center)
	case MsgFilter:
		s.filter = msg.Category
		if s.filter == "" {
			s.filter = domain.CategoryFilterAll
		}
	case MsgSelect:
		if !s.isReady() {
			return nil
		}
		if _, ok := findMarker(s.hub.Markers(s.filter), msg.DriverID); !ok {
			return s.send(Frame{Type: FrameError, Error: "driver not visible"})
		}
		s.selected = msg.DriverID
	case MsgClose:
		s.selected = ""
	case MsgRecenter:
		if !s.isReady() {
			return nil
		}
		c := Position{Lat: s.center.Lat, Lng: s.center.Lng}
		return s.send(Frame{Type: FrameRecenter, Center: &c, Zoom: s.hub.zoom})
	default:
		return s.send(Frame{Type: FrameError, Error: "unknown message type"})
	}
	return nil
}

func (s *session) isReady() bool {
	if !s.located {
		return false
	}
	select {
	case <-s.hub.Ready():
		return true
	default:
		return false
	}
}

// render pushes a state frame if anything the viewer sees has changed.
func (s *session) render(snapshotReady bool) error {
	if !s.located || !snapshotReady {
		return nil
	}
	markers := s.hub.Markers(s.filter)
	f := Frame{
		Type:    FrameState,
		State:   StateReady,
		Center:  &Position{Lat: s.center.Lat, Lng: s.center.Lng},
		Zoom:    s.hub.zoom,
		Filter:  s.filter,
		Markers: markers,
	}
	if s.selected != "" {
		if m, ok := findMarker(markers, s.selected); ok {
			f.Selected = &m
		} else {
			s.selected = ""
		}
	}
	if s.last != nil && reflect.DeepEqual(*s.last, f) {
		return nil
	}
	s.last = &f
	return s.send(f)
}

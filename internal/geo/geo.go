// Package geo keeps a searchable index of the drivers currently visible on the map.
package geo

import (
	"context"
	"errors"
	"math"
	"sort"

	"sulytrack/internal/domain"
)

// ErrUnavailable is returned by indexes that cannot answer spatial queries.
var ErrUnavailable = errors.New("geo index unavailable")

const earthRadiusKm = 6371.0

// Member is one indexed driver.
type Member struct {
	ID       string
	Category string
	Point    domain.Point
}

// Hit is a search result ordered by distance from the query center.
type Hit struct {
	ID         string
	Category   string
	DistanceKm float64
}

// Query describes a radius search. An empty Category or "all" matches every member.
type Query struct {
	Center   domain.Point
	RadiusKm float64
	Category string
	Limit    int
}

func (q Query) matches(category string) bool {
	return q.Category == "" || q.Category == domain.CategoryFilterAll || q.Category == category
}

// Index stores visible drivers and answers radius queries.
type Index interface {
	Replace(ctx context.Context, members []Member) error
	Nearby(ctx context.Context, q Query) ([]Hit, error)
}

// Nop is the index used without Redis. Nearby always fails with ErrUnavailable.
type Nop struct{}

func (Nop) Replace(context.Context, []Member) error { return nil }

func (Nop) Nearby(context.Context, Query) ([]Hit, error) { return nil, ErrUnavailable }

// DistanceKm is the haversine distance between two points.
func DistanceKm(a, b domain.Point) float64 {
	lat1, lat2 := rad(a.Lat), rad(b.Lat)
	dLat := lat2 - lat1
	dLng := rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// Scan answers q over an in-memory member list.
func Scan(members []Member, q Query) []Hit {
	hits := make([]Hit, 0)
	for _, m := range members {
		if !q.matches(m.Category) {
			continue
		}
		d := DistanceKm(q.Center, m.Point)
		if d > q.RadiusKm {
			continue
		}
		hits = append(hits, Hit{ID: m.ID, Category: m.Category, DistanceKm: d})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].DistanceKm < hits[j].DistanceKm })
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits
}

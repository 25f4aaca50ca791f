// Package livemap projects the driver and category stores onto live map sessions.
package livemap

import (
	"sulytrack/internal/domain"
	"sulytrack/internal/geo"
)

// Position is a marker location in map (lat, lng) order.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Card is the driver summary shown in the marker overlay.
type Card struct {
	Name         string  `json:"name"`
	VehicleModel string  `json:"vehicleModel"`
	LicensePlate string  `json:"licensePlate"`
	Phone        string  `json:"phone"`
	Rating       float64 `json:"rating"`
}

// Marker is one visible driver as rendered on the map.
type Marker struct {
	DriverID  string   `json:"driverId"`
	Category  string   `json:"category"`
	Position  Position `json:"position"`
	Icon      string   `json:"icon"`
	IconAsset string   `json:"iconAsset"`
	Color     string   `json:"color"`
	Card      Card     `json:"card"`
}

// VisibleMarkers returns the markers of drivers visible under filter, in driver order.
// Drivers whose category is unknown keep their marker with the default icon and color.
func VisibleMarkers(categories []domain.VehicleCategory, drivers []domain.Driver, filter string) []Marker {
	byID := make(map[string]domain.VehicleCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	out := make([]Marker, 0, len(drivers))
	for _, d := range drivers {
		if !d.VisibleOnMap(filter) {
			continue
		}
		icon, color := domain.DefaultIcon, domain.DefaultMarkerColor
		if c, ok := byID[d.VehicleType]; ok {
			icon, color = c.Icon(), c.Color
		}
		out = append(out, Marker{
			DriverID:  d.ID,
			Category:  d.VehicleType,
			Position:  Position{Lat: d.Location.Lat, Lng: d.Location.Lng},
			Icon:      icon.Name,
			IconAsset: icon.Asset,
			Color:     color,
			Card: Card{
				Name:         d.Name,
				VehicleModel: d.VehicleModel,
				LicensePlate: d.LicensePlate,
				Phone:        d.Phone,
				Rating:       d.Rating,
			},
		})
	}
	return out
}

func findMarker(markers []Marker, driverID string) (Marker, bool) {
	for _, m := range markers {
		if m.DriverID == driverID {
			return m, true
		}
	}
	return Marker{}, false
}

func members(markers []Marker) []geo.Member {
	out := make([]geo.Member, len(markers))
	for i, m := range markers {
		out[i] = geo.Member{
			ID:       m.DriverID,
			Category: m.Category,
			Point:    domain.Point{Lng: m.Position.Lng, Lat: m.Position.Lat},
		}
	}
	return out
}

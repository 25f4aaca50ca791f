package domain

import "sort"

// Icon is a renderable marker asset bundled with the web client.
type Icon struct {
	Name  string
	Asset string
}

// DefaultMarkerColor is used when a driver's category is unknown or deleted.
const DefaultMarkerColor = "#6B7280"

// DefaultIcon is used for unknown icon names and orphaned vehicle types.
var DefaultIcon = Icon{Name: "MapPin", Asset: "icons/map-pin.svg"}

// iconCatalog is the closed set of icons a category may reference.
var iconCatalog = map[string]Icon{
	"Car":        {Name: "Car", Asset: "icons/car.svg"},
	"Bus":        {Name: "Bus", Asset: "icons/bus.svg"},
	"Truck":      {Name: "Truck", Asset: "icons/truck.svg"},
	"Bike":       {Name: "Bike", Asset: "icons/bike.svg"},
	"Carrot":     {Name: "Carrot", Asset: "icons/carrot.svg"},
	"Fuel":       {Name: "Fuel", Asset: "icons/fuel.svg"},
	"Wrench":     {Name: "Wrench", Asset: "icons/wrench.svg"},
	"Rocket":     {Name: "Rocket", Asset: "icons/rocket.svg"},
	"Ambulance":  {Name: "Ambulance", Asset: "icons/ambulance.svg"},
	"Tractor":    {Name: "Tractor", Asset: "icons/tractor.svg"},
	"Ship":       {Name: "Ship", Asset: "icons/ship.svg"},
	"Plane":      {Name: "Plane", Asset: "icons/plane.svg"},
	"PlusCircle": {Name: "PlusCircle", Asset: "icons/plus-circle.svg"},
}

// LookupIcon returns the catalog icon with the given name.
func LookupIcon(name string) (Icon, bool) {
	icon, ok := iconCatalog[name]
	return icon, ok
}

// ResolveIcon never fails: unknown names map to DefaultIcon.
func ResolveIcon(name string) Icon {
	if icon, ok := iconCatalog[name]; ok {
		return icon
	}
	return DefaultIcon
}

// Icons lists the catalog sorted by name, for icon pickers.
func Icons() []Icon {
	out := make([]Icon, 0, len(iconCatalog))
	for _, icon := range iconCatalog {
		out = append(out, icon)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

package livemap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sulytrack/internal/domain"
	"sulytrack/internal/service/livemap"
)

var (
	taxi = domain.VehicleCategory{ID: "taxi", Label: "Taxi", Color: "#FFD700", IconName: "Car"}
	bus  = domain.VehicleCategory{ID: "bus", Label: "Bus", Color: "#00BFFF", IconName: "Bus"}
)

func ranj(available bool) domain.Driver {
	return domain.Driver{
		ID:           "ranj",
		Name:         "Ranj",
		Phone:        "+9647701234567",
		VehicleType:  "taxi",
		VehicleModel: "Toyota Corolla",
		LicensePlate: "SUL-1234",
		IsApproved:   true,
		IsAvailable:  available,
		Location:     domain.Point{Lng: 45.43, Lat: 35.56},
		Rating:       4.8,
	}
}

func TestVisibleMarkers_VisibilityRule(t *testing.T) {
	t.Parallel()

	base := domain.Driver{ID: "d", VehicleType: "bus"}
	tests := []struct {
		name      string
		approved  bool
		available bool
		filter    string
		visible   bool
	}{
		{"approved available all", true, true, "all", true},
		{"approved available own category", true, true, "bus", true},
		{"approved available other category", true, true, "taxi", false},
		{"unapproved", false, true, "all", false},
		{"unavailable", true, false, "all", false},
		{"neither", false, false, "bus", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := base
			d.IsApproved, d.IsAvailable = tc.approved, tc.available
			got := livemap.VisibleMarkers([]domain.VehicleCategory{bus, taxi}, []domain.Driver{d}, tc.filter)
			require.Equal(t, tc.visible, len(got) == 1)
		})
	}
}

func TestVisibleMarkers_CategoryStyling(t *testing.T) {
	t.Parallel()

	d := domain.Driver{ID: "b1", VehicleType: "bus", IsApproved: true, IsAvailable: true}
	got := livemap.VisibleMarkers([]domain.VehicleCategory{bus}, []domain.Driver{d}, "all")
	require.Len(t, got, 1)
	require.Equal(t, "Bus", got[0].Icon)
	require.Equal(t, "icons/bus.svg", got[0].IconAsset)
	require.Equal(t, "#00BFFF", got[0].Color)
}

func TestVisibleMarkers_DeletedCategoryFallsBack(t *testing.T) {
	t.Parallel()

	d := domain.Driver{ID: "b1", VehicleType: "bus", IsApproved: true, IsAvailable: true}
	got := livemap.VisibleMarkers(nil, []domain.Driver{d}, "all")
	require.Len(t, got, 1)
	require.Equal(t, domain.DefaultIcon.Name, got[0].Icon)
	require.Equal(t, domain.DefaultMarkerColor, got[0].Color)

	got = livemap.VisibleMarkers(nil, []domain.Driver{d}, "bus")
	require.Len(t, got, 1, "filtering by a deleted category still matches its drivers")
}

func TestVisibleMarkers_UnknownIconFallsBack(t *testing.T) {
	t.Parallel()

	legacy := domain.VehicleCategory{ID: "boat", Color: "#123456", IconName: "Submarine"}
	d := domain.Driver{ID: "x", VehicleType: "boat", IsApproved: true, IsAvailable: true}
	got := livemap.VisibleMarkers([]domain.VehicleCategory{legacy}, []domain.Driver{d}, "all")
	require.Equal(t, domain.DefaultIcon.Name, got[0].Icon)
	require.Equal(t, "#123456", got[0].Color)
}

func TestVisibleMarkers_Ranj(t *testing.T) {
	t.Parallel()

	cats := []domain.VehicleCategory{taxi}
	require.Empty(t, livemap.VisibleMarkers(cats, []domain.Driver{ranj(false)}, "all"))

	got := livemap.VisibleMarkers(cats, []domain.Driver{ranj(true)}, "all")
	require.Len(t, got, 1)
	m := got[0]
	require.Equal(t, "Car", m.Icon)
	require.Equal(t, "#FFD700", m.Color)
	require.Equal(t, livemap.Position{Lat: 35.56, Lng: 45.43}, m.Position)
	require.Equal(t, livemap.Card{
		Name: "Ranj", VehicleModel: "Toyota Corolla", LicensePlate: "SUL-1234", Phone: "+9647701234567", Rating: 4.8,
	}, m.Card)
}

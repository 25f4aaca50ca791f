package handlers

import (
	"context"

	"sulytrack/internal/auth"
	"sulytrack/internal/domain"
	"sulytrack/internal/geo"
	"sulytrack/internal/service/livemap"
)

type categoryUsecase interface {
	List(ctx context.Context) ([]domain.VehicleCategory, error)
	Get(ctx context.Context, id string) (*domain.VehicleCategory, error)
	Create(ctx context.Context, c domain.VehicleCategory) (*domain.VehicleCategory, error)
	Update(ctx context.Context, u domain.PartialCategoryUpdate) (*domain.VehicleCategory, error)
	Delete(ctx context.Context, id string) error
}

type driverUsecase interface {
	List(ctx context.Context) ([]domain.Driver, error)
	Get(ctx context.Context, id string) (*domain.Driver, error)
	Create(ctx context.Context, in domain.NewDriver) (*domain.Driver, error)
	Register(ctx context.Context, in domain.NewDriver) (*domain.Driver, error)
	Update(ctx context.Context, u domain.PartialDriverUpdate) (*domain.Driver, error)
	SetAvailability(ctx context.Context, id string, available bool) (*domain.Driver, error)
	Delete(ctx context.Context, id string) error
	Authenticate(ctx context.Context, email, password string) (*domain.Driver, error)
}

type tokenIssuer interface {
	Issue(subject, role string) (auth.Token, error)
}

type mapView interface {
	Markers(filter string) []livemap.Marker
	Nearby(ctx context.Context, q geo.Query) ([]livemap.NearbyMarker, error)
	Serve(ctx context.Context, conn livemap.Conn) error
}

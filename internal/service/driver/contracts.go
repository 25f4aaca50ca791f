package driver

import (
	"context"

	"sulytrack/internal/domain"
)

type driverRepository interface {
	List(ctx context.Context) ([]domain.Driver, error)
	Get(ctx context.Context, id string) (*domain.Driver, error)
	GetByEmail(ctx context.Context, email string) (*domain.Driver, error)
	Create(ctx context.Context, d domain.Driver) error
	UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) (bool, error)
	SetAvailability(ctx context.Context, id string, available bool) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// categoryChecker answers whether a vehicle type names a current category.
type categoryChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

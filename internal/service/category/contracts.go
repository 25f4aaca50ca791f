package category

import (
	"context"

	"sulytrack/internal/domain"
)

// categoryRepository defines storage operations required by the business layer.
type categoryRepository interface {
	List(ctx context.Context) ([]domain.VehicleCategory, error)
	Get(ctx context.Context, id string) (*domain.VehicleCategory, error)
	Create(ctx context.Context, c domain.VehicleCategory) error
	InsertIfMissing(ctx context.Context, c domain.VehicleCategory) (bool, error)
	UpdatePartial(ctx context.Context, u domain.PartialCategoryUpdate) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

package category

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sulytrack/internal/apperr"
	"sulytrack/internal/domain"
	"sulytrack/internal/events"
	"sulytrack/internal/logx"
)

// Service coordinates vehicle category business logic and orchestrates repository calls.
type Service struct {
	repo             categoryRepository
	pub              EventPublisher
	mutations        *prometheus.CounterVec
	logger           logx.Logger
	now              func() time.Time
	operationTimeout time.Duration
}

// NewService creates and configures a category Service. pub and mutations may be nil.
func NewService(
	r categoryRepository,
	pub EventPublisher,
	mutations *prometheus.CounterVec,
	logger logx.Logger,
	timeout time.Duration,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             r,
		pub:              pub,
		mutations:        mutations,
		logger:           logger,
		now:              time.Now,
		operationTimeout: timeout,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// List returns all categories ordered by label.
func (s *Service) List(ctx context.Context) ([]domain.VehicleCategory, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx)
}

// Get retrieves a category by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.VehicleCategory, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

// Create validates and persists a new category.
func (s *Service) Create(ctx context.Context, c domain.VehicleCategory) (*domain.VehicleCategory, error) {
	c = normalize(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.changed(ctx, "create", c.ID)
	return &c, nil
}

// Update applies a partial update and returns the refreshed category.
func (s *Service) Update(ctx context.Context, u domain.PartialCategoryUpdate) (*domain.VehicleCategory, error) {
	u.ID = strings.TrimSpace(u.ID)
	if u.Label != nil {
		label := strings.TrimSpace(*u.Label)
		u.Label = &label
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	s.changed(ctx, "update", u.ID)

	c, err := s.repo.Get(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

// Delete removes a category. Drivers keep their vehicle type; a missing id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if ok {
		s.changed(ctx, "delete", id)
	}
	return nil
}

// Seed inserts every default whose id is missing and returns how many were added.
// Existing categories are never overwritten.
func (s *Service) Seed(ctx context.Context, defaults []domain.VehicleCategory) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	inserted := 0
	for _, c := range defaults {
		if err := c.Validate(); err != nil {
			return inserted, err
		}
		ok, err := s.repo.InsertIfMissing(ctx, c)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
			s.changed(ctx, "seed", c.ID)
		}
	}
	s.logger.Info("categories seeded", logx.Int("inserted", inserted), logx.Int("total", len(defaults)))
	return inserted, nil
}

// changed records the mutation and publishes a best-effort event; the write is already committed.
func (s *Service) changed(ctx context.Context, op, id string) {
	if s.mutations != nil {
		s.mutations.WithLabelValues("categories", op).Inc()
	}
	err := s.pub.Publish(ctx, events.Event{
		Type:       events.CategoryChanged,
		CategoryID: id,
		OccurredAt: s.now(),
		Payload:    map[string]string{"op": op},
	})
	if err != nil {
		s.logger.Warn("publish category event failed", logx.String("id", id), logx.String("op", op), logx.Err(err))
	}
}

func normalize(c domain.VehicleCategory) domain.VehicleCategory {
	c.ID = strings.TrimSpace(c.ID)
	c.Label = strings.TrimSpace(c.Label)
	c.Color = strings.TrimSpace(c.Color)
	c.IconName = strings.TrimSpace(c.IconName)
	return c
}

package driver

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"sulytrack/internal/apperr"
	"sulytrack/internal/auth"
	"sulytrack/internal/domain"
	"sulytrack/internal/events"
	"sulytrack/internal/logx"
)

const minRegisterPassword = 8

// Deps groups the collaborators of Service. Only Repo, Categories and Hasher are required.
type Deps struct {
	Repo       driverRepository
	Categories categoryChecker
	Hasher     auth.PasswordHasher
	Publisher  EventPublisher
	Mutations  *prometheus.CounterVec
	Logger     logx.Logger
	Center     domain.Point
	Timeout    time.Duration
}

// Service implements the driver store: admin CRUD, self registration and self service.
type Service struct {
	repo             driverRepository
	cats             categoryChecker
	hasher           auth.PasswordHasher
	pub              EventPublisher
	mutations        *prometheus.CounterVec
	logger           logx.Logger
	center           domain.Point
	now              func() time.Time
	newID            func() string
	operationTimeout time.Duration
}

// NewService builds a Service. Publisher, Mutations and Logger may be nil.
func NewService(d Deps) *Service {
	s := &Service{
		repo:             d.Repo,
		cats:             d.Categories,
		hasher:           d.Hasher,
		pub:              d.Publisher,
		mutations:        d.Mutations,
		logger:           d.Logger,
		center:           d.Center,
		now:              time.Now,
		newID:            uuid.NewString,
		operationTimeout: d.Timeout,
	}
	if s.operationTimeout <= 0 {
		s.operationTimeout = 3 * time.Second
	}
	if s.pub == nil {
		s.pub = events.Nop{}
	}
	if s.logger == nil {
		s.logger = logx.Nop()
	}
	if s.center == (domain.Point{}) {
		s.center = domain.CityCenter
	}
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// List returns every driver, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx)
}

// Get retrieves a driver by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	d, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// Create is the admin path: approval and availability are taken from the input.
func (s *Service) Create(ctx context.Context, in domain.NewDriver) (*domain.Driver, error) {
	d, err := s.create(ctx, in, domain.DriverRules{MinPassword: 1})
	if err != nil {
		return nil, err
	}
	s.changed(ctx, events.DriverCreated, "create", d.ID, nil)
	return d, nil
}

// Register is the public path. New drivers always wait for approval.
func (s *Service) Register(ctx context.Context, in domain.NewDriver) (*domain.Driver, error) {
	in.IsApproved = false
	in.IsAvailable = true
	d, err := s.create(ctx, in, domain.DriverRules{MinPassword: minRegisterPassword, RequireImage: true})
	if err != nil {
		return nil, err
	}
	s.changed(ctx, events.DriverRegistered, "register", d.ID, map[string]string{
		"name":         d.Name,
		"phone":        d.Phone,
		"vehicle_type": d.VehicleType,
		"plate":        d.LicensePlate,
	})
	return d, nil
}

func (s *Service) create(ctx context.Context, in domain.NewDriver, rules domain.DriverRules) (*domain.Driver, error) {
	in = normalizeNew(in)
	if err := in.Validate(rules); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.checkVehicleType(ctx, in.VehicleType); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	loc := s.center
	if in.Location != nil {
		loc = *in.Location
	}
	d := domain.Driver{
		ID:           s.newID(),
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: hash,
		VehicleType:  in.VehicleType,
		VehicleModel: in.VehicleModel,
		LicensePlate: in.LicensePlate,
		VehicleImage: in.VehicleImage,
		IsApproved:   in.IsApproved,
		IsAvailable:  in.IsAvailable,
		Location:     loc,
		Rating:       domain.DefaultRating,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Update applies a partial update. An absent or empty password keeps the stored hash.
func (s *Service) Update(ctx context.Context, u domain.PartialDriverUpdate) (*domain.Driver, error) {
	u = normalizeUpdate(u)
	if err := u.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if u.VehicleType != nil {
		if err := s.checkVehicleType(ctx, *u.VehicleType); err != nil {
			return nil, err
		}
	}
	u.PasswordHash = nil
	if u.ChangesPassword() {
		hash, err := s.hasher.Hash(*u.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
	}

	ok, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	s.changed(ctx, events.DriverUpdated, "update", u.ID, nil)

	d, err := s.repo.Get(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// SetAvailability changes only the availability flag and returns the refreshed driver.
func (s *Service) SetAvailability(ctx context.Context, id string, available bool) (*domain.Driver, error) {
	id = strings.TrimSpace(id)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.SetAvailability(ctx, id, available)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	s.changed(ctx, events.DriverAvailabilityChanged, "availability", id, map[string]string{
		"available": boolString(available),
	})

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// Delete removes a driver; a missing id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if ok {
		s.changed(ctx, events.DriverDeleted, "delete", id, nil)
	}
	return nil
}

// Authenticate returns the approved driver owning the credentials.
// Unknown emails, wrong passwords and unapproved drivers all yield apperr.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	d, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if d == nil || password == "" || !s.hasher.Compare(d.PasswordHash, password) {
		return nil, apperr.ErrUnauthorized
	}
	if !d.IsApproved {
		s.logger.Info("login by unapproved driver", logx.String("driver_id", d.ID))
		return nil, apperr.ErrUnauthorized
	}
	return d, nil
}

func (s *Service) checkVehicleType(ctx context.Context, vehicleType string) error {
	ok, err := s.cats.Exists(ctx, vehicleType)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ValidationErrors{"vehicleType": "unknown category"}
	}
	return nil
}

func (s *Service) changed(ctx context.Context, typ, op, id string, payload map[string]string) {
	if s.mutations != nil {
		s.mutations.WithLabelValues("drivers", op).Inc()
	}
	err := s.pub.Publish(ctx, events.Event{
		Type:       typ,
		DriverID:   id,
		OccurredAt: s.now(),
		Payload:    payload,
	})
	if err != nil {
		s.logger.Warn("publish driver event failed", logx.String("driver_id", id), logx.String("type", typ), logx.Err(err))
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

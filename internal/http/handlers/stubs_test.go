package handlers_test

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sulytrack/internal/auth"
	"sulytrack/internal/domain"
	"sulytrack/internal/logx"
)

func testLogger(_ io.Writer) logx.Logger { return logx.Nop() }

func withURLParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func body(s string) io.Reader { return strings.NewReader(s) }

type stubCategories struct {
	listFn   func(ctx context.Context) ([]domain.VehicleCategory, error)
	getFn    func(ctx context.Context, id string) (*domain.VehicleCategory, error)
	createFn func(ctx context.Context, c domain.VehicleCategory) (*domain.VehicleCategory, error)
	updateFn func(ctx context.Context, u domain.PartialCategoryUpdate) (*domain.VehicleCategory, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubCategories) List(ctx context.Context) ([]domain.VehicleCategory, error) {
	return s.listFn(ctx)
}

func (s *stubCategories) Get(ctx context.Context, id string) (*domain.VehicleCategory, error) {
	return s.getFn(ctx, id)
}

func (s *stubCategories) Create(ctx context.Context, c domain.VehicleCategory) (*domain.VehicleCategory, error) {
	return s.createFn(ctx, c)
}

func (s *stubCategories) Update(ctx context.Context, u domain.PartialCategoryUpdate) (*domain.VehicleCategory, error) {
	return s.updateFn(ctx, u)
}

func (s *stubCategories) Delete(ctx context.Context, id string) error { return s.deleteFn(ctx, id) }

type stubDrivers struct {
	listFn     func(ctx context.Context) ([]domain.Driver, error)
	getFn      func(ctx context.Context, id string) (*domain.Driver, error)
	createFn   func(ctx context.Context, in domain.NewDriver) (*domain.Driver, error)
	registerFn func(ctx context.Context, in domain.NewDriver) (*domain.Driver, error)
	updateFn   func(ctx context.Context, u domain.PartialDriverUpdate) (*domain.Driver, error)
	availFn    func(ctx context.Context, id string, available bool) (*domain.Driver, error)
	deleteFn   func(ctx context.Context, id string) error
	authFn     func(ctx context.Context, email, password string) (*domain.Driver, error)
}

func (s *stubDrivers) List(ctx context.Context) ([]domain.Driver, error) { return s.listFn(ctx) }

func (s *stubDrivers) Get(ctx context.Context, id string) (*domain.Driver, error) {
	return s.getFn(ctx, id)
}

func (s *stubDrivers) Create(ctx context.Context, in domain.NewDriver) (*domain.Driver, error) {
	return s.createFn(ctx, in)
}

func (s *stubDrivers) Register(ctx context.Context, in domain.NewDriver) (*domain.Driver, error) {
	return s.registerFn(ctx, in)
}

func (s *stubDrivers) Update(ctx context.Context, u domain.PartialDriverUpdate) (*domain.Driver, error) {
	return s.updateFn(ctx, u)
}

func (s *stubDrivers) SetAvailability(ctx context.Context, id string, available bool) (*domain.Driver, error) {
	return s.availFn(ctx, id, available)
}

func (s *stubDrivers) Delete(ctx context.Context, id string) error { return s.deleteFn(ctx, id) }

func (s *stubDrivers) Authenticate(ctx context.Context, email, password string) (*domain.Driver, error) {
	return s.authFn(ctx, email, password)
}

type stubAdmins struct {
	fn func(ctx context.Context, email, password string) (string, error)
}

func (s stubAdmins) AuthenticateAdmin(ctx context.Context, email, password string) (string, error) {
	return s.fn(ctx, email, password)
}

var _ auth.AdminAuthenticator = stubAdmins{}

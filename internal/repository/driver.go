package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sulytrack/internal/domain"
)

const driverColumns = `id, name, phone, email, password_hash, vehicle_type, vehicle_model,
license_plate, vehicle_image, is_approved, is_available, lng, lat, rating, created_at`

// DriverRepo represents driver repository.
type DriverRepo struct{ db DB }

// NewDriverRepo creates a new DriverRepo.
func NewDriverRepo(db DB) *DriverRepo { return &DriverRepo{db: db} }

func scanDriver(row pgx.Row) (domain.Driver, error) {
	var d domain.Driver
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.Email, &d.PasswordHash, &d.VehicleType, &d.VehicleModel,
		&d.LicensePlate, &d.VehicleImage, &d.IsApproved, &d.IsAvailable,
		&d.Location.Lng, &d.Location.Lat, &d.Rating, &d.CreatedAt,
	)
	return d, err
}

// List returns all drivers, newest first.
func (r *DriverRepo) List(ctx context.Context) ([]domain.Driver, error) {
	rows, err := r.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Driver, 0, 16)
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get returns a driver by id, or nil when it does not exist.
func (r *DriverRepo) Get(ctx context.Context, id string) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver %s: %w", id, err)
	}
	return &d, nil
}

// GetByEmail looks a driver up by login email (case-insensitive), or nil when absent.
func (r *DriverRepo) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE lower(email)=lower($1)`, email))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver by email: %w", err)
	}
	return &d, nil
}

// Create inserts a fully built driver. A taken email yields apperr.ErrConflict.
func (r *DriverRepo) Create(ctx context.Context, d domain.Driver) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO drivers(id, name, phone, email, password_hash, vehicle_type, vehicle_model,
            license_plate, vehicle_image, is_approved, is_available, lng, lat, rating, created_at)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
    `, d.ID, d.Name, d.Phone, d.Email, d.PasswordHash, d.VehicleType, d.VehicleModel,
		d.LicensePlate, d.VehicleImage, d.IsApproved, d.IsAvailable,
		d.Location.Lng, d.Location.Lat, d.Rating, d.CreatedAt)
	if err != nil {
		return writeErr(err, "create driver")
	}
	return nil
}

// UpdatePartial applies a partial update to a driver and returns true if a row was affected.
// The password hash is only replaced when u.PasswordHash is set.
func (r *DriverRepo) UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) (bool, error) {
	var lng, lat *float64
	if u.Location != nil {
		lng, lat = &u.Location.Lng, &u.Location.Lat
	}
	ct, err := r.db.Exec(ctx, `
        UPDATE drivers
        SET
            name          = COALESCE($2, name),
            phone         = COALESCE($3, phone),
            email         = COALESCE($4, email),
            password_hash = COALESCE($5, password_hash),
            vehicle_type  = COALESCE($6, vehicle_type),
            vehicle_model = COALESCE($7, vehicle_model),
            license_plate = COALESCE($8, license_plate),
            vehicle_image = COALESCE($9, vehicle_image),
            is_approved   = COALESCE($10, is_approved),
            is_available  = COALESCE($11, is_available),
            lng           = COALESCE($12, lng),
            lat           = COALESCE($13, lat),
            rating        = COALESCE($14, rating),
            updated_at    = now()
        WHERE id = $1
    `, u.ID, u.Name, u.Phone, u.Email, u.PasswordHash, u.VehicleType, u.VehicleModel,
		u.LicensePlate, u.VehicleImage, u.IsApproved, u.IsAvailable, lng, lat, u.Rating)
	if err != nil {
		return false, writeErr(err, "update driver "+u.ID)
	}
	return ct.RowsAffected() > 0, nil
}

// SetAvailability flips only is_available and reports whether the driver exists.
func (r *DriverRepo) SetAvailability(ctx context.Context, id string, available bool) (bool, error) {
	ct, err := r.db.Exec(ctx,
		`UPDATE drivers SET is_available=$2, updated_at=now() WHERE id=$1`, id, available)
	if err != nil {
		return false, fmt.Errorf("set availability %s: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// Delete removes a driver and reports whether it existed.
func (r *DriverRepo) Delete(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete driver %s: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

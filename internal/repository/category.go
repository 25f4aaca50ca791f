package repository

import (
	"context"
	"fmt"

	"sulytrack/internal/domain"
)

const categoryColumns = `id, label, color, icon_name`

// CategoryRepo represents vehicle category repository.
type CategoryRepo struct{ db DB }

// NewCategoryRepo creates a new CategoryRepo.
func NewCategoryRepo(db DB) *CategoryRepo { return &CategoryRepo{db: db} }

// List returns all categories ordered by label.
func (r *CategoryRepo) List(ctx context.Context) ([]domain.VehicleCategory, error) {
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY label, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]domain.VehicleCategory, 0, 8)
	for rows.Next() {
		var c domain.VehicleCategory
		if err := rows.Scan(&c.ID, &c.Label, &c.Color, &c.IconName); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns a category by id, or nil when it does not exist.
func (r *CategoryRepo) Get(ctx context.Context, id string) (*domain.VehicleCategory, error) {
	var c domain.VehicleCategory
	err := r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id=$1`, id,
	).Scan(&c.ID, &c.Label, &c.Color, &c.IconName)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	return &c, nil
}

// Exists reports whether a category with the id is stored.
func (r *CategoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id=$1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("category exists %s: %w", id, err)
	}
	return ok, nil
}

// Create inserts a category. A taken id yields apperr.ErrConflict.
func (r *CategoryRepo) Create(ctx context.Context, c domain.VehicleCategory) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO categories(id, label, color, icon_name) VALUES($1,$2,$3,$4)`,
		c.ID, c.Label, c.Color, c.IconName)
	if err != nil {
		return writeErr(err, "create category "+c.ID)
	}
	return nil
}

// InsertIfMissing inserts the category unless its id is already taken.
// It reports whether a row was inserted.
func (r *CategoryRepo) InsertIfMissing(ctx context.Context, c domain.VehicleCategory) (bool, error) {
	ct, err := r.db.Exec(ctx,
		`INSERT INTO categories(id, label, color, icon_name) VALUES($1,$2,$3,$4) ON CONFLICT (id) DO NOTHING`,
		c.ID, c.Label, c.Color, c.IconName)
	if err != nil {
		return false, fmt.Errorf("seed category %s: %w", c.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// UpdatePartial applies a partial update to a category and returns true if a row was affected.
func (r *CategoryRepo) UpdatePartial(ctx context.Context, u domain.PartialCategoryUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE categories
        SET
            label      = COALESCE($2, label),
            color      = COALESCE($3, color),
            icon_name  = COALESCE($4, icon_name),
            updated_at = now()
        WHERE id = $1
    `, u.ID, u.Label, u.Color, u.IconName)
	if err != nil {
		return false, writeErr(err, "update category "+u.ID)
	}
	return ct.RowsAffected() > 0, nil
}

// Delete removes a category and reports whether it existed. Drivers are left untouched.
func (r *CategoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete category %s: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

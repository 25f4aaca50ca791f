package category

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"sulytrack/internal/domain"
)

//go:embed defaults.json
var defaultsJSON []byte

type defaultDTO struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	IconName string `json:"iconName"`
}

// Defaults returns the built-in category set used for seeding.
func Defaults() ([]domain.VehicleCategory, error) {
	var raw []defaultDTO
	if err := json.Unmarshal(defaultsJSON, &raw); err != nil {
		return nil, fmt.Errorf("decode default categories: %w", err)
	}
	out := make([]domain.VehicleCategory, 0, len(raw))
	for _, d := range raw {
		c := domain.VehicleCategory{ID: d.ID, Label: d.Label, Color: d.Color, IconName: d.IconName}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("default category %s: %w", d.ID, err)
		}
		out = append(out, c)
	}
	return out, nil
}

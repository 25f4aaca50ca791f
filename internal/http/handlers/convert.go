package handlers

import "sulytrack/internal/domain"

func (r createCategoryRequest) toModel() domain.VehicleCategory {
	return domain.VehicleCategory{ID: r.ID, Label: r.Label, Color: r.Color, IconName: r.IconName}
}

func (r updateCategoryRequest) toModel(id string) domain.PartialCategoryUpdate {
	return domain.PartialCategoryUpdate{ID: id, Label: r.Label, Color: r.Color, IconName: r.IconName}
}

func categoryToResponse(c domain.VehicleCategory) categoryDTO {
	return categoryDTO{ID: c.ID, Label: c.Label, Color: c.Color, IconName: c.IconName}
}

// categoryWithIcon adds the resolved icon for clients that render it.
func categoryWithIcon(c domain.VehicleCategory) categoryDTO {
	dto := categoryToResponse(c)
	icon := c.Icon()
	dto.Icon = &iconDTO{Name: icon.Name, Asset: icon.Asset}
	return dto
}

func categoriesToResponse(list []domain.VehicleCategory, conv func(domain.VehicleCategory) categoryDTO) []categoryDTO {
	out := make([]categoryDTO, 0, len(list))
	for _, c := range list {
		out = append(out, conv(c))
	}
	return out
}

func (l *locationDTO) toPoint() *domain.Point {
	if l == nil {
		return nil
	}
	return &domain.Point{Lng: l.Lng, Lat: l.Lat}
}

func (r createDriverRequest) toModel() domain.NewDriver {
	return domain.NewDriver{
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		Password:     r.Password,
		VehicleType:  r.VehicleType,
		VehicleModel: r.VehicleModel,
		LicensePlate: r.LicensePlate,
		VehicleImage: r.VehicleImage,
		IsApproved:   r.IsApproved,
		IsAvailable:  r.IsAvailable,
		Location:     r.Location.toPoint(),
	}
}

func (r registerRequest) toModel() domain.NewDriver {
	return domain.NewDriver{
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		Password:     r.Password,
		VehicleType:  r.VehicleType,
		VehicleModel: r.VehicleModel,
		LicensePlate: r.LicensePlate,
		VehicleImage: r.VehicleImage,
		Location:     r.Location.toPoint(),
	}
}

func (r updateDriverRequest) toModel(id string) domain.PartialDriverUpdate {
	return domain.PartialDriverUpdate{
		ID:           id,
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		Password:     r.Password,
		VehicleType:  r.VehicleType,
		VehicleModel: r.VehicleModel,
		LicensePlate: r.LicensePlate,
		VehicleImage: r.VehicleImage,
		IsApproved:   r.IsApproved,
		IsAvailable:  r.IsAvailable,
		Location:     r.Location.toPoint(),
		Rating:       r.Rating,
	}
}

func driverToResponse(d domain.Driver) driverDTO {
	return driverDTO{
		ID:           d.ID,
		Name:         d.Name,
		Phone:        d.Phone,
		Email:        d.Email,
		VehicleType:  d.VehicleType,
		VehicleModel: d.VehicleModel,
		LicensePlate: d.LicensePlate,
		VehicleImage: d.VehicleImage,
		IsApproved:   d.IsApproved,
		IsAvailable:  d.IsAvailable,
		Location:     locationDTO{Lat: d.Location.Lat, Lng: d.Location.Lng},
		Rating:       d.Rating,
		CreatedAt:    d.CreatedAt,
	}
}

func driversToResponse(list []domain.Driver) []driverDTO {
	out := make([]driverDTO, 0, len(list))
	for _, d := range list {
		out = append(out, driverToResponse(d))
	}
	return out
}

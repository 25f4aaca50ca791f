package driver

import (
	"strings"

	"sulytrack/internal/domain"
)

func normalizeNew(in domain.NewDriver) domain.NewDriver {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.VehicleType = strings.TrimSpace(in.VehicleType)
	in.VehicleModel = strings.TrimSpace(in.VehicleModel)
	in.LicensePlate = strings.TrimSpace(in.LicensePlate)
	in.VehicleImage = strings.TrimSpace(in.VehicleImage)
	return in
}

func normalizeUpdate(u domain.PartialDriverUpdate) domain.PartialDriverUpdate {
	u.ID = strings.TrimSpace(u.ID)
	u.Name = trimPtr(u.Name)
	u.Phone = trimPtr(u.Phone)
	if u.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &e
	}
	u.VehicleType = trimPtr(u.VehicleType)
	u.VehicleModel = trimPtr(u.VehicleModel)
	u.LicensePlate = trimPtr(u.LicensePlate)
	u.VehicleImage = trimPtr(u.VehicleImage)
	return u
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

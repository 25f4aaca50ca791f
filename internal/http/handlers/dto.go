package handlers

import "time"

type iconDTO struct {
	Name  string `json:"name"`
	Asset string `json:"asset"`
}

type categoryDTO struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	IconName string   `json:"iconName"`
	Icon     *iconDTO `json:"icon,omitempty"`
}

type createCategoryRequest struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	IconName string `json:"iconName"`
}

type updateCategoryRequest struct {
	Label    *string `json:"label,omitempty"`
	Color    *string `json:"color,omitempty"`
	IconName *string `json:"iconName,omitempty"`
}

type locationDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// driverDTO never carries the password hash.
type driverDTO struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Phone        string      `json:"phone"`
	Email        string      `json:"email"`
	VehicleType  string      `json:"vehicleType"`
	VehicleModel string      `json:"vehicleModel"`
	LicensePlate string      `json:"licensePlate"`
	VehicleImage string      `json:"vehicleImage,omitempty"`
	IsApproved   bool        `json:"isApproved"`
	IsAvailable  bool        `json:"isAvailable"`
	Location     locationDTO `json:"location"`
	Rating       float64     `json:"rating"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type createDriverRequest struct {
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	VehicleType  string       `json:"vehicleType"`
	VehicleModel string       `json:"vehicleModel"`
	LicensePlate string       `json:"licensePlate"`
	VehicleImage string       `json:"vehicleImage"`
	IsApproved   bool         `json:"isApproved"`
	IsAvailable  bool         `json:"isAvailable"`
	Location     *locationDTO `json:"location,omitempty"`
}

type registerRequest struct {
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	VehicleType  string       `json:"vehicleType"`
	VehicleModel string       `json:"vehicleModel"`
	LicensePlate string       `json:"licensePlate"`
	VehicleImage string       `json:"vehicleImage"`
	Location     *locationDTO `json:"location,omitempty"`
}

type updateDriverRequest struct {
	Name         *string      `json:"name,omitempty"`
	Phone        *string      `json:"phone,omitempty"`
	Email        *string      `json:"email,omitempty"`
	Password     *string      `json:"password,omitempty"`
	VehicleType  *string      `json:"vehicleType,omitempty"`
	VehicleModel *string      `json:"vehicleModel,omitempty"`
	LicensePlate *string      `json:"licensePlate,omitempty"`
	VehicleImage *string      `json:"vehicleImage,omitempty"`
	IsApproved   *bool        `json:"isApproved,omitempty"`
	IsAvailable  *bool        `json:"isAvailable,omitempty"`
	Location     *locationDTO `json:"location,omitempty"`
	Rating       *float64     `json:"rating,omitempty"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"isAvailable"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      string    `json:"role"`
}

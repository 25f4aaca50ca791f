package domain

import (
	"strings"
	"time"
)

// DefaultRating is assigned to every new driver.
const DefaultRating = 5.0

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Point is a geographic position stored as (longitude, latitude).
type Point struct {
	Lng float64
	Lat float64
}

// Valid checks coordinate ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// CityCenter is Sulaymaniyah, the fallback for missing locations.
var CityCenter = Point{Lng: 45.4333, Lat: 35.5642}

// Driver represents a registered vehicle operator.
type Driver struct {
	ID           string
	Name         string
	Phone        string
	Email        string
	PasswordHash string
	VehicleType  string
	VehicleModel string
	LicensePlate string
	VehicleImage string
	IsApproved   bool
	IsAvailable  bool
	Location     Point
	Rating       float64
	CreatedAt    time.Time
}

// VisibleOnMap is the single source of truth for live map visibility.
func (d Driver) VisibleOnMap(filter string) bool {
	if !d.IsApproved || !d.IsAvailable {
		return false
	}
	return filter == "" || filter == CategoryFilterAll || filter == d.VehicleType
}

// NewDriver is the input for creating a driver, either by an admin or by self registration.
type NewDriver struct {
	Name         string
	Phone        string
	Email        string
	Password     string
	VehicleType  string
	VehicleModel string
	LicensePlate string
	VehicleImage string
	IsApproved   bool
	IsAvailable  bool
	Location     *Point
}

// DriverRules tunes NewDriver validation for the admin and registration flows.
type DriverRules struct {
	MinPassword  int
	RequireImage bool
}

// Validate checks field formats. Vehicle type membership is checked by the service.
func (n NewDriver) Validate(rules DriverRules) error {
	errs := ValidationErrors{}
	if !minLen(n.Name, 2) {
		errs["name"] = "must be at least 2 characters"
	}
	if !ValidatePhone(n.Phone) {
		errs["phone"] = "invalid phone number format"
	}
	if !ValidateEmail(n.Email) {
		errs["email"] = "invalid email address"
	}
	switch {
	case len(n.Password) < max(rules.MinPassword, 1):
		errs["password"] = "is too short"
	case len(n.Password) > MaxPasswordBytes:
		errs["password"] = "must be at most 72 bytes"
	}
	if strings.TrimSpace(n.VehicleType) == "" {
		errs["vehicleType"] = "is required"
	}
	if !minLen(n.VehicleModel, 2) {
		errs["vehicleModel"] = "is required"
	}
	if !minLen(n.LicensePlate, 4) {
		errs["licensePlate"] = "is too short"
	}
	switch {
	case n.VehicleImage == "" && rules.RequireImage:
		errs["vehicleImage"] = "is required"
	case n.VehicleImage != "" && !ValidImageURL(n.VehicleImage):
		errs["vehicleImage"] = "must be an http(s) URL"
	}
	if n.Location != nil && !n.Location.Valid() {
		errs["location"] = "coordinates out of range"
	}
	return errs.OrNil()
}

// PartialDriverUpdate carries optional fields to update a driver.
// A nil field means “do not change” that attribute. An empty Password also means keep.
type PartialDriverUpdate struct {
	ID           string
	Name         *string
	Phone        *string
	Email        *string
	Password     *string
	VehicleType  *string
	VehicleModel *string
	LicensePlate *string
	VehicleImage *string
	IsApproved   *bool
	IsAvailable  *bool
	Location     *Point
	Rating       *float64

	// PasswordHash is filled by the service from Password; storage only reads this one.
	PasswordHash *string
}

// ChangesPassword reports whether a new password was supplied.
func (u PartialDriverUpdate) ChangesPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// Empty reports whether the update changes nothing.
func (u PartialDriverUpdate) Empty() bool {
	return u.Name == nil && u.Phone == nil && u.Email == nil && !u.ChangesPassword() &&
		u.VehicleType == nil && u.VehicleModel == nil && u.LicensePlate == nil &&
		u.VehicleImage == nil && u.IsApproved == nil && u.IsAvailable == nil &&
		u.Location == nil && u.Rating == nil
}

// Validate checks the fields present in the update.
func (u PartialDriverUpdate) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(u.ID) == "" {
		errs["id"] = "is required"
	}
	if u.Empty() {
		errs["body"] = "nothing to update"
	}
	if u.Name != nil && !minLen(*u.Name, 2) {
		errs["name"] = "must be at least 2 characters"
	}
	if u.Phone != nil && !ValidatePhone(*u.Phone) {
		errs["phone"] = "invalid phone number format"
	}
	if u.Email != nil && !ValidateEmail(*u.Email) {
		errs["email"] = "invalid email address"
	}
	if u.ChangesPassword() && len(*u.Password) > MaxPasswordBytes {
		errs["password"] = "must be at most 72 bytes"
	}
	if u.VehicleType != nil && strings.TrimSpace(*u.VehicleType) == "" {
		errs["vehicleType"] = "is required"
	}
	if u.VehicleModel != nil && !minLen(*u.VehicleModel, 2) {
		errs["vehicleModel"] = "is required"
	}
	if u.LicensePlate != nil && !minLen(*u.LicensePlate, 4) {
		errs["licensePlate"] = "is too short"
	}
	if u.VehicleImage != nil && *u.VehicleImage != "" && !ValidImageURL(*u.VehicleImage) {
		errs["vehicleImage"] = "must be an http(s) URL"
	}
	if u.Location != nil && !u.Location.Valid() {
		errs["location"] = "coordinates out of range"
	}
	if u.Rating != nil && (*u.Rating < 0 || *u.Rating > 5) {
		errs["rating"] = "must be between 0 and 5"
	}
	return errs.OrNil()
}

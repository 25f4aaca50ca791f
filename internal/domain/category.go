package domain

import "strings"

// CategoryFilterAll is the map filter sentinel that matches every category.
const CategoryFilterAll = "all"

// VehicleCategory is a labeled, colored, iconified classification of vehicles.
// Only IconName is persisted; the renderable icon is resolved on read.
type VehicleCategory struct {
	ID       string
	Label    string
	Color    string
	IconName string
}

// PartialCategoryUpdate carries optional fields to update a category.
// The ID selects the row and is never changed.
type PartialCategoryUpdate struct {
	ID       string
	Label    *string
	Color    *string
	IconName *string
}

// Icon resolves the category icon, falling back to the default one.
func (c VehicleCategory) Icon() Icon { return ResolveIcon(c.IconName) }

// Validate checks a category before it is created.
func (c VehicleCategory) Validate() error {
	errs := ValidationErrors{}
	if !ValidCategoryID(c.ID) {
		errs["id"] = "must be at least 2 lowercase letters, digits or underscores"
	}
	if c.ID == CategoryFilterAll {
		errs["id"] = "is reserved"
	}
	if !minLen(c.Label, 2) {
		errs["label"] = "must be at least 2 characters"
	}
	if !ValidColor(c.Color) {
		errs["color"] = "must be a hex color like #RRGGBB"
	}
	if _, ok := LookupIcon(c.IconName); !ok {
		errs["iconName"] = "unknown icon"
	}
	return errs.OrNil()
}

// Empty reports whether the update changes nothing.
func (u PartialCategoryUpdate) Empty() bool {
	return u.Label == nil && u.Color == nil && u.IconName == nil
}

// Validate checks the fields present in the update.
func (u PartialCategoryUpdate) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(u.ID) == "" {
		errs["id"] = "is required"
	}
	if u.Empty() {
		errs["body"] = "nothing to update"
	}
	if u.Label != nil && !minLen(*u.Label, 2) {
		errs["label"] = "must be at least 2 characters"
	}
	if u.Color != nil && !ValidColor(*u.Color) {
		errs["color"] = "must be a hex color like #RRGGBB"
	}
	if u.IconName != nil {
		if _, ok := LookupIcon(*u.IconName); !ok {
			errs["iconName"] = "unknown icon"
		}
	}
	return errs.OrNil()
}

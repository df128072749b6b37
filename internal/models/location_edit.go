package models

import "time"

// LocationEdit is a per-(user, location) overlay. Nil fields fall through
// to the canonical location.
type LocationEdit struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_location_edit"`
	LocationID    uint      `json:"location_id" gorm:"index;uniqueIndex:idx_user_location_edit"`
	GooglePlaceID *string   `json:"google_place_id"`
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Emoji         *string   `json:"emoji" gorm:"size:16"`
	WebsiteURL    *string   `json:"website_url"`
	PhoneNumber   *string   `json:"phone_number"`
	Address       *string   `json:"address"`
	Coordinates   Point     `json:"-"`
	LastUpdated   time.Time `json:"last_updated" gorm:"index"`
}

// UpsertLocationEditRequest defines the request body for editing a location
type UpsertLocationEditRequest struct {
	GooglePlaceID *string  `json:"google_place_id" validate:"omitempty,min=1,max=255"`
	Title         *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=500"`
	Emoji         *string  `json:"emoji" validate:"omitempty,max=16"`
	WebsiteURL    *string  `json:"website_url" validate:"omitempty,max=2048"`
	PhoneNumber   *string  `json:"phone_number" validate:"omitempty,max=50"`
	Address       *string  `json:"address" validate:"omitempty,max=500"`
	Latitude      *float64 `json:"latitude" validate:"required_with=Longitude,omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,longitude"`
}

// LocationEditResponse is returned after an edit: the stored overlay and the
// location as the editor now sees it
type LocationEditResponse struct {
	Edit     LocationEdit      `json:"edit"`
	Location EffectiveLocation `json:"location"`
}

package models

import "time"

// Location is the canonical, deduplicated record of a real-world place
type Location struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	GooglePlaceID   *string   `json:"google_place_id" gorm:"uniqueIndex"` // nil for fallback locations
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Emoji           string    `json:"emoji" gorm:"size:16"`
	Coordinates     Point     `json:"-"`
	IsValidLocation bool      `json:"is_valid_location"`
	Recommendable   bool      `json:"recommendable" gorm:"index"`
	WebsiteURL      string    `json:"website_url"`
	PhoneNumber     string    `json:"phone_number"`
	Address         string    `json:"address"`
	CreatedAt       time.Time `json:"created_at"`
}

// EffectiveLocation is a Location after a viewer's overlay has been applied
type EffectiveLocation struct {
	LocationID      uint     `json:"location_id"`
	GooglePlaceID   *string  `json:"google_place_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Emoji           string   `json:"emoji"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	IsValidLocation bool     `json:"is_valid_location"`
	WebsiteURL      string   `json:"website_url"`
	PhoneNumber     string   `json:"phone_number"`
	Address         string   `json:"address"`
	Edited          bool     `json:"edited"`
}

// LocationResponse is the wire shape of a canonical location
type LocationResponse struct {
	Location
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ToResponse flattens the coordinates for JSON output
func (l Location) ToResponse() LocationResponse {
	resp := LocationResponse{Location: l}
	if l.Coordinates.Valid {
		lat, lng := l.Coordinates.Lat(), l.Coordinates.Lng()
		resp.Latitude = &lat
		resp.Longitude = &lng
	}
	return resp
}

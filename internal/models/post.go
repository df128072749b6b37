package models

import "time"

// Post attributes a shared URL to the location it resolved to
type Post struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	LocationID uint      `json:"location_id" gorm:"index;not null"`
	UserID     *uint     `json:"user_id" gorm:"index"` // nil once the author account is removed
	URL        string    `json:"url"`
	Platform   string    `json:"platform" gorm:"size:20"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// SharePostRequest defines the request body for sharing a post URL
type SharePostRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

// SharePostResponse is returned after a share has been resolved
type SharePostResponse struct {
	Post     Post             `json:"post"`
	Location LocationResponse `json:"location"`
}

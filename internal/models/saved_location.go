package models

import "time"

// SavedLocation marks a location as part of a user's personal saved list
type SavedLocation struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_location_save"`
	LocationID uint      `json:"location_id" gorm:"index;uniqueIndex:idx_user_location_save"`
	Location   Location  `json:"-" gorm:"foreignKey:LocationID"`
	CreatedAt  time.Time `json:"created_at"`
}

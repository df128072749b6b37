package models

import "time"

// Folder groups locations; it is owned by its creator and any co-owners
type Folder struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatorID *uint     `json:"creator_id" gorm:"index"` // nil once the creator account is removed
	Name      string    `json:"name" gorm:"size:100"`
	Color     string    `json:"color" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
}

// FolderLocation is the folder/location junction
type FolderLocation struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FolderID   uint      `json:"folder_id" gorm:"index;uniqueIndex:idx_folder_location"`
	LocationID uint      `json:"location_id" gorm:"index;uniqueIndex:idx_folder_location"`
	Location   Location  `json:"-" gorm:"foreignKey:LocationID"`
	CreatedAt  time.Time `json:"created_at"`
}

// FolderOwner marks a user as co-owner of a folder
type FolderOwner struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	FolderID uint `json:"folder_id" gorm:"index;uniqueIndex:idx_folder_owner"`
	UserID   uint `json:"user_id" gorm:"index;uniqueIndex:idx_folder_owner"`
}

// FolderFollower marks a user as read-only follower of a folder
type FolderFollower struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	FolderID uint `json:"folder_id" gorm:"index;uniqueIndex:idx_folder_follower"`
	UserID   uint `json:"user_id" gorm:"index;uniqueIndex:idx_folder_follower"`
}

package models

// All lists every relational model, in dependency order, for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&User{},
		&Location{},
		&Post{},
		&LocationEdit{},
		&Folder{},
		&FolderLocation{},
		&FolderOwner{},
		&FolderFollower{},
		&SavedLocation{},
	}
}

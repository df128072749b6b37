// Package overlay applies per-user location edits on top of canonical locations.
package overlay

import "github.com/anonto42/spotdrop/backend/internal/models"

// Merge returns the effective view of loc. The viewer's own edit wins outright;
// fallback (an owner's edit in shared or followed folders) is consulted only when
// the viewer has none. Only non-nil edit fields override the canonical values.
func Merge(loc models.Location, viewerEdit, fallbackEdit *models.LocationEdit) models.EffectiveLocation {
	eff := fromLocation(loc)

	edit := viewerEdit
	if edit == nil {
		edit = fallbackEdit
	}
	if edit == nil {
		return eff
	}

	eff.Edited = true
	if edit.GooglePlaceID != nil {
		eff.GooglePlaceID = edit.GooglePlaceID
	}
	overrideString(&eff.Title, edit.Title)
	overrideString(&eff.Description, edit.Description)
	overrideString(&eff.Emoji, edit.Emoji)
	overrideString(&eff.WebsiteURL, edit.WebsiteURL)
	overrideString(&eff.PhoneNumber, edit.PhoneNumber)
	overrideString(&eff.Address, edit.Address)
	if edit.Coordinates.Valid {
		setCoordinates(&eff, edit.Coordinates)
	}

	// A re-pointed place must not keep the old place's contact details.
	if identityChanged(loc, edit) {
		eff.WebsiteURL = valueOrEmpty(edit.WebsiteURL)
		eff.PhoneNumber = valueOrEmpty(edit.PhoneNumber)
	}
	return eff
}

// identityChanged reports whether the edit points the location at a different place.
// An edit without a place id keeps the canonical identity.
func identityChanged(loc models.Location, edit *models.LocationEdit) bool {
	if edit.GooglePlaceID == nil {
		return false
	}
	return loc.GooglePlaceID == nil || *loc.GooglePlaceID != *edit.GooglePlaceID
}

func fromLocation(loc models.Location) models.EffectiveLocation {
	eff := models.EffectiveLocation{
		LocationID:      loc.ID,
		GooglePlaceID:   loc.GooglePlaceID,
		Title:           loc.Title,
		Description:     loc.Description,
		Emoji:           loc.Emoji,
		IsValidLocation: loc.IsValidLocation,
		WebsiteURL:      loc.WebsiteURL,
		PhoneNumber:     loc.PhoneNumber,
		Address:         loc.Address,
	}
	if loc.Coordinates.Valid {
		setCoordinates(&eff, loc.Coordinates)
	}
	return eff
}

func setCoordinates(eff *models.EffectiveLocation, p models.Point) {
	lat, lng := p.Lat(), p.Lng()
	eff.Latitude = &lat
	eff.Longitude = &lng
}

func overrideString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func valueOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

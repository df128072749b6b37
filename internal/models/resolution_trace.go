package models

import "time"

// Outcomes of a share attempt
const (
	OutcomeMatched  = "matched"
	OutcomeCreated  = "created"
	OutcomeFallback = "fallback"
)

// ResolutionTrace records how a single share attempt was resolved (MongoDB)
type ResolutionTrace struct {
	ID           string    `json:"id" bson:"_id"`
	URL          string    `json:"url" bson:"url"`
	Platform     string    `json:"platform" bson:"platform"`
	UserID       uint      `json:"user_id" bson:"user_id"`
	Title        string    `json:"title" bson:"title"`
	AuthorName   string    `json:"author_name,omitempty" bson:"author_name,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
	LocationHint string    `json:"location_hint,omitempty" bson:"location_hint,omitempty"`
	Query        string    `json:"query,omitempty" bson:"query,omitempty"`
	CandidateID  string    `json:"candidate_id,omitempty" bson:"candidate_id,omitempty"`
	Outcome      string    `json:"outcome" bson:"outcome"`
	Reason       string    `json:"reason,omitempty" bson:"reason,omitempty"`
	LocationID   uint      `json:"location_id" bson:"location_id"`
	PostID       uint      `json:"post_id" bson:"post_id"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

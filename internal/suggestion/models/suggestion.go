package models

import "time"

// SuggestionStatus tracks triage of a user-submitted request.
type SuggestionStatus string

const (
	StatusPending SuggestionStatus = "pending"
	StatusAdded   SuggestionStatus = "added"
	StatusIgnored SuggestionStatus = "ignored"
)

// Suggestion is a free-form film request. Email and title are the only
// required fields.
type Suggestion struct {
	ID          int64            `json:"id"`
	Email       string           `json:"email"`
	Title       string           `json:"title"`
	Notes       string           `json:"notes,omitempty"`
	Status      SuggestionStatus `json:"status"`
	SuggestedAt time.Time        `json:"suggested_at"`
}

package models

import "time"

// Timeline locates one article within its author's chronological journey
type Timeline struct {
	Previous       *Article   `json:"previous"`
	Next           *Article   `json:"next"`
	Index          int        `json:"index"`
	Total          int        `json:"total"`
	FirstEventDate *time.Time `json:"first_event_date"`
	// Found is false when the current article is not in the author's list
	// and Index fell back to 0.
	Found bool `json:"found"`
}

// TimelineResponse is the timeline plus the derived day counter
type TimelineResponse struct {
	Timeline
	DaysSinceStart int `json:"days_since_start"`
}

package models

import "time"

// Assignment records a client's current supporter pairing. Reassignment
// appends a new record; it never rewrites history.
type Assignment struct {
	ID                  int64     `json:"id"`
	ClientID            int64     `json:"client_id"`
	SupporterID         int64     `json:"supporter_id"`
	PreviousSupporterID *int64    `json:"previous_supporter_id"`
	MatchScore          int       `json:"match_score"`
	CreatedAt           time.Time `json:"created_at"`
}

// SupporterWithScore pairs a candidate supporter with its preference
// overlap score during reassignment search.
type SupporterWithScore struct {
	SupporterProfile
	MatchScore int `json:"match_score"`
}

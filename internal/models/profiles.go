package models

import "time"

type SupporterProfile struct {
	ID                 int64              `json:"id"`
	UserID             int64              `json:"user_id"`
	DisplayName        *string            `json:"display_name"`
	Bio                *string            `json:"bio"`
	Timezone           string             `json:"timezone"`
	SessionTypes       []string           `json:"session_types"`
	Topics             []string           `json:"topics"`
	Rating             *float64           `json:"rating"`
	Active             bool               `json:"active"`
	Availability       WeeklyAvailability `json:"availability"`
	OnboardingComplete bool               `json:"onboarding_complete"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type ClientProfile struct {
	ID                    int64     `json:"id"`
	UserID                int64     `json:"user_id"`
	DisplayName           *string   `json:"display_name"`
	Timezone              string    `json:"timezone"`
	PreferredSessionTypes []string  `json:"preferred_session_types"`
	Topics                []string  `json:"topics"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

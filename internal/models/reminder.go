package models

import "time"

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderSent      ReminderStatus = "sent"
	ReminderCancelled ReminderStatus = "cancelled"
)

// ReminderOffsetsMinutes are the fixed lead times before a session at which
// reminders fire.
var ReminderOffsetsMinutes = []int{15, 60, 1440}

// Reminder is one pending pre-session notification. Its identity is the
// (SessionID, OffsetMinutes) pair; DeliveryHandle addresses the reminder on
// the external delivery service.
type Reminder struct {
	ID             int64          `json:"id"`
	SessionID      int64          `json:"session_id"`
	OffsetMinutes  int            `json:"offset_minutes"`
	FireAt         time.Time      `json:"fire_at"`
	Status         ReminderStatus `json:"status"`
	DeliveryHandle string         `json:"delivery_handle"`
	CreatedAt      time.Time      `json:"created_at"`
}

package entities

import "time"

// Subscription is an append-only opt-in record; a user may hold duplicates of the same type.
type Subscription struct {
	ID         int64     `json:"id" db:"id"`
	PlatformID int64     `json:"platform_id" db:"platform_id"`
	Type       string    `json:"type" db:"subscription_type"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

package models

import "time"

// RateLimitWindow is one fixed-window counter bucket per identifier (IP).
// It lives in the database, not process memory, so every service instance
// counts against the same bucket. Count is only ever changed through atomic
// SQL increments.
type RateLimitWindow struct {
	Identifier  string    `gorm:"column:identifier;primaryKey"`
	WindowStart time.Time `gorm:"column:window_start;index"`
	Count       int       `gorm:"column:count"`
	Max         int       `gorm:"column:max"`
}

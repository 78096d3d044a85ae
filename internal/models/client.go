package models

import "time"

// Client is an API-key-scoped caller belonging to exactly one business.
// The API key is the sole authentication token on the OTP endpoints and is
// unique across all clients system-wide.
type Client struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BusinessID uint      `gorm:"not null;index" json:"business_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Scopes     string    `gorm:"size:255" json:"scopes"`
	APIKey     string    `gorm:"size:255;uniqueIndex;not null" json:"api_key"`
	CreatedAt  time.Time `json:"created_at"`

	Business Business `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	OTPs     []OTP    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

package models

import "time"

// Admin is a platform operator account. Admins own businesses; deleting an
// admin cascades to its businesses, clients and OTPs.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"created_at"`

	Businesses []Business `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

package models

import "time"

// OTP is a single issued passcode. It belongs to exactly one user and one
// client; both references are immutable after creation. Used flips false to
// true exactly once, on successful verification, and is never reset. Rows
// are never deleted directly, only via user/client cascades.
type OTP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ClientID  uint      `gorm:"not null;index" json:"client_id"`
	Code      string    `gorm:"size:10;not null;index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false;index" json:"used"`

	User   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Client Client `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// IsExpired reports whether the OTP can no longer be verified due to age.
func (o *OTP) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// IsPending reports whether the OTP is still consumable: unused and
// unexpired. Pending OTPs count against the admission ceiling.
func (o *OTP) IsPending(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}

package models

import "time"

// User verification status. The transition is monotonic: NOT_VERIFIED to
// VERIFIED, only on a successful OTP verification.
const (
	UserStatusNotVerified = "NOT_VERIFIED"
	UserStatusVerified    = "VERIFIED"
)

// User is a WhatsApp recipient, created lazily on the first OTP sent to a
// previously-unseen phone number.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PhoneNumber string    `gorm:"size:32;uniqueIndex;not null" json:"phone_number"`
	Status      string    `gorm:"size:16;not null;default:NOT_VERIFIED" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	OTPs []OTP `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

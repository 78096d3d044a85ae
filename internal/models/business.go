package models

import "time"

// Business is a tenant account. It holds the WhatsApp sending credentials
// used for every OTP issued by its clients.
type Business struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AdminID   uint      `gorm:"not null;index" json:"admin_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Twilio subaccount credentials plus the WhatsApp sender number
	// (format "whatsapp:+14155238886"). Never serialized.
	MessagingSID   string `gorm:"size:255;not null" json:"-"`
	MessagingToken string `gorm:"size:255;not null" json:"-"`
	SenderNumber   string `gorm:"size:32;not null" json:"-"`

	Clients []Client `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// SenderCredentials is what the delivery gateway needs to send on behalf of
// a business.
type SenderCredentials struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Credentials extracts the gateway credentials for this business.
func (b *Business) Credentials() SenderCredentials {
	return SenderCredentials{
		AccountSID: b.MessagingSID,
		AuthToken:  b.MessagingToken,
		From:       b.SenderNumber,
	}
}

package storage

import (
	"time"

	"github.com/otpworks/otp-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations. All cross-request
// coordination happens through the store; the services hold no shared
// mutable state of their own.
type Store interface {
	// Admin operations
	CreateAdmin(admin *models.Admin) (*models.Admin, error)
	GetAdminByEmail(email string) (*models.Admin, error)

	// Business operations
	CreateBusiness(business *models.Business) (*models.Business, error)
	GetBusiness(id uint) (*models.Business, error)

	// Client operations
	CreateClient(client *models.Client) (*models.Client, error)
	GetClientByAPIKey(apiKey string) (*models.Client, error)

	// User operations
	GetOrCreateUserByPhone(phone string) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)

	// OTP operations
	CountPendingOTPs(userID, clientID uint, now time.Time) (int64, error)
	CreateOTP(otp *models.OTP) (*models.OTP, error)

	// ConsumeOTP atomically looks up the OTP matching the
	// (phone, code, client) triple, validates it and marks it used while
	// promoting the owning user to VERIFIED. The two mutations commit
	// together or not at all, and concurrent calls on the same OTP are
	// serialized so exactly one of them succeeds. Returns
	// models.ErrInvalidCode, models.ErrAlreadyUsed or models.ErrExpired on
	// rejection.
	ConsumeOTP(phone, code string, clientID uint, now time.Time) (*models.OTP, error)

	GetOTP(id uint) (*models.OTP, error)
}

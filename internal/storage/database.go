package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/otpworks/otp-backend/internal/models"
)

// DatabaseStore is the PostgreSQL-backed store. All mutual exclusion is
// delegated to row-level transaction semantics; no in-process locks.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given GORM connection.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallback for connections opened without error translation.
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

// Admin operations

func (s *DatabaseStore) CreateAdmin(admin *models.Admin) (*models.Admin, error) {
	if err := s.db.Create(admin).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: admin email %s", models.ErrPersistenceConflict, admin.Email)
		}
		return nil, err
	}
	return admin, nil
}

func (s *DatabaseStore) GetAdminByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// Business operations

func (s *DatabaseStore) CreateBusiness(business *models.Business) (*models.Business, error) {
	if err := s.db.Create(business).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: business %s", models.ErrPersistenceConflict, business.Name)
		}
		return nil, err
	}
	return business, nil
}

func (s *DatabaseStore) GetBusiness(id uint) (*models.Business, error) {
	var business models.Business
	if err := s.db.First(&business, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &business, nil
}

// Client operations

func (s *DatabaseStore) CreateClient(client *models.Client) (*models.Client, error) {
	if err := s.db.Create(client).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: duplicate API key", models.ErrPersistenceConflict)
		}
		return nil, err
	}
	return client, nil
}

func (s *DatabaseStore) GetClientByAPIKey(apiKey string) (*models.Client, error) {
	var client models.Client
	err := s.db.Preload("Business").Where("api_key = ?", apiKey).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrUnknownClient
		}
		return nil, err
	}
	return &client, nil
}

// User operations

// GetOrCreateUserByPhone returns the user with this exact phone number,
// creating one if none exists. First-contact races are resolved by the
// unique index on phone_number: the loser re-fetches the winner's row
// instead of erroring.
func (s *DatabaseStore) GetOrCreateUserByPhone(phone string) (*models.User, error) {
	var user models.User
	err := s.db.Where("phone_number = ?", phone).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{PhoneNumber: phone, Status: models.UserStatusNotVerified}
	if err := s.db.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			var existing models.User
			if ferr := s.db.Where("phone_number = ?", phone).First(&existing).Error; ferr != nil {
				return nil, fmt.Errorf("%w: user %s", models.ErrPersistenceConflict, phone)
			}
			return &existing, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("phone_number = ?", phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// OTP operations

func (s *DatabaseStore) CountPendingOTPs(userID, clientID uint, now time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.OTP{}).
		Where("user_id = ? AND client_id = ? AND used = ? AND expires_at > ?",
			userID, clientID, false, now).
		Count(&count).Error
	return count, err
}

func (s *DatabaseStore) CreateOTP(otp *models.OTP) (*models.OTP, error) {
	if err := s.db.Create(otp).Error; err != nil {
		return nil, err
	}
	return otp, nil
}

func (s *DatabaseStore) ConsumeOTP(phone, code string, clientID uint, now time.Time) (*models.OTP, error) {
	var otp models.OTP
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// FOR UPDATE locks both the otps and users rows for the duration of
		// the transaction, so a concurrent verify blocks here and then
		// observes used=true.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Joins("JOIN users ON users.id = otps.user_id").
			Where("users.phone_number = ? AND otps.code = ? AND otps.client_id = ?",
				phone, code, clientID).
			First(&otp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrInvalidCode
		}
		if err != nil {
			return err
		}
		if otp.Used {
			return models.ErrAlreadyUsed
		}
		if otp.IsExpired(now) {
			return models.ErrExpired
		}
		if err := tx.Model(&models.OTP{}).Where("id = ?", otp.ID).
			Update("used", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", otp.UserID).
			Update("status", models.UserStatusVerified).Error; err != nil {
			return err
		}
		otp.Used = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (s *DatabaseStore) GetOTP(id uint) (*models.OTP, error) {
	var otp models.OTP
	if err := s.db.First(&otp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &otp, nil
}

package services

import (
	"errors"
	"time"

	"github.com/otpworks/otp-backend/internal/models"
	"github.com/otpworks/otp-backend/internal/storage"
	"github.com/otpworks/otp-backend/internal/utils"
)

// ErrInvalidCredentials is returned on a failed admin login. It is the same
// for a missing email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AdminService covers the administrative side: admin accounts, tenant
// businesses and their API clients.
type AdminService struct {
	store     storage.Store
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAdminService creates the admin service.
func NewAdminService(store storage.Store, jwtSecret string, tokenTTL time.Duration) *AdminService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AdminService{store: store, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// RegisterAdmin creates an admin account with a bcrypt-hashed password.
func (s *AdminService) RegisterAdmin(email, password string) (*models.Admin, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.store.CreateAdmin(&models.Admin{Email: email, Password: hash})
}

// Login checks the credentials and mints an admin JWT. Returns the token
// and its lifetime in seconds.
func (s *AdminService) Login(email, password string) (string, int, error) {
	admin, err := s.store.GetAdminByEmail(email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", 0, ErrInvalidCredentials
		}
		return "", 0, err
	}
	if !utils.CheckPassword(password, admin.Password) {
		return "", 0, ErrInvalidCredentials
	}
	token, err := utils.CreateAdminToken(admin.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", 0, err
	}
	return token, int(s.tokenTTL.Seconds()), nil
}

// Authenticate resolves a JWT back to the admin account.
func (s *AdminService) Authenticate(token string) (*models.Admin, error) {
	email, err := utils.ParseAdminToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return s.store.GetAdminByEmail(email)
}

// CreateBusiness provisions a tenant with its messaging credentials.
func (s *AdminService) CreateBusiness(adminID uint, name, messagingSID, messagingToken, senderNumber string) (*models.Business, error) {
	return s.store.CreateBusiness(&models.Business{
		AdminID:        adminID,
		Name:           name,
		MessagingSID:   messagingSID,
		MessagingToken: messagingToken,
		SenderNumber:   senderNumber,
	})
}

// CreateClient provisions an API client under a business owned by adminID.
// The generated API key is returned exactly once, on creation.
func (s *AdminService) CreateClient(adminID, businessID uint, name, scopes string) (*models.Client, error) {
	business, err := s.store.GetBusiness(businessID)
	if err != nil {
		return nil, err
	}
	if business.AdminID != adminID {
		// Not the owner; indistinguishable from a missing business.
		return nil, models.ErrNotFound
	}
	return s.store.CreateClient(&models.Client{
		BusinessID: businessID,
		Name:       name,
		Scopes:     scopes,
		APIKey:     utils.GenerateAPIKey(),
	})
}

package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/otpworks/otp-backend/internal/models"
)

// MemoryStore holds all data in memory. Used for tests and local runs
// without a database; it emulates the unique constraints and the atomic
// consume semantics of the real store.
type MemoryStore struct {
	admins     map[uint]*models.Admin
	businesses map[uint]*models.Business
	clients    map[uint]*models.Client
	users      map[uint]*models.User
	otps       map[uint]*models.OTP

	// Mutexes for thread safety. Lock order where both are needed:
	// otpMu before userMu.
	adminMu    sync.RWMutex
	businessMu sync.RWMutex
	clientMu   sync.RWMutex
	userMu     sync.RWMutex
	otpMu      sync.RWMutex

	// Counters for ID generation
	adminCounter    uint
	businessCounter uint
	clientCounter   uint
	userCounter     uint
	otpCounter      uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		admins:     make(map[uint]*models.Admin),
		businesses: make(map[uint]*models.Business),
		clients:    make(map[uint]*models.Client),
		users:      make(map[uint]*models.User),
		otps:       make(map[uint]*models.OTP),
	}
}

// Admin operations

func (m *MemoryStore) CreateAdmin(admin *models.Admin) (*models.Admin, error) {
	m.adminMu.Lock()
	defer m.adminMu.Unlock()

	for _, existing := range m.admins {
		if existing.Email == admin.Email {
			return nil, fmt.Errorf("%w: admin email %s", models.ErrPersistenceConflict, admin.Email)
		}
	}

	m.adminCounter++
	admin.ID = m.adminCounter
	admin.CreatedAt = time.Now()
	m.admins[admin.ID] = admin
	return admin, nil
}

func (m *MemoryStore) GetAdminByEmail(email string) (*models.Admin, error) {
	m.adminMu.RLock()
	defer m.adminMu.RUnlock()

	for _, admin := range m.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return nil, models.ErrNotFound
}

// Business operations

func (m *MemoryStore) CreateBusiness(business *models.Business) (*models.Business, error) {
	m.businessMu.Lock()
	defer m.businessMu.Unlock()

	m.businessCounter++
	business.ID = m.businessCounter
	business.CreatedAt = time.Now()
	m.businesses[business.ID] = business
	return business, nil
}

func (m *MemoryStore) GetBusiness(id uint) (*models.Business, error) {
	m.businessMu.RLock()
	defer m.businessMu.RUnlock()

	business, exists := m.businesses[id]
	if !exists {
		return nil, models.ErrNotFound
	}
	return business, nil
}

// Client operations

func (m *MemoryStore) CreateClient(client *models.Client) (*models.Client, error) {
	m.clientMu.Lock()
	defer m.clientMu.Unlock()

	for _, existing := range m.clients {
		if existing.APIKey == client.APIKey {
			return nil, fmt.Errorf("%w: duplicate API key", models.ErrPersistenceConflict)
		}
	}

	m.clientCounter++
	client.ID = m.clientCounter
	client.CreatedAt = time.Now()
	m.clients[client.ID] = client
	return client, nil
}

func (m *MemoryStore) GetClientByAPIKey(apiKey string) (*models.Client, error) {
	m.clientMu.RLock()
	defer m.clientMu.RUnlock()

	for _, client := range m.clients {
		if client.APIKey == apiKey {
			c := *client
			m.businessMu.RLock()
			if business, ok := m.businesses[client.BusinessID]; ok {
				c.Business = *business
			}
			m.businessMu.RUnlock()
			return &c, nil
		}
	}
	return nil, models.ErrUnknownClient
}

// User operations

func (m *MemoryStore) GetOrCreateUserByPhone(phone string) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	for _, user := range m.users {
		if user.PhoneNumber == phone {
			return user, nil
		}
	}

	m.userCounter++
	user := &models.User{
		ID:          m.userCounter,
		PhoneNumber: phone,
		Status:      models.UserStatusNotVerified,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryStore) GetUserByPhone(phone string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.PhoneNumber == phone {
			return user, nil
		}
	}
	return nil, models.ErrNotFound
}

// OTP operations

func (m *MemoryStore) CountPendingOTPs(userID, clientID uint, now time.Time) (int64, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	var count int64
	for _, otp := range m.otps {
		if otp.UserID == userID && otp.ClientID == clientID && otp.IsPending(now) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) CreateOTP(otp *models.OTP) (*models.OTP, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	m.otpCounter++
	otp.ID = m.otpCounter
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now()
	}
	m.otps[otp.ID] = otp
	return otp, nil
}

func (m *MemoryStore) ConsumeOTP(phone, code string, clientID uint, now time.Time) (*models.OTP, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()
	m.userMu.Lock()
	defer m.userMu.Unlock()

	var user *models.User
	for _, u := range m.users {
		if u.PhoneNumber == phone {
			user = u
			break
		}
	}
	if user == nil {
		return nil, models.ErrInvalidCode
	}

	var otp *models.OTP
	for _, o := range m.otps {
		if o.UserID == user.ID && o.ClientID == clientID && o.Code == code {
			otp = o
			break
		}
	}
	if otp == nil {
		return nil, models.ErrInvalidCode
	}
	if otp.Used {
		return nil, models.ErrAlreadyUsed
	}
	if otp.IsExpired(now) {
		return nil, models.ErrExpired
	}

	otp.Used = true
	user.Status = models.UserStatusVerified
	user.UpdatedAt = now

	result := *otp
	return &result, nil
}

func (m *MemoryStore) GetOTP(id uint) (*models.OTP, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	otp, exists := m.otps[id]
	if !exists {
		return nil, models.ErrNotFound
	}
	result := *otp
	return &result, nil
}

package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/otpworks/otp-backend/internal/models"
	"github.com/otpworks/otp-backend/internal/storage"
	"github.com/otpworks/otp-backend/internal/utils"
)

// OTPConfig tunes the lifecycle engine. Zero values fall back to the
// defaults below.
type OTPConfig struct {
	// ExpiryWindow is how long a code stays verifiable after issuance.
	ExpiryWindow time.Duration

	// MaxPending is the admission ceiling: the maximum number of
	// simultaneously pending OTPs per (user, client) pair.
	MaxPending int64

	// Policy selects the digit-generation policy.
	Policy utils.CodePolicy
}

const (
	defaultExpiryWindow = 5 * time.Minute
	defaultMaxPending   = 3
)

// OTPService is the OTP lifecycle engine: it creates, rate-limits, persists
// and later verifies/consumes OTP records. All consistency guarantees are
// delegated to the store's transactional semantics; the engine itself holds
// no cross-request state.
type OTPService struct {
	store   storage.Store
	gateway DeliveryGateway
	cfg     OTPConfig
}

// NewOTPService creates the lifecycle engine.
func NewOTPService(store storage.Store, gateway DeliveryGateway, cfg OTPConfig) *OTPService {
	if cfg.ExpiryWindow <= 0 {
		cfg.ExpiryWindow = defaultExpiryWindow
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = defaultMaxPending
	}
	return &OTPService{store: store, gateway: gateway, cfg: cfg}
}

// SendOTP issues a new code of the requested length to the phone number,
// on behalf of the client identified by apiKey.
//
// Delivery happens before persistence: a delivery failure never leaves an
// orphan OTP row. The reverse window (message delivered, persist fails) is
// the accepted residual risk of the ordering.
func (s *OTPService) SendOTP(apiKey, phone string, length int) (*models.OTP, error) {
	client, err := s.store.GetClientByAPIKey(apiKey)
	if err != nil {
		return nil, err
	}
	if client.Business.ID == 0 {
		return nil, models.ErrOrphanedClient
	}

	user, err := s.store.GetOrCreateUserByPhone(phone)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pending, err := s.store.CountPendingOTPs(user.ID, client.ID, now)
	if err != nil {
		return nil, err
	}
	if pending >= s.cfg.MaxPending {
		return nil, models.ErrTooManyActiveOTPs
	}

	code, err := utils.GenerateCode(length, s.cfg.Policy)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.Send(phone, code, client.Business.Credentials()); err != nil {
		if errors.Is(err, models.ErrDeliveryFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrDeliveryFailed, err)
	}

	otp := &models.OTP{
		UserID:    user.ID,
		ClientID:  client.ID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.ExpiryWindow),
	}
	created, err := s.store.CreateOTP(otp)
	if err != nil {
		// The message is already out; log the mismatch, surface the error.
		log.Printf("OTP persist failed after delivery to user %d client %d: %v", user.ID, client.ID, err)
		return nil, err
	}
	return created, nil
}

// VerifyOTP consumes the OTP matching (phone, code) for the client
// identified by apiKey. On success the OTP is marked used and the user is
// promoted to VERIFIED in the same committed unit. Rejections are
// models.ErrInvalidCode, models.ErrAlreadyUsed or models.ErrExpired.
func (s *OTPService) VerifyOTP(apiKey, phone, code string) error {
	client, err := s.store.GetClientByAPIKey(apiKey)
	if err != nil {
		return err
	}
	_, err = s.store.ConsumeOTP(phone, code, client.ID, time.Now())
	return err
}

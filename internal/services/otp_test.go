package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otpworks/otp-backend/internal/models"
	"github.com/otpworks/otp-backend/internal/storage"
)

type sentMessage struct {
	To    string
	Code  string
	Creds models.SenderCredentials
}

type fakeGateway struct {
	mu       sync.Mutex
	sent     []sentMessage
	failWith error
}

func (f *fakeGateway) Send(to, code string, creds models.SenderCredentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.sent = append(f.sent, sentMessage{To: to, Code: code, Creds: creds})
	return nil
}

func (f *fakeGateway) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no message was delivered")
	return f.sent[len(f.sent)-1].Code
}

const testPhone = "+15551234567"

func newTestEngine(t *testing.T, cfg OTPConfig) (*OTPService, *storage.MemoryStore, *fakeGateway, *models.Client) {
	t.Helper()
	store := storage.NewMemoryStore()
	business, err := store.CreateBusiness(&models.Business{
		AdminID:        1,
		Name:           "Acme",
		MessagingSID:   "AC0001",
		MessagingToken: "token-acme",
		SenderNumber:   "whatsapp:+14155550100",
	})
	require.NoError(t, err)
	client, err := store.CreateClient(&models.Client{
		BusinessID: business.ID,
		Name:       "acme-web",
		Scopes:     "otp",
		APIKey:     "key-acme",
	})
	require.NoError(t, err)

	gateway := &fakeGateway{}
	return NewOTPService(store, gateway, cfg), store, gateway, client
}

func TestSendOTPIssuesRecord(t *testing.T) {
	svc, store, gateway, client := newTestEngine(t, OTPConfig{})

	otp, err := svc.SendOTP(client.APIKey, testPhone, 6)
	require.NoError(t, err)

	assert.Len(t, otp.Code, 6)
	assert.False(t, otp.Used)
	assert.Equal(t, client.ID, otp.ClientID)
	assert.Equal(t, 5*time.Minute, otp.ExpiresAt.Sub(otp.CreatedAt))

	// The delivered message carries the persisted code and the business
	// credentials.
	require.Len(t, gateway.sent, 1)
	assert.Equal(t, otp.Code, gateway.sent[0].Code)
	assert.Equal(t, testPhone, gateway.sent[0].To)
	assert.Equal(t, "AC0001", gateway.sent[0].Creds.AccountSID)
	assert.Equal(t, "whatsapp:+14155550100", gateway.sent[0].Creds.From)

	// First contact created the user, still unverified.
	user, err := store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusNotVerified, user.Status)
	assert.Equal(t, user.ID, otp.UserID)
}

func TestSendOTPUnknownAPIKey(t *testing.T) {
	svc, store, _, _ := newTestEngine(t, OTPConfig{})

	_, err := svc.SendOTP("no-such-key", testPhone, 6)
	assert.ErrorIs(t, err, models.ErrUnknownClient)

	// Resolution failed before any write: no user was created.
	_, err = store.GetUserByPhone(testPhone)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSendOTPConfiguredWindow(t *testing.T) {
	svc, _, _, client := newTestEngine(t, OTPConfig{ExpiryWindow: 2 * time.Minute})

	otp, err := svc.SendOTP(client.APIKey, testPhone, 4)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, otp.ExpiresAt.Sub(otp.CreatedAt))
	assert.Len(t, otp.Code, 4)
}

func TestSendOTPAdmissionCeiling(t *testing.T) {
	svc, store, _, client := newTestEngine(t, OTPConfig{})

	for i := 0; i < 3; i++ {
		_, err := svc.SendOTP(client.APIKey, testPhone, 6)
		require.NoError(t, err)
	}

	_, err := svc.SendOTP(client.APIKey, testPhone, 6)
	assert.ErrorIs(t, err, models.ErrTooManyActiveOTPs)

	// The ceiling is per (user, client): a second client of the same
	// business can still issue to the same phone.
	other, err := store.CreateClient(&models.Client{
		BusinessID: client.BusinessID,
		Name:       "acme-mobile",
		APIKey:     "key-acme-mobile",
	})
	require.NoError(t, err)
	_, err = svc.SendOTP(other.APIKey, testPhone, 6)
	assert.NoError(t, err)
}

func TestSendOTPCeilingIgnoresExpiredAndUsed(t *testing.T) {
	svc, store, gateway, client := newTestEngine(t, OTPConfig{})

	user, err := store.GetOrCreateUserByPhone(testPhone)
	require.NoError(t, err)

	// Three expired OTPs do not count toward the ceiling.
	for i := 0; i < 3; i++ {
		_, err := store.CreateOTP(&models.OTP{
			UserID:    user.ID,
			ClientID:  client.ID,
			Code:      "000000",
			CreatedAt: time.Now().Add(-time.Hour),
			ExpiresAt: time.Now().Add(-55 * time.Minute),
		})
		require.NoError(t, err)
	}

	_, err = svc.SendOTP(client.APIKey, testPhone, 6)
	require.NoError(t, err)

	// Consuming a pending OTP frees a slot.
	for i := 0; i < 2; i++ {
		_, err := svc.SendOTP(client.APIKey, testPhone, 6)
		require.NoError(t, err)
	}
	_, err = svc.SendOTP(client.APIKey, testPhone, 6)
	require.ErrorIs(t, err, models.ErrTooManyActiveOTPs)

	require.NoError(t, svc.VerifyOTP(client.APIKey, testPhone, gateway.lastCode(t)))
	_, err = svc.SendOTP(client.APIKey, testPhone, 6)
	assert.NoError(t, err)
}

func TestSendOTPDeliveryFailurePersistsNothing(t *testing.T) {
	svc, store, gateway, client := newTestEngine(t, OTPConfig{})
	gateway.failWith = errors.New("gateway unreachable")

	_, err := svc.SendOTP(client.APIKey, testPhone, 6)
	assert.ErrorIs(t, err, models.ErrDeliveryFailed)

	user, err := store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	count, err := store.CountPendingOTPs(user.ID, client.ID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, count, "no OTP row may exist for a failed delivery")
	_, err = store.GetOTP(1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVerifyOTPConsumesOnce(t *testing.T) {
	svc, store, gateway, client := newTestEngine(t, OTPConfig{})

	_, err := svc.SendOTP(client.APIKey, testPhone, 6)
	require.NoError(t, err)
	code := gateway.lastCode(t)

	require.NoError(t, svc.VerifyOTP(client.APIKey, testPhone, code))

	user, err := store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusVerified, user.Status)

	err = svc.VerifyOTP(client.APIKey, testPhone, code)
	assert.ErrorIs(t, err, models.ErrAlreadyUsed)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc, _, gateway, client := newTestEngine(t, OTPConfig{})

	_, err := svc.SendOTP(client.APIKey, testPhone, 6)
	require.NoError(t, err)

	wrong := "000000"
	if gateway.lastCode(t) == wrong {
		wrong = "999999"
	}
	err = svc.VerifyOTP(client.APIKey, testPhone, wrong)
	assert.ErrorIs(t, err, models.ErrInvalidCode)
}

func TestVerifyOTPScopedToIssuingClient(t *testing.T) {
	svc, store, gateway, client := newTestEngine(t, OTPConfig{})

	other, err := store.CreateClient(&models.Client{
		BusinessID: client.BusinessID,
		Name:       "other",
		APIKey:     "key-other",
	})
	require.NoError(t, err)

	_, err = svc.SendOTP(client.APIKey, testPhone, 6)
	require.NoError(t, err)
	code := gateway.lastCode(t)

	// Another client's key never verifies this OTP, even with the right
	// code string.
	err = svc.VerifyOTP(other.APIKey, testPhone, code)
	assert.ErrorIs(t, err, models.ErrInvalidCode)

	// The issuing client still can.
	assert.NoError(t, svc.VerifyOTP(client.APIKey, testPhone, code))
}

func TestVerifyOTPExpired(t *testing.T) {
	svc, store, _, client := newTestEngine(t, OTPConfig{})

	user, err := store.GetOrCreateUserByPhone(testPhone)
	require.NoError(t, err)
	_, err = store.CreateOTP(&models.OTP{
		UserID:    user.ID,
		ClientID:  client.ID,
		Code:      "424242",
		CreatedAt: time.Now().Add(-10 * time.Minute),
		ExpiresAt: time.Now().Add(-5 * time.Minute),
	})
	require.NoError(t, err)

	err = svc.VerifyOTP(client.APIKey, testPhone, "424242")
	assert.ErrorIs(t, err, models.ErrExpired)

	// An expired rejection must not verify the user.
	user, err = store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusNotVerified, user.Status)
}

func TestVerifyOTPUnknownKey(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, OTPConfig{})
	err := svc.VerifyOTP("no-such-key", testPhone, "123456")
	assert.ErrorIs(t, err, models.ErrUnknownClient)
}

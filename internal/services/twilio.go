package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/otpworks/otp-backend/internal/models"
)

// DeliveryGateway pushes a passcode to a recipient on behalf of a business.
// A returned error is terminal for that attempt; the engine performs no
// retries and persists nothing for a failed delivery.
type DeliveryGateway interface {
	Send(to, code string, creds models.SenderCredentials) error
}

// TwilioGateway sends WhatsApp messages via Twilio. Each business has its
// own subaccount credentials, so REST clients are built per credential set
// and cached by account SID.
type TwilioGateway struct {
	mu      sync.Mutex
	clients map[string]*twilio.RestClient

	// Content SID of the approved WhatsApp verification template. When
	// empty, a plain-text message is sent instead (sandbox mode).
	contentSID string
	language   string
}

// NewTwilioGateway creates a gateway configured from the environment.
func NewTwilioGateway() *TwilioGateway {
	language := os.Getenv("TWILIO_TEMPLATE_LANGUAGE")
	if language == "" {
		language = "en_US"
	}
	return &TwilioGateway{
		clients:    make(map[string]*twilio.RestClient),
		contentSID: os.Getenv("TWILIO_VERIFY_CONTENT_SID"),
		language:   language,
	}
}

func (g *TwilioGateway) clientFor(creds models.SenderCredentials) *twilio.RestClient {
	g.mu.Lock()
	defer g.mu.Unlock()

	if client, ok := g.clients[creds.AccountSID]; ok {
		return client
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: creds.AccountSID,
		Password: creds.AuthToken,
	})
	g.clients[creds.AccountSID] = client
	return client
}

// Send delivers the code to the recipient over WhatsApp.
func (g *TwilioGateway) Send(to, code string, creds models.SenderCredentials) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(creds.From)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))

	if g.contentSID != "" {
		params.SetContentSid(g.contentSID)
		variables, err := json.Marshal(map[string]string{"1": code, "2": g.language})
		if err != nil {
			return fmt.Errorf("%w: marshal content variables: %v", models.ErrDeliveryFailed, err)
		}
		params.SetContentVariables(string(variables))
	} else {
		params.SetBody(fmt.Sprintf("Your verification code is %s", code))
	}

	resp, err := g.clientFor(creds).Api.CreateMessage(params)
	if err != nil {
		log.Printf("WhatsApp delivery to %s failed: %v", to, err)
		return fmt.Errorf("%w: %v", models.ErrDeliveryFailed, err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		log.Printf("WhatsApp delivery to %s rejected: twilio error %d", to, *resp.ErrorCode)
		return fmt.Errorf("%w: twilio error %d", models.ErrDeliveryFailed, *resp.ErrorCode)
	}
	return nil
}

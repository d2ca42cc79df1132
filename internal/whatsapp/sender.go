// Package whatsapp dispatches rendered messages over Twilio's WhatsApp API.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Credentials are the Twilio settings rows the sweep resolves per run.
type Credentials struct {
	AccountSID string
	AuthToken  string
	From       string // WhatsApp-enabled sender number, E.164
}

// Complete reports whether all three credential rows are present.
func (c Credentials) Complete() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// Sender wraps Twilio's create-message call. The REST client is rebuilt when
// credentials change, mirroring the Telegram sender's token rotation.
type Sender struct {
	mu     sync.Mutex
	creds  Credentials
	client *twilio.RestClient
}

// NewSender returns an empty Sender; the client is built on first use.
func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) clientFor(creds Credentials) *twilio.RestClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil || s.creds != creds {
		s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: creds.AccountSID,
			Password: creds.AuthToken,
		})
		s.creds = creds
	}
	return s.client
}

// Send delivers text to the recipient phone number. One outbound call, no
// retries. Twilio API errors carry the provider message; anything else is
// reported as a generic network failure. twilio-go's API surface does not
// take a context, so ctx only gates the call via the caller's timeout.
func (s *Sender) Send(_ context.Context, creds Credentials, recipient, text string) error {
	if !creds.Complete() {
		return errors.New("whatsapp: credentials not configured")
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:" + recipient)
	params.SetFrom("whatsapp:" + creds.From)
	params.SetBody(text)

	if _, err := s.clientFor(creds).Api.CreateMessage(params); err != nil {
		// Twilio REST errors render as "Status: 4xx - message"; keep the text.
		if msg := strings.TrimSpace(err.Error()); strings.Contains(msg, "Status:") {
			return fmt.Errorf("whatsapp: %s", msg)
		}
		return errors.New("whatsapp: network error")
	}
	return nil
}

package notification

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fundilink/config"

	"go.uber.org/zap"
)

// WhatsAppSender delivers messages through the Twilio WhatsApp API.
type WhatsAppSender struct {
	httpClient *http.Client
	accountSID string
	authToken  string
	from       string
	logger     *zap.Logger
}

// NewWhatsAppSender builds a sender from the application configuration.
func NewWhatsAppSender(logger *zap.Logger) *WhatsAppSender {
	return &WhatsAppSender{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		accountSID: config.AppConfig.TwilioAccountSID,
		authToken:  config.AppConfig.TwilioAuthToken,
		from:       config.AppConfig.TwilioWhatsAppFrom,
		logger:     logger,
	}
}

// Send posts one message. Errors are returned for the worker to log and
// retry; they carry no consequence for core state.
func (s *WhatsAppSender) Send(ctx context.Context, to, body string) error {
	if s.accountSID == "" || s.authToken == "" {
		s.logger.Debug("whatsapp sender not configured, dropping message", zap.String("to", to))
		return nil
	}

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.accountSID)
	form := url.Values{}
	form.Set("From", "whatsapp:"+s.from)
	form.Set("To", "whatsapp:"+to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("whatsapp API error: status %d", resp.StatusCode)
	}
	return nil
}

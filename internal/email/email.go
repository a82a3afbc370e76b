package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/divinecircle/poojabook/config"
)

const defaultEndpoint = "https://api.resend.com/emails"

// Sender delivers operational notifications. Delivery is best effort:
// callers log failures and move on, a committed confirmation never
// depends on it.
type Sender struct {
	apiKey     string
	from       string
	recipients []string
	endpoint   string
	client     *http.Client
}

func NewSender(cfg config.EmailConfig) *Sender {
	return &Sender{
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		recipients: cfg.Recipients,
		endpoint:   defaultEndpoint,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

type message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (s *Sender) Send(ctx context.Context, subject, body string) error {
	if s.apiKey == "" {
		log.Printf("email: no api key configured, would send %q to %v", subject, s.recipients)
		return nil
	}
	if len(s.recipients) == 0 {
		return nil
	}

	payload, err := json.Marshal(message{
		From:    s.from,
		To:      s.recipients,
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email delivery failed with status %d", resp.StatusCode)
	}
	return nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vhvplatform/go-crm-automation-service/internal/shared/config"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/logger"
)

// WhatsAppService sends reminder messages through the WhatsApp Cloud API
type WhatsAppService struct {
	config config.WhatsAppConfig
	client *http.Client
	log    *logger.Logger
}

// whatsAppMessage is the Cloud API text message payload
type whatsAppMessage struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

type whatsAppTextBody struct {
	Body string `json:"body"`
}

// NewWhatsAppService creates a new WhatsApp service
func NewWhatsAppService(cfg config.WhatsAppConfig, log *logger.Logger) *WhatsAppService {
	return &WhatsAppService{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// Configured reports whether credentials are present. Without them the
// channel is held back instead of failing every dispatch.
func (s *WhatsAppService) Configured() bool {
	return s.config.PhoneID != "" && s.config.AccessToken != ""
}

// Send delivers one text message to a phone number in E.164 format
func (s *WhatsAppService) Send(ctx context.Context, to, message string) error {
	if !s.Configured() {
		return fmt.Errorf("whatsapp channel is not configured")
	}
	if to == "" {
		return fmt.Errorf("recipient phone number is empty")
	}

	payload := whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             whatsAppTextBody{Body: message},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.config.APIURL, s.config.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.AccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call whatsapp API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("whatsapp API returned status %d: %s", resp.StatusCode, string(detail))
	}

	s.log.Debug("WhatsApp message delivered", "to", to)
	return nil
}

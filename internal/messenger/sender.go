// Package messenger sends customer and staff notifications through the
// Ppurio message gateway, with kakao alimtalk as the primary channel and
// SMS as the fallback.
package messenger

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quickoil/kiosk/internal/config"
)

// ErrInvalidPhone marks a recipient number that is not a 010 mobile number.
var ErrInvalidPhone = errors.New("messenger: invalid phone number")

// Sender delivers one message to one recipient. Implemented by Ppurio and by
// test doubles.
type Sender interface {
	SendAlimtalk(phone, message string) error
	SendSMS(phone, message string) error
}

// Ppurio is a client for the Ppurio message API.
type Ppurio struct {
	cfg     config.PpurioConfig
	http    *http.Client
	baseURL string
}

// NewPpurio builds a client against the production gateway.
func NewPpurio(cfg config.PpurioConfig) *Ppurio {
	return &Ppurio{
		cfg:     cfg,
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://message.ppurio.com",
	}
}

// NewPpurioWithBaseURL builds a client against an explicit endpoint.
func NewPpurioWithBaseURL(cfg config.PpurioConfig, baseURL string) *Ppurio {
	p := NewPpurio(cfg)
	p.baseURL = baseURL
	return p
}

// NormalizePhone strips separators and validates the 010 mobile prefix.
func NormalizePhone(phone string) (string, error) {
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, " ", "")
	if phone == "" || !strings.HasPrefix(phone, "010") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}
	return phone, nil
}

// token obtains a short-lived bearer token via Basic auth.
func (p *Ppurio) token() (string, error) {
	body, err := json.Marshal(map[string]string{"account": p.cfg.Account})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodPost, p.baseURL+"/v1/token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(p.cfg.Account + ":" + p.cfg.APIKey))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("messenger: token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("messenger: token request returned %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("messenger: decode token: %w", err)
	}
	if result.Token == "" {
		return "", errors.New("messenger: empty token in response")
	}
	return result.Token, nil
}

// send posts one /v1/message payload.
func (p *Ppurio) send(payload map[string]interface{}) error {
	token, err := p.token()
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, p.baseURL+"/v1/message", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("messenger: send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("messenger: send returned %d", resp.StatusCode)
	}
	return nil
}

// SendAlimtalk delivers a kakao alimtalk message using the configured
// template.
func (p *Ppurio) SendAlimtalk(phone, message string) error {
	to, err := NormalizePhone(phone)
	if err != nil {
		return err
	}
	return p.send(map[string]interface{}{
		"account":      p.cfg.Account,
		"messageType":  "AT",
		"from":         p.cfg.Sender,
		"content":      message,
		"targets":      []map[string]string{{"to": to}},
		"refKey":       "quickoil_" + to,
		"templateCode": p.cfg.TemplateCode,
	})
}

// SendSMS delivers a plain SMS. Used when alimtalk delivery fails.
func (p *Ppurio) SendSMS(phone, message string) error {
	to, err := NormalizePhone(phone)
	if err != nil {
		return err
	}
	return p.send(map[string]interface{}{
		"account":     p.cfg.Account,
		"messageType": "SMS",
		"from":        p.cfg.Sender,
		"content":     message,
		"targets":     []map[string]string{{"to": to}},
		"refKey":      "quickoil_sms_" + to,
	})
}

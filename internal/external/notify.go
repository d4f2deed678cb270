package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NotifyClient talks to the email/WhatsApp gateway. Delivery is best effort:
// callers log failures and never fail business operations on them.
type NotifyClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type NotifyConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type NoticePayload struct {
	UserID   int64             `json:"user_id"`
	Channel  string            `json:"channel"` // "email" or "whatsapp"
	Template string            `json:"template"`
	Params   map[string]string `json:"params,omitempty"`
}

func NewNotifyClient(cfg NotifyConfig) *NotifyClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &NotifyClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Send posts a templated notice to the gateway.
func (nc *NotifyClient) Send(ctx context.Context, notice *NoticePayload) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, nc.baseURL+"/v1/notices", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+nc.apiKey)

	resp, err := nc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify gateway returned status %d", resp.StatusCode)
	}
	return nil
}

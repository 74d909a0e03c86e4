package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Mailer sends a template mail with a parameter map. Delivery status beyond
// the immediate response is never inspected.
type Mailer interface {
	Send(ctx context.Context, templateID string, params map[string]string) error
}

// HTTPMailer talks to a template-mail HTTP API (the kind that takes a
// template id plus key/value params and renders server-side).
type HTTPMailer struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type sendRequest struct {
	TemplateID string            `json:"template_id"`
	Params     map[string]string `json:"params"`
}

func (m *HTTPMailer) Send(ctx context.Context, templateID string, params map[string]string) error {
	body, err := json.Marshal(sendRequest{TemplateID: templateID, Params: params})
	if err != nil {
		return err
	}
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail api: unexpected status %d", resp.StatusCode)
	}
	return nil
}

package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Webhook describes a host endpoint that performs a capability on behalf of
// a remote storefront.
type Webhook struct {
	Endpoint string
	Token    string
}

type webhookPayload struct {
	Capability string `json:"capability"`
	SessionID  string `json:"sessionId"`
	Args       Args   `json:"args,omitempty"`
}

// WebhookFunc returns an action that POSTs {capability, sessionId, args} to
// the hook's endpoint. A nil client uses a client with a 10 second timeout.
func WebhookFunc(name, sessionID string, hook Webhook, client *http.Client) Func {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return func(ctx context.Context, args Args) error {
		body, err := json.Marshal(webhookPayload{Capability: name, SessionID: sessionID, Args: args})
		if err != nil {
			return fmt.Errorf("marshalling webhook payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.Endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook %s: %w", name, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if hook.Token != "" {
			req.Header.Set("Authorization", "Bearer "+hook.Token)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("webhook %s: %w", name, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("webhook %s: status %d: %s", name, resp.StatusCode, respBody)
		}

		slog.Debug("webhook delivered", "capability", name, "endpoint", hook.Endpoint, "status", resp.StatusCode)
		return nil
	}
}

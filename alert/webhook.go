// Package alert provides a webhook-backed Notifier implementation for
// delivering workflow failure alerts.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dagflow-sched/dagflow/contracts"
)

// payload is the JSON body posted to the webhook.
type payload struct {
	Workflow    string   `json:"workflow"`
	StartTime   string   `json:"start_time"`
	FailedTask  string   `json:"failed_task"`
	Reason      string   `json:"reason"`
	Completed   []string `json:"completed_tasks"`
	Uncompleted []string `json:"uncompleted_tasks"`
	DatePoint   string   `json:"date_point,omitempty"`
}

// WebhookNotifier posts failure alerts as JSON to a webhook URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient overrides the HTTP client (useful for tests and custom
// timeouts).
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(n *WebhookNotifier) { n.client = client }
}

// NewWebhookNotifier creates a notifier posting to url.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	n := &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify posts the alert. A non-2xx response is an error.
func (n *WebhookNotifier) Notify(ctx context.Context, alert contracts.FailureAlert) error {
	body, err := json.Marshal(payload{
		Workflow:    alert.Workflow,
		StartTime:   alert.StartTime.Format(time.RFC3339),
		FailedTask:  string(alert.FailedTask),
		Reason:      alert.Reason,
		Completed:   idStrings(alert.Completed),
		Uncompleted: idStrings(alert.Uncompleted),
		DatePoint:   alert.DatePoint,
	})
	if err != nil {
		return fmt.Errorf("encoding alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("alert webhook returned %s", resp.Status)
	}
	return nil
}

func idStrings(ids []contracts.TaskID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

var _ contracts.Notifier = (*WebhookNotifier)(nil)

// Package notify holds the outbound delivery channels: templated email
// for the overdue sweep and batched push for the upcoming-reminder
// sweep. Both providers speak plain HTTPS; each client owns one
// http.Client built at construction time and passed to whoever needs it,
// never a package-level singleton.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EmailMessage is one templated overdue notification.
type EmailMessage struct {
	To        string
	FirstName string
	TaskTitle string
	DueDate   string // already formatted for display
	Link      string // deep link back to the task
}

// EmailSender delivers a single email. Implementations must be safe for
// concurrent use.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailClient talks to a SendGrid-compatible mail API.
type EmailClient struct {
	apiURL     string
	apiKey     string
	from       string
	templateID string
	httpClient *http.Client
}

func NewEmailClient(apiURL, apiKey, from, templateID string) *EmailClient {
	return &EmailClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		from:       from,
		templateID: templateID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *EmailClient) Send(ctx context.Context, msg EmailMessage) error {
	payload := map[string]interface{}{
		"from":        map[string]string{"email": c.from},
		"template_id": c.templateID,
		"personalizations": []map[string]interface{}{
			{
				"to": []map[string]string{{"email": msg.To}},
				"dynamic_template_data": map[string]string{
					"firstName": msg.FirstName,
					"taskTitle": msg.TaskTitle,
					"dueDate":   msg.DueDate,
					"taskLink":  msg.Link,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email provider returned %s", resp.Status)
	}
	return nil
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushMessage is one reminder notification inside a per-user batch.
type PushMessage struct {
	Title string
	Body  string
	Link  string // deep link opened on tap
}

// PushSender delivers a batch of messages to one device token. The batch
// succeeds or fails as a unit from the caller's point of view.
type PushSender interface {
	SendBatch(ctx context.Context, token string, msgs []PushMessage) error
}

// PushClient talks to an FCM-style HTTP push API.
type PushClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewPushClient(apiURL, apiKey string) *PushClient {
	return &PushClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *PushClient) SendBatch(ctx context.Context, token string, msgs []PushMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	messages := make([]map[string]interface{}, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, map[string]interface{}{
			"token": token,
			"notification": map[string]string{
				"title": m.Title,
				"body":  m.Body,
			},
			"data": map[string]string{"url": m.Link},
		})
	}

	body, err := json.Marshal(map[string]interface{}{"messages": messages})
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send push batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push provider returned %s", resp.Status)
	}
	return nil
}

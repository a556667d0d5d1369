package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const chatCompletionsURL = "https://api.groq.com/openai/v1/chat/completions"

// MessageContext is everything the generator knows about one reminder.
type MessageContext struct {
	RecipientName   string
	TaskTitle       string
	TaskDescription string
	Deadline        string
	Priority        string
	DaysRemaining   int
	ReminderCount   int
	Tone            string
}

type GeneratedMessage struct {
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	IsAIGenerated bool   `json:"-"`
}

type Client struct {
	APIKey  string
	Model   string
	BaseURL string // defaults to the Groq endpoint
	HTTP    *http.Client
}

func New(apiKey, model string) *Client {
	return &Client{
		APIKey: apiKey,
		Model:  model,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Generate asks the model for a {subject, body} reminder. Any failure here is
// recoverable at the call site via the deterministic fallback templates.
func (c *Client) Generate(ctx context.Context, mc MessageContext) (GeneratedMessage, error) {
	if c.APIKey == "" {
		return GeneratedMessage{}, fmt.Errorf("groq api key not configured")
	}

	reqBody := map[string]interface{}{
		"model": c.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": BuildReminderPrompt(mc),
			},
		},
		"temperature":     0.7,
		"max_tokens":      500,
		"response_format": map[string]string{"type": "json_object"},
	}

	payload, _ := json.Marshal(reqBody)

	url := c.BaseURL
	if url == "" {
		url = chatCompletionsURL
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return GeneratedMessage{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return GeneratedMessage{}, err
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		return GeneratedMessage{}, fmt.Errorf("groq returned %d: %s", res.StatusCode, truncate(raw, 200))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &completion); err != nil {
		return GeneratedMessage{}, err
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return GeneratedMessage{}, fmt.Errorf("no response from model")
	}

	var msg GeneratedMessage
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &msg); err != nil {
		return GeneratedMessage{}, fmt.Errorf("malformed model output: %w", err)
	}
	if msg.Subject == "" || msg.Body == "" {
		return GeneratedMessage{}, fmt.Errorf("model output missing subject or body")
	}

	msg.IsAIGenerated = true
	return msg, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

const (
	EventTaskCreated       = "task_created"
	EventReminderTriggered = "reminder_triggered"
	EventManualNudge       = "manual_nudge"
	EventTaskOverdue       = "task_overdue"
)

// Payload mirrors what the downstream workflow automation expects per event.
type Payload struct {
	Event         string `json:"event"`
	TaskID        string `json:"taskId"`
	TaskTitle     string `json:"taskTitle"`
	AssigneeName  string `json:"assigneeName"`
	AssigneeEmail string `json:"assigneeEmail"`
	Deadline      string `json:"deadline"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	DaysRemaining int    `json:"daysRemaining"`
	ReminderCount int    `json:"reminderCount"`
	CustomMessage string `json:"customMessage,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// Client posts events to the workflow automation webhook. Delivery is best
// effort: failures are logged and swallowed, never returned.
type Client struct {
	URL  string
	HTTP *http.Client
}

func New(url string) *Client {
	return &Client{
		URL: url,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Notify(ctx context.Context, p Payload) {
	if c == nil || c.URL == "" {
		return
	}

	body, err := json.Marshal(p)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewBuffer(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("[WARN] workflow hook failed: %v", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Printf("[WARN] workflow hook returned %d", resp.StatusCode)
	}
}

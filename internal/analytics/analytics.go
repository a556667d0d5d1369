package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	EventReminderSent      = "reminder_sent"
	EventTaskMarkedOverdue = "task_marked_overdue"
	EventAutomationRun     = "automation_run"
)

// Log inserts one pipeline event. Best effort: analytics must never break the
// reminder flow, so every failure path is swallowed.
func Log(ctx context.Context, db *sql.DB, userID int, eventName string, props any) {
	if db == nil || eventName == "" {
		return
	}

	b, err := json.Marshal(props)
	if err != nil {
		// if props can't marshal, don't break core flow
		return
	}

	_, _ = db.ExecContext(ctx, `
		INSERT INTO analytics_events (event_name, event_time, user_id, properties)
		VALUES ($1, $2, $3, $4::jsonb)
	`, eventName, time.Now().UTC(), userID, string(b))
}

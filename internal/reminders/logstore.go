package reminders

import (
	"context"
	"database/sql"
	"strconv"
	"time"
)

// ReminderLog is one immutable record of a reminder attempt. Rows are written
// once per attempt and never updated afterwards.
type ReminderLog struct {
	ID             int        `json:"id"`
	TaskID         int        `json:"task_id"`
	TaskTitle      string     `json:"task_title"`
	RecipientEmail string     `json:"recipient_email"`
	RecipientName  string     `json:"recipient_name"`
	Channel        string     `json:"channel"`
	MessageType    string     `json:"message_type"`
	Tone           string     `json:"tone"`
	Subject        string     `json:"subject"`
	Message        string     `json:"message"`
	IsAIGenerated  bool       `json:"is_ai_generated"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ReminderNumber int        `json:"reminder_number"`
	CreatedBy      int        `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
}

type LogStore struct {
	DB *sql.DB
}

func NewLogStore(dbx *sql.DB) *LogStore {
	return &LogStore{DB: dbx}
}

func (s *LogStore) Append(ctx context.Context, e ReminderLog) (int, error) {
	if e.Channel == "" {
		e.Channel = "email"
	}
	var sentAt sql.NullTime
	if e.SentAt != nil {
		sentAt = sql.NullTime{Time: *e.SentAt, Valid: true}
	}

	var id int
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO reminder_logs (
			task_id, task_title, recipient_email, recipient_name,
			channel, message_type, tone, subject, message,
			is_ai_generated, status, error_message, sent_at,
			reminder_number, created_by
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id`,
		e.TaskID, e.TaskTitle, e.RecipientEmail, e.RecipientName,
		e.Channel, e.MessageType, e.Tone, e.Subject, e.Message,
		e.IsAIGenerated, e.Status, e.ErrorMessage, sentAt,
		e.ReminderNumber, e.CreatedBy,
	).Scan(&id)
	return id, err
}

func (s *LogStore) ListByOwner(ctx context.Context, owner, taskID, limit int) ([]ReminderLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, task_id, task_title, recipient_email, recipient_name,
		       channel, message_type, tone, subject, message,
		       is_ai_generated, status, error_message, sent_at,
		       reminder_number, created_by, created_at
		FROM reminder_logs
		WHERE created_by=$1`
	args := []any{owner}
	if taskID != 0 {
		query += ` AND task_id=$2`
		args = append(args, taskID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReminderLog
	for rows.Next() {
		var e ReminderLog
		var sentAt sql.NullTime
		if err := rows.Scan(
			&e.ID, &e.TaskID, &e.TaskTitle, &e.RecipientEmail, &e.RecipientName,
			&e.Channel, &e.MessageType, &e.Tone, &e.Subject, &e.Message,
			&e.IsAIGenerated, &e.Status, &e.ErrorMessage, &sentAt,
			&e.ReminderNumber, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if sentAt.Valid {
			e.SentAt = &sentAt.Time
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

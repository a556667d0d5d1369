package reminders

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"chaser-agent-backend/internal/ai"
	"chaser-agent-backend/internal/email"
	"chaser-agent-backend/internal/tasks"
	"chaser-agent-backend/internal/workflow"
)

// Generator produces a reminder subject and body. Failures are recoverable:
// the dispatcher falls back to the fixed per-tone templates.
type Generator interface {
	Generate(ctx context.Context, mc ai.MessageContext) (ai.GeneratedMessage, error)
}

// TaskBook is the reminder bookkeeping the dispatcher mutates after a
// successful send.
type TaskBook interface {
	MarkReminded(ctx context.Context, taskID int, at time.Time) error
}

// LogAppender writes the append-only audit trail.
type LogAppender interface {
	Append(ctx context.Context, e ReminderLog) (int, error)
}

// Hook receives best-effort workflow events; it must swallow its own errors.
type Hook interface {
	Notify(ctx context.Context, p workflow.Payload)
}

type Outcome struct {
	LogID          int    `json:"log_id"`
	Sent           bool   `json:"sent"`
	Error          string `json:"error,omitempty"`
	Tone           string `json:"tone"`
	Subject        string `json:"subject"`
	IsAIGenerated  bool   `json:"is_ai_generated"`
	ReminderNumber int    `json:"reminder_number"`
}

type Dispatcher struct {
	Tasks  TaskBook
	Logs   LogAppender
	AI     Generator // may be nil: fallback templates only
	Email  email.Sender
	Hook   Hook // may be nil
	AppURL string

	Now func() time.Time // test override
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dispatcher) taskURL(id int) string {
	if d.AppURL == "" {
		return ""
	}
	return d.AppURL + "/dashboard/tasks/" + strconv.Itoa(id)
}

// Dispatch sends one reminder to the task's assignee and records the attempt.
// Exactly one log entry is written per call, whatever the send outcome; the
// reminder count only moves when the send succeeded, so a failed attempt keeps
// its number for the retry. Only a log-write failure is returned as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, t tasks.Task, messageType string, useAI bool, customMessage string) (Outcome, error) {
	now := d.now()
	days := DaysUntil(t.Deadline, now)
	reminderNumber := t.ReminderCount + 1
	tone := ToneFor(reminderNumber, days)

	mc := ai.MessageContext{
		RecipientName:   t.AssigneeName,
		TaskTitle:       t.Title,
		TaskDescription: t.Description,
		Deadline:        t.Deadline.Format("Mon, 2 Jan 2006"),
		Priority:        t.Priority,
		DaysRemaining:   days,
		ReminderCount:   reminderNumber,
		Tone:            tone,
	}

	var msg ai.GeneratedMessage
	if useAI && d.AI != nil {
		generated, err := d.AI.Generate(ctx, mc)
		if err != nil {
			log.Printf("[WARN] AI generation failed for task %d, using fallback: %v", t.ID, err)
			msg = Fallback(mc)
		} else {
			msg = generated
		}
	} else {
		msg = Fallback(mc)
	}
	if !msg.IsAIGenerated && customMessage != "" {
		msg.Body = customMessage
	}

	urgencyText, urgencyColor := UrgencyLabel(days)
	html, err := RenderReminderEmail(ReminderEmailData{
		RecipientName: FirstName(t.AssigneeName),
		TaskTitle:     t.Title,
		BodyLines:     strings.Split(msg.Body, "\n"),
		Deadline:      mc.Deadline,
		UrgencyText:   urgencyText,
		UrgencyColor:  urgencyColor,
		TaskURL:       d.taskURL(t.ID),
		IsAIGenerated: msg.IsAIGenerated,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("render email: %w", err)
	}

	sendErr := d.Email.Send(ctx, t.AssigneeEmail, msg.Subject, html)

	entry := ReminderLog{
		TaskID:         t.ID,
		TaskTitle:      t.Title,
		RecipientEmail: t.AssigneeEmail,
		RecipientName:  t.AssigneeName,
		Channel:        "email",
		MessageType:    messageType,
		Tone:           tone,
		Subject:        msg.Subject,
		Message:        msg.Body,
		IsAIGenerated:  msg.IsAIGenerated,
		Status:         "sent",
		ReminderNumber: reminderNumber,
		CreatedBy:      t.CreatedBy,
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = sendErr.Error()
	} else {
		entry.SentAt = &now
	}

	// the log is written unconditionally, success or not
	logID, err := d.Logs.Append(ctx, entry)
	if err != nil {
		return Outcome{}, fmt.Errorf("append reminder log: %w", err)
	}

	outcome := Outcome{
		LogID:          logID,
		Sent:           sendErr == nil,
		Tone:           tone,
		Subject:        msg.Subject,
		IsAIGenerated:  msg.IsAIGenerated,
		ReminderNumber: reminderNumber,
	}
	if sendErr != nil {
		outcome.Error = sendErr.Error()
	} else if err := d.Tasks.MarkReminded(ctx, t.ID, now); err != nil {
		return outcome, fmt.Errorf("update reminder bookkeeping: %w", err)
	}

	// the hook fires after every attempt, delivered or not
	if d.Hook != nil {
		event := workflow.EventReminderTriggered
		if messageType == MessageTypeManual {
			event = workflow.EventManualNudge
		}
		d.Hook.Notify(ctx, workflow.Payload{
			Event:         event,
			TaskID:        strconv.Itoa(t.ID),
			TaskTitle:     t.Title,
			AssigneeName:  t.AssigneeName,
			AssigneeEmail: t.AssigneeEmail,
			Deadline:      t.Deadline.Format(time.RFC3339),
			Priority:      t.Priority,
			Status:        t.Status,
			DaysRemaining: days,
			ReminderCount: reminderNumber,
			CustomMessage: customMessage,
			Timestamp:     now.UTC().Format(time.RFC3339),
		})
	}

	return outcome, nil
}

// Escalate notifies the task owner rather than the assignee. Escalations are
// logged like any other attempt but never touch the reminder count: they are
// aimed at a different audience.
func (d *Dispatcher) Escalate(ctx context.Context, t tasks.Task, owner tasks.Contact) (Outcome, error) {
	now := d.now()

	html, err := RenderEscalationEmail(EscalationEmailData{
		TaskTitle:     t.Title,
		AssigneeName:  t.AssigneeName,
		ReminderCount: t.ReminderCount,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("render escalation email: %w", err)
	}

	subject := fmt.Sprintf("🚨 Escalation: %s needs attention!", t.Title)
	sendErr := d.Email.Send(ctx, owner.Email, subject, html)

	entry := ReminderLog{
		TaskID:         t.ID,
		TaskTitle:      t.Title,
		RecipientEmail: owner.Email,
		RecipientName:  owner.Name,
		Channel:        "email",
		MessageType:    MessageTypeEscalation,
		Tone:           ToneEscalation,
		Subject:        subject,
		Message:        fmt.Sprintf("Task %q requires immediate attention. Assigned to %s, %d reminders sent.", t.Title, t.AssigneeName, t.ReminderCount),
		Status:         "sent",
		ReminderNumber: t.ReminderCount,
		CreatedBy:      t.CreatedBy,
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = sendErr.Error()
	} else {
		entry.SentAt = &now
	}

	logID, err := d.Logs.Append(ctx, entry)
	if err != nil {
		return Outcome{}, fmt.Errorf("append reminder log: %w", err)
	}

	outcome := Outcome{
		LogID:          logID,
		Sent:           sendErr == nil,
		Tone:           ToneEscalation,
		Subject:        subject,
		ReminderNumber: t.ReminderCount,
	}
	if sendErr != nil {
		outcome.Error = sendErr.Error()
	}
	return outcome, nil
}

package reminders

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"chaser-agent-backend/internal/ai"
)

func FirstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "there"
	}
	return parts[0]
}

// EmailSubject is the deterministic subject line used when no AI subject is
// available.
func EmailSubject(taskTitle, tone string, reminderNumber int) string {
	switch tone {
	case ToneFirm:
		return fmt.Sprintf("⏰ Action Required: %s (reminder #%d)", taskTitle, reminderNumber)
	case ToneUrgent:
		return fmt.Sprintf("🚨 URGENT: %s - Immediate Action Required", taskTitle)
	case ToneEscalation:
		return fmt.Sprintf("🔴 OVERDUE: %s - Escalation Required", taskTitle)
	default:
		return fmt.Sprintf("👋 Friendly Reminder: %s", taskTitle)
	}
}

// Fallback builds a fixed per-tone message from the same context the AI would
// get. It never fails, which is what guarantees the dispatcher always has a
// subject and body to send.
func Fallback(mc ai.MessageContext) ai.GeneratedMessage {
	first := FirstName(mc.RecipientName)

	var subject, body string

	switch mc.Tone {
	case ToneFirm:
		subject = EmailSubject(mc.TaskTitle, mc.Tone, mc.ReminderCount)
		body = fmt.Sprintf(
			"Hi %s,\n\nThis is a reminder that \"%s\" requires your attention. The deadline is %s.\n\nPlease update the task status or reach out if you're facing any blockers.\n\nThank you",
			first, mc.TaskTitle, mc.Deadline)
	case ToneUrgent:
		due := "approaching very soon"
		if mc.DaysRemaining <= 0 {
			due = "today"
		}
		subject = EmailSubject(mc.TaskTitle, mc.Tone, mc.ReminderCount)
		body = fmt.Sprintf(
			"Hi %s,\n\nThis is an urgent reminder about \"%s\". The deadline is %s.\n\nThis is a %s priority task and requires immediate attention. Please take action now or escalate if you're blocked.\n\nThank you",
			first, mc.TaskTitle, due, mc.Priority)
	case ToneEscalation:
		overdueBy := -mc.DaysRemaining
		if overdueBy < 0 {
			overdueBy = 0
		}
		subject = EmailSubject(mc.TaskTitle, mc.Tone, mc.ReminderCount)
		body = fmt.Sprintf(
			"Hi %s,\n\n\"%s\" is now %d days overdue. This is reminder #%d.\n\nImmediate action is required. If you're unable to complete this task, please escalate to your manager immediately.\n\nThis matter will be escalated if not addressed today.",
			first, mc.TaskTitle, overdueBy, mc.ReminderCount)
	default:
		due := fmt.Sprintf("in %d days", mc.DaysRemaining)
		if mc.DaysRemaining == 0 {
			due = "today"
		}
		subject = EmailSubject(mc.TaskTitle, ToneFriendly, mc.ReminderCount)
		body = fmt.Sprintf(
			"Hi %s,\n\nThis is a friendly reminder that your task \"%s\" is due %s.\n\nPlease let me know if you need any help or have questions!\n\nBest regards",
			first, mc.TaskTitle, due)
	}

	return ai.GeneratedMessage{Subject: subject, Body: body, IsAIGenerated: false}
}

// UrgencyLabel is the colored badge text on the reminder email.
func UrgencyLabel(daysRemaining int) (text, color string) {
	switch {
	case daysRemaining < 0:
		return "OVERDUE!", "#ef4444"
	case daysRemaining == 0:
		return "Due today", "#ef4444"
	case daysRemaining == 1:
		return "1 day left", "#ef4444"
	case daysRemaining <= 3:
		return fmt.Sprintf("%d days left", daysRemaining), "#f59e0b"
	default:
		return fmt.Sprintf("%d days left", daysRemaining), "#3b82f6"
	}
}

type ReminderEmailData struct {
	RecipientName string
	TaskTitle     string
	BodyLines     []string
	Deadline      string
	UrgencyText   string
	UrgencyColor  string
	TaskURL       string
	IsAIGenerated bool
}

var reminderEmailTmpl = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;font-family:'Segoe UI',Tahoma,sans-serif;background-color:#f3f4f6;">
  <table width="100%" cellpadding="0" cellspacing="0" style="max-width:600px;margin:0 auto;background-color:#ffffff;">
    <tr>
      <td style="background:linear-gradient(135deg,#3b82f6 0%,#8b5cf6 100%);padding:30px;text-align:center;">
        <h1 style="color:#ffffff;margin:0;font-size:24px;">🔔 Task Reminder</h1>
        {{if .IsAIGenerated}}<p style="color:rgba(255,255,255,0.9);margin:10px 0 0;font-size:12px;">✨ AI-Powered Message</p>{{end}}
      </td>
    </tr>
    <tr>
      <td style="padding:30px 30px 20px;">
        <h2 style="color:#1f2937;margin:0 0 10px;font-size:20px;">Hi {{.RecipientName}}!</h2>
        {{range .BodyLines}}<p style="color:#374151;margin:0 0 10px;font-size:14px;">{{.}}</p>{{end}}
      </td>
    </tr>
    <tr>
      <td style="padding:0 30px 20px;">
        <table width="100%" style="background-color:#f9fafb;border-radius:12px;border-left:4px solid {{.UrgencyColor}};">
          <tr>
            <td style="padding:20px;">
              <h3 style="color:#1f2937;margin:0 0 10px;font-size:18px;">📋 {{.TaskTitle}}</h3>
              <p style="color:#6b7280;margin:0 0 8px;font-size:13px;">📅 Deadline: <strong>{{.Deadline}}</strong></p>
              <span style="background-color:{{.UrgencyColor}};color:white;padding:4px 12px;border-radius:20px;font-size:12px;font-weight:600;">⏰ {{.UrgencyText}}</span>
            </td>
          </tr>
        </table>
      </td>
    </tr>
    {{if .TaskURL}}<tr>
      <td style="padding:0 30px 30px;">
        <a href="{{.TaskURL}}" style="display:inline-block;background:#3b82f6;color:white;padding:12px 24px;text-decoration:none;border-radius:6px;font-weight:bold;">View Task</a>
      </td>
    </tr>{{end}}
    <tr>
      <td style="padding:0 30px 30px;">
        <p style="color:#9ca3af;font-size:12px;margin:0;">This is an automated notification from Chaser Agent.</p>
      </td>
    </tr>
  </table>
</body>
</html>`))

func RenderReminderEmail(data ReminderEmailData) (string, error) {
	var buf bytes.Buffer
	if err := reminderEmailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type OverdueEmailData struct {
	RecipientName string
	TaskTitle     string
	AssigneeName  string
	Deadline      string
	DaysOverdue   int
	TaskURL       string
	ForOwner      bool
}

var overdueEmailTmpl = template.Must(template.New("overdue").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f3f4f6;">
  <table width="100%" cellpadding="0" cellspacing="0" style="max-width:600px;margin:0 auto;background-color:#ffffff;">
    <tr>
      <td style="background:linear-gradient(135deg,#ef4444 0%,#dc2626 100%);padding:30px;">
        <h1 style="color:white;margin:0;font-size:24px;">⚠️ {{if .ForOwner}}Task Overdue Alert!{{else}}Your Task is Overdue!{{end}}</h1>
      </td>
    </tr>
    <tr>
      <td style="padding:30px;">
        <p style="color:#374151;font-size:16px;">Hi {{.RecipientName}},</p>
        <p style="color:#374151;font-size:16px;">{{if .ForOwner}}The following task has passed its deadline and is now {{.DaysOverdue}} day(s) overdue:{{else}}Your assigned task has passed its deadline:{{end}}</p>
        <table width="100%" style="background:#fef2f2;border-left:4px solid #ef4444;border-radius:0 8px 8px 0;">
          <tr>
            <td style="padding:20px;">
              <h3 style="color:#991b1b;margin:0 0 10px;">{{.TaskTitle}}</h3>
              {{if .ForOwner}}<p style="color:#7f1d1d;margin:5px 0;"><strong>Assignee:</strong> {{.AssigneeName}}</p>{{end}}
              <p style="color:#7f1d1d;margin:5px 0;"><strong>Deadline was:</strong> {{.Deadline}}</p>
              <p style="color:#7f1d1d;margin:5px 0;"><strong>Days Overdue:</strong> {{.DaysOverdue}} day(s)</p>
            </td>
          </tr>
        </table>
        <p style="color:#374151;font-size:16px;">{{if .ForOwner}}Please take immediate action on this task or update its status.{{else}}Please complete this task as soon as possible or contact your manager.{{end}}</p>
        {{if .TaskURL}}<a href="{{.TaskURL}}" style="display:inline-block;background:#ef4444;color:white;padding:12px 24px;text-decoration:none;border-radius:6px;font-weight:bold;margin-top:15px;">View Task Details</a>{{end}}
        <hr style="border:none;border-top:1px solid #e5e7eb;margin:30px 0;">
        <p style="color:#9ca3af;font-size:12px;">This is an automated notification from Chaser Agent.</p>
      </td>
    </tr>
  </table>
</body>
</html>`))

func RenderOverdueEmail(data OverdueEmailData) (string, error) {
	var buf bytes.Buffer
	if err := overdueEmailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type EscalationEmailData struct {
	TaskTitle     string
	AssigneeName  string
	ReminderCount int
}

var escalationEmailTmpl = template.Must(template.New("escalation").Parse(`<div style="font-family:Arial,sans-serif;padding:20px;">
  <h2 style="color:#dc2626;">🚨 Task Escalation Alert</h2>
  <p>Task <strong>{{.TaskTitle}}</strong> requires your immediate attention.</p>
  <p>Assigned to: {{.AssigneeName}}</p>
  <p>Reminders sent: {{.ReminderCount}}</p>
</div>`))

func RenderEscalationEmail(data EscalationEmailData) (string, error) {
	var buf bytes.Buffer
	if err := escalationEmailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

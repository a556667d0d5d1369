package automation

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"time"

	"chaser-agent-backend/internal/analytics"
	"chaser-agent-backend/internal/reminders"
	"chaser-agent-backend/internal/rules"
	"chaser-agent-backend/internal/tasks"
	"chaser-agent-backend/internal/workflow"
)

// TaskStore is the slice of the task store the batch passes need.
type TaskStore interface {
	FindNewlyOverdue(ctx context.Context, today time.Time) ([]tasks.OverdueTask, error)
	MarkOverdue(ctx context.Context, id int) error
	ReconcileOverdue(ctx context.Context, now time.Time) (int, error)
	ListRemindable(ctx context.Context) ([]tasks.Task, error)
	ListActiveByOwner(ctx context.Context, owner int) ([]tasks.Task, error)
	GetAnyByID(ctx context.Context, id int) (tasks.Task, error)
	SetPriority(ctx context.Context, id int, priority string) error
	OwnerContact(ctx context.Context, userID int) (tasks.Contact, error)
}

type RuleStore interface {
	ListActive(ctx context.Context) ([]rules.Rule, error)
	MarkExecuted(ctx context.Context, id int) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, t tasks.Task, messageType string, useAI bool, customMessage string) (reminders.Outcome, error)
	Escalate(ctx context.Context, t tasks.Task, owner tasks.Contact) (reminders.Outcome, error)
}

type OverdueEmailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Runner drives the scheduled batch passes. Each pass is independent: one
// failed item is recorded and the pass moves to the next item.
type Runner struct {
	Tasks      TaskStore
	Rules      RuleStore
	Dispatcher Dispatcher
	Email      OverdueEmailer
	Hook       reminders.Hook // may be nil
	DB         *sql.DB        // analytics only, may be nil
	AppURL     string

	Now func() time.Time // test override
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) taskURL(id int) string {
	if r.AppURL == "" {
		return ""
	}
	return r.AppURL + "/dashboard/tasks/" + strconv.Itoa(id)
}

type OverdueReport struct {
	Total      int      `json:"total"`
	Updated    int      `json:"updated"`
	EmailsSent int      `json:"emails_sent"`
	Errors     []string `json:"errors,omitempty"`
}

// RunOverdueSweep flips every past-deadline task to overdue and alerts the
// owner, plus the assignee when that is a different address.
func (r *Runner) RunOverdueSweep(ctx context.Context) (OverdueReport, error) {
	now := r.now()
	today := tasks.Midnight(now)

	found, err := r.Tasks.FindNewlyOverdue(ctx, today)
	if err != nil {
		return OverdueReport{}, fmt.Errorf("find overdue tasks: %w", err)
	}

	report := OverdueReport{Total: len(found)}
	for _, o := range found {
		if err := r.Tasks.MarkOverdue(ctx, o.ID); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("task %d: %v", o.ID, err))
			continue
		}
		report.Updated++

		daysOverdue := -reminders.DaysUntil(o.Deadline, now)
		deadline := o.Deadline.Format("Mon, 2 Jan 2006")

		ownerHTML, err := reminders.RenderOverdueEmail(reminders.OverdueEmailData{
			RecipientName: reminders.FirstName(o.OwnerName),
			TaskTitle:     o.Title,
			AssigneeName:  o.AssigneeName,
			Deadline:      deadline,
			DaysOverdue:   daysOverdue,
			TaskURL:       r.taskURL(o.ID),
			ForOwner:      true,
		})
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("task %d: %v", o.ID, err))
			continue
		}
		subject := fmt.Sprintf("⚠️ Task Overdue: %s", o.Title)
		if err := r.Email.Send(ctx, o.OwnerEmail, subject, ownerHTML); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("task %d: %v", o.ID, err))
		} else {
			report.EmailsSent++
		}

		if o.AssigneeEmail != "" && o.AssigneeEmail != o.OwnerEmail {
			assigneeHTML, err := reminders.RenderOverdueEmail(reminders.OverdueEmailData{
				RecipientName: reminders.FirstName(o.AssigneeName),
				TaskTitle:     o.Title,
				Deadline:      deadline,
				DaysOverdue:   daysOverdue,
				TaskURL:       r.taskURL(o.ID),
			})
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("task %d: %v", o.ID, err))
			} else if err := r.Email.Send(ctx, o.AssigneeEmail, subject, assigneeHTML); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("task %d: %v", o.ID, err))
			} else {
				report.EmailsSent++
			}
		}

		if r.Hook != nil {
			r.Hook.Notify(ctx, workflow.Payload{
				Event:         workflow.EventTaskOverdue,
				TaskID:        strconv.Itoa(o.ID),
				TaskTitle:     o.Title,
				AssigneeName:  o.AssigneeName,
				AssigneeEmail: o.AssigneeEmail,
				Deadline:      o.Deadline.Format(time.RFC3339),
				Priority:      o.Priority,
				Status:        tasks.StatusOverdue,
				DaysRemaining: -daysOverdue,
				ReminderCount: o.ReminderCount,
				Timestamp:     now.UTC().Format(time.RFC3339),
			})
		}

		analytics.Log(ctx, r.DB, o.CreatedBy, analytics.EventTaskMarkedOverdue, map[string]any{
			"task_id":      o.ID,
			"days_overdue": daysOverdue,
		})
	}

	return report, nil
}

type RuleReport struct {
	RulesProcessed int      `json:"rules_processed"`
	TasksMatched   int      `json:"tasks_matched"`
	RemindersSent  int      `json:"reminders_sent"`
	Errors         []string `json:"errors,omitempty"`
}

// RunRuleSweep reconciles overdue statuses, then evaluates every active rule
// against its owner's non-completed tasks and applies the matched actions.
func (r *Runner) RunRuleSweep(ctx context.Context) (RuleReport, error) {
	now := r.now()

	if n, err := r.Tasks.ReconcileOverdue(ctx, now); err != nil {
		return RuleReport{}, fmt.Errorf("reconcile overdue: %w", err)
	} else if n > 0 {
		log.Printf("⏰ marked %d task(s) overdue before rule sweep", n)
	}

	active, err := r.Rules.ListActive(ctx)
	if err != nil {
		return RuleReport{}, fmt.Errorf("list active rules: %w", err)
	}

	report := RuleReport{}

	for _, rule := range active {
		report.RulesProcessed++

		// fetched fresh per rule: an earlier rule's send_reminder moves
		// lastReminderSent, and the next rule must see that, or a task
		// gets reminded twice in one sweep
		pool, err := r.Tasks.ListActiveByOwner(ctx, rule.CreatedBy)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("rule %d: %v", rule.ID, err))
			continue
		}

		matched := rules.MatchTasks(rule, pool, now)
		report.TasksMatched += len(matched)
		if len(matched) == 0 {
			continue
		}

		for _, t := range matched {
			for _, action := range rule.Actions {
				if err := r.applyAction(ctx, rule, action, t, &report); err != nil {
					report.Errors = append(report.Errors, fmt.Sprintf("rule %d task %d: %v", rule.ID, t.ID, err))
				}
			}
		}

		if err := r.Rules.MarkExecuted(ctx, rule.ID); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("rule %d: %v", rule.ID, err))
		}

		analytics.Log(ctx, r.DB, rule.CreatedBy, analytics.EventAutomationRun, map[string]any{
			"rule_id":       rule.ID,
			"trigger_type":  rule.TriggerType,
			"tasks_matched": len(matched),
		})
	}

	return report, nil
}

func (r *Runner) applyAction(ctx context.Context, rule rules.Rule, action rules.Action, t tasks.Task, report *RuleReport) error {
	switch action.Type {
	case rules.ActionSendReminder:
		// re-read so the dispatch sees the current reminder count, not the
		// snapshot the rule was evaluated against
		fresh, err := r.Tasks.GetAnyByID(ctx, t.ID)
		if err != nil {
			return err
		}
		outcome, err := r.Dispatcher.Dispatch(ctx, fresh, reminders.MessageTypeScheduled, true, "")
		if err != nil {
			return err
		}
		if outcome.Sent {
			report.RemindersSent++
			analytics.Log(ctx, r.DB, t.CreatedBy, analytics.EventReminderSent, map[string]any{
				"task_id": t.ID,
				"tone":    outcome.Tone,
				"source":  "rule",
			})
		}
		return nil

	case rules.ActionMarkUrgent:
		return r.Tasks.SetPriority(ctx, t.ID, tasks.PriorityHigh)

	case rules.ActionSendEscalation:
		owner, err := r.Tasks.OwnerContact(ctx, t.CreatedBy)
		if err != nil {
			return err
		}
		outcome, err := r.Dispatcher.Escalate(ctx, t, owner)
		if err != nil {
			return err
		}
		if outcome.Sent {
			report.RemindersSent++
		}
		return nil
	}

	log.Printf("[WARN] rule %d has unknown action type %q, skipping", rule.ID, action.Type)
	return nil
}

type ScheduledReport struct {
	Processed int               `json:"processed"`
	Sent      int               `json:"sent"`
	Results   []ScheduledResult `json:"results,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
}

type ScheduledResult struct {
	TaskID  int               `json:"task_id"`
	Window  string            `json:"window"`
	Outcome reminders.Outcome `json:"outcome"`
}

// ScheduledPass is the deadline-window sweep: every non-completed task inside
// one of the reminder windows whose cooldown has elapsed gets a reminder.
func (r *Runner) ScheduledPass(ctx context.Context) (ScheduledReport, error) {
	now := r.now()

	if _, err := r.Tasks.ReconcileOverdue(ctx, now); err != nil {
		return ScheduledReport{}, fmt.Errorf("reconcile overdue: %w", err)
	}

	pool, err := r.Tasks.ListRemindable(ctx)
	if err != nil {
		return ScheduledReport{}, fmt.Errorf("list remindable tasks: %w", err)
	}

	report := ScheduledReport{}
	for _, t := range pool {
		w, ok := reminders.EligibleWindow(t, now)
		if !ok {
			continue
		}
		report.Processed++

		outcome, err := r.Dispatcher.Dispatch(ctx, t, reminders.MessageTypeScheduled, true, "")
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("task %d: %v", t.ID, err))
			continue
		}
		report.Results = append(report.Results, ScheduledResult{TaskID: t.ID, Window: string(w), Outcome: outcome})
		if outcome.Sent {
			report.Sent++
			analytics.Log(ctx, r.DB, t.CreatedBy, analytics.EventReminderSent, map[string]any{
				"task_id": t.ID,
				"tone":    outcome.Tone,
				"window":  string(w),
				"source":  "scheduled",
			})
		}
	}

	return report, nil
}

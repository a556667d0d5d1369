package rules

import (
	"time"

	"chaser-agent-backend/internal/tasks"
)

// MatchesTrigger decides whether a rule's trigger fires for one task. The
// task set fed in must already be owner-scoped and overdue-reconciled; this
// function is pure so the batch runner and tests share one definition.
func MatchesTrigger(r Rule, t tasks.Task, now time.Time) bool {
	today := tasks.Midnight(now)

	switch r.TriggerType {
	case TriggerDeadlineApproaching:
		days := r.TriggerConditions.Days
		if days <= 0 {
			days = 3
		}
		if t.Status == tasks.StatusCompleted || t.Status == tasks.StatusOverdue {
			return false
		}
		// deadline inside (today, today+days], end of that day inclusive
		limit := today.AddDate(0, 0, days+1)
		if !t.Deadline.After(today) || !t.Deadline.Before(limit) {
			return false
		}
		// skip anything already reminded today
		return t.LastReminderSent == nil || t.LastReminderSent.Before(today)

	case TriggerTaskOverdue:
		return t.Status == tasks.StatusOverdue && t.Deadline.Before(today)

	case TriggerNoResponse:
		days := r.TriggerConditions.Days
		if days <= 0 {
			days = 2
		}
		if t.Status == tasks.StatusCompleted || t.ReminderCount == 0 {
			return false
		}
		cutoff := today.AddDate(0, 0, -days)
		return t.LastReminderSent != nil && t.LastReminderSent.Before(cutoff)

	case TriggerReminderCount:
		count := r.TriggerConditions.Count
		if count <= 0 {
			count = 3
		}
		return t.Status != tasks.StatusCompleted && t.ReminderCount >= count
	}

	return false
}

// MatchTasks filters a task set down to those the rule fires for.
func MatchTasks(r Rule, ts []tasks.Task, now time.Time) []tasks.Task {
	var matched []tasks.Task
	for _, t := range ts {
		if MatchesTrigger(r, t, now) {
			matched = append(matched, t)
		}
	}
	return matched
}

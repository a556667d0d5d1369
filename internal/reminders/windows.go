package reminders

import (
	"time"

	"chaser-agent-backend/internal/tasks"
)

// Window is a deadline-relative bucket with its own re-notify cooldown.
type Window string

const (
	WindowThreeDaysOut Window = "three_days_out"
	WindowOneDayOut    Window = "one_day_out"
	WindowDueToday     Window = "due_today"
	WindowOverdue      Window = "overdue"
)

// CooldownFor returns the minimum gap since the last reminder before the same
// task may be reminded again from the given window.
func CooldownFor(w Window) time.Duration {
	switch w {
	case WindowOneDayOut:
		return 12 * time.Hour
	case WindowDueToday:
		return 6 * time.Hour
	default: // three days out, overdue escalation repeat
		return 24 * time.Hour
	}
}

// EligibleWindow decides whether a task is due an automatic scheduled reminder
// right now. Completed tasks never match. A task sits in at most one window at
// a time, so the first match is the only match.
func EligibleWindow(t tasks.Task, now time.Time) (Window, bool) {
	if t.Status == tasks.StatusCompleted {
		return "", false
	}

	days := DaysUntil(t.Deadline, now)

	var w Window
	switch {
	case days == 3:
		w = WindowThreeDaysOut
	case days == 1:
		w = WindowOneDayOut
	case days == 0:
		w = WindowDueToday
	case days < 0 && t.Status == tasks.StatusOverdue:
		w = WindowOverdue
	default:
		return "", false
	}

	// never reminded counts as cooldown satisfied
	if t.LastReminderSent == nil {
		return w, true
	}
	if now.Sub(*t.LastReminderSent) >= CooldownFor(w) {
		return w, true
	}
	return "", false
}

package reminders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chaser-agent-backend/internal/tasks"
)

func taskDue(deadline time.Time, status string, lastSent *time.Time) tasks.Task {
	return tasks.Task{
		ID:               1,
		Title:            "Quarterly report",
		Status:           status,
		Deadline:         deadline,
		LastReminderSent: lastSent,
	}
}

func TestEligibleWindowBuckets(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	tests := []struct {
		name   string
		task   tasks.Task
		window Window
		ok     bool
	}{
		{"three days out", taskDue(day(3), tasks.StatusPending, nil), WindowThreeDaysOut, true},
		{"one day out", taskDue(day(1), tasks.StatusPending, nil), WindowOneDayOut, true},
		{"due today", taskDue(day(0), tasks.StatusInProgress, nil), WindowDueToday, true},
		{"overdue status", taskDue(day(-2), tasks.StatusOverdue, nil), WindowOverdue, true},
		{"two days out is no window", taskDue(day(2), tasks.StatusPending, nil), "", false},
		{"four days out is no window", taskDue(day(4), tasks.StatusPending, nil), "", false},
		{"past deadline but not flagged overdue", taskDue(day(-2), tasks.StatusPending, nil), "", false},
		{"completed never matches", taskDue(day(0), tasks.StatusCompleted, nil), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := EligibleWindow(tt.task, now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.window, w)
		})
	}
}

func TestEligibleWindowCooldowns(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }
	ago := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}

	tests := []struct {
		name string
		task tasks.Task
		ok   bool
	}{
		{"three days out, reminded 23h ago", taskDue(day(3), tasks.StatusPending, ago(23*time.Hour)), false},
		{"three days out, reminded 25h ago", taskDue(day(3), tasks.StatusPending, ago(25*time.Hour)), true},
		{"one day out, reminded 11h ago", taskDue(day(1), tasks.StatusPending, ago(11*time.Hour)), false},
		{"one day out, reminded 13h ago", taskDue(day(1), tasks.StatusPending, ago(13*time.Hour)), true},
		{"due today, reminded 5h ago", taskDue(day(0), tasks.StatusPending, ago(5*time.Hour)), false},
		{"due today, reminded 7h ago", taskDue(day(0), tasks.StatusPending, ago(7*time.Hour)), true},
		{"overdue, reminded 23h ago", taskDue(day(-1), tasks.StatusOverdue, ago(23*time.Hour)), false},
		{"overdue, reminded 25h ago", taskDue(day(-1), tasks.StatusOverdue, ago(25*time.Hour)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := EligibleWindow(tt.task, now)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

// Re-running the filter right after a send must not produce a second reminder.
func TestEligibleWindowIdempotentWithinCooldown(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tk := taskDue(now.AddDate(0, 0, 1), tasks.StatusPending, nil)

	_, ok := EligibleWindow(tk, now)
	assert.True(t, ok)

	sentAt := now
	tk.LastReminderSent = &sentAt
	_, ok = EligibleWindow(tk, now.Add(5*time.Minute))
	assert.False(t, ok)
}

func TestCooldownFor(t *testing.T) {
	assert.Equal(t, 24*time.Hour, CooldownFor(WindowThreeDaysOut))
	assert.Equal(t, 12*time.Hour, CooldownFor(WindowOneDayOut))
	assert.Equal(t, 6*time.Hour, CooldownFor(WindowDueToday))
	assert.Equal(t, 24*time.Hour, CooldownFor(WindowOverdue))
}

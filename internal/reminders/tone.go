package reminders

import (
	"time"

	"chaser-agent-backend/internal/tasks"
)

const (
	ToneFriendly   = "friendly"
	ToneFirm       = "firm"
	ToneUrgent     = "urgent"
	ToneEscalation = "escalation"
)

const (
	MessageTypeScheduled  = "scheduled"
	MessageTypeManual     = "manual"
	MessageTypeEscalation = "escalation"
)

// DaysUntil is the whole-day distance from now's calendar day to the
// deadline's calendar day. Both ends are midnight-normalized in now's
// location, so the division is exact and every call site agrees on the count.
func DaysUntil(deadline, now time.Time) int {
	d := tasks.Midnight(deadline.In(now.Location()))
	n := tasks.Midnight(now)
	return int(d.Sub(n).Hours() / 24)
}

// ToneFor picks the urgency tone for a reminder. A deadline in the past always
// escalates, regardless of how many reminders went out.
func ToneFor(reminderCount, daysUntil int) string {
	if daysUntil < 0 {
		return ToneEscalation
	}
	if reminderCount >= 4 {
		return ToneUrgent
	}
	if reminderCount >= 2 || daysUntil <= 1 {
		return ToneFirm
	}
	return ToneFriendly
}

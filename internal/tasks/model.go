package tasks

import "time"

const (
	StatusPending    = "pending"
	StatusTodo       = "todo" // legacy alias of pending
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusOverdue    = "overdue"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

type Task struct {
	ID               int        `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	AssigneeName     string     `json:"assignee_name"`
	AssigneeEmail    string     `json:"assignee_email"`
	Deadline         time.Time  `json:"deadline"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	ReminderCount    int        `json:"reminder_count"`
	LastReminderSent *time.Time `json:"last_reminder_sent,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedBy        int        `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Comment struct {
	ID        int       `json:"id"`
	TaskID    int       `json:"task_id"`
	UserID    int       `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Contact is the owner identity attached to a task for notifications.
type Contact struct {
	Name  string
	Email string
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusTodo, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsOverdue reports whether the task should be forced to overdue:
// deadline before the start of today and not already completed or overdue.
func IsOverdue(t Task, now time.Time) bool {
	if t.Status == StatusCompleted || t.Status == StatusOverdue {
		return false
	}
	return t.Deadline.Before(Midnight(now))
}

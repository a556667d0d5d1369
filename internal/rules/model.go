package rules

import "time"

const (
	TriggerDeadlineApproaching = "deadline_approaching"
	TriggerTaskOverdue         = "task_overdue"
	TriggerNoResponse          = "no_response"
	TriggerReminderCount       = "reminder_count"
)

const (
	ActionSendReminder   = "send_reminder"
	ActionMarkUrgent     = "mark_urgent"
	ActionSendEscalation = "send_escalation"
)

// Conditions parameterizes a trigger. Zero values fall back to the defaults
// applied during evaluation (days=3 for deadline_approaching, days=2 for
// no_response, count=3 for reminder_count).
type Conditions struct {
	Days  int `json:"days,omitempty"`
	Count int `json:"count,omitempty"`
}

type Action struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

type Rule struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	IsActive          bool       `json:"is_active"`
	TriggerType       string     `json:"trigger_type"`
	TriggerConditions Conditions `json:"trigger_conditions"`
	Actions           []Action   `json:"actions"`
	CreatedBy         int        `json:"created_by"`
	ExecutionCount    int        `json:"execution_count"`
	LastExecutedAt    *time.Time `json:"last_executed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func ValidTrigger(t string) bool {
	switch t {
	case TriggerDeadlineApproaching, TriggerTaskOverdue, TriggerNoResponse, TriggerReminderCount:
		return true
	}
	return false
}

func ValidAction(a string) bool {
	switch a {
	case ActionSendReminder, ActionMarkUrgent, ActionSendEscalation:
		return true
	}
	return false
}

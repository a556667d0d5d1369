package automation

import (
	"encoding/json"
	"log"
	"net/http"

	"chaser-agent-backend/internal/reminders"
)

// checkCronSecret gates the cron endpoints. An empty configured secret means
// the check is off (local dev).
func checkCronSecret(r *http.Request, secret string) bool {
	if secret == "" {
		return true
	}
	return r.Header.Get("x-cron-secret") == secret
}

// CheckOverdueHandler runs the overdue sweep. Wired to the daily cron.
func CheckOverdueHandler(runner *Runner, cronSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !checkCronSecret(r, cronSecret) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		report, err := runner.RunOverdueSweep(r.Context())
		if err != nil {
			http.Error(w, "overdue sweep failed: "+err.Error(), 500)
			return
		}

		log.Printf("⏰ overdue sweep: %d found, %d updated, %d emails", report.Total, report.Updated, report.EmailsSent)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}

// RunAutomationHandler runs the rule sweep followed by the deadline-window
// pass. Wired to the frequent cron.
func RunAutomationHandler(runner *Runner, cronSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !checkCronSecret(r, cronSecret) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ruleReport, err := runner.RunRuleSweep(r.Context())
		if err != nil {
			http.Error(w, "rule sweep failed: "+err.Error(), 500)
			return
		}

		scheduled, err := runner.ScheduledPass(r.Context())
		if err != nil {
			http.Error(w, "scheduled pass failed: "+err.Error(), 500)
			return
		}

		log.Printf("🤖 automation run: %d rules, %d matched, %d rule reminders, %d scheduled reminders",
			ruleReport.RulesProcessed, ruleReport.TasksMatched, ruleReport.RemindersSent, scheduled.Sent)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"rules":     ruleReport,
			"scheduled": scheduled,
		})
	}
}

// WorkflowWebhookHandler lets an external workflow platform trigger the
// engine: a full deadline pass, or a reminder for one task.
func WorkflowWebhookHandler(runner *Runner, webhookSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if webhookSecret != "" && r.Header.Get("x-webhook-secret") != webhookSecret {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Event  string `json:"event"`
			TaskID int    `json:"taskId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		switch body.Event {
		case "check_deadlines":
			report, err := runner.ScheduledPass(r.Context())
			if err != nil {
				http.Error(w, "scheduled pass failed: "+err.Error(), 500)
				return
			}
			json.NewEncoder(w).Encode(report)

		case "send_reminder":
			if body.TaskID == 0 {
				http.Error(w, "taskId required", 400)
				return
			}
			t, err := runner.Tasks.GetAnyByID(r.Context(), body.TaskID)
			if err != nil {
				http.Error(w, "task not found", 404)
				return
			}
			outcome, err := runner.Dispatcher.Dispatch(r.Context(), t, reminders.MessageTypeScheduled, true, "")
			if err != nil {
				http.Error(w, "dispatch failed: "+err.Error(), 500)
				return
			}
			json.NewEncoder(w).Encode(outcome)

		default:
			http.Error(w, "unknown event: "+body.Event, 400)
		}
	}
}

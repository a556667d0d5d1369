package reminders

import (
	"encoding/json"
	"net/http"
	"strconv"

	"chaser-agent-backend/internal/auth"
	"chaser-agent-backend/internal/tasks"
)

// RemindTaskHandler sends a single manual nudge for an owned task.
func RemindTaskHandler(store *tasks.Store, d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskID        int    `json:"task_id"`
			CustomMessage string `json:"custom_message"`
			UseAI         *bool  `json:"use_ai"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if body.TaskID == 0 {
			http.Error(w, "task_id required", 400)
			return
		}

		useAI := true
		if body.UseAI != nil {
			useAI = *body.UseAI
		}

		t, err := store.GetByOwner(r.Context(), uid, body.TaskID)
		if err != nil {
			http.Error(w, "task not found", 404)
			return
		}

		outcome, err := d.Dispatch(r.Context(), t, MessageTypeManual, useAI, body.CustomMessage)
		if err != nil {
			http.Error(w, "dispatch error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"reminder": outcome,
		})
	}
}

// BulkRemindHandler sends manual reminders for a set of owned tasks. Per-task
// failures don't stop the batch.
func BulkRemindHandler(store *tasks.Store, d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskIDs       []int  `json:"task_ids"`
			CustomMessage string `json:"custom_message"`
			UseAI         *bool  `json:"use_ai"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if len(body.TaskIDs) == 0 {
			http.Error(w, "at least one task id is required", 400)
			return
		}

		useAI := true
		if body.UseAI != nil {
			useAI = *body.UseAI
		}

		type result struct {
			TaskID  int    `json:"task_id"`
			Sent    bool   `json:"sent"`
			Tone    string `json:"tone,omitempty"`
			Error   string `json:"error,omitempty"`
			Subject string `json:"subject,omitempty"`
		}

		var results []result
		sent := 0
		for _, id := range body.TaskIDs {
			t, err := store.GetByOwner(r.Context(), uid, id)
			if err != nil {
				results = append(results, result{TaskID: id, Error: "task not found"})
				continue
			}

			outcome, err := d.Dispatch(r.Context(), t, MessageTypeManual, useAI, body.CustomMessage)
			if err != nil {
				results = append(results, result{TaskID: id, Error: err.Error()})
				continue
			}
			if outcome.Sent {
				sent++
			}
			results = append(results, result{
				TaskID:  id,
				Sent:    outcome.Sent,
				Tone:    outcome.Tone,
				Error:   outcome.Error,
				Subject: outcome.Subject,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"processed": len(results),
			"sent":      sent,
			"results":   results,
		})
	}
}

func GetLogsHandler(logs *LogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		taskID, _ := strconv.Atoi(r.URL.Query().Get("task_id"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		entries, err := logs.ListByOwner(r.Context(), uid, taskID, limit)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	}
}

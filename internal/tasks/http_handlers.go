package tasks

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chaser-agent-backend/internal/auth"
	"chaser-agent-backend/internal/workflow"
)

// -------------------------------
// HANDLERS
// -------------------------------

func GetTasksHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// overdue statuses are derived lazily; reconcile before reporting
		if _, err := store.ReconcileOverdue(r.Context(), time.Now()); err != nil {
			log.Printf("[WARN] overdue reconcile failed: %v", err)
		}

		result, err := store.ListByOwner(r.Context(), uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func CreateTaskHandler(store *Store, hook *workflow.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Title         string    `json:"title"`
			Description   string    `json:"description"`
			AssigneeName  string    `json:"assignee_name"`
			AssigneeEmail string    `json:"assignee_email"`
			Deadline      time.Time `json:"deadline"`
			Priority      string    `json:"priority"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}

		body.Title = strings.TrimSpace(body.Title)
		if body.Title == "" {
			http.Error(w, "title is required", 400)
			return
		}
		if body.AssigneeName == "" || body.AssigneeEmail == "" {
			http.Error(w, "assignee name & email required", 400)
			return
		}
		if body.Deadline.IsZero() {
			http.Error(w, "deadline is required", 400)
			return
		}
		if body.Priority == "" {
			body.Priority = PriorityMedium
		}
		if !ValidPriority(body.Priority) {
			http.Error(w, "invalid priority", 400)
			return
		}

		t, err := store.Create(r.Context(), Task{
			Title:         body.Title,
			Description:   strings.TrimSpace(body.Description),
			AssigneeName:  body.AssigneeName,
			AssigneeEmail: strings.ToLower(body.AssigneeEmail),
			Deadline:      body.Deadline,
			Priority:      body.Priority,
			CreatedBy:     uid,
		})
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		if hook != nil {
			hook.Notify(r.Context(), workflow.Payload{
				Event:         workflow.EventTaskCreated,
				TaskID:        strconv.Itoa(t.ID),
				TaskTitle:     t.Title,
				AssigneeName:  t.AssigneeName,
				AssigneeEmail: t.AssigneeEmail,
				Deadline:      t.Deadline.Format(time.RFC3339),
				Priority:      t.Priority,
				Status:        t.Status,
				Timestamp:     time.Now().UTC().Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(t)
	}
}

func UpdateTaskHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskID        int       `json:"task_id"`
			Title         string    `json:"title"`
			Description   string    `json:"description"`
			AssigneeName  string    `json:"assignee_name"`
			AssigneeEmail string    `json:"assignee_email"`
			Deadline      time.Time `json:"deadline"`
			Priority      string    `json:"priority"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if body.TaskID == 0 {
			http.Error(w, "task_id required", 400)
			return
		}
		if strings.TrimSpace(body.Title) == "" {
			http.Error(w, "title is required", 400)
			return
		}
		if !ValidPriority(body.Priority) {
			http.Error(w, "invalid priority", 400)
			return
		}

		t, err := store.Update(r.Context(), uid, Task{
			ID:            body.TaskID,
			Title:         strings.TrimSpace(body.Title),
			Description:   strings.TrimSpace(body.Description),
			AssigneeName:  body.AssigneeName,
			AssigneeEmail: strings.ToLower(body.AssigneeEmail),
			Deadline:      body.Deadline,
			Priority:      body.Priority,
		})
		if err == sql.ErrNoRows {
			http.Error(w, "task not found", 404)
			return
		}
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(t)
	}
}

func SetTaskStatusHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskID int    `json:"task_id"`
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if body.TaskID == 0 {
			http.Error(w, "task_id required", 400)
			return
		}
		if !ValidStatus(body.Status) {
			http.Error(w, "invalid status", 400)
			return
		}

		t, err := store.SetStatus(r.Context(), uid, body.TaskID, body.Status)
		if err == sql.ErrNoRows {
			http.Error(w, "task not found", 404)
			return
		}
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(t)
	}
}

func DeleteTaskHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskID int `json:"task_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		if body.TaskID == 0 {
			http.Error(w, "task_id required", 400)
			return
		}

		err := store.Delete(r.Context(), uid, body.TaskID)
		if err == sql.ErrNoRows {
			http.Error(w, "task not found", 404)
			return
		}
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"deleted": body.TaskID})
	}
}

func AddCommentHandler(store *Store, dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskID  int    `json:"task_id"`
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		content := strings.TrimSpace(body.Content)
		if body.TaskID == 0 || content == "" {
			http.Error(w, "task_id and content required", 400)
			return
		}

		// ownership check
		if _, err := store.GetByOwner(r.Context(), uid, body.TaskID); err != nil {
			http.Error(w, "task not found", 404)
			return
		}

		var userName string
		_ = dbx.QueryRow("SELECT name FROM users WHERE id=$1", uid).Scan(&userName)

		c, err := store.AddComment(r.Context(), Comment{
			TaskID:   body.TaskID,
			UserID:   uid,
			UserName: userName,
			Content:  content,
		})
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c)
	}
}

func GetCommentsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		taskID, _ := strconv.Atoi(r.URL.Query().Get("task_id"))
		if taskID == 0 {
			http.Error(w, "task_id required", 400)
			return
		}
		if _, err := store.GetByOwner(r.Context(), uid, taskID); err != nil {
			http.Error(w, "task not found", 404)
			return
		}

		comments, err := store.ListComments(r.Context(), taskID)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(comments)
	}
}

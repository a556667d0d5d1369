package tasks

import (
	"context"
	"database/sql"
	"time"
)

type Store struct {
	DB *sql.DB
}

func NewStore(dbx *sql.DB) *Store {
	return &Store{DB: dbx}
}

const taskColumns = `
	id, title, COALESCE(description,''), assignee_name, assignee_email,
	deadline, priority, status, reminder_count,
	last_reminder_sent, completed_at, created_by, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var t Task
	var lastSent, completedAt sql.NullTime
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.AssigneeName, &t.AssigneeEmail,
		&t.Deadline, &t.Priority, &t.Status, &t.ReminderCount,
		&lastSent, &completedAt, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return Task{}, err
	}
	if lastSent.Valid {
		t.LastReminderSent = &lastSent.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return t, nil
}

func (s *Store) collect(rows *sql.Rows) ([]Task, error) {
	defer rows.Close()
	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, t Task) (Task, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO tasks (title, description, assignee_name, assignee_email, deadline, priority, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+taskColumns,
		t.Title, t.Description, t.AssigneeName, t.AssigneeEmail, t.Deadline, t.Priority, t.CreatedBy)
	return scanTask(row)
}

func (s *Store) GetByOwner(ctx context.Context, owner, id int) (Task, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id=$1 AND created_by=$2`, id, owner)
	return scanTask(row)
}

// GetAnyByID fetches regardless of owner; used by batch paths which re-read
// current state right before mutating.
func (s *Store) GetAnyByID(ctx context.Context, id int) (Task, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id=$1`, id)
	return scanTask(row)
}

func (s *Store) ListByOwner(ctx context.Context, owner int) ([]Task, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE created_by=$1 ORDER BY deadline ASC, id ASC`, owner)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

// ListActiveByOwner returns the owner's non-completed tasks, the universe an
// automation rule is evaluated against.
func (s *Store) ListActiveByOwner(ctx context.Context, owner int) ([]Task, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE created_by=$1 AND status <> 'completed'
		ORDER BY deadline ASC, id ASC`, owner)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

// ListRemindable returns every non-completed task across all owners, for the
// scheduled-window pass.
func (s *Store) ListRemindable(ctx context.Context) ([]Task, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE status <> 'completed'
		ORDER BY deadline ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

// OverdueTask carries the owner contact alongside the task for the overdue sweep.
type OverdueTask struct {
	Task
	OwnerName  string
	OwnerEmail string
}

// FindNewlyOverdue lists tasks whose deadline passed before today and that are
// not yet marked completed or overdue, joined with the owner contact.
func (s *Store) FindNewlyOverdue(ctx context.Context, today time.Time) ([]OverdueTask, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT t.id, t.title, COALESCE(t.description,''), t.assignee_name, t.assignee_email,
		       t.deadline, t.priority, t.status, t.reminder_count,
		       t.last_reminder_sent, t.completed_at, t.created_by, t.created_at, t.updated_at,
		       u.name, u.email
		FROM tasks t
		JOIN users u ON u.id = t.created_by
		WHERE t.deadline < $1 AND t.status NOT IN ('completed', 'overdue')
		ORDER BY t.deadline ASC`, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OverdueTask
	for rows.Next() {
		var o OverdueTask
		var lastSent, completedAt sql.NullTime
		if err := rows.Scan(
			&o.ID, &o.Title, &o.Description, &o.AssigneeName, &o.AssigneeEmail,
			&o.Deadline, &o.Priority, &o.Status, &o.ReminderCount,
			&lastSent, &completedAt, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
			&o.OwnerName, &o.OwnerEmail,
		); err != nil {
			return nil, err
		}
		if lastSent.Valid {
			o.LastReminderSent = &lastSent.Time
		}
		if completedAt.Valid {
			o.CompletedAt = &completedAt.Time
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ReconcileOverdue forces overdue status onto every task whose deadline passed
// before the start of today. Called at the start of batch passes and before
// eligibility reads, so stale statuses never feed the filters.
func (s *Store) ReconcileOverdue(ctx context.Context, now time.Time) (int, error) {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE tasks
		SET status = 'overdue', updated_at = now()
		WHERE deadline < $1 AND status NOT IN ('completed', 'overdue')
	`, Midnight(now))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *Store) MarkOverdue(ctx context.Context, id int) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE tasks SET status='overdue', updated_at=now() WHERE id=$1`, id)
	return err
}

// MarkReminded bumps the reminder bookkeeping. The increment happens in SQL so
// concurrent dispatches cannot lose a count.
func (s *Store) MarkReminded(ctx context.Context, id int, at time.Time) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE tasks
		SET reminder_count = reminder_count + 1, last_reminder_sent = $2, updated_at = now()
		WHERE id = $1`, id, at)
	return err
}

func (s *Store) SetPriority(ctx context.Context, id int, priority string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE tasks SET priority=$2, updated_at=now() WHERE id=$1`, id, priority)
	return err
}

// SetStatus applies an explicit status change. Completing sets completed_at;
// leaving completed clears it.
func (s *Store) SetStatus(ctx context.Context, owner, id int, status string) (Task, error) {
	var row *sql.Row
	if status == StatusCompleted {
		row = s.DB.QueryRowContext(ctx, `
			UPDATE tasks SET status=$3, completed_at=now(), updated_at=now()
			WHERE id=$1 AND created_by=$2
			RETURNING `+taskColumns, id, owner, status)
	} else {
		row = s.DB.QueryRowContext(ctx, `
			UPDATE tasks SET status=$3, completed_at=NULL, updated_at=now()
			WHERE id=$1 AND created_by=$2
			RETURNING `+taskColumns, id, owner, status)
	}
	return scanTask(row)
}

func (s *Store) Update(ctx context.Context, owner int, t Task) (Task, error) {
	row := s.DB.QueryRowContext(ctx, `
		UPDATE tasks
		SET title=$3, description=$4, assignee_name=$5, assignee_email=$6,
		    deadline=$7, priority=$8, updated_at=now()
		WHERE id=$1 AND created_by=$2
		RETURNING `+taskColumns,
		t.ID, owner, t.Title, t.Description, t.AssigneeName, t.AssigneeEmail, t.Deadline, t.Priority)
	return scanTask(row)
}

func (s *Store) Delete(ctx context.Context, owner, id int) error {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM tasks WHERE id=$1 AND created_by=$2`, id, owner)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) AddComment(ctx context.Context, c Comment) (Comment, error) {
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO task_comments (task_id, user_id, user_name, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		c.TaskID, c.UserID, c.UserName, c.Content).Scan(&c.ID, &c.CreatedAt)
	return c, err
}

func (s *Store) ListComments(ctx context.Context, taskID int) ([]Comment, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, task_id, user_id, user_name, content, created_at
		FROM task_comments WHERE task_id=$1 ORDER BY created_at ASC, id ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) OwnerContact(ctx context.Context, userID int) (Contact, error) {
	var c Contact
	err := s.DB.QueryRowContext(ctx, `
		SELECT name, email FROM users WHERE id=$1`, userID).Scan(&c.Name, &c.Email)
	return c, err
}

package rules

import (
	"context"
	"database/sql"
	"encoding/json"
)

type Store struct {
	DB *sql.DB
}

func NewStore(dbx *sql.DB) *Store {
	return &Store{DB: dbx}
}

const ruleColumns = `
	id, name, COALESCE(description,''), is_active, trigger_type,
	trigger_conditions, actions, created_by, execution_count,
	last_executed_at, created_at, updated_at`

func scanRule(row interface{ Scan(...any) error }) (Rule, error) {
	var r Rule
	var conditions, actions []byte
	var lastExecuted sql.NullTime
	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &r.IsActive, &r.TriggerType,
		&conditions, &actions, &r.CreatedBy, &r.ExecutionCount,
		&lastExecuted, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return Rule{}, err
	}
	if lastExecuted.Valid {
		r.LastExecutedAt = &lastExecuted.Time
	}
	_ = json.Unmarshal(conditions, &r.TriggerConditions)
	_ = json.Unmarshal(actions, &r.Actions)
	return r, nil
}

func (s *Store) collect(rows *sql.Rows) ([]Rule, error) {
	defer rows.Close()
	var out []Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, r Rule) (Rule, error) {
	conditions, _ := json.Marshal(r.TriggerConditions)
	actions, _ := json.Marshal(r.Actions)
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO automation_rules (name, description, is_active, trigger_type, trigger_conditions, actions, created_by)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7)
		RETURNING `+ruleColumns,
		r.Name, r.Description, r.IsActive, r.TriggerType, string(conditions), string(actions), r.CreatedBy)
	return scanRule(row)
}

func (s *Store) ListByOwner(ctx context.Context, owner int) ([]Rule, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+ruleColumns+` FROM automation_rules WHERE created_by=$1 ORDER BY id ASC`, owner)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

// ListActive returns every active rule across all owners, for the rule sweep.
func (s *Store) ListActive(ctx context.Context) ([]Rule, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+ruleColumns+` FROM automation_rules WHERE is_active=TRUE ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

func (s *Store) Update(ctx context.Context, owner int, r Rule) (Rule, error) {
	conditions, _ := json.Marshal(r.TriggerConditions)
	actions, _ := json.Marshal(r.Actions)
	row := s.DB.QueryRowContext(ctx, `
		UPDATE automation_rules
		SET name=$3, description=$4, is_active=$5, trigger_type=$6,
		    trigger_conditions=$7::jsonb, actions=$8::jsonb, updated_at=now()
		WHERE id=$1 AND created_by=$2
		RETURNING `+ruleColumns,
		r.ID, owner, r.Name, r.Description, r.IsActive, r.TriggerType, string(conditions), string(actions))
	return scanRule(row)
}

func (s *Store) Delete(ctx context.Context, owner, id int) error {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM automation_rules WHERE id=$1 AND created_by=$2`, id, owner)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkExecuted bumps the execution bookkeeping after a sweep in which the rule
// matched at least one task.
func (s *Store) MarkExecuted(ctx context.Context, id int) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE automation_rules
		SET execution_count = execution_count + 1, last_executed_at = now(), updated_at = now()
		WHERE id = $1`, id)
	return err
}

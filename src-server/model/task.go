package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type TaskStatus string

const (
	TASK_STATUS_PENDING   = TaskStatus("Pending")
	TASK_STATUS_COMPLETED = TaskStatus("Completed")
)

// Each event has many tasks
type Task struct {
	bun.BaseModel `bun:"table:tasks"`

	ID      int64      `bun:"id,pk,autoincrement"`
	Name    string     `bun:"name,notnull"`                // required
	EventID int64      `bun:"event_id,notnull"`            // required
	Status  TaskStatus `bun:"status,notnull,type:varchar"` // required

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

var _ bun.BeforeAppendModelHook = (*Task)(nil)

func (t *Task) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		t.CreatedAt = time.Now().UTC()
		t.UpdatedAt = t.CreatedAt
	case *bun.UpdateQuery:
		t.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (t *Task) validate(ctx context.Context, db bun.IDB) error {
	switch {
	case t.Name == "":
		return fmt.Errorf("name is required")
	case t.EventID == 0:
		return fmt.Errorf("event id is required")
	}
	exists, err := EventExists(ctx, db, t.EventID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("event %d: %w", t.EventID, ErrNotFound)
	}
	return nil
}

func (t *Task) Insert(ctx context.Context, db bun.IDB) error {
	if t.Status == "" {
		t.Status = TASK_STATUS_PENDING
	}
	if err := t.validate(ctx, db); err != nil {
		return fmt.Errorf("(*Task).Insert: %w", err)
	}

	if _, err := db.NewInsert().
		Model(t).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Task).Insert: %w", err)
	}
	return nil
}

func (t *Task) Update(ctx context.Context, db bun.IDB) error {
	if err := t.validate(ctx, db); err != nil {
		return fmt.Errorf("(*Task).Update: %w", err)
	}

	res, err := db.NewUpdate().
		Model(t).
		Column("name", "event_id", "status", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("(*Task).Update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("(*Task).Update: %w", ErrNotFound)
	}
	return nil
}

// Flips Pending to Completed; any other stored status becomes Pending.
// Concurrent toggles are not serialized, the last write wins.
func (t *Task) ToggleStatus(ctx context.Context, db bun.IDB) error {
	switch t.Status {
	case TASK_STATUS_PENDING:
		t.Status = TASK_STATUS_COMPLETED
	default:
		t.Status = TASK_STATUS_PENDING
	}

	res, err := db.NewUpdate().
		Model(t).
		Column("status", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("(*Task).ToggleStatus: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("(*Task).ToggleStatus: %w", ErrNotFound)
	}
	return nil
}

type TaskFilter struct {
	Search  string // name, status
	Status  string
	EventID *int64
}

func ListTasks(ctx context.Context, db bun.IDB, filter TaskFilter) ([]*Task, error) {
	taskModels := make([]*Task, 0)
	q := db.NewSelect().Model(&taskModels)
	q = applySearch(q, filter.Search, "name", "status")
	if filter.Status != "" {
		q = q.Where("?TableAlias.status = ?", filter.Status)
	}
	if filter.EventID != nil {
		q = q.Where("?TableAlias.event_id = ?", *filter.EventID)
	}
	if err := q.Order("task.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListTasks: %w", err)
	}
	return taskModels, nil
}

func GetTask(ctx context.Context, db bun.IDB, id int64) (*Task, error) {
	taskModel := new(Task)
	if err := db.NewSelect().
		Model(taskModel).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("GetTask: %w", notFound(err))
	}
	return taskModel, nil
}

func DeleteTask(ctx context.Context, db bun.IDB, id int64) error {
	res, err := db.NewDelete().
		Model((*Task)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("DeleteTask: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("DeleteTask: %w", ErrNotFound)
	}
	return nil
}

package serializer

import (
	"context"
	"encoding/json"
	"time"

	"eventdesk/src-server/model"

	"github.com/uptrace/bun"
)

type TaskRecord struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Event     int64     `json:"event"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTaskRecord(t *model.Task) TaskRecord {
	return TaskRecord{
		ID:        t.ID,
		Name:      t.Name,
		Event:     t.EventID,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

func NewTaskRecords(taskModels []*model.Task) []TaskRecord {
	records := make([]TaskRecord, 0, len(taskModels))
	for _, t := range taskModels {
		records = append(records, NewTaskRecord(t))
	}
	return records
}

// Body of POST/PUT/PATCH /api/tasks/. id, created_at and updated_at are ignored.
type TaskInput struct {
	Name   *string         `json:"name" validate:"required,notblank"`
	Event  json.RawMessage `json:"event" validate:"required"`
	Status *string         `json:"status" validate:"omitnil,oneof=Pending Completed"`

	eventID int64
}

func (in *TaskInput) Validate(ctx context.Context, db bun.IDB, partial bool) (FieldErrors, error) {
	fieldErrors := validateStruct(in, partial)
	if _, failed := fieldErrors["event"]; !failed && in.Event != nil {
		id, msg := ParsePK(in.Event)
		if msg == "" {
			exists, err := model.EventExists(ctx, db, id)
			if err != nil {
				return nil, err
			}
			if !exists {
				msg = doesNotExist(id)
			}
		}
		if msg != "" {
			fieldErrors.Add("event", msg)
		}
		in.eventID = id
	}
	return fieldErrors, nil
}

// Copies the validated fields that were sent onto the model.
func (in *TaskInput) Apply(t *model.Task) {
	if in.Name != nil {
		t.Name = trimmed(in.Name)
	}
	if in.Event != nil {
		t.EventID = in.eventID
	}
	if in.Status != nil {
		t.Status = model.TaskStatus(*in.Status)
	}
}

package serializer

import (
	"context"
	"encoding/json"
	"time"

	"eventdesk/src-server/model"

	"github.com/uptrace/bun"
)

type AttendeeRecord struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Events    []int64   `json:"events"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewAttendeeRecord(a *model.Attendee) AttendeeRecord {
	events := a.EventIDs
	if events == nil {
		events = make([]int64, 0)
	}
	return AttendeeRecord{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Events:    events,
		CreatedAt: a.CreatedAt.UTC(),
		UpdatedAt: a.UpdatedAt.UTC(),
	}
}

func NewAttendeeRecords(attendeeModels []*model.Attendee) []AttendeeRecord {
	records := make([]AttendeeRecord, 0, len(attendeeModels))
	for _, a := range attendeeModels {
		records = append(records, NewAttendeeRecord(a))
	}
	return records
}

// Body of POST/PUT/PATCH /api/attendees/. events is the full set of linked event ids.
type AttendeeInput struct {
	Name   *string         `json:"name" validate:"required,notblank"`
	Email  *string         `json:"email" validate:"required,notblank,email"`
	Events json.RawMessage `json:"events" validate:"required"`

	eventIDs []int64
}

func (in *AttendeeInput) Validate(ctx context.Context, db bun.IDB, partial bool) (FieldErrors, error) {
	fieldErrors := validateStruct(in, partial)
	if _, failed := fieldErrors["events"]; !failed && in.Events != nil {
		ids, msg := ParsePKList(in.Events)
		if msg == "" {
			missing, err := model.MissingEventIDs(ctx, db, ids)
			if err != nil {
				return nil, err
			}
			if len(missing) > 0 {
				msg = doesNotExist(missing[0])
			}
		}
		if msg != "" {
			fieldErrors.Add("events", msg)
		}
		in.eventIDs = ids
	}
	return fieldErrors, nil
}

func (in *AttendeeInput) Apply(a *model.Attendee) {
	if in.Name != nil {
		a.Name = trimmed(in.Name)
	}
	if in.Email != nil {
		a.Email = trimmed(in.Email)
	}
}

// Event ids to link, nil when the request didn't send events.
func (in *AttendeeInput) EventIDs() []int64 {
	if in.Events == nil {
		return nil
	}
	if in.eventIDs == nil {
		return make([]int64, 0)
	}
	return in.eventIDs
}

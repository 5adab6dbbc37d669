package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"eventdesk/src-server/model"

	"github.com/uptrace/bun"
)

type EventRecord struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Date           time.Time    `json:"date"`
	Location       string       `json:"location"`
	Tasks          []TaskRecord `json:"tasks"`
	AttendeesCount int          `json:"attendees_count"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func NewEventRecord(e *model.Event, attendeesCount int) EventRecord {
	return EventRecord{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		Date:           e.Date.UTC(),
		Location:       e.Location,
		Tasks:          NewTaskRecords(e.Tasks),
		AttendeesCount: attendeesCount,
		CreatedAt:      e.CreatedAt.UTC(),
		UpdatedAt:      e.UpdatedAt.UTC(),
	}
}

// Renders events with their attendee counts, counted now in a single query.
func EventRecords(ctx context.Context, db bun.IDB, eventModels []*model.Event) ([]EventRecord, error) {
	ids := make([]int64, 0, len(eventModels))
	for _, e := range eventModels {
		ids = append(ids, e.ID)
	}
	counts, err := model.CountAttendees(ctx, db, ids)
	if err != nil {
		return nil, fmt.Errorf("EventRecords: %w", err)
	}

	records := make([]EventRecord, 0, len(eventModels))
	for _, e := range eventModels {
		records = append(records, NewEventRecord(e, counts[e.ID]))
	}
	return records, nil
}

func EventRecordOf(ctx context.Context, db bun.IDB, e *model.Event) (EventRecord, error) {
	records, err := EventRecords(ctx, db, []*model.Event{e})
	if err != nil {
		return EventRecord{}, err
	}
	return records[0], nil
}

// Body of POST/PUT/PATCH /api/events/. tasks, attendees_count and the
// server-managed fields are read-only and ignored.
type EventInput struct {
	Name        *string `json:"name" validate:"required,notblank"`
	Description *string `json:"description"`
	Date        *string `json:"date" validate:"required"`
	Location    *string `json:"location" validate:"required,notblank"`

	date time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.DateOnly,
}

// Parses an ISO 8601 datetime; without an offset it's read as UTC.
// A bare date means midnight.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (in *EventInput) Validate(ctx context.Context, db bun.IDB, partial bool) (FieldErrors, error) {
	fieldErrors := validateStruct(in, partial)
	if _, failed := fieldErrors["date"]; !failed && in.Date != nil {
		date, ok := ParseDateTime(*in.Date)
		if !ok {
			fieldErrors.Add("date", msgInvalidDate)
		}
		in.date = date
	}
	return fieldErrors, nil
}

func (in *EventInput) Apply(e *model.Event) {
	if in.Name != nil {
		e.Name = trimmed(in.Name)
	}
	if in.Description != nil {
		e.Description = trimmed(in.Description)
	}
	if in.Date != nil {
		e.Date = in.date
	}
	if in.Location != nil {
		e.Location = trimmed(in.Location)
	}
}

type AddAttendeeInput struct {
	AttendeeID json.RawMessage `json:"attendee_id"`
}

// Response of add_attendee and toggle_status.
type StatusRecord struct {
	Status string `json:"status"`
}

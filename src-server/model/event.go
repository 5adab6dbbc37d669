package model

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"` // required
	Description string    `bun:"description,notnull"`
	Date        time.Time `bun:"date,notnull"`     // required
	Location    string    `bun:"location,notnull"` // required

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	Tasks []*Task `bun:"rel:has-many,join:id=event_id"`
}

var _ bun.BeforeAppendModelHook = (*Event)(nil)

func (e *Event) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		e.CreatedAt = time.Now().UTC()
		e.UpdatedAt = e.CreatedAt
	case *bun.UpdateQuery:
		e.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (e *Event) validate() error {
	switch {
	case e.Name == "":
		return fmt.Errorf("name is required")
	case e.Location == "":
		return fmt.Errorf("location is required")
	case e.Date.IsZero():
		return fmt.Errorf("date is required")
	}
	return nil
}

func (e *Event) Insert(ctx context.Context, db bun.IDB) error {
	if err := e.validate(); err != nil {
		return fmt.Errorf("(*Event).Insert: %w", err)
	}
	e.Date = e.Date.UTC()

	if _, err := db.NewInsert().
		Model(e).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Event).Insert: %w", err)
	}
	return nil
}

// Writes every user-editable column; created_at is left untouched.
func (e *Event) Update(ctx context.Context, db bun.IDB) error {
	if err := e.validate(); err != nil {
		return fmt.Errorf("(*Event).Update: %w", err)
	}
	e.Date = e.Date.UTC()

	res, err := db.NewUpdate().
		Model(e).
		Column("name", "description", "date", "location", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("(*Event).Update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("(*Event).Update: %w", ErrNotFound)
	}
	return nil
}

// Links an attendee to the event. Linking twice is a no-op.
func (e *Event) AddAttendee(ctx context.Context, db bun.IDB, attendeeID int64) error {
	if _, err := db.NewInsert().
		Model(&EventAttendee{EventID: e.ID, AttendeeID: attendeeID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Event).AddAttendee: %w", err)
	}
	return nil
}

type EventFilter struct {
	Search     string // name, description, location
	Location   string
	DateAfter  *time.Time
	DateBefore *time.Time
	AttendeeID *int64 // only events the attendee is linked to
}

// Lists events ordered by id, tasks included.
func ListEvents(ctx context.Context, db bun.IDB, filter EventFilter) ([]*Event, error) {
	eventModels := make([]*Event, 0)
	q := db.NewSelect().
		Model(&eventModels).
		Relation("Tasks", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("task.id ASC")
		})
	q = applySearch(q, filter.Search, "name", "description", "location")
	if filter.Location != "" {
		q = q.Where("?TableAlias.location = ?", filter.Location)
	}
	if filter.DateAfter != nil {
		q = q.Where("?TableAlias.date >= ?", filter.DateAfter.UTC())
	}
	if filter.DateBefore != nil {
		q = q.Where("?TableAlias.date <= ?", filter.DateBefore.UTC())
	}
	if filter.AttendeeID != nil {
		q = q.Where("?TableAlias.id IN (?)", db.NewSelect().
			Model((*EventAttendee)(nil)).
			Column("event_id").
			Where("attendee_id = ?", *filter.AttendeeID))
	}
	if err := q.Order("event.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	return eventModels, nil
}

// Loads one event with its tasks.
func GetEvent(ctx context.Context, db bun.IDB, id int64) (*Event, error) {
	eventModel := new(Event)
	if err := db.NewSelect().
		Model(eventModel).
		Where("?TableAlias.id = ?", id).
		Relation("Tasks", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("task.id ASC")
		}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("GetEvent: %w", notFound(err))
	}
	return eventModel, nil
}

func EventExists(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	exists, err := db.NewSelect().
		Model((*Event)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("EventExists: %w", err)
	}
	return exists, nil
}

// Returns the ids from the input that have no event row, in input order.
func MissingEventIDs(ctx context.Context, db bun.IDB, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found := make([]int64, 0, len(ids))
	if err := db.NewSelect().
		Model((*Event)(nil)).
		Column("id").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx, &found); err != nil {
		return nil, fmt.Errorf("MissingEventIDs: %w", err)
	}
	foundSet := make(map[int64]struct{}, len(found))
	for _, id := range found {
		foundSet[id] = struct{}{}
	}
	missing := make([]int64, 0)
	for _, id := range ids {
		if _, ok := foundSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

type attendeeCount struct {
	EventID int64 `bun:"event_id"`
	Count   int   `bun:"count"`
}

// Number of attendees linked to each event. Events without attendees are absent from the map.
func CountAttendees(ctx context.Context, db bun.IDB, eventIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	rows := make([]attendeeCount, 0)
	if err := db.NewSelect().
		Model((*EventAttendee)(nil)).
		ColumnExpr("event_id").
		ColumnExpr("COUNT(*) AS count").
		Where("event_id IN (?)", bun.In(eventIDs)).
		Group("event_id").
		Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("CountAttendees: %w", err)
	}
	for _, row := range rows {
		counts[row.EventID] = row.Count
	}
	return counts, nil
}

// Deletes the event together with its tasks and attendee links.
// Attendees themselves are kept.
func DeleteEvent(ctx context.Context, db *bun.DB, id int64) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*Event)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}

		// rm related tasks
		if _, err := tx.NewDelete().
			Model((*Task)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		// rm attendee links
		if _, err := tx.NewDelete().
			Model((*EventAttendee)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return fmt.Errorf("DeleteEvent: %w", err)
	}
	return nil
}

package model

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/uptrace/bun"
)

type Attendee struct {
	bun.BaseModel `bun:"table:attendees"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Name  string `bun:"name,notnull"`  // required
	Email string `bun:"email,notnull"` // required

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	// ids of linked events, filled by ListAttendees/GetAttendee
	EventIDs []int64 `bun:"-"`
}

var _ bun.BeforeAppendModelHook = (*Attendee)(nil)

func (a *Attendee) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		a.CreatedAt = time.Now().UTC()
		a.UpdatedAt = a.CreatedAt
	case *bun.UpdateQuery:
		a.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (a *Attendee) validate() error {
	switch {
	case a.Name == "":
		return fmt.Errorf("name is required")
	case a.Email == "":
		return fmt.Errorf("email is required")
	}
	return nil
}

// Inserts the attendee and, when eventIDs is not nil, links it to those events.
func (a *Attendee) Insert(ctx context.Context, db *bun.DB, eventIDs []int64) error {
	if err := a.validate(); err != nil {
		return fmt.Errorf("(*Attendee).Insert: %w", err)
	}

	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(a).
			Exec(ctx); err != nil {
			return err
		}
		return a.replaceEvents(ctx, tx, eventIDs)
	}); err != nil {
		return fmt.Errorf("(*Attendee).Insert: %w", err)
	}
	return nil
}

// Writes name and email. A nil eventIDs leaves the links untouched,
// anything else (empty included) replaces them.
func (a *Attendee) Update(ctx context.Context, db *bun.DB, eventIDs []int64) error {
	if err := a.validate(); err != nil {
		return fmt.Errorf("(*Attendee).Update: %w", err)
	}

	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(a).
			Column("name", "email", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return a.replaceEvents(ctx, tx, eventIDs)
	}); err != nil {
		return fmt.Errorf("(*Attendee).Update: %w", err)
	}
	return nil
}

func (a *Attendee) replaceEvents(ctx context.Context, tx bun.Tx, eventIDs []int64) error {
	if eventIDs == nil {
		return nil
	}

	if _, err := tx.NewDelete().
		Model((*EventAttendee)(nil)).
		Where("attendee_id = ?", a.ID).
		Exec(ctx); err != nil {
		return err
	}

	links := make([]EventAttendee, 0, len(eventIDs))
	seen := make(map[int64]struct{}, len(eventIDs))
	for _, eventID := range eventIDs {
		if _, ok := seen[eventID]; ok {
			continue
		}
		seen[eventID] = struct{}{}
		links = append(links, EventAttendee{EventID: eventID, AttendeeID: a.ID})
	}
	if len(links) > 0 {
		if _, err := tx.NewInsert().
			Model(&links).
			Exec(ctx); err != nil {
			return err
		}
	}

	a.EventIDs = make([]int64, 0, len(links))
	for _, link := range links {
		a.EventIDs = append(a.EventIDs, link.EventID)
	}
	slices.Sort(a.EventIDs)
	return nil
}

type AttendeeFilter struct {
	Search string // name, email
}

func ListAttendees(ctx context.Context, db bun.IDB, filter AttendeeFilter) ([]*Attendee, error) {
	attendeeModels := make([]*Attendee, 0)
	q := db.NewSelect().Model(&attendeeModels)
	q = applySearch(q, filter.Search, "name", "email")
	if err := q.Order("attendee.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListAttendees: %w", err)
	}
	if err := loadEventIDs(ctx, db, attendeeModels); err != nil {
		return nil, fmt.Errorf("ListAttendees: %w", err)
	}
	return attendeeModels, nil
}

func GetAttendee(ctx context.Context, db bun.IDB, id int64) (*Attendee, error) {
	attendeeModel := new(Attendee)
	if err := db.NewSelect().
		Model(attendeeModel).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("GetAttendee: %w", notFound(err))
	}
	if err := loadEventIDs(ctx, db, []*Attendee{attendeeModel}); err != nil {
		return nil, fmt.Errorf("GetAttendee: %w", err)
	}
	return attendeeModel, nil
}

func AttendeeExists(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	exists, err := db.NewSelect().
		Model((*Attendee)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("AttendeeExists: %w", err)
	}
	return exists, nil
}

// Deletes the attendee and its event links. Events are kept.
func DeleteAttendee(ctx context.Context, db *bun.DB, id int64) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*Attendee)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}

		// rm event links
		if _, err := tx.NewDelete().
			Model((*EventAttendee)(nil)).
			Where("attendee_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return fmt.Errorf("DeleteAttendee: %w", err)
	}
	return nil
}

func loadEventIDs(ctx context.Context, db bun.IDB, attendeeModels []*Attendee) error {
	if len(attendeeModels) == 0 {
		return nil
	}
	byID := make(map[int64]*Attendee, len(attendeeModels))
	ids := make([]int64, 0, len(attendeeModels))
	for _, attendeeModel := range attendeeModels {
		attendeeModel.EventIDs = make([]int64, 0)
		byID[attendeeModel.ID] = attendeeModel
		ids = append(ids, attendeeModel.ID)
	}

	links := make([]EventAttendee, 0)
	if err := db.NewSelect().
		Model(&links).
		Where("attendee_id IN (?)", bun.In(ids)).
		Order("event_id ASC").
		Scan(ctx); err != nil {
		return err
	}
	for _, link := range links {
		if attendeeModel, ok := byID[link.AttendeeID]; ok {
			attendeeModel.EventIDs = append(attendeeModel.EventIDs, link.EventID)
		}
	}
	return nil
}

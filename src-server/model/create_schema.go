package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

// Creates every table that doesn't exist yet.
//
// SQLite only enforces the foreign keys below with PRAGMA foreign_keys, which is
// per-connection, so the cascades and reference checks also live in this package.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range []struct {
			model       interface{}
			foreignKeys []string
		}{
			{model: (*Event)(nil)},
			{model: (*Attendee)(nil)},
			{
				model: (*Task)(nil),
				foreignKeys: []string{
					`("event_id") REFERENCES "events" ("id") ON DELETE CASCADE`,
				},
			},
			{
				model: (*EventAttendee)(nil),
				foreignKeys: []string{
					`("event_id") REFERENCES "events" ("id") ON DELETE CASCADE`,
					`("attendee_id") REFERENCES "attendees" ("id") ON DELETE CASCADE`,
				},
			},
			{model: (*User)(nil)},
		} {
			query := tx.NewCreateTable().Model(table.model).IfNotExists()
			for _, fk := range table.foreignKeys {
				query = query.ForeignKey(fk)
			}
			if _, err := query.Exec(ctx); err != nil {
				return err
			}
		}

		for _, index := range []struct {
			model  interface{}
			name   string
			column string
		}{
			{(*Task)(nil), "tasks_event_id_idx", "event_id"},
			{(*EventAttendee)(nil), "event_attendees_attendee_id_idx", "attendee_id"},
		} {
			if _, err := tx.NewCreateIndex().
				Model(index.model).
				Index(index.name).
				Column(index.column).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("CreateSchema: %w", err)
	}

	return nil
}

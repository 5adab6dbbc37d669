package model

import "github.com/uptrace/bun"

// Membership row between one event and one attendee.
type EventAttendee struct {
	bun.BaseModel `bun:"table:event_attendees"`

	EventID    int64 `bun:"event_id,pk"`
	AttendeeID int64 `bun:"attendee_id,pk"`
}

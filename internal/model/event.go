package model

import (
	"fmt"
	"time"
)

// Event represents one multi-day residential event.  Every booking,
// room and waitlist entry is scoped to exactly one event.  The Slug is
// the scoping key clients put in the URL.
//
// Fields:
//  ID        – primary key identifier.
//  Slug      – unique url-safe identifier (e.g. "summer-camp-2026").
//  Name      – human readable title.
//  StartsOn  – first day of the event (YYYY-MM-DD, nullable).
//  EndsOn    – last day of the event (YYYY-MM-DD, nullable).
//  IsActive  – inactive events resolve as "not found".
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Event struct {
	ID        uint64    `json:"id"`         // events.id
	Slug      string    `json:"slug"`       // events.slug
	Name      string    `json:"name"`       // events.name
	StartsOn  *string   `json:"starts_on"`  // events.starts_on (nullable)
	EndsOn    *string   `json:"ends_on"`    // events.ends_on (nullable)
	IsActive  bool      `json:"is_active"`  // events.is_active
	CreatedAt time.Time `json:"created_at"` // events.created_at
	UpdatedAt time.Time `json:"updated_at"` // events.updated_at
}

// Room is a named collection of beds sharing physical space.  Bed ids are
// derived from the room code so the registry is the single source of
// room membership.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – owning event.
//  Code      – short unique code within the event (e.g. "R12").
//  Name      – display name.
//  BedCount  – number of beds in the room.
//  Floor     – optional floor label.
//  Notes     – optional free text (bunk beds, accessibility ...).
//  SortOrder – position in listings.
type Room struct {
	ID        uint64  `json:"id"`         // rooms.id
	EventID   uint64  `json:"event_id"`   // rooms.event_id
	Code      string  `json:"code"`       // rooms.code
	Name      string  `json:"name"`       // rooms.name
	BedCount  uint32  `json:"bed_count"`  // rooms.bed_count
	Floor     *string `json:"floor"`      // rooms.floor (nullable)
	Notes     *string `json:"notes"`      // rooms.notes (nullable)
	SortOrder int     `json:"sort_order"` // rooms.sort_order
}

// BedIDs returns the ids of all beds in the room: <code>-1 .. <code>-N.
func (r Room) BedIDs() []string {
	ids := make([]string, 0, r.BedCount)
	for i := uint32(1); i <= r.BedCount; i++ {
		ids = append(ids, fmt.Sprintf("%s-%d", r.Code, i))
	}
	return ids
}

// WaitlistEntry is a person waiting for a bed to free up.  Entries are
// listed first-come first-served.
type WaitlistEntry struct {
	ID        uint64    `json:"id"`         // waitlist_entries.id
	EventID   uint64    `json:"-"`          // waitlist_entries.event_id
	Name      string    `json:"name"`       // waitlist_entries.name
	Comment   string    `json:"comment"`    // waitlist_entries.comment
	CreatedAt time.Time `json:"created_at"` // waitlist_entries.created_at
}

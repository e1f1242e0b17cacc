package model

// Occupancy is the closed set of states a bed can be in while it has a
// row.  Only the types in this file implement it.  Restricted states
// always carry the anchor bed that caused them; a Booked state carries
// an anchor only when it was claimed from a restricted placeholder.
type Occupancy interface {
	Status() Status
	DisplayName() string
	AnchorBed() *string
	occupancy()
}

// Booked is a bed occupied by a named attendee.
type Booked struct {
	Name      string
	Logistics Logistics
	// ClaimedFrom is the anchor of the restriction this booking was
	// claimed from.  Empty for direct bookings.
	ClaimedFrom string
}

// Blocked is a bed held back by an organizer's "block the room" booking.
type Blocked struct {
	Anchor string
	Label  string
}

// WomenOnly is a placeholder that only a Claim can convert to a booking.
type WomenOnly struct{ Anchor string }

// MenOnly is a placeholder that only a Claim can convert to a booking.
type MenOnly struct{ Anchor string }

const (
	LockMarker     = "🔒 "
	WomenRoomLabel = "♀ Women's room"
	MenRoomLabel   = "♂ Men's room"
)

func (Booked) Status() Status    { return StatusBooked }
func (Blocked) Status() Status   { return StatusBlocked }
func (WomenOnly) Status() Status { return StatusWomenOnly }
func (MenOnly) Status() Status   { return StatusMenOnly }

func (b Booked) DisplayName() string  { return b.Name }
func (b Blocked) DisplayName() string { return b.Label }
func (WomenOnly) DisplayName() string { return WomenRoomLabel }
func (MenOnly) DisplayName() string   { return MenRoomLabel }

func (b Booked) AnchorBed() *string    { return optional(b.ClaimedFrom) }
func (b Blocked) AnchorBed() *string   { return optional(b.Anchor) }
func (w WomenOnly) AnchorBed() *string { return optional(w.Anchor) }
func (m MenOnly) AnchorBed() *string   { return optional(m.Anchor) }

func (Booked) occupancy()    {}
func (Blocked) occupancy()   {}
func (WomenOnly) occupancy() {}
func (MenOnly) occupancy()   {}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Restriction is the room-level restriction a booking may declare.
type Restriction string

const (
	RestrictionNone    Restriction = "none"
	RestrictionBlocked Restriction = "blocked"
	RestrictionWomen   Restriction = "women"
	RestrictionMen     Restriction = "men"
)

// ParseRestriction normalizes a client supplied restriction.  An empty
// value means none.  The second result is false for unknown kinds.
func ParseRestriction(s string) (Restriction, bool) {
	switch Restriction(s) {
	case "", RestrictionNone:
		return RestrictionNone, true
	case RestrictionBlocked, RestrictionWomen, RestrictionMen:
		return Restriction(s), true
	}
	return "", false
}

// Placeholder returns the occupancy written onto a free sibling bed when
// the anchor booking declares this restriction.  It returns nil for
// RestrictionNone.
func (r Restriction) Placeholder(anchorBed, anchorName string) Occupancy {
	switch r {
	case RestrictionBlocked:
		return Blocked{Anchor: anchorBed, Label: LockMarker + anchorName}
	case RestrictionWomen:
		return WomenOnly{Anchor: anchorBed}
	case RestrictionMen:
		return MenOnly{Anchor: anchorBed}
	}
	return nil
}

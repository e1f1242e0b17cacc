package model

import "time"

// Status is the persisted occupancy status of a bed.  A bed without a
// row in bed_bookings is free; there is no "free" status value.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusBlocked   Status = "blocked"
	StatusWomenOnly Status = "women_only"
	StatusMenOnly   Status = "men_only"
)

// Restricted reports whether the status is one of the placeholder states
// written by a room restriction.
func (s Status) Restricted() bool {
	return s == StatusBlocked || s == StatusWomenOnly || s == StatusMenOnly
}

// Claimable reports whether a Claim may turn the bed into a booking.
func (s Status) Claimable() bool {
	return s == StatusWomenOnly || s == StatusMenOnly
}

// Logistics bundles the travel details an attendee gives with a booking.
// Every field is optional.  A booking always overwrites the whole bundle,
// so a nil pointer means "clear", never "keep".
//
// Fields:
//  ArrivalDate/ArrivalTime     – when the attendee arrives (YYYY-MM-DD / HH:MM).
//  DepartureDate/DepartureTime – when the attendee leaves.
//  Transport                   – car, train, bus, bike ...
//  NeedsPickup                 – attendee needs a ride from the station.
//  OffersSeats                 – free seats offered in the attendee's car.
//  DepartureCity               – where the attendee travels from.
//  TrainStation/Time/Number    – train arrival details for pickups.
type Logistics struct {
	ArrivalDate   *string `json:"arrival_date"`
	ArrivalTime   *string `json:"arrival_time"`
	DepartureDate *string `json:"departure_date"`
	DepartureTime *string `json:"departure_time"`
	Transport     *string `json:"transport"`
	NeedsPickup   bool    `json:"needs_pickup"`
	OffersSeats   int     `json:"offers_seats"`
	DepartureCity *string `json:"departure_city"`
	TrainStation  *string `json:"train_station"`
	TrainTime     *string `json:"train_time"`
	TrainNumber   *string `json:"train_number"`
}

// BedSlot is one row of bed_bookings as returned to clients.  BlockedBy
// holds the bed id of the anchor booking that produced a restricted slot.
type BedSlot struct {
	EventID   uint64    `json:"-"`
	BedID     string    `json:"bed_id"`
	Name      string    `json:"name"`
	BookedAt  time.Time `json:"booked_at"`
	Status    Status    `json:"status"`
	BlockedBy *string   `json:"blocked_by"`
	Logistics
}

// Occupancy returns the slot's state as a closed variant.
func (s BedSlot) Occupancy() Occupancy {
	anchor := ""
	if s.BlockedBy != nil {
		anchor = *s.BlockedBy
	}
	switch s.Status {
	case StatusBlocked:
		return Blocked{Anchor: anchor, Label: s.Name}
	case StatusWomenOnly:
		return WomenOnly{Anchor: anchor}
	case StatusMenOnly:
		return MenOnly{Anchor: anchor}
	default:
		return Booked{Name: s.Name, Logistics: s.Logistics, ClaimedFrom: anchor}
	}
}

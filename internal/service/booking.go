package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/model"
	"github.com/iliyamo/event-bed-booking/internal/queue"
	"github.com/iliyamo/event-bed-booking/internal/repository"
)

// EventPublisher delivers booking change notifications.  Delivery is best
// effort and happens after the ledger transaction committed.
type EventPublisher interface {
	PublishBookingChanged(ctx context.Context, event queue.BookingChangedEvent) error
}

// BookingService owns every state transition of the bed ledger.  Each
// public method is one atomic unit against the database; no in-memory
// locks are held, the (event_id, bed_id) unique key arbitrates between
// concurrent callers.
type BookingService struct {
	repo      *repository.BookingRepo
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
	inflight  chan struct{}
}

// maxInflightNotifications caps concurrent publishes; changes beyond it are
// dropped while the broker is slow.
const maxInflightNotifications = 16

// NewBookingService wires the ledger.  publisher may be nil to disable
// change notifications.
func NewBookingService(repo *repository.BookingRepo, publisher EventPublisher, logger *zap.Logger) *BookingService {
	if repo == nil {
		panic("nil repository passed to NewBookingService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		inflight:  make(chan struct{}, maxInflightNotifications),
	}
}

// ReserveRequest carries the input of Reserve.
type ReserveRequest struct {
	BedID       string
	Name        string
	Restriction string
	RoomBedIDs  []string
	Logistics   model.Logistics
}

// ReserveResult reports what Reserve wrote.
type ReserveResult struct {
	BedID       string            `json:"bed_id"`
	Name        string            `json:"name"`
	Restriction model.Restriction `json:"restriction"`
	Restricted  int64             `json:"restricted_beds"`
}

// Reserve books a bed for a named attendee.  The bed row is upserted as a
// full overwrite.  When a restriction is declared the free siblings of the
// room are restricted in the same transaction; either both writes persist
// or neither does.
func (s *BookingService) Reserve(ctx context.Context, eventID uint64, req ReserveRequest) (*ReserveResult, error) {
	if eventID == 0 {
		return nil, ErrNoEvent
	}
	bedID := strings.TrimSpace(req.BedID)
	if bedID == "" {
		return nil, required("bed_id")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, required("name")
	}
	restriction, ok := model.ParseRestriction(strings.ToLower(strings.TrimSpace(req.Restriction)))
	if !ok {
		return nil, &ValidationError{Field: "restriction", Reason: "must be one of none, blocked, women, men"}
	}

	at := s.now()
	result := &ReserveResult{BedID: bedID, Name: name, Restriction: restriction}
	err := inTx(ctx, s.repo.DB(), func(tx *sql.Tx) error {
		booked := model.Booked{Name: name, Logistics: req.Logistics}
		if err := s.repo.UpsertBookedTx(ctx, tx, eventID, bedID, booked, at); err != nil {
			return err
		}
		n, err := s.cascadeRestriction(ctx, tx, eventID, bedID, name, restriction, req.RoomBedIDs, at)
		if err != nil {
			return err
		}
		result.Restricted = n
		return nil
	})
	if err != nil {
		s.logger.Error("reserve failed", zap.Uint64("event_id", eventID), zap.String("bed_id", bedID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("bed reserved",
		zap.Uint64("event_id", eventID), zap.String("bed_id", bedID),
		zap.String("restriction", string(restriction)), zap.Int64("restricted_beds", result.Restricted))
	s.notify(queue.BookingChangedEvent{
		EventID: eventID, Action: queue.ActionReserved, BedID: bedID, Name: name,
		Restriction: string(restriction), OccurredAt: at.UTC().Format(time.RFC3339),
	})
	return result, nil
}

// Release frees a bed and every bed restricted by it.  Releasing a free
// bed succeeds and changes nothing.  It returns the removed bed ids.
func (s *BookingService) Release(ctx context.Context, eventID uint64, bedID string) ([]string, error) {
	if eventID == 0 {
		return nil, ErrNoEvent
	}
	bedID = strings.TrimSpace(bedID)
	var removed []string
	err := inTx(ctx, s.repo.DB(), func(tx *sql.Tx) error {
		var err error
		removed, err = s.repo.DeleteWithDependentsTx(ctx, tx, eventID, bedID)
		return err
	})
	if err != nil {
		s.logger.Error("release failed", zap.Uint64("event_id", eventID), zap.String("bed_id", bedID), zap.Error(err))
		return nil, err
	}
	if len(removed) > 0 {
		s.logger.Info("bed released", zap.Uint64("event_id", eventID), zap.String("bed_id", bedID), zap.Strings("removed", removed))
		s.notify(queue.BookingChangedEvent{
			EventID: eventID, Action: queue.ActionReleased, BedID: bedID,
			Affected: removed, OccurredAt: s.now().UTC().Format(time.RFC3339),
		})
	}
	return removed, nil
}

// Unblock removes a blocked, women_only or men_only placeholder.  Booked
// and free beds are left alone and the call still succeeds.  It reports
// whether a row was removed.
func (s *BookingService) Unblock(ctx context.Context, eventID uint64, bedID string) (bool, error) {
	if eventID == 0 {
		return false, ErrNoEvent
	}
	bedID = strings.TrimSpace(bedID)
	var removed bool
	err := inTx(ctx, s.repo.DB(), func(tx *sql.Tx) error {
		var err error
		removed, err = s.repo.DeleteRestrictedTx(ctx, tx, eventID, bedID)
		return err
	})
	if err != nil {
		s.logger.Error("unblock failed", zap.Uint64("event_id", eventID), zap.String("bed_id", bedID), zap.Error(err))
		return false, err
	}
	if removed {
		s.notify(queue.BookingChangedEvent{
			EventID: eventID, Action: queue.ActionUnblocked, BedID: bedID,
			OccurredAt: s.now().UTC().Format(time.RFC3339),
		})
	}
	return removed, nil
}

// ClaimRequest carries the input of Claim.
type ClaimRequest struct {
	BedID     string
	Name      string
	Logistics model.Logistics
}

// ClaimResult echoes the normalized values Claim wrote, or would have
// written when Claimed is false.
type ClaimResult struct {
	BedID   string `json:"bed_id"`
	Name    string `json:"name"`
	Claimed bool   `json:"claimed"`
}

// Claim converts a women_only or men_only placeholder into a booking.  On
// any other bed it changes nothing and reports claimed=false; callers must
// not treat that as a booking.
func (s *BookingService) Claim(ctx context.Context, eventID uint64, req ClaimRequest) (*ClaimResult, error) {
	if eventID == 0 {
		return nil, ErrNoEvent
	}
	bedID := strings.TrimSpace(req.BedID)
	if bedID == "" {
		return nil, required("bed_id")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, required("name")
	}
	at := s.now()
	var claimed bool
	err := inTx(ctx, s.repo.DB(), func(tx *sql.Tx) error {
		var err error
		claimed, err = s.repo.ClaimTx(ctx, tx, eventID, bedID, model.Booked{Name: name, Logistics: req.Logistics}, at)
		return err
	})
	if err != nil {
		s.logger.Error("claim failed", zap.Uint64("event_id", eventID), zap.String("bed_id", bedID), zap.Error(err))
		return nil, err
	}
	if claimed {
		s.notify(queue.BookingChangedEvent{
			EventID: eventID, Action: queue.ActionClaimed, BedID: bedID, Name: name,
			OccurredAt: at.UTC().Format(time.RFC3339),
		})
	} else {
		s.logger.Debug("claim had no effect", zap.Uint64("event_id", eventID), zap.String("bed_id", bedID))
	}
	return &ClaimResult{BedID: bedID, Name: name, Claimed: claimed}, nil
}

// List returns every occupied bed of the event keyed by bed id.
func (s *BookingService) List(ctx context.Context, eventID uint64) (map[string]model.BedSlot, error) {
	if eventID == 0 {
		return nil, ErrNoEvent
	}
	slots, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("list bookings failed", zap.Uint64("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return slots, nil
}

// notify publishes in the background so a slow or unavailable broker never
// delays the response.  At most maxInflightNotifications publishes run at
// once; further changes are dropped with a warning.
func (s *BookingService) notify(ev queue.BookingChangedEvent) {
	if s.publisher == nil {
		return
	}
	select {
	case s.inflight <- struct{}{}:
	default:
		s.logger.Warn("booking change notification dropped", zap.String("action", ev.Action),
			zap.Uint64("event_id", ev.EventID), zap.String("bed_id", ev.BedID))
		return
	}
	go func() {
		defer func() { <-s.inflight }()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.PublishBookingChanged(ctx, ev); err != nil {
			s.logger.Warn("publish booking change failed", zap.String("action", ev.Action), zap.Error(err))
		}
	}()
}

package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/model"
	"github.com/iliyamo/event-bed-booking/internal/repository"
)

// WaitlistService is the append/list/remove store for people waiting for
// a bed.
type WaitlistService struct {
	repo   *repository.WaitlistRepo
	logger *zap.Logger
}

func NewWaitlistService(repo *repository.WaitlistRepo, logger *zap.Logger) *WaitlistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitlistService{repo: repo, logger: logger}
}

// Append adds a person to the end of the waitlist.
func (s *WaitlistService) Append(ctx context.Context, eventID uint64, name, comment string) (*model.WaitlistEntry, error) {
	if eventID == 0 {
		return nil, ErrNoEvent
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, required("name")
	}
	e := &model.WaitlistEntry{EventID: eventID, Name: name, Comment: strings.TrimSpace(comment)}
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("waitlist append failed", zap.Uint64("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return e, nil
}

// List returns the waitlist oldest first.
func (s *WaitlistService) List(ctx context.Context, eventID uint64) ([]model.WaitlistEntry, error) {
	if eventID == 0 {
		return nil, ErrNoEvent
	}
	entries, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("waitlist list failed", zap.Uint64("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// Remove deletes an entry.  Unknown ids succeed.
func (s *WaitlistService) Remove(ctx context.Context, eventID, id uint64) error {
	if eventID == 0 {
		return ErrNoEvent
	}
	if err := s.repo.Delete(ctx, eventID, id); err != nil {
		s.logger.Error("waitlist remove failed", zap.Uint64("event_id", eventID), zap.Uint64("id", id), zap.Error(err))
		return err
	}
	return nil
}

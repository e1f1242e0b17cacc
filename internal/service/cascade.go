package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/event-bed-booking/internal/model"
)

// siblingBeds returns the room's bed ids without the anchor.  Ids are
// trimmed, blanks dropped and duplicates collapsed, keeping first-seen
// order.
func siblingBeds(anchor string, roomBedIDs []string) []string {
	out := make([]string, 0, len(roomBedIDs))
	seen := map[string]struct{}{anchor: {}}
	for _, id := range roomBedIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// cascadeRestriction writes the restriction placeholder onto every free
// sibling of the anchor bed.  Occupied siblings keep their row; a partial
// cascade is the normal outcome, not an error.  It returns how many
// siblings were written.
func (s *BookingService) cascadeRestriction(ctx context.Context, tx *sql.Tx, eventID uint64, anchorBed, anchorName string, r model.Restriction, roomBedIDs []string, at time.Time) (int64, error) {
	placeholder := r.Placeholder(anchorBed, anchorName)
	if placeholder == nil {
		return 0, nil
	}
	siblings := siblingBeds(anchorBed, roomBedIDs)
	if len(siblings) == 0 {
		return 0, nil
	}
	return s.repo.InsertIfFreeTx(ctx, tx, eventID, siblings, placeholder, at)
}

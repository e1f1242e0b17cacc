// Package tenant resolves the event a request is scoped to.  Events are
// addressed by slug; the slug to id mapping is read through a Redis cache
// so the hot booking routes do not hit the events table on every call.
package tenant

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/model"
	"github.com/iliyamo/event-bed-booking/internal/repository"
)

// EventLookup is the subset of the event repository the resolver needs.
type EventLookup interface {
	GetActiveBySlug(ctx context.Context, slug string) (*model.Event, error)
}

// Resolver maps event slugs to event ids.
type Resolver struct {
	events EventLookup
	rdb    *redis.Client // nil disables caching
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewResolver builds a Resolver.  rdb may be nil.
func NewResolver(events EventLookup, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Resolver {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{events: events, rdb: rdb, ttl: ttl, prefix: "tenant:event:", logger: logger}
}

func (r *Resolver) key(slug string) string { return r.prefix + slug }

// Resolve returns the id of the active event with the given slug, or
// repository.ErrEventNotFound.  Cache errors fall back to the database.
func (r *Resolver) Resolve(ctx context.Context, slug string) (uint64, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return 0, repository.ErrEventNotFound
	}
	if r.rdb != nil {
		v, err := r.rdb.Get(ctx, r.key(slug)).Result()
		switch {
		case err == nil:
			if id, perr := strconv.ParseUint(v, 10, 64); perr == nil && id > 0 {
				return id, nil
			}
		case !errors.Is(err, redis.Nil):
			r.logger.Warn("tenant cache read failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	ev, err := r.events.GetActiveBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	if r.rdb != nil {
		if err := r.rdb.Set(ctx, r.key(slug), strconv.FormatUint(ev.ID, 10), r.ttl).Err(); err != nil {
			r.logger.Warn("tenant cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	return ev.ID, nil
}

// Evict drops a cached slug, used after events are updated or deleted.
func (r *Resolver) Evict(ctx context.Context, slugs ...string) {
	if r.rdb == nil || len(slugs) == 0 {
		return
	}
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		keys = append(keys, r.key(strings.ToLower(strings.TrimSpace(s))))
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("tenant cache evict failed", zap.Strings("slugs", slugs), zap.Error(err))
	}
}

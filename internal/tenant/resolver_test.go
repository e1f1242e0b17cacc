package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/model"
	"github.com/iliyamo/event-bed-booking/internal/repository"
)

type fakeEvents struct {
	bySlug map[string]uint64
	calls  int
}

func (f *fakeEvents) GetActiveBySlug(_ context.Context, slug string) (*model.Event, error) {
	f.calls++
	id, ok := f.bySlug[slug]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &model.Event{ID: id, Slug: slug, IsActive: true}, nil
}

func setupResolver(t *testing.T) (*miniredis.Miniredis, *fakeEvents, *Resolver) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	events := &fakeEvents{bySlug: map[string]uint64{"summer-camp": 3}}
	return mr, events, NewResolver(events, rdb, time.Minute, zap.NewNop())
}

func TestResolve_ReadsThroughCache(t *testing.T) {
	mr, events, res := setupResolver(t)
	ctx := context.Background()

	id, err := res.Resolve(ctx, " Summer-Camp ")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	assert.Equal(t, 1, events.calls)

	cached, err := mr.Get("tenant:event:summer-camp")
	require.NoError(t, err)
	assert.Equal(t, "3", cached)
	assert.Greater(t, mr.TTL("tenant:event:summer-camp"), time.Duration(0))

	id, err = res.Resolve(ctx, "summer-camp")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	assert.Equal(t, 1, events.calls, "second lookup must be served from redis")
}

func TestResolve_UnknownSlug(t *testing.T) {
	mr, _, res := setupResolver(t)

	_, err := res.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
	assert.False(t, mr.Exists("tenant:event:nope"))

	_, err = res.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}

func TestResolve_RedisDownFallsBackToDatabase(t *testing.T) {
	mr, events, res := setupResolver(t)
	mr.Close()

	id, err := res.Resolve(context.Background(), "summer-camp")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	assert.Equal(t, 1, events.calls)
}

func TestResolve_WithoutRedis(t *testing.T) {
	events := &fakeEvents{bySlug: map[string]uint64{"camp": 8}}
	res := NewResolver(events, nil, 0, nil)

	id, err := res.Resolve(context.Background(), "camp")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), id)
	res.Evict(context.Background(), "camp")
}

func TestEvict(t *testing.T) {
	mr, events, res := setupResolver(t)
	ctx := context.Background()

	_, err := res.Resolve(ctx, "summer-camp")
	require.NoError(t, err)
	res.Evict(ctx, "summer-camp")
	assert.False(t, mr.Exists("tenant:event:summer-camp"))

	_, err = res.Resolve(ctx, "summer-camp")
	require.NoError(t, err)
	assert.Equal(t, 2, events.calls)
}

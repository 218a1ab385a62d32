package comment

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/juju/clock/testclock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, testclock.NewClock(epoch), zerolog.Nop()), mr
}

func TestMarkDeleted(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.MarkDeleted(ctx, "s1", "a@x", []string{"t2", "t1"}))
	require.NoError(t, store.MarkDeleted(ctx, "s1", "a@x", []string{"t1"}))

	ids, err := store.DeletedCommentIDs(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids)

	deleted, err := store.IsDeleted(ctx, "s1", "t2")
	require.NoError(t, err)
	assert.True(t, deleted)

	other, err := store.DeletedCommentIDs(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.True(t, mr.Exists("scene:s1:comments:deleted"))
}

func TestMarkDeletedEmpty(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, store.MarkDeleted(context.Background(), "s1", "", nil))
	assert.False(t, mr.Exists("scene:s1:comments:deleted"))
}

func TestSubscribe(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := store.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, store.MarkDeleted(context.Background(), "s1", "a@x", []string{"t1"}))

	select {
	case event := <-events:
		assert.Equal(t, "s1", event.SceneID)
		assert.Equal(t, []string{"t1"}, event.CommentIDs)
		assert.Equal(t, "a@x", event.DeletedBy)
		assert.True(t, epoch.Equal(event.DeletedAt))
	case <-time.After(2 * time.Second):
		t.Fatal("no deletion event received")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-events
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, store.Health(context.Background()))

	mr.Close()
	assert.Error(t, store.Health(context.Background()))
}

package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lifeline/pkg/domain"
	audit "lifeline/pkg/platform/audit"
	"lifeline/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	userID := id.UserID(uuid.New())
	event := audit.Event{
		UserID: userID,
		Action: string(audit.EventRequestCreated),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventRequestCreated), events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	userID := id.UserID(uuid.New())
	event := audit.Event{
		UserID: userID,
		Action: string(audit.EventRequestApproved),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	// Wait for async processing
	time.Sleep(100 * time.Millisecond)

	events, err := pub.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventRequestApproved), events[0].Action)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	userID := id.UserID(uuid.New())

	for range 10 {
		event := audit.Event{
			UserID: userID,
			Action: string(audit.EventRequestCreated),
		}
		err := pub.Emit(context.Background(), event)
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	pub.Close()
	pub.Close()
}

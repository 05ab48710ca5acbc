package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/railgames/shareboard/internal/game"
)

func testDoc(code string) *game.Document {
	return &game.Document{
		GameID:  code,
		Players: []game.Player{{ID: "p1", Name: "Ada", IsHost: true}},
		Shares:  []game.ShareType{{ID: 1, Label: "x", Color: "red", Max: 2}},
		Claims:  []game.Claim{},
		Active:  true,
	}
}

// recv pulls one snapshot with a timeout so tests never hang.
func recv(t *testing.T, sub Subscription) *game.Document {
	t.Helper()
	select {
	case doc, ok := <-sub.Updates():
		require.True(t, ok, "subscription closed unexpectedly")
		return doc
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestMemory_ReadAbsent(t *testing.T) {
	m := NewMemory()
	_, err := m.Read(context.Background(), "3733")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_WriteFullThenRead(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.WriteFull(ctx, "3733", testDoc("3733")))

	doc, err := m.Read(ctx, "3733")
	require.NoError(t, err)
	require.Equal(t, "3733", doc.GameID)
	require.True(t, doc.Active)

	// Reads are snapshots, not aliases.
	doc.Players[0].Name = "mutated"
	again, err := m.Read(ctx, "3733")
	require.NoError(t, err)
	require.Equal(t, "Ada", again.Players[0].Name)
}

func TestMemory_SubscribeDeliversCurrentSnapshotFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.WriteFull(ctx, "3733", testDoc("3733")))

	sub, err := m.Subscribe(ctx, "3733")
	require.NoError(t, err)
	defer sub.Cancel()

	first := recv(t, sub)
	require.NotNil(t, first)
	require.Equal(t, "3733", first.GameID)
}

func TestMemory_SubscribeAbsentDeliversNil(t *testing.T) {
	m := NewMemory()
	sub, err := m.Subscribe(context.Background(), "nope")
	require.NoError(t, err)
	defer sub.Cancel()

	require.Nil(t, recv(t, sub))
}

func TestMemory_WritePushesToSubscribers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.WriteFull(ctx, "3733", testDoc("3733")))

	sub, err := m.Subscribe(ctx, "3733")
	require.NoError(t, err)
	defer sub.Cancel()
	recv(t, sub) // initial

	claims := []game.Claim{{PlayerID: "p1", ShareID: 1}}
	require.NoError(t, m.Write(ctx, "3733", Fields{Claims: &claims}))

	next := recv(t, sub)
	require.Len(t, next.Claims, 1)
	require.Equal(t, "p1", next.Claims[0].PlayerID)
	// Untouched fields survive a merge write.
	require.Len(t, next.Players, 1)
	require.True(t, next.Active)
}

func TestMemory_WriteActiveOnly(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.WriteFull(ctx, "3733", testDoc("3733")))

	inactive := false
	require.NoError(t, m.Write(ctx, "3733", Fields{Active: &inactive}))

	doc, err := m.Read(ctx, "3733")
	require.NoError(t, err)
	require.False(t, doc.Active)
	require.Len(t, doc.Players, 1, "players must not change on an active-only write")
}

func TestMemory_WriteAbsent(t *testing.T) {
	m := NewMemory()
	active := false
	err := m.Write(context.Background(), "nope", Fields{Active: &active})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSubscription_CancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.WriteFull(ctx, "3733", testDoc("3733")))

	sub, err := m.Subscribe(ctx, "3733")
	require.NoError(t, err)
	recv(t, sub)

	sub.Cancel()
	sub.Cancel() // safe post-teardown

	_, ok := <-sub.Updates()
	require.False(t, ok, "channel should be closed after cancel")

	// Writes after cancel must not reach the dead subscription.
	require.NoError(t, m.WriteFull(ctx, "3733", testDoc("3733")))
}

func TestBroadcaster_DropsSlowSubscriber(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.WriteFull(ctx, "3733", testDoc("3733")))

	sub, err := m.Subscribe(ctx, "3733")
	require.NoError(t, err)

	// Never drain; overflow the buffer (initial snapshot holds one slot).
	for i := 0; i < subBuffer+1; i++ {
		require.NoError(t, m.WriteFull(ctx, "3733", testDoc("3733")))
	}

	// Drain what was buffered; the channel must end up closed.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Updates():
			if !ok {
				sub.Cancel() // still safe after being dropped
				return
			}
		case <-deadline:
			t.Fatal("slow subscriber was never dropped")
		}
	}
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/kango-hamed/musia-guide/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newFakeBackend(), time.Hour)

	session := domain.NewSession("550e8400-e29b-41d4-a716-446655440000", "mona-lisa")
	session.History = append(session.History, domain.Turn{
		User:   "Qui a peint cette œuvre ?",
		Bot:    "Léonard de Vinci.",
		Intent: "factual",
	})

	require.NoError(t, store.Create(ctx, session))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "mona-lisa", got.CurrentArtwork)
	assert.Equal(t, session.History, got.History)
}

func TestSessionStore_GetUnknown(t *testing.T) {
	store := NewSessionStore(newFakeBackend(), time.Hour)

	got, err := store.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newFakeBackend(), time.Hour)

	session := domain.NewSession("s-1", "")
	require.NoError(t, store.Create(ctx, session))
	require.NoError(t, store.Delete(ctx, "s-1"))

	got, err := store.Get(ctx, "s-1")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_UpdateReplacesWholeValue(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newFakeBackend(), time.Hour)

	session := domain.NewSession("s-2", "mona-lisa")
	require.NoError(t, store.Create(ctx, session))

	session.CurrentArtwork = "starry-night"
	session.History = append(session.History, domain.Turn{User: "u", Bot: "b", Intent: "general"})
	require.NoError(t, store.Update(ctx, session))

	got, err := store.Get(ctx, "s-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "starry-night", got.CurrentArtwork)
	assert.Len(t, got.History, 1)
}

func TestSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	store := NewSessionStore(backend, time.Hour)

	require.NoError(t, store.Create(ctx, domain.NewSession("s-3", "")))

	backend.advance(2 * time.Hour)

	got, err := store.Get(ctx, "s-3")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_TouchExtendsTTL(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	store := NewSessionStore(backend, time.Hour)

	require.NoError(t, store.Create(ctx, domain.NewSession("s-4", "")))

	backend.advance(50 * time.Minute)
	require.NoError(t, store.Touch(ctx, "s-4"))
	backend.advance(50 * time.Minute)

	got, err := store.Get(ctx, "s-4")
	require.NoError(t, err)
	assert.NotNil(t, got, "touched session should survive past the original deadline")
}

// With the backend permanently failing, the store must still satisfy the
// round-trip contract through its in-memory path and never return errors.
func TestSessionStore_FallbackTransparency(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(downBackend{}, time.Hour)

	session := domain.NewSession("s-5", "mona-lisa")
	require.NoError(t, store.Create(ctx, session))
	assert.True(t, store.Degraded())

	got, err := store.Get(ctx, "s-5")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "mona-lisa", got.CurrentArtwork)

	require.NoError(t, store.Delete(ctx, "s-5"))
	got, err = store.Get(ctx, "s-5")
	assert.NoError(t, err)
	assert.Nil(t, got)

	// Touch is a no-op in fallback mode, not an error
	assert.NoError(t, store.Touch(ctx, "s-5"))
}

// A session written while the backend was down stays reachable even though
// the remote tier reports a miss afterwards.
func TestSessionStore_FallbackEntrySurvivesRemoteMiss(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(downBackend{}, time.Hour)

	require.NoError(t, store.Create(ctx, domain.NewSession("s-6", "")))

	got, err := store.Get(ctx, "s-6")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

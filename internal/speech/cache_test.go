package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kango-hamed/musia-guide/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesisCache_IdempotentGetOrCreate(t *testing.T) {
	cache, err := NewSynthesisCache(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	calls := 0
	generate := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("mp3-bytes"), nil
	}

	first, err := cache.GetOrCreate(ctx, "Bonjour", "fr-FR-DeniseNeural", generate)
	require.NoError(t, err)

	second, err := cache.GetOrCreate(ctx, "Bonjour", "fr-FR-DeniseNeural", generate)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same text and voice must map to the same artifact")
	assert.Equal(t, 1, calls, "generator must run at most once for a key")

	data, err := os.ReadFile(filepath.Join(cache.Dir(), first))
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), data)
}

func TestSynthesisCache_KeyDependsOnTextAndVoice(t *testing.T) {
	cache, err := NewSynthesisCache(t.TempDir())
	require.NoError(t, err)

	bonjourDenise := cache.Key("Bonjour", "fr-FR-DeniseNeural")
	bonjourHenri := cache.Key("Bonjour", "fr-FR-HenriNeural")
	salutDenise := cache.Key("Salut", "fr-FR-DeniseNeural")

	assert.NotEqual(t, bonjourDenise, bonjourHenri)
	assert.NotEqual(t, bonjourDenise, salutDenise)
	assert.Equal(t, bonjourDenise, cache.Key("Bonjour", "fr-FR-DeniseNeural"))
}

func TestSynthesisCache_GeneratorFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewSynthesisCache(dir)
	require.NoError(t, err)

	_, err = cache.GetOrCreate(context.Background(), "Bonjour", "denise", func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("tts service unavailable")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSynthesisFailed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no artifact or temp file may remain after a failed generation")
}

func TestSynthesisCache_RecoversAfterFailure(t *testing.T) {
	cache, err := NewSynthesisCache(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.GetOrCreate(ctx, "Bonjour", "denise", func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("transient")
	})
	require.Error(t, err)

	name, err := cache.GetOrCreate(ctx, "Bonjour", "denise", func(ctx context.Context) ([]byte, error) {
		return []byte("ok"), nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, name)
}

func TestSynthesisCache_Flush(t *testing.T) {
	cache, err := NewSynthesisCache(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	gen := func(ctx context.Context) ([]byte, error) { return []byte("a"), nil }
	_, err = cache.GetOrCreate(ctx, "un", "v", gen)
	require.NoError(t, err)
	_, err = cache.GetOrCreate(ctx, "deux", "v", gen)
	require.NoError(t, err)

	deleted, err := cache.Flush()
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	calls := 0
	_, err = cache.GetOrCreate(ctx, "un", "v", func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("a"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "flushed entries must regenerate")
}

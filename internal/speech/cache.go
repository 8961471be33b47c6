package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kango-hamed/musia-guide/internal/domain"
	"github.com/rs/zerolog/log"
)

// GeneratorFunc produces audio bytes for a text that has no cached artifact.
type GeneratorFunc func(ctx context.Context) ([]byte, error)

// SynthesisCache is a content-addressed store for generated audio. The key
// is a digest of the normalized text and voice, so identical requests map to
// the same artifact and the generator runs at most once per key in steady
// state. Concurrent first-time requests may both generate; the atomic rename
// guarantees a single durable artifact either way. Entries are never expired
// here, retention of the artifact directory is a deployment concern.
type SynthesisCache struct {
	dir string
}

// NewSynthesisCache creates the cache rooted at dir, creating it if needed.
func NewSynthesisCache(dir string) (*SynthesisCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create synthesis cache dir: %w", err)
	}
	return &SynthesisCache{dir: dir}, nil
}

// Dir returns the artifact directory.
func (c *SynthesisCache) Dir() string {
	return c.dir
}

// Key returns the cache key for a text and voice pair.
func (c *SynthesisCache) Key(text, voice string) string {
	h := sha256.New()
	h.Write([]byte(voice))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Path returns the artifact path for a key.
func (c *SynthesisCache) Path(key string) string {
	return filepath.Join(c.dir, key+".mp3")
}

// GetOrCreate returns the artifact filename for (text, voice), invoking
// generate only on a miss. A generator failure leaves nothing under the key:
// output is written to a temporary file and renamed into place only once
// complete, so a crash mid-write cannot persist a corrupt artifact.
func (c *SynthesisCache) GetOrCreate(ctx context.Context, text, voice string, generate GeneratorFunc) (string, error) {
	key := c.Key(text, voice)
	final := c.Path(key)

	if _, err := os.Stat(final); err == nil {
		log.Debug().Str("key", key).Msg("synthesis cache hit")
		return filepath.Base(final), nil
	}

	audio, err := generate(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}

	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}
	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}

	// Last writer wins; content is identical for a given key
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}

	log.Info().Str("key", key).Int("bytes", len(audio)).Msg("synthesis artifact generated")
	return filepath.Base(final), nil
}

// Flush removes every cached artifact and returns how many were deleted.
func (c *SynthesisCache) Flush() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read synthesis cache dir: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".mp3" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

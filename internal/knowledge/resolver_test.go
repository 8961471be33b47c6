package knowledge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kango-hamed/musia-guide/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiArtworksJSON = `{"data": [
	{
		"id": "mona-lisa",
		"title": "La Joconde",
		"artist": "Léonard de Vinci",
		"period": "1503-1519",
		"description": "Portrait à l'huile sur panneau de bois de peuplier.",
		"imageUrl": "/images/mona-lisa.jpg",
		"narrativeContents": [
			{"version": "court", "textContent": "Narration courte."},
			{"version": "long", "textContent": "Narration détaillée."}
		]
	}
]}`

const snapshotJSON = `{"artworks": [
	{
		"id": "mona-lisa",
		"title": "La Joconde",
		"artist": "Léonard de Vinci",
		"year": "1503-1519",
		"description": "Portrait à l'huile sur panneau de bois de peuplier.",
		"narratives": {"short": "Narration courte.", "detailed": "Narration détaillée."},
		"faq": []
	}
]}`

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artworks.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestResolver(t *testing.T, backendURL, snapshotPath string) *Resolver {
	t.Helper()
	return NewResolver(config.KnowledgeConfig{
		BackendURL:   backendURL,
		SnapshotPath: snapshotPath,
		FetchTimeout: time.Second,
	})
}

func TestResolver_LoadFromAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/artworks":
			w.Write([]byte(apiArtworksJSON))
		case "/trajectories":
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	r := newTestResolver(t, server.URL, "does-not-exist.json")
	r.Load(context.Background())

	assert.Equal(t, SourceAPI, r.Source())
	assert.Equal(t, 1, r.ArtworkCount())

	artwork := r.GetArtwork(context.Background(), "mona-lisa")
	require.NotNil(t, artwork)
	assert.Equal(t, "La Joconde", artwork.Title)
	assert.Equal(t, "1503-1519", artwork.Year)
}

func TestResolver_FallsBackToSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database down", http.StatusInternalServerError)
	}))
	defer server.Close()

	r := newTestResolver(t, server.URL, writeSnapshot(t, snapshotJSON))
	r.Load(context.Background())

	assert.Equal(t, SourceSnapshot, r.Source())
	require.NotNil(t, r.GetArtwork(context.Background(), "mona-lisa"))
}

func TestResolver_EmptyAPIFallsBackToSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	r := newTestResolver(t, server.URL, writeSnapshot(t, snapshotJSON))
	r.Load(context.Background())

	assert.Equal(t, SourceSnapshot, r.Source())
}

// A record present in both tiers must come out identical in shape no matter
// which tier served it.
func TestResolver_TierTransparency(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/artworks":
			w.Write([]byte(apiArtworksJSON))
		case "/trajectories":
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fromAPI := newTestResolver(t, server.URL, "does-not-exist.json")
	fromAPI.Load(ctx)
	require.Equal(t, SourceAPI, fromAPI.Source())

	fromSnapshot := newTestResolver(t, "http://127.0.0.1:1", writeSnapshot(t, snapshotJSON))
	fromSnapshot.Load(ctx)
	require.Equal(t, SourceSnapshot, fromSnapshot.Source())

	apiRecord := fromAPI.GetArtwork(ctx, "mona-lisa")
	snapshotRecord := fromSnapshot.GetArtwork(ctx, "mona-lisa")
	require.NotNil(t, apiRecord)
	require.NotNil(t, snapshotRecord)

	assert.Equal(t, apiRecord.ID, snapshotRecord.ID)
	assert.Equal(t, apiRecord.Title, snapshotRecord.Title)
	assert.Equal(t, apiRecord.Artist, snapshotRecord.Artist)
	assert.Equal(t, apiRecord.Year, snapshotRecord.Year)
	assert.Equal(t, apiRecord.Description, snapshotRecord.Description)
	assert.Equal(t, apiRecord.Narratives, snapshotRecord.Narratives)
}

func TestResolver_GetNarrativeNormalizesVariants(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(t, "http://127.0.0.1:1", writeSnapshot(t, snapshotJSON))
	r.Load(ctx)

	for _, variant := range []string{"short", "court"} {
		text, ok := r.GetNarrative(ctx, "mona-lisa", variant)
		assert.True(t, ok, "variant %q", variant)
		assert.Equal(t, "Narration courte.", text)
	}
	for _, variant := range []string{"detailed", "long"} {
		text, ok := r.GetNarrative(ctx, "mona-lisa", variant)
		assert.True(t, ok, "variant %q", variant)
		assert.Equal(t, "Narration détaillée.", text)
	}

	_, ok := r.GetNarrative(ctx, "mona-lisa", "standard")
	assert.False(t, ok, "missing variant must report absent")
}

// Resolver reads are total: every failure mode yields absent, never an error.
func TestResolver_TotalOverUnknownIDs(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(t, "http://127.0.0.1:1", "does-not-exist.json")
	r.Load(ctx)

	assert.Equal(t, SourceNone, r.Source())
	assert.Nil(t, r.GetArtwork(ctx, "nope"))
	assert.Empty(t, r.GetAllArtworks(ctx))
	_, ok := r.GetNarrative(ctx, "nope", "short")
	assert.False(t, ok)
	assert.Nil(t, r.GetTrajectory(ctx, "nope"))
	assert.Nil(t, r.GetTrajectoryDetails(ctx, "nope"))
}

func TestResolver_TrajectoryDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/artworks":
			w.Write([]byte(apiArtworksJSON))
		case "/trajectories":
			w.Write([]byte(`{"data": [{"id": "renaissance", "name": "Maîtres de la Renaissance"}]}`))
		case "/trajectories/renaissance":
			w.Write([]byte(`{"data": {
				"id": "renaissance",
				"name": "Maîtres de la Renaissance",
				"steps": [
					{"stepOrder": 2, "artwork": {"id": "a2", "title": "Deux"}, "narrativeContent": {"textContent": "n2"}},
					{"stepOrder": 1, "artwork": {"id": "a1", "title": "Un"}, "narrativeContent": {"textContent": "n1"}}
				]
			}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	r := newTestResolver(t, server.URL, "does-not-exist.json")
	ctx := context.Background()
	r.Load(ctx)

	trajectory := r.GetTrajectoryDetails(ctx, "renaissance")
	require.NotNil(t, trajectory)
	require.Len(t, trajectory.Steps, 2)
	assert.Equal(t, "a1", trajectory.Steps[0].ArtworkID, "steps must be ordered")
	assert.Equal(t, "a2", trajectory.Steps[1].ArtworkID)
}

func TestNormalizeVariant(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "standard"},
		{"standard", "standard"},
		{"short", "short"},
		{"court", "short"},
		{"detailed", "detailed"},
		{"long", "detailed"},
		{"kids", "kids"},
		{"enfants", "kids"},
		{"custom", "custom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeVariant(tt.in), "variant %q", tt.in)
	}
}

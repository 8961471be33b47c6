package llm

import (
	"strings"
	"testing"

	"github.com/kango-hamed/musia-guide/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPrompt_WithArtwork(t *testing.T) {
	prompt := BuildSystemPrompt(Request{
		Question: "Qui a peint cette œuvre ?",
		Artwork: &domain.Artwork{
			Title:       "La Joconde",
			Artist:      "Léonard de Vinci",
			Year:        "1503-1519",
			Description: "Portrait célèbre.",
			Narratives:  map[string]string{"detailed": "Narration détaillée."},
			FAQ: []domain.FAQ{
				{Question: "Pourquoi sourit-elle ?", Answer: "Mystère."},
			},
		},
	})

	assert.Contains(t, prompt, "Tu es Musia")
	assert.Contains(t, prompt, "TITRE: La Joconde")
	assert.Contains(t, prompt, "ARTISTE: Léonard de Vinci")
	assert.Contains(t, prompt, "DATE: 1503-1519")
	assert.Contains(t, prompt, "DETAILS: Narration détaillée.")
	assert.Contains(t, prompt, "Q: Pourquoi sourit-elle ? | R: Mystère.")
}

func TestBuildSystemPrompt_WithoutArtwork(t *testing.T) {
	prompt := BuildSystemPrompt(Request{Question: "Bonjour"})
	assert.Contains(t, prompt, "aucune œuvre spécifique")
}

func TestBuildSystemPrompt_MissingFieldsGetPlaceholders(t *testing.T) {
	prompt := BuildSystemPrompt(Request{Artwork: &domain.Artwork{ID: "x"}})
	assert.Contains(t, prompt, "TITRE: Œuvre inconnue")
	assert.Contains(t, prompt, "ARTISTE: Inconnu")
	assert.Contains(t, prompt, "DATE: Inconnue")
}

func TestBuildSystemPrompt_BestFAQComesFirst(t *testing.T) {
	prompt := BuildSystemPrompt(Request{
		Artwork: &domain.Artwork{Title: "La Joconde"},
		BestFAQ: &domain.FAQ{Question: "Pourquoi sourit-elle ?", Answer: "Mystère."},
	})

	faqIdx := strings.Index(prompt, "INFORMATION PERTINENTE:")
	titleIdx := strings.Index(prompt, "TITRE:")
	assert.Greater(t, faqIdx, -1)
	assert.Greater(t, titleIdx, faqIdx, "matched FAQ must precede the artwork block")
}

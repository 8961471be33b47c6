package nlp

import (
	"regexp"
	"strings"

	"github.com/kango-hamed/musia-guide/internal/domain"
)

// Intent labels for visitor questions.
const (
	IntentFactual    = "factual"
	IntentTemporal   = "temporal"
	IntentTechnical  = "technical"
	IntentContextual = "contextual"
	IntentComparison = "comparison"
	IntentAnecdote   = "anecdote"
	IntentNavigation = "navigation"
	IntentPractical  = "practical"
	IntentGeneral    = "general"
)

// intentRule associates an intent with its trigger phrases. Rules are
// evaluated in order and the first match wins, so the slice encodes
// precedence as well as membership.
type intentRule struct {
	intent   string
	keywords []string
}

var intentRules = []intentRule{
	{IntentFactual, []string{"qui", "quoi", "quel", "quelle", "c'est qui", "c'est quoi"}},
	{IntentTemporal, []string{"quand", "date", "époque", "année", "période"}},
	{IntentTechnical, []string{"comment", "technique", "matériau", "créé", "fait"}},
	{IntentContextual, []string{"pourquoi", "raison", "signification", "symbolisme"}},
	{IntentComparison, []string{"différence", "comparé", "versus", "vs", "contrairement"}},
	{IntentAnecdote, []string{"histoire", "anecdote", "raconter", "petite histoire"}},
	{IntentNavigation, []string{"suivant", "précédent", "autre", "continuer", "passer"}},
	{IntentPractical, []string{"toilettes", "sortie", "café", "restaurant", "horaire"}},
}

// French stopwords stripped during keyword extraction.
var stopwords = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "des": {},
	"de": {}, "du": {}, "à": {}, "au": {},
	"est": {}, "sont": {}, "et": {}, "ou": {}, "mais": {}, "donc": {},
	"car": {}, "que": {}, "qui": {}, "quoi": {}, "comment": {},
	"pourquoi": {}, "quand": {}, "où": {}, "ce": {}, "cette": {}, "ces": {},
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// ClassifyIntent labels a visitor question with the first matching intent
// rule, falling back to "general" when nothing matches.
func ClassifyIntent(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}

// ExtractKeywords tokenizes a French sentence and drops stopwords and
// words shorter than three characters.
func ExtractKeywords(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopwords[w]; stop {
			continue
		}
		if len([]rune(w)) <= 2 {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

// FindBestFAQ matches a question against an artwork's FAQ entries by
// keyword overlap. An entry matches when at least two question keywords
// appear among its registered keywords. Returns nil when nothing matches.
func FindBestFAQ(question string, faqs []domain.FAQ) *domain.FAQ {
	keywords := ExtractKeywords(question)
	if len(keywords) == 0 {
		return nil
	}

	for i := range faqs {
		haystack := strings.ToLower(strings.Join(faqs[i].Keywords, " "))
		matches := 0
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				matches++
			}
		}
		if matches >= 2 {
			return &faqs[i]
		}
	}
	return nil
}

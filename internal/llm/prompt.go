package llm

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt assembles the guide persona and the artwork context
// block for one turn. A matched FAQ entry is placed first so the model
// weighs it above the general description.
func BuildSystemPrompt(req Request) string {
	var context strings.Builder

	if req.BestFAQ != nil {
		fmt.Fprintf(&context, "INFORMATION PERTINENTE:\nQ: %s\nR: %s\n\n",
			req.BestFAQ.Question, req.BestFAQ.Answer)
	}

	if req.Artwork != nil {
		a := req.Artwork
		title := a.Title
		if title == "" {
			title = "Œuvre inconnue"
		}
		artist := a.Artist
		if artist == "" {
			artist = "Inconnu"
		}
		year := a.Year
		if year == "" {
			year = "Inconnue"
		}

		fmt.Fprintf(&context, "TITRE: %s\n", title)
		fmt.Fprintf(&context, "ARTISTE: %s\n", artist)
		fmt.Fprintf(&context, "DATE: %s\n", year)
		fmt.Fprintf(&context, "DESCRIPTION: %s\n", a.Description)
		fmt.Fprintf(&context, "DETAILS: %s\n", a.Narratives["detailed"])
		for _, faq := range a.FAQ {
			fmt.Fprintf(&context, "- Q: %s | R: %s\n", faq.Question, faq.Answer)
		}
	} else {
		context.WriteString("Le visiteur n'est devant aucune œuvre spécifique pour le moment. Tu es un guide général du musée.")
	}

	return fmt.Sprintf(`Tu es Musia, un guide de musée virtuel expert.
Réponds aux questions des visiteurs sur l'œuvre présentée.
Utilise le contexte suivant pour répondre:
%s

Si la réponse n'est pas dans le contexte, dis-le poliment et propose une information intéressante sur l'œuvre.`, context.String())
}

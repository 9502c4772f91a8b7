package prompt

import (
	"fmt"
	"strings"

	"github.com/elyx-health/journey-backend/internal/citation"
	"github.com/elyx-health/journey-backend/internal/index"
	"github.com/elyx-health/journey-backend/internal/persona"
)

// Assembly is the exact text handed to the generation model plus the
// provisional citation map needed to post-process its answer.
type Assembly struct {
	Prompt    string
	Citations citation.Map
}

// Assemble renders the generation prompt from the selected persona, the
// ranked retrieval results, and the user's question.
//
// Documents traceable to a log event get a provisional [n] marker, assigned
// in rank order and never reused within a request; analysis-derived
// documents enter the context unmarked and therefore uncitable.
func Assemble(id persona.ID, results []index.Result, query string) Assembly {
	citations := make(citation.Map)

	var context strings.Builder
	marker := 0
	for _, result := range results {
		if context.Len() > 0 {
			context.WriteString("\n\n")
		}

		doc := result.Document
		if doc.Cited() {
			marker++
			citations[marker] = doc.Metadata.EventID
			fmt.Fprintf(&context, "[%d] %s", marker, doc.Content)
		} else {
			context.WriteString(doc.Content)
		}
	}

	profile := persona.ProfileFor(id)

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "You are %s. Your role is to act as a helpful AI assistant for a member named Rohan.\n", profile.Name)
	fmt.Fprintf(&prompt, "Your personality and communication style are as follows: %s\n\n", profile.Description)
	prompt.WriteString("You will be provided with a user's question and a context of relevant conversation snippets and analysis summaries.\n")
	prompt.WriteString("Answer the question in your specific persona, based ONLY on the provided context.\n")
	prompt.WriteString("Some context entries begin with a numbered marker like [1]. When your answer uses such an entry, cite it by placing its marker at the end of the sentence that used it.\n")
	prompt.WriteString("Do not make up information. If the context does not contain the answer, say that you don't have enough information on that topic.\n")
	prompt.WriteString("Never cite an entry that does not carry a marker, and never invent marker numbers.\n")
	prompt.WriteString("Keep your answer concise and directly address the question.\n\n")
	prompt.WriteString("CONTEXT:\n---\n")
	prompt.WriteString(context.String())
	prompt.WriteString("\n---\n\nQUESTION:\n")
	prompt.WriteString(query)
	prompt.WriteString("\n\nANSWER:\n")

	return Assembly{
		Prompt:    prompt.String(),
		Citations: citations,
	}
}

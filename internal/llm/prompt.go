package llm

import (
	"fmt"
	"strings"
)

// Prompts is a system/user pair ready for one completion call.
type Prompts struct {
	System string
	User   string
}

// ClassificationPrompts asks the model to judge whether a page carries
// substantive content or boilerplate. The answer is a single word so the
// decision survives small models and sloppy formatting.
func ClassificationPrompts(pageText string) Prompts {
	parts := []string{
		"You are reviewing one page of a book.",
		"Answer SKIP if the page is only: a table of contents, chapter listing, index,",
		"blank or near-blank page, copyright or publishing details, references,",
		"bibliography, or acknowledgments.",
		"Answer CONTENT if the page contains: preface material explaining important concepts,",
		"educational content, definitions, arguments or theories, examples or case studies,",
		"findings, methodologies, or critical analysis.",
		"Reply with exactly one word: CONTENT or SKIP. Nothing else.",
	}
	return Prompts{
		System: strings.Join(parts, " "),
		User:   "Page text:\n" + pageText,
	}
}

// ExtractionPrompts asks for discrete knowledge points from one page.
// contextPoints are knowledge points from recent pages, included so the
// model does not re-extract material that continues across a page break.
func ExtractionPrompts(pageText string, contextPoints []string, language string) Prompts {
	parts := []string{
		"Analyze this page as if you are studying from a book.",
		"Extract detailed, learnable knowledge points:",
		"key definitions and concepts, important arguments or theories,",
		"examples with their context, significant findings and conclusions,",
		"methodologies and frameworks, important quotes or key statements.",
		"Preserve technical terms and definitions.",
		fmt.Sprintf("Write every knowledge point in %s.", language),
		`Return ONLY a JSON object of the form {"knowledge": ["point 1", "point 2", ...]}.`,
	}

	var b strings.Builder
	if len(contextPoints) > 0 {
		b.WriteString("Knowledge points already extracted from the previous pages (do not repeat them):\n")
		for _, p := range contextPoints {
			b.WriteString("- ")
			b.WriteString(p)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Page text:\n")
	b.WriteString(pageText)

	return Prompts{
		System: strings.Join(parts, " "),
		User:   b.String(),
	}
}

// SummaryPrompts asks for a prose summary of a block of knowledge points,
// formatted as markdown.
func SummaryPrompts(points []string, startPage, endPage int, language string) Prompts {
	return Prompts{
		System: summarySystem(language),
		User: fmt.Sprintf("Summarize the knowledge extracted from pages %d-%d:\n%s",
			startPage, endPage, strings.Join(points, "\n")),
	}
}

// ReportPrompts asks for the comprehensive final report over the full
// knowledge text (or one chunk of it, when the store outgrows a single
// prompt).
func ReportPrompts(knowledge string, language string) Prompts {
	return Prompts{
		System: summarySystem(language),
		User:   "Analyze this content:\n" + knowledge,
	}
}

func summarySystem(language string) string {
	parts := []string{
		"Create a comprehensive summary of the provided content in a concise but detailed way.",
		"Explain professional terminology.",
		fmt.Sprintf("Write in %s.", language),
		"Use markdown formatting:",
		"## for main sections, ### for subsections, bullet points for lists,",
		"`code blocks` for code or formulas, **bold** for emphasis, *italic* for terminology,",
		"> blockquotes for important notes.",
		"Return only the markdown summary, with no preamble or closing remarks.",
	}
	return strings.Join(parts, " ")
}

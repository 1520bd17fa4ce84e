package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParseMode records which tier of the lenient parser produced the result.
type ParseMode string

const (
	ParseModeJSON  ParseMode = "json"  // schema-valid JSON object
	ParseModeLines ParseMode = "lines" // bullet/line split
	ParseModeRaw   ParseMode = "raw"   // whole response as one point
)

var (
	reCodeFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	reBullet    = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
)

// ParseKnowledge coerces a free-text model response into knowledge points.
// Tier 1 extracts a JSON object (tolerating code fences and surrounding
// prose) and validates it against the knowledge schema. Tier 2 splits the
// response into bullet/line items. Tier 3 keeps the whole trimmed response
// as a single point, so model output is never silently discarded.
func ParseKnowledge(raw string) ([]string, ParseMode) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}, ParseModeRaw
	}

	if points, ok := parseStructured(trimmed); ok {
		return points, ParseModeJSON
	}
	if points, ok := parseLines(trimmed); ok {
		return points, ParseModeLines
	}
	return []string{trimmed}, ParseModeRaw
}

func parseStructured(s string) ([]string, bool) {
	candidate := s
	if m := reCodeFence.FindStringSubmatch(s); m != nil {
		candidate = m[1]
	}
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	doc := []byte(candidate[start : end+1])

	if err := ValidateJSONAgainstSchema(BuildKnowledgeJSONSchema(), doc); err != nil {
		return nil, false
	}
	var parsed struct {
		Knowledge []string `json:"knowledge"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, false
	}

	points := make([]string, 0, len(parsed.Knowledge))
	for _, k := range parsed.Knowledge {
		if k = strings.TrimSpace(k); k != "" {
			points = append(points, k)
		}
	}
	return points, true
}

func parseLines(s string) ([]string, bool) {
	var points []string
	bullets := 0
	for _, line := range strings.Split(s, "\n") {
		stripped := reBullet.ReplaceAllString(line, "")
		if stripped != line {
			bullets++
		}
		if stripped = strings.TrimSpace(stripped); stripped != "" {
			points = append(points, stripped)
		}
	}
	// Without at least one bullet marker this is prose, not a list; let the
	// raw tier keep it intact instead of shredding it line by line.
	if bullets == 0 || len(points) == 0 {
		return nil, false
	}
	return points, true
}

// ParseClassification turns a classification response into a keep/skip
// decision. The prompt asks for a single word, CONTENT or SKIP; anything
// ambiguous is treated as content so a page is never silently dropped.
func ParseClassification(raw string) bool {
	answer := strings.ToUpper(strings.TrimSpace(raw))
	hasSkip := strings.Contains(answer, "SKIP")
	hasContent := strings.Contains(answer, "CONTENT")
	if hasSkip && !hasContent {
		return false
	}
	return true
}

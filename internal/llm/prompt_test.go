package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionPromptsIncludeContext(t *testing.T) {
	p := ExtractionPrompts("page body", []string{"earlier point"}, "English")
	assert.Contains(t, p.User, "earlier point")
	assert.Contains(t, p.User, "page body")
	assert.Contains(t, p.System, "English")
	assert.Contains(t, p.System, `"knowledge"`)
}

func TestExtractionPromptsWithoutContext(t *testing.T) {
	p := ExtractionPrompts("page body", nil, "German")
	assert.NotContains(t, p.User, "already extracted")
	assert.Contains(t, p.System, "German")
}

func TestClassificationPromptsAskForSingleWord(t *testing.T) {
	p := ClassificationPrompts("some page")
	assert.Contains(t, p.System, "CONTENT or SKIP")
	assert.Contains(t, p.User, "some page")
}

func TestSummaryPromptsCarryPageRange(t *testing.T) {
	p := SummaryPrompts([]string{"a", "b"}, 6, 10, "English")
	assert.Contains(t, p.User, "pages 6-10")
	assert.Contains(t, p.System, "markdown")
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildKnowledgeJSONSchema()

	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"knowledge": []}`)))
	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"knowledge": ["a"]}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"knowledge": [1]}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"other": []}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`not json`)))
}

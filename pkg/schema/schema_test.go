package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestionsSchema(t *testing.T) {
	s := SuggestionsSchema(3)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "array",
		"description": "An array containing exactly 3 distinct sentence or line suggestions.",
		"items": {"type": "string", "description": "A single, coherent sentence or line continuation."},
		"minItems": 3,
		"maxItems": 3
	}`, string(data))

	minItems, maxItems := Arity(s)
	assert.Equal(t, 3, minItems)
	assert.Equal(t, 3, maxItems)

	minItems, maxItems = Arity(nil)
	assert.Equal(t, -1, minItems)
	assert.Equal(t, -1, maxItems)
}

func TestEntityProjection(t *testing.T) {
	c := NewCharacter("c1", map[string]any{
		"name":        "Wren",
		"traits":      []any{"quiet", "", "curious"},
		"motivations": []string{"revenge", "home"},
		"backstory":   42,
	})
	assert.Equal(t, Character{ID: "c1", Name: "Wren", Traits: "quiet, curious", Motivations: "revenge, home", Backstory: "42"}, c)

	ch := NewChapter("", map[string]any{"id": "from-data", "order": int64(4), "title": "Tide"})
	assert.Equal(t, "from-data", ch.ID)
	assert.Equal(t, 4, ch.Number())

	ch = NewChapter("x", map[string]any{"chapterNumber": 2.0, "order": int64(9)})
	assert.Equal(t, 2, ch.Number())
	assert.Zero(t, NewChapter("y", nil).Number())
}

func TestSortChapters(t *testing.T) {
	chapters := []Chapter{
		{ID: "c", ChapterNumber: 3},
		{ID: "none-a"},
		{ID: "a", Order: 1},
		{ID: "none-b"},
		{ID: "b", ChapterNumber: 2},
	}
	SortChapters(chapters)

	var ids []string
	for _, ch := range chapters {
		ids = append(ids, ch.ID)
	}
	assert.Equal(t, []string{"none-a", "none-b", "a", "b", "c"}, ids)
}

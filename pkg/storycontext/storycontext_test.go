package storycontext

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyagent/pkg/schema"
	"storyagent/pkg/store"
)

func seed(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	m.PutStory("s1", map[string]any{"title": "The Lighthouse", "genre": "mystery", "tone": "brooding"})
	m.Put("s1", store.Characters, "c1", map[string]any{
		"name":   "Mara",
		"role":   "keeper",
		"traits": []any{"stubborn", "observant"},
	})
	m.Put("s1", store.Chapters, "ch3", map[string]any{"chapterNumber": int64(3), "title": "Fog"})
	m.Put("s1", store.Chapters, "ch1", map[string]any{"chapterNumber": 1.0, "title": "Arrival"})
	m.Put("s1", store.Chapters, "ch2", map[string]any{"order": int64(2), "title": "The Lamp"})
	return m
}

func TestBuildSortsChapters(t *testing.T) {
	sc, err := NewBuilder(seed(t)).Build(context.Background(), "s1")
	require.NoError(t, err)

	require.Len(t, sc.Chapters, 3)
	for i, ch := range sc.Chapters {
		assert.Equal(t, i+1, ch.Number())
	}
	assert.Equal(t, "The Lighthouse", sc.Story.Title)
	require.Len(t, sc.Characters, 1)
	assert.Equal(t, "stubborn, observant", sc.Characters[0].Traits)
	assert.Empty(t, sc.Places)
}

func TestBuildNotFound(t *testing.T) {
	_, err := NewBuilder(store.NewMemory()).Build(context.Background(), "missing")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Story missing not found", err.Error())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

type failingStore struct {
	*store.Memory
	fail store.Collection
}

func (f failingStore) List(ctx context.Context, storyID string, c store.Collection) ([]store.Document, error) {
	if c == f.fail {
		return nil, errors.New("deadline exceeded")
	}
	return f.Memory.List(ctx, storyID, c)
}

func TestBuildCollectionError(t *testing.T) {
	_, err := NewBuilder(failingStore{Memory: seed(t), fail: store.Plots}).Build(context.Background(), "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadline exceeded")
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestChapter(t *testing.T) {
	b := NewBuilder(seed(t))

	ch, err := b.Chapter(context.Background(), "s1", "ch2")
	require.NoError(t, err)
	assert.Equal(t, 2, ch.Number())
	assert.Equal(t, "ch2", ch.ID)

	_, err = b.Chapter(context.Background(), "s1", "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFormatOmitsEmptySections(t *testing.T) {
	out := Format(&schema.StoryContext{Story: schema.Story{ID: "s1"}})

	assert.Equal(t, "=== STORY CONTEXT ===\nTitle: Untitled\nGenre: Not specified\nTone: Not specified", out)
	for _, header := range []string{"CHARACTERS", "PLACES", "PLOTS", "EXISTING CHAPTERS"} {
		assert.NotContains(t, out, header)
	}
}

func TestFormatLayout(t *testing.T) {
	sc := &schema.StoryContext{
		Story: schema.Story{Title: "T", Genre: "fantasy", Tone: "light", Description: "A quest."},
		Characters: []schema.Character{
			{Name: "Ash", Role: "hero", Backstory: "Orphan.", Motivations: "Home."},
			{},
		},
		Places: []schema.Place{{Name: "Keep", Description: "Old stones.", Atmosphere: "damp"}},
		Plots:  []schema.Plot{{Description: "A theft.", Type: "conflict"}},
		Chapters: []schema.Chapter{
			{ChapterNumber: 1, Title: "Start", Content: "SECRET BODY"},
			{},
		},
	}

	want := `=== STORY CONTEXT ===
Title: T
Genre: fantasy
Tone: light
Description: A quest.

=== CHARACTERS ===
- Ash (Role: hero)
  Backstory: Orphan.
  Motivations: Home.
- Unnamed

=== PLACES ===
- Keep: Old stones.
  Atmosphere: damp

=== PLOTS ===
- Untitled Plot: A theft.
  Type: conflict

=== EXISTING CHAPTERS (2 total) ===
Chapter 1: Start
Chapter ?: Untitled`

	assert.Equal(t, want, Format(sc))
}

func TestFormatChapterOverflow(t *testing.T) {
	sc := &schema.StoryContext{Story: schema.Story{Title: "T"}}
	for i := 1; i <= 7; i++ {
		sc.Chapters = append(sc.Chapters, schema.Chapter{ChapterNumber: i, Title: fmt.Sprintf("C%d", i)})
	}

	out := Format(sc)
	assert.Contains(t, out, "=== EXISTING CHAPTERS (7 total) ===")
	for i := 1; i <= 5; i++ {
		assert.Contains(t, out, fmt.Sprintf("Chapter %d: C%d", i, i))
	}
	assert.NotContains(t, out, "Chapter 6:")
	assert.True(t, strings.HasSuffix(out, "\n...and 2 more chapters"))
}

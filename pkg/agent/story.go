package agent

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"storyagent/pkg/schema"
	"storyagent/pkg/storycontext"
	"storyagent/pkg/utils"
)

const (
	continuityChapters = 3
	continuityChars    = 500
)

type StoryRequest struct {
	StoryID string `json:"storyId" validate:"required"`
	Genre   string `json:"genre"`
	Tone    string `json:"tone"`
	Length  string `json:"length"`
}

type StoryMetadata struct {
	Genre  string `json:"genre"`
	Tone   string `json:"tone"`
	Length string `json:"length"`
}

type StoryResult struct {
	StoryID  string        `json:"storyId"`
	Content  string        `json:"content"`
	Metadata StoryMetadata `json:"metadata"`
}

// GenerateStory asks for a complete story. The prompt requests a
// title/story/summary layout but the reply is returned as raw text.
func (a *Agent) GenerateStory(ctx context.Context, req StoryRequest) (*StoryResult, error) {
	if err := a.check(req); err != nil {
		return nil, err
	}
	sc, err := a.builder.Build(ctx, req.StoryID)
	if err != nil {
		return nil, err
	}

	genre, tone := genreTone(sc.Story, req.Genre, req.Tone)
	length := cmp.Or(req.Length, "medium")

	prompt := fmt.Sprintf(storyPrompt, genre, tone, storycontext.Format(sc), length)
	logPrompt(GenerateStory, req.StoryID, prompt)
	content, err := a.backend.Infer(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &StoryResult{
		StoryID:  req.StoryID,
		Content:  content,
		Metadata: StoryMetadata{Genre: genre, Tone: tone, Length: length},
	}, nil
}

type ChapterRequest struct {
	StoryID       string `json:"storyId" validate:"required"`
	ChapterNumber int    `json:"chapterNumber" validate:"required,gte=1"`
	// PreviousChapters overrides the chapters used for continuity. When
	// absent, every stored chapter numbered below ChapterNumber is used.
	PreviousChapters []schema.Chapter `json:"previousChapters"`
}

type ChapterResult struct {
	StoryID       string `json:"storyId"`
	ChapterNumber int    `json:"chapterNumber"`
	Content       string `json:"content"`
}

func (a *Agent) GenerateChapter(ctx context.Context, req ChapterRequest) (*ChapterResult, error) {
	if err := a.check(req); err != nil {
		return nil, err
	}
	sc, err := a.builder.Build(ctx, req.StoryID)
	if err != nil {
		return nil, err
	}

	previous := req.PreviousChapters
	if previous == nil {
		previous = chaptersBefore(sc.Chapters, req.ChapterNumber)
	}

	prompt := fmt.Sprintf(chapterPrompt, req.ChapterNumber, storycontext.Format(sc), chapterContinuity(previous))
	logPrompt(GenerateChapter, req.StoryID, prompt)
	content, err := a.backend.Infer(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &ChapterResult{StoryID: req.StoryID, ChapterNumber: req.ChapterNumber, Content: content}, nil
}

// chapterContinuity summarises the last few chapters, each cut to its
// opening characters.
func chapterContinuity(previous []schema.Chapter) string {
	if len(previous) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n=== PREVIOUS CHAPTERS SUMMARY ===\n")
	for i, ch := range lastN(previous, continuityChapters) {
		fmt.Fprintf(&b, "Chapter %d: %s\n%s...\n\n",
			cmp.Or(ch.Number(), i+1),
			cmp.Or(ch.Title, "Untitled"),
			utils.Truncate(ch.Content, continuityChars),
		)
	}
	return b.String()
}

// chaptersBefore returns the sorted chapters numbered below n.
func chaptersBefore(chapters []schema.Chapter, n int) []schema.Chapter {
	var out []schema.Chapter
	for _, ch := range chapters {
		if ch.Number() < n {
			out = append(out, ch)
		}
	}
	return out
}

func lastN[T any](s []T, n int) []T {
	return s[max(0, len(s)-n):]
}

func genreTone(story schema.Story, genre, tone string) (string, string) {
	return cmp.Or(genre, story.Genre, "general fiction"), cmp.Or(tone, story.Tone, "neutral")
}

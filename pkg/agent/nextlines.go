package agent

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"storyagent/pkg/schema"
	"storyagent/pkg/storycontext"
	"storyagent/pkg/utils"
)

const (
	prefixChars     = 1200
	suffixChars     = 300
	suggestionCount = 3
)

type NextLinesRequest struct {
	StoryID string `json:"storyId" validate:"required"`
	Content string `json:"content"`
	// CursorPosition is a character offset into Content.
	CursorPosition *int   `json:"cursorPosition" validate:"required"`
	ChapterID      string `json:"chapterId"`
}

type NextLinesResult struct {
	StoryID     string   `json:"storyId"`
	Suggestions []string `json:"suggestions"`
	Error       string   `json:"error,omitempty"`
}

// GenerateNextLines suggests lines to insert at the cursor. A failed or
// misshapen generation is reported inside a successful result with no
// suggestions. Errors reading the story still fail the call.
func (a *Agent) GenerateNextLines(ctx context.Context, req NextLinesRequest) (*NextLinesResult, error) {
	if err := a.check(req); err != nil {
		return nil, err
	}
	sc, err := a.builder.Build(ctx, req.StoryID)
	if err != nil {
		return nil, err
	}

	var continuity string
	if req.ChapterID != "" {
		ch, err := a.builder.Chapter(ctx, req.StoryID, req.ChapterID)
		if err != nil {
			log.Warn("could not fetch chapter, continuing without continuity", "story", req.StoryID, "chapter", req.ChapterID, "err", err)
		} else {
			continuity = lineContinuity(sc.Chapters, ch.Number())
		}
	}

	prefix, suffix := sliceContent(req.Content, *req.CursorPosition)
	if continuity != "" {
		continuity = "\n" + continuity + "\n"
	}
	system := fmt.Sprintf(nextLinesSystemPrompt, suggestionCount)
	user := fmt.Sprintf(nextLinesUserPrompt, storycontext.Format(sc), continuity, prefix, suffix, suggestionCount)

	logPrompt(GenerateNextLines, req.StoryID, system+user)
	suggestions, err := a.backend.InferStructured(ctx, system, user, schema.SuggestionsSchema(suggestionCount))
	if err == nil && len(suggestions) != suggestionCount {
		err = fmt.Errorf("expected %d suggestions, got %d", suggestionCount, len(suggestions))
	}
	if err != nil {
		log.Warn("next line generation failed", "story", req.StoryID, "err", err)
		return &NextLinesResult{
			StoryID:     req.StoryID,
			Suggestions: []string{},
			Error:       "Failed to generate lines: " + err.Error(),
		}, nil
	}

	return &NextLinesResult{StoryID: req.StoryID, Suggestions: suggestions}, nil
}

// sliceContent returns up to prefixChars characters before the cursor and up
// to suffixChars after it. The cursor is clamped to the content.
func sliceContent(content string, cursor int) (prefix, suffix string) {
	runes := []rune(content)
	cursor = min(max(cursor, 0), len(runes))
	prefix = string(runes[max(0, cursor-prefixChars):cursor])
	suffix = string(runes[cursor:min(len(runes), cursor+suffixChars)])
	return prefix, suffix
}

// lineContinuity previews the chapters leading up to the current one. Zero
// means the current chapter has no number and nothing is returned.
func lineContinuity(chapters []schema.Chapter, current int) string {
	if current == 0 {
		return ""
	}
	previous := chaptersBefore(chapters, current)
	if len(previous) == 0 {
		return ""
	}

	parts := make([]string, 0, continuityChapters)
	for _, ch := range lastN(previous, continuityChapters) {
		parts = append(parts, fmt.Sprintf("Chapter %s: %s\n%s",
			storycontext.ChapterLabel(ch),
			cmp.Or(ch.Title, "Untitled"),
			utils.LimitStr(ch.Content, continuityChars),
		))
	}
	return "\n\n--- PREVIOUS CHAPTERS (for continuity) ---\n" + strings.Join(parts, "\n\n")
}

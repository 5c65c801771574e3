package storycontext

import (
	"cmp"
	"fmt"
	"strings"

	"storyagent/pkg/schema"
)

// maxListedChapters is how many chapters are listed by title before the rest
// collapse into a count.
const maxListedChapters = 5

// Format renders the context as the prompt block shared by every assembler.
// Sections come in a fixed order and empty ones are left out. Chapter bodies
// are never included, only numbers and titles.
func Format(sc *schema.StoryContext) string {
	var b strings.Builder

	story := sc.Story
	b.WriteString("=== STORY CONTEXT ===\n")
	fmt.Fprintf(&b, "Title: %s\n", cmp.Or(story.Title, "Untitled"))
	fmt.Fprintf(&b, "Genre: %s\n", cmp.Or(story.Genre, "Not specified"))
	fmt.Fprintf(&b, "Tone: %s", cmp.Or(story.Tone, "Not specified"))
	if story.Description != "" {
		fmt.Fprintf(&b, "\nDescription: %s", story.Description)
	}

	if len(sc.Characters) > 0 {
		b.WriteString("\n\n=== CHARACTERS ===")
		for _, c := range sc.Characters {
			fmt.Fprintf(&b, "\n- %s", cmp.Or(c.Name, "Unnamed"))
			if c.Role != "" {
				fmt.Fprintf(&b, " (Role: %s)", c.Role)
			}
			field(&b, "Backstory", c.Backstory)
			field(&b, "Traits", c.Traits)
			field(&b, "Motivations", c.Motivations)
		}
	}

	if len(sc.Places) > 0 {
		b.WriteString("\n\n=== PLACES ===")
		for _, p := range sc.Places {
			fmt.Fprintf(&b, "\n- %s", cmp.Or(p.Name, "Unnamed"))
			if p.Description != "" {
				fmt.Fprintf(&b, ": %s", p.Description)
			}
			field(&b, "Atmosphere", p.Atmosphere)
		}
	}

	if len(sc.Plots) > 0 {
		b.WriteString("\n\n=== PLOTS ===")
		for _, p := range sc.Plots {
			fmt.Fprintf(&b, "\n- %s", cmp.Or(p.Title, "Untitled Plot"))
			if p.Description != "" {
				fmt.Fprintf(&b, ": %s", p.Description)
			}
			field(&b, "Type", p.Type)
		}
	}

	if n := len(sc.Chapters); n > 0 {
		fmt.Fprintf(&b, "\n\n=== EXISTING CHAPTERS (%d total) ===", n)
		for _, ch := range sc.Chapters[:min(n, maxListedChapters)] {
			fmt.Fprintf(&b, "\nChapter %s: %s", ChapterLabel(ch), cmp.Or(ch.Title, "Untitled"))
		}
		if n > maxListedChapters {
			fmt.Fprintf(&b, "\n...and %d more chapters", n-maxListedChapters)
		}
	}

	return b.String()
}

// ChapterLabel is the chapter number as shown in prompts, or "?" when the
// chapter has none.
func ChapterLabel(ch schema.Chapter) string {
	if n := ch.Number(); n != 0 {
		return fmt.Sprint(n)
	}
	return "?"
}

func field(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "\n  %s: %s", label, value)
	}
}

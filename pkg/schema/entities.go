package schema

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

type Story struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Tone        string `json:"tone,omitempty"`
	Description string `json:"description,omitempty"`
}

type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role,omitempty"`
	Backstory   string `json:"backstory,omitempty"`
	Traits      string `json:"traits,omitempty"`
	Motivations string `json:"motivations,omitempty"`
}

type Place struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Atmosphere  string `json:"atmosphere,omitempty"`
}

type Plot struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

type Chapter struct {
	ID            string `json:"id,omitempty"`
	ChapterNumber int    `json:"chapterNumber,omitempty"`
	Order         int    `json:"order,omitempty"`
	Title         string `json:"title,omitempty"`
	Content       string `json:"content,omitempty"`
}

// Number is chapterNumber, falling back to the legacy order field. Zero means
// the chapter carries neither.
func (c Chapter) Number() int {
	return cmp.Or(c.ChapterNumber, c.Order)
}

// StoryContext is built per request and never cached.
type StoryContext struct {
	Story      Story       `json:"story"`
	Characters []Character `json:"characters"`
	Places     []Place     `json:"places"`
	Plots      []Plot      `json:"plots"`
	Chapters   []Chapter   `json:"chapters"`
}

// SortChapters orders chapters ascending by Number. Ties keep store order.
func SortChapters(chapters []Chapter) {
	slices.SortStableFunc(chapters, func(a, b Chapter) int {
		return cmp.Compare(a.Number(), b.Number())
	})
}

func NewStory(id string, data map[string]any) Story {
	return Story{
		ID:          id,
		Title:       text(data, "title"),
		Genre:       text(data, "genre"),
		Tone:        text(data, "tone"),
		Description: text(data, "description"),
	}
}

func NewCharacter(id string, data map[string]any) Character {
	return Character{
		ID:          id,
		Name:        text(data, "name"),
		Role:        text(data, "role"),
		Backstory:   text(data, "backstory"),
		Traits:      text(data, "traits"),
		Motivations: text(data, "motivations"),
	}
}

func NewPlace(id string, data map[string]any) Place {
	return Place{
		ID:          id,
		Name:        text(data, "name"),
		Description: text(data, "description"),
		Atmosphere:  text(data, "atmosphere"),
	}
}

func NewPlot(id string, data map[string]any) Plot {
	return Plot{
		ID:          id,
		Title:       text(data, "title"),
		Description: text(data, "description"),
		Type:        text(data, "type"),
	}
}

func NewChapter(id string, data map[string]any) Chapter {
	return Chapter{
		ID:            cmp.Or(id, text(data, "id")),
		ChapterNumber: number(data, "chapterNumber"),
		Order:         number(data, "order"),
		Title:         text(data, "title"),
		Content:       text(data, "content"),
	}
}

// text renders a document field as display text. Lists are joined so that
// array-valued traits read naturally in a prompt.
func text(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := fmt.Sprint(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func number(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return int(math.Trunc(float64(v)))
	case float64:
		return int(math.Trunc(v))
	default:
		return 0
	}
}

package agent

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"storyagent/pkg/storycontext"
)

const defaultIdeaCount = 5

type IdeasRequest struct {
	StoryID string `json:"storyId" validate:"required"`
	// Type is one of characters, plots, places or themes. Anything else gets
	// the characters template.
	Type   *string `json:"type"`
	Prompt string  `json:"prompt"`
	Count  *int    `json:"count"`
}

type Idea struct {
	Text string `json:"text"`
}

type IdeasResult struct {
	StoryID     string  `json:"storyId"`
	Type        *string `json:"type"`
	Ideas       []Idea  `json:"ideas"`
	RawResponse string  `json:"rawResponse"`
}

func (a *Agent) BrainstormIdeas(ctx context.Context, req IdeasRequest) (*IdeasResult, error) {
	if err := a.check(req); err != nil {
		return nil, err
	}
	count := defaultIdeaCount
	if req.Count != nil {
		count = *req.Count
	}

	sc, err := a.builder.Build(ctx, req.StoryID)
	if err != nil {
		return nil, err
	}
	genre, tone := genreTone(sc.Story, "", "")

	var ideaType string
	if req.Type != nil {
		ideaType = *req.Type
	}
	tmpl, ok := ideaPrompts[ideaType]
	if !ok {
		tmpl = ideaPrompts[defaultIdeaType]
	}
	prompt := fmt.Sprintf(tmpl, count, genre, tone, storycontext.Format(sc))
	if req.Prompt != "" {
		prompt += "\n\nAdditional requirements: " + req.Prompt
	}

	logPrompt(BrainstormIdeas, req.StoryID, prompt)
	text, err := a.backend.Infer(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &IdeasResult{
		StoryID:     req.StoryID,
		Type:        req.Type,
		Ideas:       parseIdeas(text, count),
		RawResponse: text,
	}, nil
}

// parseIdeas splits a reply into ideas line by line. A line starting with a
// digit or a dash opens a new idea, a blank line closes the current one, and
// any other line is appended to the current idea with a space. At most count
// ideas are kept.
func parseIdeas(text string, count int) []Idea {
	ideas := []Idea{}
	var current *Idea
	flush := func() {
		if current != nil {
			ideas = append(ideas, *current)
			current = nil
		}
	}

	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case startsIdea(line):
			flush()
			current = &Idea{Text: line}
		case current != nil:
			current.Text += " " + line
		default:
			current = &Idea{Text: line}
		}
	}
	flush()

	return ideas[:min(len(ideas), max(count, 0))]
}

func startsIdea(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsDigit(r) || r == '-'
}

type CharacterRequest struct {
	StoryID   string  `json:"storyId" validate:"required"`
	Role      *string `json:"role"`
	Archetype *string `json:"archetype"`
}

type CharacterProfile struct {
	Role      *string `json:"role"`
	Archetype *string `json:"archetype"`
	Profile   string  `json:"profile"`
}

type CharacterResult struct {
	StoryID   string           `json:"storyId"`
	Character CharacterProfile `json:"character"`
}

func (a *Agent) BrainstormCharacter(ctx context.Context, req CharacterRequest) (*CharacterResult, error) {
	if err := a.check(req); err != nil {
		return nil, err
	}
	sc, err := a.builder.Build(ctx, req.StoryID)
	if err != nil {
		return nil, err
	}
	genre, tone := genreTone(sc.Story, "", "")

	roleText := "Any role"
	if req.Role != nil && *req.Role != "" {
		roleText = "Role: " + *req.Role
	}
	archetypeText := "Any archetype"
	if req.Archetype != nil && *req.Archetype != "" {
		archetypeText = "Archetype: " + *req.Archetype
	}

	prompt := fmt.Sprintf(characterPrompt, genre, tone, storycontext.Format(sc), roleText, archetypeText)
	logPrompt(BrainstormCharacter, req.StoryID, prompt)
	profile, err := a.backend.Infer(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &CharacterResult{
		StoryID: req.StoryID,
		Character: CharacterProfile{
			Role:      req.Role,
			Archetype: req.Archetype,
			Profile:   profile,
		},
	}, nil
}

type PlotRequest struct {
	StoryID  string `json:"storyId" validate:"required"`
	PlotType string `json:"plotType"`
}

type PlotResult struct {
	StoryID  string `json:"storyId"`
	PlotType string `json:"plotType"`
	Plot     string `json:"plot"`
}

func (a *Agent) BrainstormPlot(ctx context.Context, req PlotRequest) (*PlotResult, error) {
	if err := a.check(req); err != nil {
		return nil, err
	}
	plotType := cmp.Or(req.PlotType, "conflict")

	sc, err := a.builder.Build(ctx, req.StoryID)
	if err != nil {
		return nil, err
	}
	genre, tone := genreTone(sc.Story, "", "")

	desc, ok := plotDescriptions[plotType]
	if !ok {
		desc = defaultPlotDescription
	}

	prompt := fmt.Sprintf(plotPrompt, desc, genre, tone, storycontext.Format(sc))
	logPrompt(BrainstormPlot, req.StoryID, prompt)
	plot, err := a.backend.Infer(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &PlotResult{StoryID: req.StoryID, PlotType: plotType, Plot: plot}, nil
}

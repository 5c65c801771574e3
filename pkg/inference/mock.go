package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"storyagent/pkg/utils"
)

// MockInferencer returns canned text without calling any model. Replies are
// chosen by keywords in the prompt so every action has something plausible
// to post-process.
type MockInferencer struct{}

func NewMockInferencer() *MockInferencer { return &MockInferencer{} }

func (MockInferencer) Kind() Kind { return KindMock }

func (MockInferencer) Infer(_ context.Context, prompt string) (string, error) {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "character"):
		return mockCharacters, nil
	case strings.Contains(lower, "plot"):
		return mockPlots, nil
	case strings.Contains(lower, "place"):
		return mockPlaces, nil
	case strings.Contains(lower, "theme"):
		return mockThemes, nil
	default:
		return fmt.Sprintf(mockGeneric, utils.Truncate(prompt, 100)), nil
	}
}

func (MockInferencer) InferStructured(_ context.Context, _, user string, _ *jsonschema.Schema) ([]string, error) {
	lower := strings.ToLower(user)
	if strings.Contains(lower, "next line") || strings.Contains(lower, "continuation") || strings.Contains(user, "[INSERTION_POINT]") {
		return []string{
			"The morning light filtered through the curtains, casting long shadows across the room.",
			"She paused, considering her next words carefully before speaking.",
			"A sense of unease settled over him as he realized what was about to happen.",
		}, nil
	}
	return []string{
		"Mock suggestion 1 for structured content testing.",
		"Mock suggestion 2 for structured content testing.",
		"Mock suggestion 3 for structured content testing.",
	}, nil
}

const mockCharacters = `1. **Aria Blackwood** - A mysterious scholar with a hidden past, seeking ancient knowledge. Key traits: Intelligent, secretive, determined. Backstory: Former member of a secret organization, now on the run. Motivations: To uncover the truth about her family's disappearance.

2. **Marcus Thorne** - A skilled warrior with a code of honor. Key traits: Brave, loyal, conflicted. Backstory: Raised in a military academy, left after questioning orders. Motivations: To protect the innocent and find redemption.

3. **Luna Starweaver** - A magical healer with a connection to nature. Key traits: Compassionate, intuitive, powerful. Backstory: Discovered her powers during a childhood illness. Motivations: To heal the world and restore balance.`

const mockPlots = `1. **The Hidden Prophecy** - An ancient prophecy reveals that the main character must make a difficult choice between saving their loved one or saving the world. This creates internal conflict and drives the story forward.

2. **The Betrayal** - A trusted ally is revealed to be working for the antagonist, creating tension and forcing the protagonist to question everyone around them.

3. **The Discovery** - The protagonist discovers that their greatest enemy is actually trying to prevent a greater evil, forcing them to reconsider their entire mission.`

const mockPlaces = `1. **The Whispering Woods** - A mystical forest where the trees seem to speak secrets. The atmosphere is eerie yet beautiful, with ancient magic lingering in the air. Key features include glowing mushrooms and a hidden clearing where important events occur.

2. **The Crystal Caves** - Underground caverns filled with luminescent crystals that store magical energy. These caves serve as a sanctuary and a source of power for the characters.

3. **The Forgotten Library** - An abandoned library containing lost knowledge and dangerous secrets. The shelves stretch endlessly, and some books are said to be alive.`

const mockThemes = `1. **Sacrifice and Redemption** - Exploring how characters must give up something important to achieve their goals and find redemption for past mistakes.

2. **The Nature of Power** - Examining how power corrupts and how different characters handle authority and responsibility.

3. **Identity and Self-Discovery** - Characters questioning who they are and discovering their true purpose in the world.`

const mockGeneric = `This is a mock response for testing purposes.

Prompt received: %s...

[Mock content would be generated here in a real scenario. This allows you to test the API flow without incurring costs or requiring an AI model.]`

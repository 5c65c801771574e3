package agent

// storyPrompt: genre, tone, context, length.
const storyPrompt = `You are an expert novelist. Generate a complete %[1]s story with a %[2]s tone.

%[3]s

Generate a complete story that:
1. Incorporates all the characters, places, and plot elements provided
2. Maintains consistency with the story's genre and tone
3. Is approximately %[4]s length
4. Has a clear beginning, middle, and end
5. Includes character development and plot progression

Return the story in the following format:
- Title: [Story Title]
- Story: [Full story text]
- Summary: [Brief summary]
`

// chapterPrompt: chapter number, context, continuity block.
const chapterPrompt = `You are an expert novelist. Generate Chapter %[1]d for this story.

%[2]s

%[3]s

Generate Chapter %[1]d that:
1. Maintains continuity with previous chapters
2. Advances the plot naturally
3. Develops characters appropriately
4. Incorporates the story's established elements
5. Has a compelling beginning and ending that encourages reading the next chapter

Return the chapter in the following format:
- Title: [Chapter Title]
- Chapter Number: %[1]d
- Content: [Full chapter text]
`

// Brainstorm templates take count, genre, tone, context.
var ideaPrompts = map[string]string{
	"characters": `Generate %[1]d unique character ideas for this %[2]s story with a %[3]s tone.

%[4]s

For each character, provide:
- Name
- Role in the story
- Key personality traits
- Backstory (2-3 sentences)
- Motivations and goals
- How they fit into the existing story context`,

	"plots": `Generate %[1]d plot ideas or plot developments for this %[2]s story with a %[3]s tone.

%[4]s

For each plot idea, provide:
- Plot title/name
- Description of the plot element
- How it connects to existing story elements
- Potential conflicts or tensions
- How it advances the story`,

	"places": `Generate %[1]d location or setting ideas for this %[2]s story with a %[3]s tone.

%[4]s

For each place, provide:
- Name of the location
- Description and atmosphere
- Key features or landmarks
- How it fits into the story
- Potential events that could happen there`,

	"themes": `Generate %[1]d theme ideas for this %[2]s story with a %[3]s tone.

%[4]s

For each theme, provide:
- Theme name
- Description
- How it relates to the existing story elements
- Ways to explore this theme in the narrative`,
}

const defaultIdeaType = "characters"

// characterPrompt: genre, tone, context, role line, archetype line.
const characterPrompt = `Generate a detailed character profile for this %[1]s story with a %[2]s tone.

%[3]s

Character Requirements:
- %[4]s
- %[5]s

Provide a complete character profile with:
- Name
- Age and physical description
- Personality traits (3-5 key traits)
- Backstory (detailed, 2-3 paragraphs)
- Motivations and goals
- Fears and weaknesses
- Relationships with other characters
- How they fit into the story's plot
- Character arc potential

Make the character compelling and well-developed.`

var plotDescriptions = map[string]string{
	"conflict":    "a major conflict or obstacle",
	"twist":       "a plot twist or unexpected development",
	"subplot":     "a subplot that complements the main story",
	"development": "a plot development that advances the story",
}

const defaultPlotDescription = "a plot element"

// plotPrompt: plot description, genre, tone, context.
const plotPrompt = `Generate %[1]s for this %[2]s story with a %[3]s tone.

%[4]s

Provide:
- Title/name for this plot element
- Detailed description
- How it connects to existing story elements
- Characters involved
- Potential consequences or outcomes
- How it advances the overall narrative
- Tension or conflict it creates

Make it compelling and well-integrated with the existing story.`

// nextLinesSystemPrompt: suggestion count.
const nextLinesSystemPrompt = `You are a highly skilled, creative, and observant Novelist Assistant AI. Your sole task is to provide seamless, in-context line continuations for a user who is actively writing a novel.

### RULES AND CONSTRAINTS:
1.  **Output Format MUST BE JSON:** Your entire response must be a single, valid JSON array that strictly follows the provided JSON Schema.
2.  **Number of Suggestions:** You MUST generate EXACTLY %[1]d distinct, high-quality line suggestions.
3.  **Suggestion Length:** Each suggestion must be a single, logical sentence or a short, cohesive thought, ready to be dropped directly into the text. Do NOT output full paragraphs or multiple sentences.
4.  **Coherence:** Maintain the established story's Genre, Tone, and the immediate preceding text's flow, pacing, and point-of-view.
5.  **Focus:** Use the "CURRENT CHAPTER CONTEXT" as the primary guide. Use the "GLOBAL STORY CONTEXT" only for world/character consistency.
6.  **DO NOT output any pre-amble, explanation, or text outside of the required JSON object.**
`

// nextLinesUserPrompt: context, continuity section, prefix, suffix, count.
const nextLinesUserPrompt = `### A. GLOBAL STORY CONTEXT
%[1]s%[2]s
### B. CURRENT CHAPTER CONTEXT

The user is currently editing a chapter. The following text excerpt provides the immediate context for where the next line should be inserted.

The [INSERTION_POINT] marks the exact spot where the next line should logically begin.

--- START OF EXCERPT ---
%[3]s
[INSERTION_POINT]
%[4]s
--- END OF EXCERPT ---

### YOUR TASK:
Generate %[5]d unique, short line suggestions that flow naturally from the text preceding the [INSERTION_POINT] and smoothly transition into the text that follows it.

Respond ONLY with the JSON array containing the %[5]d generated lines.
`

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"storyagent/pkg/inference"
	"storyagent/pkg/schema"
	"storyagent/pkg/storycontext"
	"storyagent/pkg/utils"
)

type Action string

const (
	GenerateStory       Action = "generateStory"
	GenerateChapter     Action = "generateChapter"
	BrainstormIdeas     Action = "brainstormIdeas"
	BrainstormCharacter Action = "brainstormCharacter"
	BrainstormPlot      Action = "brainstormPlot"
	GenerateNextLines   Action = "generateNextLines"
)

// UnknownActionError is returned by Execute for an action outside the fixed
// set.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return "Unknown action: " + e.Action
}

// ParameterError reports a request parameter that is missing or out of range.
type ParameterError struct {
	Param string
	Rule  string
}

func (e *ParameterError) Error() string {
	if e.Rule == "required" {
		return "missing required parameter: " + e.Param
	}
	return fmt.Sprintf("invalid parameter %s: failed %s", e.Param, e.Rule)
}

// Agent turns actions into prompts for a single generation backend. The
// backend is fixed at construction and shared by all requests.
type Agent struct {
	builder  *storycontext.Builder
	backend  inference.Inferencer
	validate *validator.Validate
}

func New(builder *storycontext.Builder, backend inference.Inferencer) *Agent {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Agent{builder: builder, backend: backend, validate: v}
}

// Backend reports which generation backend the agent was built with.
func (a *Agent) Backend() inference.Kind {
	return a.backend.Kind()
}

// StoryContext builds the aggregated story without calling the backend.
func (a *Agent) StoryContext(ctx context.Context, storyID string) (*schema.StoryContext, error) {
	return a.builder.Build(ctx, storyID)
}

type handler func(a *Agent, ctx context.Context, params []byte) (any, error)

var handlers = map[Action]handler{
	GenerateStory:       handle((*Agent).GenerateStory),
	GenerateChapter:     handle((*Agent).GenerateChapter),
	BrainstormIdeas:     handle((*Agent).BrainstormIdeas),
	BrainstormCharacter: handle((*Agent).BrainstormCharacter),
	BrainstormPlot:      handle((*Agent).BrainstormPlot),
	GenerateNextLines:   handle((*Agent).GenerateNextLines),
}

func handle[Req, Res any](fn func(*Agent, context.Context, Req) (Res, error)) handler {
	return func(a *Agent, ctx context.Context, params []byte) (any, error) {
		var req Req
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
		return fn(a, ctx, req)
	}
}

// Execute runs one action with its parameter bag and returns the assembler's
// result unchanged. A panic inside the handler is returned as an error.
func (a *Agent) Execute(ctx context.Context, action string, params map[string]any) (result any, err error) {
	h, ok := handlers[Action(action)]
	if !ok {
		return nil, &UnknownActionError{Action: action}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("action panicked", "action", action, "panic", r, "stack", string(debug.Stack()))
			result, err = nil, fmt.Errorf("internal error in %s: %v", action, r)
		}
	}()

	return h(a, ctx, raw)
}

func (a *Agent) check(req any) error {
	err := a.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ParameterError{Param: fieldErrs[0].Field(), Rule: fieldErrs[0].Tag()}
	}
	return err
}

// countTokens is replaced in tests to keep them off the network.
var countTokens = utils.NumTokens

func logPrompt(action Action, storyID, prompt string) {
	if log.GetLevel() > log.DebugLevel {
		return
	}
	chars := utf8.RuneCountInString(prompt)
	tokens, err := countTokens(prompt)
	if err != nil {
		log.Debug("prompt assembled", "action", action, "story", storyID, "chars", chars)
		return
	}
	log.Debug("prompt assembled", "action", action, "story", storyID, "chars", chars, "tokens", tokens)
}

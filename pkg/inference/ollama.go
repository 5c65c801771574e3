package inference

import (
	"cmp"
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

const ollamaBackend = "Ollama"

// OllamaInferencer talks to a local Ollama server through its
// OpenAI-compatible endpoint. Ollama takes no response schema, so structured
// calls carry the schema in the prompt text.
type OllamaInferencer struct {
	client  *openai.Client
	baseURL string
	model   string
	timeout time.Duration
}

func NewOllamaInferencer(baseURL, model string, timeout time.Duration) *OllamaInferencer {
	o := &OllamaInferencer{
		model:   cmp.Or(model, "phi4-mini"),
		timeout: timeout,
	}
	o.ChangeBaseURL(cmp.Or(baseURL, "http://localhost:11434"))
	return o
}

// ChangeBaseURL points the client at another Ollama server root.
func (o *OllamaInferencer) ChangeBaseURL(baseURL string) {
	client := openai.NewClient(
		option.WithBaseURL(baseURL+"/v1"),
		option.WithAPIKey("ollama"),
		option.WithMaxRetries(0),
	)
	o.client = &client
	o.baseURL = baseURL
}

func (o *OllamaInferencer) SetModel(model string) {
	o.model = model
}

func (o *OllamaInferencer) Kind() Kind { return KindLocal }

// Infer sends the prompt as a single user turn.
func (o *OllamaInferencer) Infer(ctx context.Context, prompt string) (string, error) {
	return o.complete(ctx, prompt)
}

// InferStructured folds system prompt, user prompt and the schema into one
// instruction and recovers the array leniently from the reply.
func (o *OllamaInferencer) InferStructured(ctx context.Context, system, user string, schema *jsonschema.Schema) ([]string, error) {
	out, err := o.complete(ctx, schemaInstructions(system, user, schema))
	if err != nil {
		return nil, err
	}
	return parseStructured(ollamaBackend, out, schema)
}

func (o *OllamaInferencer) complete(ctx context.Context, prompt string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Role: "user",
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: param.Opt[string]{Value: prompt},
					},
				},
			},
		},
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &BackendError{Backend: ollamaBackend, StatusCode: apiErr.StatusCode, Body: apiErr.RawJSON()}
		}
		return "", &ConnectionError{Backend: ollamaBackend + " at " + o.baseURL, Err: err}
	}
	log.Debug("ollama completion", "model", o.model, "duration", time.Since(start))
	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Backend: ollamaBackend, Reason: "no choices returned", Reply: resp.RawJSON()}
	}

	return resp.Choices[0].Message.Content, nil
}

package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

const geminiBackend = "Google AI Studio"

// GeminiInferencer uses the Gemini API with an AI Studio key. It is the only
// backend that accepts the response schema natively.
type GeminiInferencer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiInferencer(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiInferencer, error) {
	o := &GeminiInferencer{
		model:   cmp.Or(model, "gemini-2.0-flash-exp"),
		timeout: timeout,
	}
	if err := o.ChangeConfig(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *GeminiInferencer) ChangeConfig(ctx context.Context, config *genai.ClientConfig) error {
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	o.client = client
	return nil
}

func (o *GeminiInferencer) Kind() Kind { return KindHosted }

func (o *GeminiInferencer) Infer(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, prompt, nil)
}

// InferStructured sends the system prompt as a system instruction and the
// schema as the response schema. Gemini sometimes wraps the array in an
// object or code fence anyway, so the reply still goes through the lenient
// parser.
func (o *GeminiInferencer) InferStructured(ctx context.Context, system, user string, schema *jsonschema.Schema) ([]string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    toGenaiSchema(schema),
	}
	out, err := o.generate(ctx, user+"\n\nIMPORTANT: Output ONLY the JSON array.", config)
	if err != nil {
		return nil, err
	}
	return parseStructured(geminiBackend, out, schema)
}

func (o *GeminiInferencer) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := o.client.Models.GenerateContent(ctx, o.model, genai.Text(prompt), config)
	if err != nil {
		return "", classifyGenaiError(err)
	}
	log.Debug("gemini completion", "model", o.model, "duration", time.Since(start))
	if len(result.Candidates) == 0 {
		return "", &MalformedResponseError{Backend: geminiBackend, Reason: "no candidates returned"}
	}

	return result.Text(), nil
}

func classifyGenaiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &BackendError{Backend: geminiBackend, StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &BackendError{Backend: geminiBackend, StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return &ConnectionError{Backend: geminiBackend, Err: err}
}

// toGenaiSchema maps the subset of JSON Schema that the response contracts
// use onto the Gemini schema type.
func toGenaiSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Items:       toGenaiSchema(s.Items),
	}
	switch s.Type {
	case "array":
		out.Type = genai.TypeArray
	case "object":
		out.Type = genai.TypeObject
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if s.MinItems != nil {
		n := int64(*s.MinItems)
		out.MinItems = &n
	}
	if s.MaxItems != nil {
		n := int64(*s.MaxItems)
		out.MaxItems = &n
	}
	return out
}

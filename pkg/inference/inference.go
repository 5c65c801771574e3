package inference

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/invopop/jsonschema"

	"storyagent/pkg/config"
)

// Inferencer is the uniform surface over the text-generation backends.
type Inferencer interface {
	// Infer sends a single free-text prompt and returns the reply verbatim.
	Infer(ctx context.Context, prompt string) (string, error)
	// InferStructured asks for an array of strings shaped by schema and
	// returns the recovered items.
	InferStructured(ctx context.Context, system, user string, schema *jsonschema.Schema) ([]string, error)
	Kind() Kind
}

type Kind string

const (
	KindHosted Kind = "hosted"
	KindLocal  Kind = "local"
	KindMock   Kind = "mock"
)

// Select resolves the backend kind: mock flag, then local flag, then a
// hosted API key, then the local server as fallback.
func Select(cfg config.BackendConfig) Kind {
	switch {
	case cfg.UseMock:
		return KindMock
	case cfg.UseOllama:
		return KindLocal
	case cfg.GoogleAPIKey != "":
		return KindHosted
	default:
		return KindLocal
	}
}

// New builds the Inferencer chosen by Select. The choice is fixed for the
// life of the returned value.
func New(ctx context.Context, cfg config.BackendConfig) (Inferencer, error) {
	switch kind := Select(cfg); kind {
	case KindMock:
		log.Info("using mock generation backend")
		return NewMockInferencer(), nil
	case KindHosted:
		log.Info("using Google AI Studio generation backend", "model", cfg.GoogleModel)
		return NewGeminiInferencer(ctx, cfg.GoogleAPIKey, cfg.GoogleModel, cfg.Timeout)
	case KindLocal:
		log.Info("using Ollama generation backend", "url", cfg.OllamaBaseURL, "model", cfg.OllamaModel)
		return NewOllamaInferencer(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q", kind)
	}
}

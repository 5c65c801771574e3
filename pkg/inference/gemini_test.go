package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"storyagent/pkg/schema"
)

func geminiReply(text string) string {
	b, _ := json.Marshal(text)
	return fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":%s}]},"finishReason":"STOP"}]}`, b)
}

func newGeminiTestInferencer(t *testing.T, status int, body string, captured *map[string]any) *GeminiInferencer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(raw, captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	o := &GeminiInferencer{model: "gemini-test", timeout: time.Minute}
	require.NoError(t, o.ChangeConfig(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	}))
	return o
}

func TestGeminiInfer(t *testing.T) {
	o := newGeminiTestInferencer(t, http.StatusOK, geminiReply("A tale."), nil)

	out, err := o.Infer(context.Background(), "Tell me a tale")
	require.NoError(t, err)
	assert.Equal(t, "A tale.", out)
	assert.Equal(t, KindHosted, o.Kind())
}

func TestGeminiInferStructured(t *testing.T) {
	var body map[string]any
	o := newGeminiTestInferencer(t, http.StatusOK, geminiReply("```json\n{\"suggestions\": [\"a\", \"b\", \"c\"]}\n```"), &body)

	got, err := o.InferStructured(context.Background(), "SYS", "USR", schema.SuggestionsSchema(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	raw, _ := json.Marshal(body)
	assert.Contains(t, string(raw), "responseSchema")
	assert.Contains(t, string(raw), "application/json")
	assert.Contains(t, string(raw), "IMPORTANT: Output ONLY the JSON array.")
	assert.Contains(t, string(raw), "SYS")
}

func TestGeminiBackendError(t *testing.T) {
	o := newGeminiTestInferencer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, nil)

	_, err := o.Infer(context.Background(), "hi")

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusBadRequest, backendErr.StatusCode)
	assert.Contains(t, backendErr.Body, "API key not valid")
}

func TestGeminiConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	o := &GeminiInferencer{model: "gemini-test", timeout: 5 * time.Second}
	require.NoError(t, o.ChangeConfig(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: url},
	}))

	_, err := o.Infer(context.Background(), "hi")

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, geminiBackend, connErr.Backend)
}

func TestGeminiTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	o := &GeminiInferencer{model: "gemini-test", timeout: 50 * time.Millisecond}
	require.NoError(t, o.ChangeConfig(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	}))

	_, err := o.Infer(context.Background(), "hi")

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGeminiNoCandidates(t *testing.T) {
	o := newGeminiTestInferencer(t, http.StatusOK, `{"candidates":[]}`, nil)

	_, err := o.Infer(context.Background(), "hi")
	var malformed *MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestToGenaiSchema(t *testing.T) {
	got := toGenaiSchema(schema.SuggestionsSchema(3))

	require.NotNil(t, got)
	assert.Equal(t, genai.TypeArray, got.Type)
	require.NotNil(t, got.MinItems)
	require.NotNil(t, got.MaxItems)
	assert.Equal(t, int64(3), *got.MinItems)
	assert.Equal(t, int64(3), *got.MaxItems)
	require.NotNil(t, got.Items)
	assert.Equal(t, genai.TypeString, got.Items.Type)
	assert.NotEmpty(t, got.Description)

	assert.Nil(t, toGenaiSchema(nil))
}

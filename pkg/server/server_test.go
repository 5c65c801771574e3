package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyagent/pkg/agent"
	"storyagent/pkg/inference"
	"storyagent/pkg/storycontext"
	"storyagent/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m := store.NewMemory()
	m.PutStory("s1", map[string]any{"title": "Ash and Tide", "genre": "fantasy"})
	a := agent.New(storycontext.NewBuilder(m), inference.NewMockInferencer())
	return NewServer(a, "demo-project")
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestHealth(t *testing.T) {
	rec, out := do(t, newTestServer(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "healthy", "project_id": "demo-project"}, out)
}

func TestRoot(t *testing.T) {
	_, out := do(t, newTestServer(t), http.MethodGet, "/", "")
	assert.Equal(t, "mock", out["backend"])
	assert.Equal(t, "ok", out["status"])
}

func TestExecuteSuccess(t *testing.T) {
	rec, out := do(t, newTestServer(t), http.MethodPost, "/agent/execute",
		`{"action": "brainstormPlot", "parameters": {"storyId": "s1", "plotType": "twist"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	assert.Nil(t, out["error"])
	data, ok := out["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "s1", data["storyId"])
	assert.Equal(t, "twist", data["plotType"])
	assert.NotEmpty(t, data["plot"])

	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 27)
}

func TestExecuteFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
		want string
	}{
		{"unknown action", `{"action": "doSomething", "parameters": {}}`, http.StatusOK, "Unknown action: doSomething"},
		{"missing story", `{"action": "generateStory", "parameters": {"storyId": "ghost"}}`, http.StatusOK, "Story ghost not found"},
		{"missing parameter", `{"action": "generateChapter", "parameters": {"storyId": "s1"}}`, http.StatusOK, "missing required parameter: chapterNumber"},
		{"malformed body", `{"action": `, http.StatusBadRequest, "invalid json"},
		{"missing action", `{"parameters": {}}`, http.StatusBadRequest, "missing action"},
	}
	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := do(t, s, http.MethodPost, "/agent/execute", tt.body)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, false, out["success"])
			assert.Nil(t, out["data"])
			assert.Equal(t, tt.want, out["error"])
		})
	}
}

func TestGetStoryContext(t *testing.T) {
	m := store.NewMemory()
	m.PutStory("s1", map[string]any{"title": "Ash and Tide", "genre": "fantasy"})
	m.Put("s1", store.Chapters, "c3", map[string]any{"chapterNumber": 3, "title": "Ebb"})
	m.Put("s1", store.Chapters, "c1", map[string]any{"chapterNumber": 1, "title": "Ash"})
	m.Put("s1", store.Chapters, "c2", map[string]any{"order": 2, "title": "Flood"})
	m.Put("s1", store.Characters, "mara", map[string]any{"name": "Mara", "role": "protagonist"})
	s := NewServer(agent.New(storycontext.NewBuilder(m), inference.NewMockInferencer()), "demo-project")

	rec, out := do(t, s, http.MethodGet, "/stories/s1/context", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])
	assert.Nil(t, out["error"])
	data, ok := out["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"id": "s1", "title": "Ash and Tide", "genre": "fantasy"}, data["story"])

	chapters, ok := data["chapters"].([]any)
	require.True(t, ok)
	var titles []string
	for _, ch := range chapters {
		titles = append(titles, ch.(map[string]any)["title"].(string))
	}
	assert.Equal(t, []string{"Ash", "Flood", "Ebb"}, titles)

	characters, ok := data["characters"].([]any)
	require.True(t, ok)
	require.Len(t, characters, 1)
	assert.Equal(t, "Mara", characters[0].(map[string]any)["name"])
}

func TestGetStoryContextMissingStory(t *testing.T) {
	rec, out := do(t, newTestServer(t), http.MethodGet, "/stories/ghost/context", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Nil(t, out["data"])
	assert.Equal(t, "Story ghost not found", out["error"])
}

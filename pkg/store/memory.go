package store

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"storyagent/pkg/utils"
)

// Fixture is the on-disk shape of a memory store: story id to story.
type Fixture map[string]StoryFixture

type StoryFixture struct {
	Story      map[string]any   `json:"story"`
	Characters []map[string]any `json:"characters,omitempty"`
	Places     []map[string]any `json:"places,omitempty"`
	Plots      []map[string]any `json:"plots,omitempty"`
	Chapters   []map[string]any `json:"chapters,omitempty"`
}

type memoryStory struct {
	data        map[string]any
	collections map[Collection][]Document
}

// Memory is an in-process Store for local development and tests. List keeps
// insertion order.
type Memory struct {
	mu      sync.RWMutex
	stories map[string]*memoryStory
}

func NewMemory() *Memory {
	return &Memory{stories: make(map[string]*memoryStory)}
}

// LoadMemory seeds a Memory store from a JSON fixture. Entity documents carry
// their id in an "id" field.
func LoadMemory(path string) (*Memory, error) {
	fixture, err := utils.Load[Fixture](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load store fixture %s: %w", path, err)
	}
	m := NewMemory()
	for storyID, sf := range fixture {
		m.PutStory(storyID, sf.Story)
		for coll, docs := range map[Collection][]map[string]any{
			Characters: sf.Characters,
			Places:     sf.Places,
			Plots:      sf.Plots,
			Chapters:   sf.Chapters,
		} {
			for i, data := range docs {
				id, _ := data["id"].(string)
				if id == "" {
					id = fmt.Sprintf("%s-%d", coll, i+1)
				}
				m.Put(storyID, coll, id, data)
			}
		}
	}
	return m, nil
}

func (m *Memory) PutStory(storyID string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stories[storyID]; ok {
		s.data = maps.Clone(data)
		return
	}
	m.stories[storyID] = &memoryStory{
		data:        maps.Clone(data),
		collections: make(map[Collection][]Document),
	}
}

// Put inserts or replaces a document. The story must exist.
func (m *Memory) Put(storyID string, collection Collection, docID string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stories[storyID]
	if !ok {
		return
	}
	doc := Document{ID: docID, Data: maps.Clone(data)}
	docs := s.collections[collection]
	for i := range docs {
		if docs[i].ID == docID {
			docs[i] = doc
			return
		}
	}
	s.collections[collection] = append(docs, doc)
}

func (m *Memory) Story(_ context.Context, storyID string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stories[storyID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: storyID, Data: maps.Clone(s.data)}, nil
}

func (m *Memory) Get(_ context.Context, storyID string, collection Collection, docID string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stories[storyID]
	if !ok {
		return Document{}, ErrNotFound
	}
	for _, doc := range s.collections[collection] {
		if doc.ID == docID {
			return Document{ID: doc.ID, Data: maps.Clone(doc.Data)}, nil
		}
	}
	return Document{}, ErrNotFound
}

func (m *Memory) List(_ context.Context, storyID string, collection Collection) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stories[storyID]
	if !ok {
		return nil, ErrNotFound
	}
	docs := make([]Document, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		docs = append(docs, Document{ID: doc.ID, Data: maps.Clone(doc.Data)})
	}
	return docs, nil
}

func (m *Memory) Close() error { return nil }

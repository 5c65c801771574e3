package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a story or document does not exist.
var ErrNotFound = errors.New("not found")

type Collection string

const (
	Characters Collection = "characters"
	Places     Collection = "places"
	Plots      Collection = "plots"
	Chapters   Collection = "chapters"
)

// Document is one schemaless record read from the store.
type Document struct {
	ID   string
	Data map[string]any
}

// Store is the read-only view of the document database. Stories live at
// <root>/{storyID} and their entities at <root>/{storyID}/{collection}/{docID}.
type Store interface {
	Story(ctx context.Context, storyID string) (Document, error)
	Get(ctx context.Context, storyID string, collection Collection, docID string) (Document, error)
	List(ctx context.Context, storyID string, collection Collection) ([]Document, error)
	Close() error
}

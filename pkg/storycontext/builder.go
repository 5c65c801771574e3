package storycontext

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"storyagent/pkg/schema"
	"storyagent/pkg/store"
)

// NotFoundError reports a story or chapter that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return store.ErrNotFound }

// Builder reads a story and its entities from the store. It keeps no state
// between calls.
type Builder struct {
	store store.Store
}

func NewBuilder(s store.Store) *Builder {
	return &Builder{store: s}
}

// Build fetches the story and its four collections. The collection reads run
// concurrently and Build returns only once all of them have finished.
func (b *Builder) Build(ctx context.Context, storyID string) (*schema.StoryContext, error) {
	doc, err := b.store.Story(ctx, storyID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Kind: "Story", ID: storyID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read story %s: %w", storyID, err)
	}

	sc := &schema.StoryContext{Story: schema.NewStory(doc.ID, doc.Data)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := b.store.List(gctx, storyID, store.Characters)
		sc.Characters = project(docs, schema.NewCharacter)
		return err
	})
	g.Go(func() error {
		docs, err := b.store.List(gctx, storyID, store.Places)
		sc.Places = project(docs, schema.NewPlace)
		return err
	})
	g.Go(func() error {
		docs, err := b.store.List(gctx, storyID, store.Plots)
		sc.Plots = project(docs, schema.NewPlot)
		return err
	})
	g.Go(func() error {
		docs, err := b.store.List(gctx, storyID, store.Chapters)
		sc.Chapters = project(docs, schema.NewChapter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build context for story %s: %w", storyID, err)
	}

	schema.SortChapters(sc.Chapters)
	log.Debug("story context built",
		"story", storyID,
		"characters", len(sc.Characters),
		"places", len(sc.Places),
		"plots", len(sc.Plots),
		"chapters", len(sc.Chapters),
	)
	return sc, nil
}

// Chapter reads a single chapter document.
func (b *Builder) Chapter(ctx context.Context, storyID, chapterID string) (*schema.Chapter, error) {
	doc, err := b.store.Get(ctx, storyID, store.Chapters, chapterID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Kind: "Chapter", ID: chapterID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chapter %s: %w", chapterID, err)
	}
	ch := schema.NewChapter(doc.ID, doc.Data)
	return &ch, nil
}

func project[T any](docs []store.Document, fn func(string, map[string]any) T) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fn(doc.ID, doc.Data))
	}
	return out
}

package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/charmbracelet/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore reads stories from Cloud Firestore. The client honours
// FIRESTORE_EMULATOR_HOST on its own, so pointing at the emulator only
// needs the variable to be present in the environment.
type Firestore struct {
	client *firestore.Client
	root   string
}

func NewFirestore(ctx context.Context, projectID, root string) (*Firestore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	log.Info("firestore store ready", "project", projectID, "collection", root)
	return &Firestore{client: client, root: root}, nil
}

func (f *Firestore) story(storyID string) *firestore.DocumentRef {
	return f.client.Collection(f.root).Doc(storyID)
}

func (f *Firestore) Story(ctx context.Context, storyID string) (Document, error) {
	if storyID == "" {
		return Document{}, ErrNotFound
	}
	return getDocument(ctx, f.story(storyID))
}

func (f *Firestore) Get(ctx context.Context, storyID string, collection Collection, docID string) (Document, error) {
	if storyID == "" || docID == "" {
		return Document{}, ErrNotFound
	}
	return getDocument(ctx, f.story(storyID).Collection(string(collection)).Doc(docID))
}

func (f *Firestore) List(ctx context.Context, storyID string, collection Collection) ([]Document, error) {
	if storyID == "" {
		return nil, ErrNotFound
	}
	snaps, err := f.story(storyID).Collection(string(collection)).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func getDocument(ctx context.Context, ref *firestore.DocumentRef) (Document, error) {
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", ref.Path, err)
	}
	if !snap.Exists() {
		return Document{}, ErrNotFound
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

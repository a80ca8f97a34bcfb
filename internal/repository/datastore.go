package repository

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/datastore"
	"github.com/locvowork/xlsexport/internal/domain"
	"github.com/locvowork/xlsexport/internal/logger"
)

const (
	KindPost = "Post"
	KindUser = "User"
)

// DatastoreClient wraps the Google Cloud Datastore client.
type DatastoreClient struct {
	ds *datastore.Client
}

// NewDatastoreClient creates a client for projectID. The official client
// honours DATASTORE_EMULATOR_HOST on its own.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	if emulatorHost := os.Getenv("DATASTORE_EMULATOR_HOST"); emulatorHost != "" {
		logger.InfoLog(ctx, "Initializing Datastore client against emulator at %s", emulatorHost)
	}

	ds, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{ds: ds}, nil
}

func (c *DatastoreClient) Close() error {
	return c.ds.Close()
}

type datastorePostRepository struct {
	client *DatastoreClient
}

func NewDatastorePostRepository(client *DatastoreClient) domain.PostRepository {
	return &datastorePostRepository{client: client}
}

// List loads every Post entity ordered by key, then fetches the referenced
// users in one batch.
func (r *datastorePostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	query := datastore.NewQuery(KindPost).Order("__key__")

	var posts []*domain.Post
	keys, err := r.client.ds.GetAll(ctx, query, &posts)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	for i, key := range keys {
		posts[i].ID = key.ID
	}

	authors, err := r.authors(ctx, posts)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.Author = authors[p.AuthorID]
	}
	return posts, nil
}

func (r *datastorePostRepository) authors(ctx context.Context, posts []*domain.Post) (map[int64]*domain.User, error) {
	var keys []*datastore.Key
	seen := make(map[int64]bool)
	for _, p := range posts {
		if p.AuthorID == 0 || seen[p.AuthorID] {
			continue
		}
		seen[p.AuthorID] = true
		keys = append(keys, datastore.IDKey(KindUser, p.AuthorID, nil))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	users := make([]*domain.User, len(keys))
	for i := range users {
		users[i] = &domain.User{}
	}
	err := r.client.ds.GetMulti(ctx, keys, users)

	out := make(map[int64]*domain.User, len(keys))
	var multi datastore.MultiError
	if err != nil {
		var ok bool
		if multi, ok = err.(datastore.MultiError); !ok {
			return nil, fmt.Errorf("get authors: %w", err)
		}
	}
	for i, key := range keys {
		if multi != nil && multi[i] != nil {
			if multi[i] == datastore.ErrNoSuchEntity {
				continue
			}
			return nil, fmt.Errorf("get author %d: %w", key.ID, multi[i])
		}
		users[i].ID = key.ID
		out[key.ID] = users[i]
	}
	return out, nil
}

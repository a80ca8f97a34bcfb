package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/locvowork/xlsexport/internal/domain"
)

// MemoryPostRepository keeps posts in process. It backs the default
// DATA_BACKEND and the handler tests.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[int64]*domain.Post
}

func NewMemoryPostRepository(posts ...*domain.Post) *MemoryPostRepository {
	r := &MemoryPostRepository{posts: make(map[int64]*domain.Post, len(posts))}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

// Save inserts or replaces a post by ID.
func (r *MemoryPostRepository) Save(p *domain.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = p
}

// List returns copies of the stored posts ordered by ID.
func (r *MemoryPostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		cp := *p
		if p.Author != nil {
			author := *p.Author
			cp.Author = &author
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SeedPosts returns a small fixed data set for local runs.
func SeedPosts() []*domain.Post {
	bob := &domain.User{ID: 1, FirstName: "Bob", LastName: "Nancy"}
	ann := &domain.User{ID: 2, FirstName: "Ann", LastName: "Lee"}
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	return []*domain.Post{
		{ID: 1, Title: "Hot Dawg", Body: "Sausages in buns.", PublishedOn: day, AuthorID: bob.ID, Author: bob},
		{ID: 2, Title: "Cold Brew", Body: "Coffee, slowly.", PublishedOn: day.AddDate(0, 0, 1), AuthorID: ann.ID, Author: ann},
		{ID: 3, Title: "Warm Bread", Body: "Out of the oven.", PublishedOn: day.AddDate(0, 0, 2), AuthorID: bob.ID, Author: bob},
	}
}

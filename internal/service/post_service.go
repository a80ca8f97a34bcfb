package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/locvowork/xlsexport/internal/domain"
)

var ErrPostNotFound = errors.New("post not found")

type PostService interface {
	List(ctx context.Context) ([]*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
}

type postService struct {
	repo domain.PostRepository
}

func NewPostService(repo domain.PostRepository) PostService {
	return &postService{repo: repo}
}

func (s *postService) List(ctx context.Context) ([]*domain.Post, error) {
	return s.repo.List(ctx)
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrPostNotFound, id)
}

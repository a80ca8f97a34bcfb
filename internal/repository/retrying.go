package repository

import (
	"context"
	"errors"

	"github.com/locvowork/xlsexport/internal/domain"
	"github.com/locvowork/xlsexport/pkg/retry"
)

type retryingPostRepository struct {
	next domain.PostRepository
	opts []retry.Option
}

// WithRetry retries failed List calls of next. Context errors are not
// retried.
func WithRetry(next domain.PostRepository, opts ...retry.Option) domain.PostRepository {
	opts = append([]retry.Option{retry.WithRetryable(func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	})}, opts...)
	return &retryingPostRepository{next: next, opts: opts}
}

func (r *retryingPostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := retry.Do(ctx, func(ctx context.Context) error {
		var err error
		posts, err = r.next.List(ctx)
		return err
	}, r.opts...)
	return posts, err
}

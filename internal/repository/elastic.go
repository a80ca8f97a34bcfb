package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/locvowork/xlsexport/internal/domain"
	"github.com/locvowork/xlsexport/internal/logger"
	"github.com/olivere/elastic/v7"
)

// elasticPageSize is the number of hits fetched per scroll request.
const elasticPageSize = 1000

type elasticPostRepository struct {
	client   *elastic.Client
	index    string
	pageSize int
}

// NewElasticPostRepository reads posts from index. Documents carry the
// author as a nested object.
func NewElasticPostRepository(client *elastic.Client, index string) domain.PostRepository {
	return &elasticPostRepository{client: client, index: index, pageSize: elasticPageSize}
}

// NewElasticClient connects without sniffing, which suits single-node and
// dockerised clusters.
func NewElasticClient(url string) (*elastic.Client, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("create elastic client: %w", err)
	}
	return client, nil
}

// List scrolls through the whole index, page by page, in id order.
func (r *elasticPostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	scroll := r.client.Scroll(r.index).
		Query(elastic.NewMatchAllQuery()).
		Sort("id", true).
		Size(r.pageSize)
	defer func() {
		if err := scroll.Clear(context.Background()); err != nil {
			logger.WarnLog(ctx, "clear elastic scroll on %s: %v", r.index, err)
		}
	}()

	var posts []*domain.Post
	for {
		res, err := scroll.Do(ctx)
		if err == io.EOF {
			return posts, nil
		}
		if err != nil {
			return nil, fmt.Errorf("scroll %s: %w", r.index, err)
		}
		if res.Hits == nil {
			return posts, nil
		}
		for _, hit := range res.Hits.Hits {
			var p domain.Post
			if err := json.Unmarshal(hit.Source, &p); err != nil {
				return nil, fmt.Errorf("decode hit %s: %w", hit.Id, err)
			}
			if p.Author != nil && p.AuthorID == 0 {
				p.AuthorID = p.Author.ID
			}
			posts = append(posts, &p)
		}
	}
}

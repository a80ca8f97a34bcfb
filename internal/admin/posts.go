package admin

import (
	"context"

	"github.com/locvowork/xlsexport/internal/domain"
	"github.com/locvowork/xlsexport/pkg/xlsexport"
)

// PostsResource is the route name of the posts export.
const PostsResource = "posts"

// RegisterPosts exposes repo as the posts resource. The export lists the
// post fields, the author's full name and a link back to the post.
func RegisterPosts(ns *Namespace, repo domain.PostRepository) (*Resource, error) {
	r, err := ns.Register(PostsResource, xlsexport.SchemaOf(domain.Post{}), func(ctx context.Context) (interface{}, error) {
		return repo.List(ctx)
	})
	if err != nil {
		return nil, err
	}

	r.XLS(map[string]interface{}{
		"header_format": map[string]interface{}{"weight": "bold"},
	}, func(b *xlsexport.Builder) {
		b.Column("author_name", nil)
		b.LabelColumn("link", postLink)
	})
	return r, nil
}

func postLink(record interface{}, view xlsexport.ViewContext) (interface{}, error) {
	p, ok := record.(*domain.Post)
	if !ok || view == nil {
		return nil, nil
	}
	return view.URL("post", p.ID), nil
}

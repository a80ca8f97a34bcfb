package domain

import (
	"context"
	"time"
)

type User struct {
	ID        int64  `json:"id" datastore:"-"`
	FirstName string `json:"first_name" datastore:"first_name"`
	LastName  string `json:"last_name" datastore:"last_name"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Post struct {
	ID          int64     `json:"id" datastore:"-"`
	Title       string    `json:"title" datastore:"title"`
	Body        string    `json:"body" datastore:"body,noindex"`
	PublishedOn time.Time `json:"published_on" datastore:"published_on"`
	AuthorID    int64     `json:"author_id" datastore:"author_id"`
	Author      *User     `json:"author,omitempty" datastore:"-"`
}

// AuthorName is exported as a computed attribute of the post.
func (p *Post) AuthorName() string {
	if p.Author == nil {
		return ""
	}
	return p.Author.FullName()
}

type PostRepository interface {
	List(ctx context.Context) ([]*Post, error)
}

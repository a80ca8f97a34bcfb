package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locvowork/xlsexport/internal/domain"
)

const listPostsQuery = `
SELECT p.id, p.title, p.body, p.published_on, p.author_id,
       u.id, u.first_name, u.last_name
FROM posts p
LEFT JOIN users u ON u.id = p.author_id
ORDER BY p.id`

type postgresPostRepository struct {
	db *sql.DB
}

func NewPostgresPostRepository(db *sql.DB) domain.PostRepository {
	return &postgresPostRepository{db: db}
}

func (r *postgresPostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, listPostsQuery)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		var (
			p         domain.Post
			body      sql.NullString
			published sql.NullTime
			authorID  sql.NullInt64
			userID    sql.NullInt64
			first     sql.NullString
			last      sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Title, &body, &published, &authorID, &userID, &first, &last); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Body = body.String
		p.PublishedOn = published.Time
		p.AuthorID = authorID.Int64
		if userID.Valid {
			p.Author = &domain.User{ID: userID.Int64, FirstName: first.String, LastName: last.String}
		}
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/miniblog/internal/apperror"
	"github.com/sakif/miniblog/internal/model"
	"github.com/sakif/miniblog/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors immediately instead of at
// the first call site that passes *DB where a PostRepository is expected.
var _ repository.PostRepository = (*DB)(nil)

// Create inserts a new post.
//
// The repository assigns the ID and creation timestamp; the service layer
// has already validated the title and resolved the author. xid strings are
// creation-time sortable, which gives ListWithAuthors a stable tie-break
// when two posts share a created_at value.
//
// POINTER RECEIVER (*model.Post): we take a pointer so the caller's struct
// carries the generated ID and timestamp after Create returns.
func (db *DB) Create(ctx context.Context, post *model.Post) error {
	q, err := db.querier(ctx)
	if err != nil {
		return err
	}

	post.ID = xid.New().String()
	post.CreatedAt = time.Now()

	// Parameterized queries only — the ? placeholders are escaped by the
	// driver, never build SQL with string concatenation.
	_, err = q.ExecContext(ctx,
		`INSERT INTO posts (id, title, body, created_at, author_id)
		 VALUES (?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Body,
		post.CreatedAt,
		post.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetByID retrieves a single post by its ID.
// Returns apperror.ErrNotFound if the post doesn't exist.
//
// sql.ErrNoRows is not really an error — it just means "no matching row".
// We translate it to the domain's NotFound here, at the data-access
// boundary, so upper layers never see driver-level sentinels.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Post, error) {
	q, err := db.querier(ctx)
	if err != nil {
		return nil, err
	}

	var post model.Post
	err = q.QueryRowContext(ctx,
		`SELECT id, title, body, created_at, author_id
		 FROM posts
		 WHERE id = ?`,
		id,
	).Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.CreatedAt,
		&post.AuthorID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return &post, nil
}

// ListWithAuthors returns every post joined with its author's username,
// newest first. Ties on created_at fall back to id DESC — xid strings sort
// by creation time, so this is insertion order, newest first, and the
// overall sequence is strictly non-increasing in created_at.
//
// defer rows.Close() is not optional: sql.Rows holds a connection, and a
// leaked Rows means a leaked connection.
func (db *DB) ListWithAuthors(ctx context.Context) ([]model.PostWithAuthor, error) {
	q, err := db.querier(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT p.id, p.title, p.body, p.created_at, p.author_id, u.username
		 FROM posts p JOIN users u ON p.author_id = u.id
		 ORDER BY p.created_at DESC, p.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.PostWithAuthor{}
	for rows.Next() {
		var p model.PostWithAuthor
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Body, &p.CreatedAt, &p.AuthorID,
			&p.AuthorUsername,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}

	// rows.Err() catches failures that happened during iteration, e.g. the
	// connection dropping mid-scan.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Update replaces a post's title and body. author_id and created_at are
// immutable and never touched. RowsAffected detects "not found" without a
// separate SELECT.
func (db *DB) Update(ctx context.Context, post *model.Post) error {
	q, err := db.querier(ctx)
	if err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, body = ?
		 WHERE id = ?`,
		post.Title,
		post.Body,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// Delete removes a post by its ID. Deleting a row that doesn't exist is not
// an error here — the service has already confirmed existence and ownership
// before this runs, so a zero rows-affected result only means the post
// vanished between the check and the delete, which ends in the same state.
func (db *DB) Delete(ctx context.Context, id string) error {
	q, err := db.querier(ctx)
	if err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ?`,
		id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	return nil
}

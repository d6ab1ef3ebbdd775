package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/miniblog/internal/apperror"
	"github.com/sakif/miniblog/internal/model"
	"github.com/sakif/miniblog/internal/repository"
)

// MaxTitleLength bounds post titles; bodies are free text and unbounded.
const MaxTitleLength = 200

// PostService handles post CRUD and enforces the single-owner-write rule.
//
// OWNERSHIP GATE:
// Every mutating operation (and the owner-only read used by the edit view)
// takes the calling user's ID explicitly and runs authorize() first: load
// the post — NotFound if absent — then compare author_id to the caller by
// plain id equality. Forbidden on mismatch. No roles, no admin override.
// Only after the gate passes does a store mutation run, which pins the
// spec'd per-request ordering: session resolution (middleware) →
// authorization (here) → store write.
type PostService struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a PostService. The repository is an interface —
// sqlite in production, an in-memory fake in tests.
func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		logger: logger,
	}
}

// List returns all posts with their authors' usernames, newest first.
// Public — no authentication involved.
func (s *PostService) List(ctx context.Context) ([]model.PostWithAuthor, error) {
	posts, err := s.posts.ListWithAuthors(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Create validates and saves a new post for userID. The repository assigns
// ID and creation timestamp; the author is always the current user — there
// is no way to create a post on someone else's behalf.
func (s *PostService) Create(ctx context.Context, title, body, userID string) (*model.Post, error) {
	title = strings.TrimSpace(title)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "Title is required.")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}

	post := &model.Post{
		Title:    title,
		Body:     body,
		AuthorID: userID,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("authorID", userID),
	)

	return post, nil
}

// GetForAuthor returns a post only to its author. The public listing is the
// read path for everyone else; this one backs the edit view, so a non-owner
// gets Forbidden rather than a copy of somebody else's draft state.
func (s *PostService) GetForAuthor(ctx context.Context, id, userID string) (*model.Post, error) {
	return s.authorize(ctx, id, userID)
}

// Update overwrites a post's title and body. Last writer wins — there is no
// conflict detection for concurrent edits. author_id and created_at are
// never touched.
//
// The ownership gate runs before input validation: a non-owner learns they
// are Forbidden (or that the post is gone), never whether their input would
// have been acceptable.
func (s *PostService) Update(ctx context.Context, id, title, body, userID string) (*model.Post, error) {
	post, err := s.authorize(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "Title is required.")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}

	post.Title = title
	post.Body = body

	if err := s.posts.Update(ctx, post); err != nil {
		s.logger.Error("failed to update post",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating post: %w", err)
	}

	s.logger.Info("post updated", slog.String("id", id))

	return post, nil
}

// Delete removes a post after the ownership gate passes.
func (s *PostService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.authorize(ctx, id, userID); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete post",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting post: %w", err)
	}

	s.logger.Info("post deleted", slog.String("id", id))
	return nil
}

// authorize loads the post and checks the caller owns it. Order matters:
// a missing post is NotFound regardless of who asks; an existing post owned
// by someone else is Forbidden.
func (s *PostService) authorize(ctx context.Context, id, userID string) (*model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "post ID is required")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != userID {
		return nil, apperror.Forbidden("you are not the author of this post")
	}

	return post, nil
}

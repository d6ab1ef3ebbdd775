// Package repository declares the storage interfaces the service layer
// depends on. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/miniblog/internal/model"
)

// UserRepository persists user accounts.
//
// GetByUsername returns apperror.ErrNotFound when no such user exists —
// callers distinguish "unknown username" from real database failures with
// errors.Is. Create returns apperror.ErrConflict when the username is
// already taken (the UNIQUE constraint is the authoritative guard, even if
// a pre-check passed moments earlier).
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// PostRepository persists posts.
//
// ListWithAuthors returns every post joined with its author's username,
// newest first. Update replaces title/body only; Delete of a missing row is
// not an error at this layer — the service confirms existence and ownership
// before calling it.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListWithAuthors(ctx context.Context) ([]model.PostWithAuthor, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}

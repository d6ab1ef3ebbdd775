package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/miniblog/internal/apperror"
	"github.com/sakif/miniblog/internal/model"
)

// =========================================================================
// FAKE REPOSITORY
// =========================================================================

// fakePostRepo is an in-memory repository.PostRepository. usernames maps
// author IDs to usernames for the ListWithAuthors join.
type fakePostRepo struct {
	posts     map[string]*model.Post
	usernames map[string]string
	nextID    int
	// set to simulate a store failure
	failWith error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:     make(map[string]*model.Post),
		usernames: make(map[string]string),
	}
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.nextID++
	post.ID = fmt.Sprintf("post-%d", f.nextID)
	stored := *post
	f.posts[post.ID] = &stored
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	copied := *p
	return &copied, nil
}

func (f *fakePostRepo) ListWithAuthors(_ context.Context) ([]model.PostWithAuthor, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	result := make([]model.PostWithAuthor, 0, len(f.posts))
	for _, p := range f.posts {
		result = append(result, model.PostWithAuthor{
			Post:           *p,
			AuthorUsername: f.usernames[p.AuthorID],
		})
	}
	// Newest first, id as the tie-break — same contract as the real store.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (f *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	if f.failWith != nil {
		return f.failWith
	}
	existing, ok := f.posts[post.ID]
	if !ok {
		return apperror.NotFound("post", post.ID)
	}
	existing.Title = post.Title
	existing.Body = post.Body
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.posts, id)
	return nil
}

func newTestPostService(repo *fakePostRepo) *PostService {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewPostService(repo, logger)
}

// =========================================================================
// Create TESTS
// =========================================================================

func TestPostCreate_Success(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)

	post, err := svc.Create(context.Background(), "Hi", "body text", "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "Hi", post.Title)
	assert.Equal(t, "user-1", post.AuthorID)
}

func TestPostCreate_EmptyBodyAllowed(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	post, err := svc.Create(context.Background(), "Hi", "", "user-1")
	require.NoError(t, err)
	assert.Empty(t, post.Body)
}

func TestPostCreate_EmptyTitle(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	_, err := svc.Create(context.Background(), "", "body", "user-1")
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestPostCreate_WhitespaceTitle(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	_, err := svc.Create(context.Background(), "   ", "body", "user-1")
	require.ErrorIs(t, err, apperror.ErrValidation)
}

// =========================================================================
// OWNERSHIP TESTS
// =========================================================================

func TestUpdate_ByAuthorSucceeds(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)

	created, err := svc.Create(context.Background(), "original", "old", "alice-id")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, "edited", "new", "alice-id")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Title)
	assert.Equal(t, "new", updated.Body)
	assert.Equal(t, "alice-id", updated.AuthorID, "update must not change the author")
}

func TestUpdate_ByNonAuthorForbidden(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)

	created, err := svc.Create(context.Background(), "alice's post", "", "alice-id")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, "hijacked", "", "bob-id")
	require.ErrorIs(t, err, apperror.ErrForbidden)

	// The post must be untouched after the rejected update.
	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice's post", stored.Title)
}

func TestDelete_ByAuthorSucceeds(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)

	created, err := svc.Create(context.Background(), "doomed", "", "alice-id")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID, "alice-id"))

	_, err = repo.GetByID(context.Background(), created.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDelete_ByNonAuthorForbidden(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)

	created, err := svc.Create(context.Background(), "alice's post", "", "alice-id")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), created.ID, "bob-id")
	require.ErrorIs(t, err, apperror.ErrForbidden)

	// Still there.
	_, err = repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
}

func TestUpdate_OwnershipCheckedBeforeValidation(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)

	created, err := svc.Create(context.Background(), "alice's post", "", "alice-id")
	require.NoError(t, err)

	// A non-owner submitting a bad title is told Forbidden, not that the
	// title is invalid — the gate runs first.
	_, err = svc.Update(context.Background(), created.ID, "", "", "bob-id")
	require.ErrorIs(t, err, apperror.ErrForbidden)

	// A missing post with a bad title is NotFound for the same reason.
	_, err = svc.Update(context.Background(), "no-such-post", "", "", "bob-id")
	require.ErrorIs(t, err, apperror.ErrNotFound)

	// The owner still can't save an empty title.
	_, err = svc.Update(context.Background(), created.ID, "", "", "alice-id")
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestGetForAuthor_OwnerOnly(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)

	created, err := svc.Create(context.Background(), "draft", "", "alice-id")
	require.NoError(t, err)

	post, err := svc.GetForAuthor(context.Background(), created.ID, "alice-id")
	require.NoError(t, err)
	assert.Equal(t, created.ID, post.ID)

	_, err = svc.GetForAuthor(context.Background(), created.ID, "bob-id")
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

// =========================================================================
// NOT FOUND TESTS
// =========================================================================

func TestMutations_UnknownPostNotFound(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())
	ctx := context.Background()

	// NotFound wins over Forbidden: a missing post is 404 no matter who asks.
	_, err := svc.GetForAuthor(ctx, "no-such-post", "anyone")
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Update(ctx, "no-such-post", "title", "", "anyone")
	require.ErrorIs(t, err, apperror.ErrNotFound)

	err = svc.Delete(ctx, "no-such-post", "anyone")
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

// =========================================================================
// List TESTS
// =========================================================================

func TestList_ReturnsAuthorUsernames(t *testing.T) {
	repo := newFakePostRepo()
	repo.usernames["alice-id"] = "alice"
	svc := newTestPostService(repo)

	_, err := svc.Create(context.Background(), "Hi", "", "alice-id")
	require.NoError(t, err)

	posts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "alice", posts[0].AuthorUsername)
}

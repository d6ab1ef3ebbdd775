package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/miniblog/internal/auth"
	"github.com/sakif/miniblog/internal/service"
)

// PostHandler owns the post CRUD endpoints.
//
//	GET    /api/posts       public listing with author usernames
//	POST   /api/posts       create (authenticated)
//	GET    /api/posts/{id}  owner-only read, backs the edit view
//	PUT    /api/posts/{id}  update title/body (owner only)
//	DELETE /api/posts/{id}  delete (owner only)
//
// The mutating routes sit behind auth.RequireAuth, so UserFromContext is
// guaranteed to succeed there; ownership itself is the service's call.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// postRequest is the body for create and update.
type postRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// HandleList returns all posts, newest first, each with its author's
// username. Anonymous visitors see exactly what logged-in users see.
//
// HTTP: GET /api/posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// HandleGet returns a single post to its author.
//
// HTTP: GET /api/posts/{id} (behind RequireAuth; ownership checked below)
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	post, err := h.posts.GetForAuthor(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleCreate saves a new post authored by the current user.
//
// HTTP: POST /api/posts
// BODY: {"title": "Hi", "body": "..."}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	post, err := h.posts.Create(r.Context(), req.Title, req.Body, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// HandleUpdate overwrites a post's title and body.
//
// HTTP: PUT /api/posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	post, err := h.posts.Update(r.Context(), r.PathValue("id"), req.Title, req.Body, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes a post.
//
// HTTP: DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if err := h.posts.Delete(r.Context(), r.PathValue("id"), user.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

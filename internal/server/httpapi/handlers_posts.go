package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/secblog/internal/common"
	"github.com/dmitrijs2005/secblog/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type postRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type postResponse struct {
	ID        int64     `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Own       bool      `json:"own"`
	CreatedAt time.Time `json:"created_at"`
}

func toPostResponse(v services.PostView) postResponse {
	return postResponse{
		ID:        v.ID,
		AuthorID:  v.AuthorID,
		Title:     v.Title,
		Body:      v.Body,
		Own:       v.Own,
		CreatedAt: v.CreatedAt,
	}
}

func postID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errBadRequest
	}
	return id, nil
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	principal := principalFrom(r)
	key, err := s.accounts.ContentKey(principal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer common.WipeByteArray(key)

	post, err := s.posts.Create(r.Context(), principal, key, req.Title, req.Body, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, map[string]any{"id": post.ID})
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r)
	key, err := s.accounts.ContentKey(principal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer common.WipeByteArray(key)

	views, err := s.posts.List(r.Context(), principal, key, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]postResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toPostResponse(v))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	principal := principalFrom(r)
	key, err := s.accounts.ContentKey(principal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer common.WipeByteArray(key)

	view, err := s.posts.Get(r.Context(), principal, key, id, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, toPostResponse(*view))
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	principal := principalFrom(r)
	key, err := s.accounts.ContentKey(principal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer common.WipeByteArray(key)

	if err := s.posts.Update(r.Context(), principal, key, id, req.Title, req.Body, clientIP(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{"status": "updated"})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.posts.Delete(r.Context(), principalFrom(r), id, clientIP(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{"status": "deleted"})
}

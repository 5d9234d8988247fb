package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/secblog/internal/common"
	"github.com/dmitrijs2005/secblog/internal/cryptox"
	"github.com/dmitrijs2005/secblog/internal/logging"
	"github.com/dmitrijs2005/secblog/internal/server/audit"
	"github.com/dmitrijs2005/secblog/internal/server/models"
	"github.com/dmitrijs2005/secblog/internal/server/repositories/repomanager"
)

// PostService owns the content lifecycle: every write encrypts title and
// body under the author's derived key, every read decrypts only what the
// requesting principal owns. Ownership is checked here; the cipher itself
// refuses anything but the matching key.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	audit       *audit.Recorder
	logger      logging.Logger
}

// PostView is a decrypted (or deliberately opaque) post as shown to one
// principal.
type PostView struct {
	ID        int64
	AuthorID  string
	Title     string
	Body      string
	Own       bool
	CreatedAt time.Time
}

const redactedField = "[encrypted]"

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, rec *audit.Recorder, logger logging.Logger) *PostService {
	return &PostService{db: db, repomanager: m, audit: rec, logger: logger}
}

// Create encrypts title and body under the principal's key and stores the
// post.
func (s *PostService) Create(ctx context.Context, principal *models.User, key []byte, title, body, origin string) (*models.Post, error) {
	titleCt, err := cryptox.Encrypt(key, []byte(title))
	if err != nil {
		return nil, common.ErrorInternal
	}
	bodyCt, err := cryptox.Encrypt(key, []byte(body))
	if err != nil {
		return nil, common.ErrorInternal
	}

	post, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{
		UserID: principal.ID,
		Title:  titleCt,
		Body:   bodyCt,
	})
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.auditEvent(ctx, "post created", "email", principal.Email, "role", principal.Role, "post", post.ID, "ip", origin)

	return post, nil
}

// List returns all posts, newest first. The principal's own posts are
// decrypted; everyone else's stay opaque. A failed decryption of an own post
// is a security event and fails the whole read.
func (s *PostService) List(ctx context.Context, principal *models.User, key []byte, origin string) ([]PostView, error) {
	posts, err := s.repomanager.Posts(s.db).ListAll(ctx)
	if err != nil {
		return nil, common.ErrorInternal
	}

	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		view := PostView{
			ID:        post.ID,
			AuthorID:  post.UserID,
			Title:     redactedField,
			Body:      redactedField,
			CreatedAt: post.CreatedAt,
		}

		if post.UserID == principal.ID {
			view.Own = true
			title, body, err := s.decryptPost(ctx, principal, key, post, origin)
			if err != nil {
				return nil, err
			}
			view.Title, view.Body = title, body
		}

		views = append(views, view)
	}

	return views, nil
}

// Get returns the decrypted post to its owner. Anyone else gets
// common.ErrorUnauthorized, and the attempt is audited.
func (s *PostService) Get(ctx context.Context, principal *models.User, key []byte, id int64, origin string) (*PostView, error) {
	post, err := s.getOwned(ctx, principal, id, origin)
	if err != nil {
		return nil, err
	}

	title, body, err := s.decryptPost(ctx, principal, key, post, origin)
	if err != nil {
		return nil, err
	}

	return &PostView{
		ID:        post.ID,
		AuthorID:  post.UserID,
		Title:     title,
		Body:      body,
		Own:       true,
		CreatedAt: post.CreatedAt,
	}, nil
}

// Update re-encrypts both fields and rewrites the post; only the owner may
// update, and the stored timestamp is refreshed.
func (s *PostService) Update(ctx context.Context, principal *models.User, key []byte, id int64, title, body, origin string) error {
	post, err := s.getOwned(ctx, principal, id, origin)
	if err != nil {
		return err
	}

	if post.Title, err = cryptox.Encrypt(key, []byte(title)); err != nil {
		return common.ErrorInternal
	}
	if post.Body, err = cryptox.Encrypt(key, []byte(body)); err != nil {
		return common.ErrorInternal
	}

	if err := s.repomanager.Posts(s.db).Update(ctx, post); err != nil {
		return common.ErrorInternal
	}

	s.auditEvent(ctx, "post updated", "email", principal.Email, "role", principal.Role, "post", post.ID, "ip", origin)

	return nil
}

// Delete removes the owner's post.
func (s *PostService) Delete(ctx context.Context, principal *models.User, id int64, origin string) error {
	post, err := s.getOwned(ctx, principal, id, origin)
	if err != nil {
		return err
	}

	if err := s.repomanager.Posts(s.db).Delete(ctx, post.ID); err != nil {
		return common.ErrorInternal
	}

	s.auditEvent(ctx, "post deleted", "email", principal.Email, "role", principal.Role, "post", post.ID, "ip", origin)

	return nil
}

func (s *PostService) getOwned(ctx context.Context, principal *models.User, id int64, origin string) (*models.Post, error) {
	post, err := s.repomanager.Posts(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if post.UserID != principal.ID {
		s.auditEvent(ctx, "unauthorized post access", "email", principal.Email, "role", principal.Role, "post", post.ID, "ip", origin)
		return nil, common.ErrorUnauthorized
	}

	return post, nil
}

func (s *PostService) decryptPost(ctx context.Context, principal *models.User, key []byte, post *models.Post, origin string) (string, string, error) {
	title, err := cryptox.Decrypt(key, post.Title)
	if err != nil {
		return "", "", s.decryptFailure(ctx, principal, post, origin, err)
	}
	body, err := cryptox.Decrypt(key, post.Body)
	if err != nil {
		return "", "", s.decryptFailure(ctx, principal, post, origin, err)
	}
	return string(title), string(body), nil
}

// decryptFailure audits a failed tag check and normalizes the error. It is
// never retried: either the ciphertext was tampered with or the key is
// wrong, and both are fatal to the read.
func (s *PostService) decryptFailure(ctx context.Context, principal *models.User, post *models.Post, origin string, err error) error {
	if errors.Is(err, common.ErrorAuthentication) {
		s.auditEvent(ctx, "post decryption failure", "email", principal.Email, "role", principal.Role, "post", post.ID, "ip", origin)
		return common.ErrorAuthentication
	}
	return common.ErrorInternal
}

func (s *PostService) auditEvent(ctx context.Context, msg string, kv ...any) {
	if err := s.audit.Event(msg, kv...); err != nil {
		s.logger.Error(ctx, "audit append failed", "err", err)
	}
}

// Package services contains server-side business logic. This file implements
// AccountService: registration, the login protocol (credentials → TOTP →
// session token), lockout handling, and password changes.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secblog/internal/common"
	"github.com/dmitrijs2005/secblog/internal/cryptox"
	"github.com/dmitrijs2005/secblog/internal/dbx"
	"github.com/dmitrijs2005/secblog/internal/logging"
	"github.com/dmitrijs2005/secblog/internal/mfa"
	"github.com/dmitrijs2005/secblog/internal/server/access"
	"github.com/dmitrijs2005/secblog/internal/server/audit"
	"github.com/dmitrijs2005/secblog/internal/server/auth"
	"github.com/dmitrijs2005/secblog/internal/server/config"
	"github.com/dmitrijs2005/secblog/internal/server/governor"
	"github.com/dmitrijs2005/secblog/internal/server/models"
	"github.com/dmitrijs2005/secblog/internal/server/repositories/repomanager"
)

const userSaltLen = 32

// AccountService provides authentication-related operations:
//   - Register: create a user with hashed password, salt and MFA secret
//   - Login: the full credential + TOTP check, minting a session token
//   - Unlock: the explicit lockout reset
//   - ChangePassword: re-hash, re-derive the content key, re-encrypt posts
type AccountService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	sessions         *governor.Store
	limiter          *governor.Limiter
	mfa              *mfa.Engine
	audit            *audit.Recorder
	logger           logging.Logger
	jwtSecret        []byte
	lockoutThreshold int
	tokenValidity    time.Duration
	now              func() time.Time
}

// RegisterRequest carries the registration form fields plus the client
// network origin for the audit trail.
type RegisterRequest struct {
	Email     string
	Firstname string
	Lastname  string
	Phone     string
	Password  string
	Origin    string
}

// LoginRequest carries one login attempt. SessionID identifies the browser
// session whose attempt counter the governor tracks; Origin is the client
// network address used for rate limiting and auditing.
type LoginRequest struct {
	Email     string
	Password  string
	TOTPCode  string
	SessionID string
	Origin    string
}

// LoginResult is a fully authenticated session: the signed token plus the
// loaded user record.
type LoginResult struct {
	Token string
	User  *models.User
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, sessions *governor.Store,
	limiter *governor.Limiter, engine *mfa.Engine, rec *audit.Recorder,
	logger logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:               db,
		repomanager:      m,
		sessions:         sessions,
		limiter:          limiter,
		mfa:              engine,
		audit:            rec,
		logger:           logger,
		jwtSecret:        []byte(cfg.SecretKey),
		lockoutThreshold: cfg.LockoutThreshold,
		tokenValidity:    cfg.SessionTokenValidityDuration,
		now:              time.Now,
	}
}

// Register creates a user and its login-history record in one transaction.
// The password is hashed before anything is stored; the salt and the MFA
// secret are generated here, once, and never change afterwards. A duplicate
// email surfaces as common.ErrorDuplicateEmail via the database unique
// constraint, so concurrent registrations cannot race past the check.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	secret, err := s.mfa.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("error generating mfa secret: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		Firstname:    req.Firstname,
		Lastname:     req.Lastname,
		Phone:        req.Phone,
		PasswordHash: hash,
		Salt:         common.GenerateRandByteArray(userSaltLen),
		MFASecret:    secret,
		Role:         access.DefaultRole,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created

		_, err = s.repomanager.Logs(tx).Create(ctx, user.ID)
		return err
	}); err != nil {
		if errors.Is(err, common.ErrorDuplicateEmail) {
			return nil, common.ErrorDuplicateEmail
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.auditEvent(ctx, "registration", "email", user.Email, "role", user.Role, "ip", req.Origin)

	return user, nil
}

// Login runs the full authentication protocol for one attempt.
//
// Order matters: a locked session is rejected before any credential work, so
// a locked-out attacker learns nothing and costs nothing; the rate limiter
// is consulted next; only then are the password and the TOTP code verified.
// The first attempt that passes both password and TOTP flips mfa_enabled on
// permanently. Every transition lands in the audit log.
func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {

	if s.sessions.IsLockedOut(req.SessionID, s.lockoutThreshold) {
		s.auditEvent(ctx, "login attempt on locked session", "email", req.Email, "ip", req.Origin)
		return nil, common.ErrorLockedOut
	}

	if err := s.limiter.Admit(req.Origin); err != nil {
		s.auditEvent(ctx, "login rate limited", "email", req.Email, "ip", req.Origin)
		return nil, common.ErrorRateLimited
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, s.failAttempt(ctx, req, "unknown email")
		}
		return nil, common.ErrorInternal
	}

	if !user.Active {
		return nil, s.failAttempt(ctx, req, "inactive account")
	}

	if !cryptox.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, s.failAttempt(ctx, req, "wrong password")
	}

	if req.TOTPCode == "" && !user.MFAEnabled {
		// correct password, not yet enrolled: route the caller to enrollment
		// without burning an attempt
		return nil, common.ErrorMfaRequired
	}

	if !s.mfa.VerifyCode(user.MFASecret, req.TOTPCode) {
		if err := s.failAttempt(ctx, req, "invalid totp code"); errors.Is(err, common.ErrorLockedOut) {
			return nil, err
		}
		return nil, common.ErrorMfaInvalid
	}

	if !user.MFAEnabled {
		if err := s.repomanager.Users(s.db).SetMFAEnabled(ctx, user.ID); err != nil {
			return nil, common.ErrorInternal
		}
		user.MFAEnabled = true
		s.auditEvent(ctx, "mfa enabled", "email", user.Email, "role", user.Role, "ip", req.Origin)
	}

	if err := s.repomanager.Logs(s.db).RecordLogin(ctx, user.ID, s.now(), req.Origin); err != nil {
		return nil, common.ErrorInternal
	}

	token, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.auditEvent(ctx, "login success", "email", user.Email, "role", user.Role, "ip", req.Origin)

	return &LoginResult{Token: token, User: user}, nil
}

// Unlock resets the session's attempt counter to zero. It is the only way a
// locked session reopens.
func (s *AccountService) Unlock(ctx context.Context, sessionID, origin string) {
	s.sessions.Reset(sessionID)
	s.auditEvent(ctx, "session unlocked", "ip", origin)
}

// GetUserByID loads the principal for an authenticated request.
func (s *AccountService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// MFAProvisioningURI returns the otpauth:// URL for the user's secret, for
// the enrollment page to render as a QR code.
func (s *AccountService) MFAProvisioningURI(user *models.User) string {
	return s.mfa.ProvisioningURI(user.MFASecret, user.Email)
}

// BeginMFAEnrollment re-verifies the password and hands back the provisioning
// URI. The caller lands here after Login returned common.ErrorMfaRequired;
// enrollment completes on the next Login that carries a valid code.
//
// A wrong password here is exactly as interesting as a wrong password at
// login, so the attempt runs under the same governor and lands in the same
// audit trail.
func (s *AccountService) BeginMFAEnrollment(ctx context.Context, req LoginRequest) (string, error) {
	if s.sessions.IsLockedOut(req.SessionID, s.lockoutThreshold) {
		s.auditEvent(ctx, "mfa setup attempt on locked session", "email", req.Email, "ip", req.Origin)
		return "", common.ErrorLockedOut
	}

	if err := s.limiter.Admit(req.Origin); err != nil {
		s.auditEvent(ctx, "mfa setup rate limited", "email", req.Email, "ip", req.Origin)
		return "", common.ErrorRateLimited
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", s.failAttempt(ctx, req, "unknown email at mfa setup")
		}
		return "", common.ErrorInternal
	}

	if !user.Active {
		return "", s.failAttempt(ctx, req, "inactive account at mfa setup")
	}

	if !cryptox.VerifyPassword(user.PasswordHash, req.Password) {
		return "", s.failAttempt(ctx, req, "wrong password at mfa setup")
	}

	return s.mfa.ProvisioningURI(user.MFASecret, user.Email), nil
}

// ContentKey derives the user's content encryption key. The derivation input
// is the stored password hash, so the key is available whenever the record
// is; see cryptox.DeriveContentKey for the trade-off this carries.
func (s *AccountService) ContentKey(user *models.User) ([]byte, error) {
	return cryptox.DeriveContentKey(user.PasswordHash, user.Salt)
}

// ChangePassword verifies the old password, stores a new hash, and
// re-encrypts all of the user's posts under the key derived from the new
// hash — all in one transaction, since a new hash with old ciphertexts would
// leave every post unreadable.
func (s *AccountService) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword, origin string) error {
	if !cryptox.VerifyPassword(user.PasswordHash, oldPassword) {
		return common.ErrorInvalidCredentials
	}

	newHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	oldKey, err := cryptox.DeriveContentKey(user.PasswordHash, user.Salt)
	if err != nil {
		return common.ErrorInternal
	}
	newKey, err := cryptox.DeriveContentKey(newHash, user.Salt)
	if err != nil {
		return common.ErrorInternal
	}
	defer common.WipeByteArray(oldKey)
	defer common.WipeByteArray(newKey)

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, user.ID, newHash); err != nil {
			return err
		}

		postRepo := s.repomanager.Posts(tx)
		owned, err := postRepo.ListByUser(ctx, user.ID)
		if err != nil {
			return err
		}

		for _, post := range owned {
			title, err := cryptox.Decrypt(oldKey, post.Title)
			if err != nil {
				return err
			}
			body, err := cryptox.Decrypt(oldKey, post.Body)
			if err != nil {
				return err
			}
			if post.Title, err = cryptox.Encrypt(newKey, title); err != nil {
				return err
			}
			if post.Body, err = cryptox.Encrypt(newKey, body); err != nil {
				return err
			}
			if err := postRepo.Update(ctx, post); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		if errors.Is(err, common.ErrorAuthentication) {
			s.auditEvent(ctx, "decryption failure during password change", "email", user.Email, "role", user.Role, "ip", origin)
			return common.ErrorAuthentication
		}
		return common.ErrorInternal
	}

	user.PasswordHash = newHash

	s.auditEvent(ctx, "password changed", "email", user.Email, "role", user.Role, "ip", origin)

	return nil
}

// failAttempt counts one failed check against the session, audits it, and
// reports lockout if this failure reached the threshold. The reason stays in
// the audit log only; the caller gets the usual non-enumerating error.
func (s *AccountService) failAttempt(ctx context.Context, req LoginRequest, reason string) error {
	count := s.sessions.RecordFailure(req.SessionID)

	s.auditEvent(ctx, "login failure", "email", req.Email, "reason", reason, "attempt", count, "ip", req.Origin)

	if count >= s.lockoutThreshold {
		s.auditEvent(ctx, "lockout reached", "email", req.Email, "ip", req.Origin)
		return common.ErrorLockedOut
	}

	return common.ErrorInvalidCredentials
}

func (s *AccountService) auditEvent(ctx context.Context, msg string, kv ...any) {
	if err := s.audit.Event(msg, kv...); err != nil {
		s.logger.Error(ctx, "audit append failed", "err", err)
	}
}

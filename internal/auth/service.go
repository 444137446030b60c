package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nzeleniuk/contactbook/internal/model"
	"github.com/nzeleniuk/contactbook/internal/repository"
)

// UserStore is the slice of the credential store the auth core consumes.
// *repository.UserRepo satisfies it; tests substitute in-memory fakes.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	ConfirmEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID uint64, passwordHash string) error
}

// TokenStore persists refresh-token records.  MarkRevoked must be a
// conditional update (revoke only if not already revoked) and report
// whether this call was the one that flipped the row; that single
// storage-level condition is what serializes concurrent rotations.
type TokenStore interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	MarkRevoked(ctx context.Context, id uint64, now time.Time) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint64, now time.Time) error
}

// Denylist is the revocation cache contract.  Absence of an entry must
// only ever produce a false negative (a revoked token briefly still
// accepted), never a false positive.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Config carries the immutable policy knobs of the auth core.  It is
// built once at startup from the process configuration; the service
// never consults the environment.
type Config struct {
	AccessTTL             time.Duration
	RefreshTTL            time.Duration
	BcryptCost            int
	RequireConfirmedEmail bool
}

// Service is the auth core.  It holds no mutable state of its own;
// every operation is safe for concurrent use and bounded by the caller's
// context.
type Service struct {
	cfg      Config
	codec    *Codec
	users    UserStore
	tokens   TokenStore
	denylist Denylist
	limiter  *LoginLimiter
	now      func() time.Time
}

// NewService wires the auth core.  limiter may be nil to disable login
// throttling.
func NewService(cfg Config, codec *Codec, users UserStore, tokens TokenStore, denylist Denylist, limiter *LoginLimiter) *Service {
	return &Service{
		cfg:      cfg,
		codec:    codec,
		users:    users,
		tokens:   tokens,
		denylist: denylist,
		limiter:  limiter,
		now:      time.Now,
	}
}

// TokenPair is the credential pair handed to a client after login or
// rotation.  RefreshToken is the only place the raw refresh secret ever
// appears; the store sees its hash.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Register creates a new unconfirmed user with the USER role.  The
// unique indexes on username and email are the authoritative uniqueness
// check; a violation surfaces as ErrConflict.  Doing it with the insert
// itself (instead of a read-then-write) leaves no race window between
// two concurrent registrations of the same name.
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	u := &model.User{
		Username:  strings.TrimSpace(username),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Confirmed: false,
		Role:      model.RoleUser,
	}
	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return u, nil
}

// dummyHash is a valid bcrypt hash compared against when the username
// does not exist, so the unknown-user and wrong-password paths cost the
// same. The corresponding password is not known to anyone.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Authenticate verifies a username/password pair.  It reports
// ErrInvalidCredentials for both an unknown username and a wrong
// password, so callers cannot tell which field was wrong.  With the
// confirmed-email policy enabled, a correct password on an unverified
// account yields ErrEmailNotConfirmed.  Storage failures propagate
// unchanged; they are never folded into ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if err := s.limiter.Allow(ctx, username); err != nil {
		return nil, err
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			VerifyPassword(dummyHash, password)
			s.limiter.RecordFailure(ctx, username)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		s.limiter.RecordFailure(ctx, username)
		return nil, ErrInvalidCredentials
	}
	if s.cfg.RequireConfirmedEmail && !u.Confirmed {
		return nil, ErrEmailNotConfirmed
	}
	s.limiter.Reset(ctx, username)
	return u, nil
}

// IssueAccessToken signs a short-lived bearer token whose subject is the
// username.  Pure function of configuration and clock; no I/O.
func (s *Service) IssueAccessToken(username string) (string, time.Time, error) {
	return s.codec.Sign(username, TokenTypeAccess, s.cfg.AccessTTL)
}

// IssueRefreshToken generates a random refresh secret, stores its hash
// with expiry and client metadata, and returns the raw secret.  This is
// the only moment the raw value exists server-side.
func (s *Service) IssueRefreshToken(ctx context.Context, userID uint64, clientIP, userAgent string) (string, time.Time, error) {
	raw, err := NewRefreshSecret()
	if err != nil {
		return "", time.Time{}, err
	}
	exp := s.now().UTC().Add(s.cfg.RefreshTTL)
	rec := &model.RefreshToken{
		UserID:    userID,
		TokenHash: HashRefreshSecret(raw),
		ExpiresAt: exp,
		IPAddress: clientIP,
		UserAgent: userAgent,
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return "", time.Time{}, err
	}
	return raw, exp, nil
}

// IssuePair issues a fresh access/refresh pair for a user.  Used by the
// login and rotation flows.
func (s *Service) IssuePair(ctx context.Context, u *model.User, clientIP, userAgent string) (*TokenPair, error) {
	access, accessExp, err := s.IssueAccessToken(u.Username)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.IssueRefreshToken(ctx, u.ID, clientIP, userAgent)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// RotateRefreshToken exchanges a presented refresh secret for a brand
// new pair, permanently spending the old one.  An unknown secret yields
// ErrInvalidToken; a known but inactive one (including the loser of a
// concurrent rotation race on the same secret) yields
// ErrTokenExpiredOrRevoked.  Only the caller whose conditional revoke
// flipped the row proceeds to issuance, so one presented secret can
// never spawn two live sessions.
//
// If the context is cancelled between the revoke and the new issuance,
// the old token is already spent and no replacement exists; the client
// recovers by logging in again.
func (s *Service) RotateRefreshToken(ctx context.Context, raw, clientIP, userAgent string) (*model.User, *TokenPair, error) {
	rec, err := s.tokens.GetByHash(ctx, HashRefreshSecret(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	now := s.now().UTC()
	if !rec.Active(now) {
		return nil, nil, ErrTokenExpiredOrRevoked
	}
	revoked, err := s.tokens.MarkRevoked(ctx, rec.ID, now)
	if err != nil {
		return nil, nil, err
	}
	if !revoked {
		return nil, nil, ErrTokenExpiredOrRevoked
	}
	u, err := s.users.GetByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	pair, err := s.IssuePair(ctx, u, clientIP, userAgent)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// RevokeRefreshToken marks the record matching a raw secret as revoked.
// It is idempotent: an unknown or already-revoked secret is a successful
// no-op, so logout never fails because the client held a stale token.
func (s *Service) RevokeRefreshToken(ctx context.Context, raw string) error {
	rec, err := s.tokens.GetByHash(ctx, HashRefreshSecret(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if rec.RevokedAt != nil {
		return nil
	}
	_, err = s.tokens.MarkRevoked(ctx, rec.ID, s.now().UTC())
	return err
}

// RevokeAccessToken denylists a signed access token for the remainder of
// its validity window.  An already-expired token is a no-op.  The
// denylist write is part of the operation's success: if it fails the
// error propagates, because a logout the client cannot rely on is worse
// than a failed one.
func (s *Service) RevokeAccessToken(ctx context.Context, token string) error {
	claims, err := s.codec.DecodeUnsafe(token)
	if err != nil {
		return err
	}
	if claims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now().UTC())
	return s.denylist.Revoke(ctx, claims.ID, ttl)
}

// ResolveCurrentUser authenticates a bearer token end to end: signature,
// expiry and type via the codec, early revocation via the denylist, and
// finally the subject looked up in the credential store.  Every
// authenticated request in the application funnels through here.
func (s *Service) ResolveCurrentUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.codec.Verify(token, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	u, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// RevokeAllSessions revokes every active refresh token a user owns.
func (s *Service) RevokeAllSessions(ctx context.Context, userID uint64) error {
	return s.tokens.RevokeAllForUser(ctx, userID, s.now().UTC())
}

// RequireAdmin is the capability check for admin-only operations: a pure
// allow/deny decision over the resolved user.
func RequireAdmin(u *model.User) error {
	if u.Role != model.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// IssueEmailVerificationToken signs a 24-hour token whose subject is the
// address to confirm.  Sending the mail is someone else's job; this
// core only mints and later verifies the token.
func (s *Service) IssueEmailVerificationToken(email string) (string, error) {
	token, _, err := s.codec.Sign(strings.ToLower(strings.TrimSpace(email)), TokenTypeEmailVerify, 24*time.Hour)
	return token, err
}

// ConfirmEmail verifies an email-verification token and flips the
// account's confirmed flag.  The flag only ever goes one way; verifying
// the same token twice is harmless.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	claims, err := s.codec.Verify(token, TokenTypeEmailVerify)
	if err != nil {
		return err
	}
	if err := s.users.ConfirmEmail(ctx, claims.Subject); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// IssuePasswordResetToken signs a one-hour password-reset token for the
// account behind an email address.  The type discriminant keeps reset
// tokens out of every bearer-token code path.
func (s *Service) IssuePasswordResetToken(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	token, _, err := s.codec.Sign(u.Email, TokenTypePasswordReset, time.Hour)
	return token, err
}

// ResetPassword verifies a password-reset token and replaces the
// account's password hash.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.codec.Verify(token, TokenTypePasswordReset)
	if err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	hash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, hash)
}

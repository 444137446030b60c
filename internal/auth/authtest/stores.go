// Package authtest provides in-memory implementations of the auth
// core's store contracts for tests.  The fakes honor the same semantics
// the SQL repositories do (unique indexes, conditional revocation,
// sentinel not-found errors) so auth-core behavior, including the
// rotation race, can be exercised without a database.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/nzeleniuk/contactbook/internal/model"
	"github.com/nzeleniuk/contactbook/internal/repository"
)

// MemUserStore is an in-memory UserStore.
type MemUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]*model.User
}

// NewMemUserStore returns an empty user store.
func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[uint64]*model.User)}
}

func (s *MemUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	s.nextID++
	u.ID = s.nextID
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MemUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MemUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemUserStore) ConfirmEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u.Confirmed = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *MemUserStore) UpdateAvatarURL(_ context.Context, email, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u.Avatar = url
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *MemUserStore) UpdatePassword(_ context.Context, userID uint64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// MemTokenStore is an in-memory TokenStore.  MarkRevoked performs the
// same check-and-set under one lock that the SQL repository performs in
// one conditional UPDATE, so concurrent rotations race realistically.
type MemTokenStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.RefreshToken
}

// NewMemTokenStore returns an empty token store.
func NewMemTokenStore() *MemTokenStore {
	return &MemTokenStore{rows: make(map[uint64]*model.RefreshToken)}
}

func (s *MemTokenStore) Create(_ context.Context, t *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	t.CreatedAt = time.Now().UTC()
	cp := *t
	s.rows[t.ID] = &cp
	return nil
}

func (s *MemTokenStore) GetByHash(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.rows {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MemTokenStore) MarkRevoked(_ context.Context, id uint64, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok || t.RevokedAt != nil {
		return false, nil
	}
	rv := now
	t.RevokedAt = &rv
	return true, nil
}

func (s *MemTokenStore) RevokeAllForUser(_ context.Context, userID uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.rows {
		if t.UserID == userID && t.RevokedAt == nil {
			rv := now
			t.RevokedAt = &rv
		}
	}
	return nil
}

// ActiveCountForUser reports how many tokens a user currently holds
// active; tests use it to assert rotation never double-issues.
func (s *MemTokenStore) ActiveCountForUser(userID uint64, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.rows {
		if t.UserID == userID && t.Active(now) {
			n++
		}
	}
	return n
}

// MemDenylist is an in-memory Denylist.  Err, when set, is returned by
// both operations to simulate a cache outage.
type MemDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	Err     error
}

// NewMemDenylist returns an empty denylist.
func NewMemDenylist() *MemDenylist {
	return &MemDenylist{entries: make(map[string]time.Time)}
}

func (d *MemDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if d.Err != nil {
		return d.Err
	}
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (d *MemDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	if d.Err != nil {
		return false, d.Err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.entries[jti]
	return ok && time.Now().Before(exp), nil
}

// Len reports the number of live entries.
func (d *MemDenylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

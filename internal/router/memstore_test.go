package router

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/coursewave/service-auth-go/internal/auth/entity"
	"github.com/coursewave/service-auth-go/internal/auth/repo"
)

// memStore is a minimal in-memory auth.UserStore for wiring tests.
type memStore struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*entity.User)}
}

func (s *memStore) Create(ctx context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := s.users[key]; ok {
		return repo.ErrDuplicateEmail
	}
	cp := *u
	s.users[key] = &cp
	return nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memStore) SetResetCode(ctx context.Context, id int64, code string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.ResetCode = &code
			u.ResetCodeExpiresAt = &expiresAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *memStore) GetByResetCode(ctx context.Context, code string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetCode != nil && *u.ResetCode == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memStore) UpdatePasswordAndClearResetCode(ctx context.Context, id int64, hash, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id && u.ResetCode != nil && *u.ResetCode == code {
			u.PasswordHash = hash
			u.ResetCode = nil
			u.ResetCodeExpiresAt = nil
			return true, nil
		}
	}
	return false, nil
}

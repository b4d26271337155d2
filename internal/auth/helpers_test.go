package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursewave/service-auth-go/internal/auth/entity"
	"github.com/coursewave/service-auth-go/internal/auth/repo"
	"github.com/coursewave/service-auth-go/internal/mail"
)

// fakeStore is an in-memory UserStore. Its mutex stands in for the real
// store's unique email index: Create decides duplicate races atomically.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*entity.User // keyed by lowercase email
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*entity.User)}
}

func (s *fakeStore) Create(ctx context.Context, u *entity.User) error {
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

func (s *fakeStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id int64) (*entity.User, error) {
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

func (s *fakeStore) SetResetCode(ctx context.Context, id int64, code string, expiresAt time.Time) error {
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

func (s *fakeStore) GetByResetCode(ctx context.Context, code string) (*entity.User, error) {
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

func (s *fakeStore) UpdatePasswordAndClearResetCode(ctx context.Context, id int64, hash, code string) (bool, error) {
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

// fakeMailer records sent messages; set fail to simulate delivery failure.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	fail bool
}

func (m *fakeMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

type testEnv struct {
	store     *fakeStore
	mailer    *fakeMailer
	svc       *Service
	handler   *Handler
	tokens    *TokenIssuer
	transport SessionTransport
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	mailer := &fakeMailer{}
	cfg := Config{
		JWTSecret:    []byte("test-secret"),
		TokenTTL:     7 * 24 * time.Hour,
		ResetCodeTTL: 15 * time.Minute,
	}
	tokens := NewTokenIssuer(cfg.JWTSecret)
	svc := NewService(store, BcryptHasher{Cost: bcrypt.MinCost}, tokens, mailer, cfg)
	transport := SessionTransport{TTL: cfg.TokenTTL}
	handler := NewHandler(svc, CsrfGuard{}, transport, zap.NewNop().Sugar())
	return &testEnv{
		store:     store,
		mailer:    mailer,
		svc:       svc,
		handler:   handler,
		tokens:    tokens,
		transport: transport,
	}
}

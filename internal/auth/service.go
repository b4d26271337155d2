package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coursewave/service-auth-go/internal/auth/entity"
	"github.com/coursewave/service-auth-go/internal/auth/repo"
	"github.com/coursewave/service-auth-go/internal/mail"
	"github.com/coursewave/service-auth-go/pkg/utilities"
)

var (
	ErrEmailTaken        = errors.New("email already taken")
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrResetCodeInvalid  = errors.New("invalid or expired reset code")
)

// UserStore is the persistence surface the service needs. *repo.UserRepo
// implements it; tests substitute a fake.
type UserStore interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	SetResetCode(ctx context.Context, id int64, code string, expiresAt time.Time) error
	GetByResetCode(ctx context.Context, code string) (*entity.User, error)
	UpdatePasswordAndClearResetCode(ctx context.Context, id int64, hash, code string) (bool, error)
}

// Service orchestrates the register/login/reset flows. It holds no mutable
// state between requests; the store's unique email index is the only guard
// against duplicate-registration races.
type Service struct {
	store  UserStore
	hasher PasswordHasher
	tokens *TokenIssuer
	mailer mail.Mailer
	cfg    Config

	mailTimeout time.Duration
}

func NewService(store UserStore, hasher PasswordHasher, tokens *TokenIssuer, mailer mail.Mailer, cfg Config) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: defaultBcryptCost}
	}
	return &Service{
		store:       store,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      mailer,
		cfg:         cfg,
		mailTimeout: 10 * time.Second,
	}
}

const defaultRole = "student"

// Register validates the input, hashes the password and persists a new user
// with the default role. The email is lowercased before storage.
func (s *Service) Register(ctx context.Context, name, email, password string) (*entity.PublicUser, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if errs := ValidateRegisterInput(name, email, password); len(errs) > 0 {
		return nil, errs
	}

	// Cheap existence check for a friendly error; the unique index still
	// decides concurrent races.
	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := utilities.NewUserID()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}

	first, last := splitName(name)
	u := &entity.User{
		ID:           id,
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hash,
		Role:         defaultRole,
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	pub := u.Public()
	return &pub, nil
}

// Login verifies credentials and issues a fresh identity token.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.PublicUser, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}

	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, "", ErrIncorrectPassword
	}

	token, err := s.tokens.Issue(u.ID, u.Role, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	pub := u.Public()
	return &pub, token, nil
}

// CurrentUser confirms the user behind a verified token still exists.
func (s *Service) CurrentUser(ctx context.Context, userID int64) error {
	if _, err := s.store.GetByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// ForgotPassword generates a reset code, persists it with its expiry and
// mails it to the user. A delivery failure is returned to the caller; the
// code stays persisted so a retried request reuses the flow.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := newResetCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	expiresAt := time.Now().Add(s.cfg.ResetCodeTTL)
	if err := s.store.SetResetCode(ctx, u.ID, code, expiresAt); err != nil {
		return err
	}

	mailCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	msg := mail.Message{
		To:      u.Email,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hi %s,\r\n\r\nUse this code to reset your password: %s\r\n\r\nThe code expires in %d minutes.",
			u.FirstName, code, int(s.cfg.ResetCodeTTL.Minutes())),
	}
	if err := s.mailer.Send(mailCtx, msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword verifies the code and its expiry, writes the new hash and
// clears the code in the same statement so it is single-use.
func (s *Service) ResetPassword(ctx context.Context, newPassword, code string) error {
	if code == "" {
		return ErrResetCodeInvalid
	}
	if len(newPassword) < 8 || !strongPassword(newPassword) {
		return ValidationErrors{"Password is required and should be at least 8 characters long and include at least one lowercase letter, one uppercase letter, one number, and one special character."}
	}

	u, err := s.store.GetByResetCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrResetCodeInvalid
		}
		return err
	}
	if u.ResetCodeExpiresAt == nil || u.ResetCodeExpiresAt.Before(time.Now()) {
		return ErrResetCodeInvalid
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ok, err := s.store.UpdatePasswordAndClearResetCode(ctx, u.ID, hash, code)
	if err != nil {
		return err
	}
	if !ok {
		// code consumed between lookup and update
		return ErrResetCodeInvalid
	}
	return nil
}

// splitName splits a display name into first and last parts; everything
// after the first space becomes the last name.
func splitName(name string) (string, *string) {
	first, rest, found := strings.Cut(name, " ")
	if !found || rest == "" {
		return first, nil
	}
	return first, &rest
}

const resetCodeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const resetCodeLen = 6

// newResetCode draws a 6-character mixed alphanumeric code.
func newResetCode() (string, error) {
	buf := make([]byte, resetCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = resetCodeChars[int(b)%len(resetCodeChars)]
	}
	return string(buf), nil
}

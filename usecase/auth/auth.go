package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72
)

var (
	ErrUsernameTooShort = domain.Invalid(fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	ErrUsernameTooLong  = domain.Invalid(fmt.Sprintf("username must be at most %d characters", MaxUsernameLength))
	ErrPasswordTooShort = domain.Invalid(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	ErrPasswordTooLong  = domain.Invalid(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	ErrUsernameExists   = domain.Invalid("this username is already in use")
)

type UseCase struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	hasher     PasswordHasher
	sessionTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func New(users repository.UserRepository, sessions repository.SessionRepository, hasher PasswordHasher, sessionTTL time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &UseCase{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Register validates the credentials, hashes the password and stores a new user.
// The existence check is a fast path; the store's unique constraint decides races.
func (uc *UseCase) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	exists, err := uc.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := uc.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    uc.now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			uc.logger.Info("concurrent registration lost the username race", zap.String("username", username))
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Authenticate reports ok=false for unknown users and wrong passwords. err is
// only set when the store fails.
func (uc *UseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, nil
	}

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	if !uc.hasher.Verify(password, user.PasswordHash) {
		return nil, false, nil
	}
	return user, true, nil
}

func (uc *UseCase) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

func (uc *UseCase) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return uc.users.GetByUsername(ctx, username)
}

func (uc *UseCase) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return uc.users.ExistsByUsername(ctx, username)
}

func (uc *UseCase) CreateSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrInvalidPayload
	}

	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.sessionTTL),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RefreshSession slides the expiry forward once less than half the TTL remains.
func (uc *UseCase) RefreshSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	now := uc.now()
	if session.Remaining(now) > uc.sessionTTL/2 {
		return session, nil
	}
	if err := uc.sessions.Extend(ctx, session.ID, uc.sessionTTL); err != nil {
		return nil, err
	}
	refreshed := *session
	refreshed.ExpiresAt = now.Add(uc.sessionTTL)
	return &refreshed, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// SessionTTL is the lifetime given to new sessions.
func (uc *UseCase) SessionTTL() time.Duration {
	return uc.sessionTTL
}

func validateCredentials(username, password string) error {
	switch n := utf8.RuneCountInString(username); {
	case n < MinUsernameLength:
		return ErrUsernameTooShort
	case n > MaxUsernameLength:
		return ErrUsernameTooLong
	}
	switch {
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordBytes:
		return ErrPasswordTooLong
	}
	return nil
}

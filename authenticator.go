package users

import (
	"context"
	"time"
)

// MaxLoginAttempts is the number of consecutive failures a user gets
// inside the cool down window before logins are throttled.
var MaxLoginAttempts = 5

// CoolDownPeriod is the window in which failed attempts accumulate.
var CoolDownPeriod = 24 * time.Hour

// Auther runs the credential authentication workflow and owns session
// token issuance. Each Login call is one attempt; there are no internal
// retries.
type Auther struct {
	repo        RepositoryManager
	logger      Logger
	maxAttempts int
	coolDown    time.Duration
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager) *Auther {
	return &Auther{
		repo:        repo,
		logger:      defLogger{},
		maxAttempts: MaxLoginAttempts,
		coolDown:    CoolDownPeriod,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Auther) WithMaxLoginAttempts(max int) *Auther {
	if max > 0 {
		s.maxAttempts = max
	}
	return s
}

func (s *Auther) WithCoolDownPeriod(d time.Duration) *Auther {
	if d > 0 {
		s.coolDown = d
	}
	return s
}

// Login verifies the credentials and issues a persisted opaque session
// token. Unknown e-mail and wrong password produce the same failure;
// an inactive account is deliberately distinguishable.
func (s *Auther) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, "", ErrAuthenticationFailed
		}
		s.logger.Error("login lookup error: %v", err)
		return nil, "", err
	}

	if user.Inactive {
		return nil, "", ErrAccountInactive
	}

	// An expired window restarts the count on the record itself, so the
	// next tracked failure increments from zero rather than the stale
	// total.
	if user.LoginAttemptAt != nil && time.Since(*user.LoginAttemptAt) > s.coolDown {
		user.LoginAttempts = 0
		user.LoginAttemptAt = nil
	}

	if user.LoginAttempts >= s.maxAttempts {
		return nil, "", ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if err2 := s.repo.Users().TrackAttemptedLogin(ctx, user); err2 != nil {
			s.logger.Error("failed to track login attempt: %v", err2)
		}
		return nil, "", ErrAuthenticationFailed
	}

	if err := s.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		// best effort, a stale counter must not block a valid login
		s.logger.Warn("failed to reset login attempts: %v", err)
	}

	token := &AuthToken{
		Token:  NewOpaqueToken(),
		UserID: user.ID,
	}

	if _, err := s.repo.AuthTokens().Create(ctx, token); err != nil {
		s.logger.Error("session token persist error: %v", err)
		return nil, "", err
	}

	return user, token.Token, nil
}

// SessionUser resolves the user owning a raw session token. Missing or
// stale tokens come back as a not-found failure; callers decide whether
// that means "anonymous" or "forbidden".
func (s *Auther) SessionUser(ctx context.Context, raw string) (*User, error) {
	token, err := s.repo.AuthTokens().GetByToken(ctx, raw)
	if err != nil {
		return nil, err
	}

	return s.repo.Users().GetByID(ctx, token.UserID)
}

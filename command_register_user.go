package users

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	OnResponse func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserResponse struct {
	User *User
}

// RegisterUserHandler runs the signup workflow: duplicate pre-check,
// password hashing, activation token mint, persistence and notification
// dispatch. Everything shares one transaction, so a failed dispatch
// rolls the insert back instead of stranding an inactive row.
type RegisterUserHandler struct {
	repo     RepositoryManager
	notifier Notifier
	logger   Logger
	hashCost int
}

func NewRegisterUserHandler(repo RepositoryManager, notifier Notifier) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		notifier: notifier,
		logger:   defLogger{},
		hashCost: passwordHashCost(),
	}
}

func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) WithHashCost(cost int) *RegisterUserHandler {
	h.hashCost = cost
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Friendly duplicate detection; the store-level unique
		// constraints remain the authoritative check for racing
		// submissions.
		if _, err := h.repo.Users().GetByUsernameTx(ctx, tx, event.Username); err == nil {
			return NewDuplicateFieldError("username", event.Username)
		} else if !IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "username lookup failed")
		}

		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email); err == nil {
			return NewDuplicateFieldError("email", event.Email)
		} else if !IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "email lookup failed")
		}

		hash, err := HashPasswordCost(event.Password, h.hashCost)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.Username = event.Username
		user.Email = event.Email
		user.PasswordHash = hash
		user.Inactive = true
		user.ActivationToken = NewOpaqueToken()

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return err
		}

		if err := h.notifier.SendAccountActivation(ctx, user.Email, user.ActivationToken); err != nil {
			h.logger.Error("activation dispatch failed for %s: %v", user.Email, err)
			return goerrors.Wrap(err, goerrors.CategoryOperation, "activation notification dispatch failed")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{User: user})
	}

	return nil
}

package users

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ActivateAccountMessage struct {
	Token      string `json:"token"`
	OnResponse func(resp *ActivateAccountResponse)
}

func (e ActivateAccountMessage) Type() string { return "user.activate" }

type ActivateAccountResponse struct {
	User *User
}

// ActivateAccountHandler consumes an activation token. A consumed token
// matches no row anymore, so replaying it always fails; activation is
// never silently applied twice.
type ActivateAccountHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewActivateAccountHandler(repo RepositoryManager) *ActivateAccountHandler {
	return &ActivateAccountHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *ActivateAccountHandler) WithLogger(logger Logger) *ActivateAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ActivateAccountHandler) Execute(ctx context.Context, event ActivateAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account activation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateAccountHandler) execute(ctx context.Context, event ActivateAccountMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Token == "" {
		return ErrInvalidActivationToken
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByActivationTokenTx(ctx, tx, event.Token)
		if err != nil {
			if IsRecordNotFound(err) {
				return ErrInvalidActivationToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "activation token lookup failed")
		}

		return h.repo.Users().ActivateTx(ctx, tx, user)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account activation failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ActivateAccountResponse{User: user})
	}

	return nil
}

package users_test

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	users "github.com/mvelaz/go-users"
)

// mockRepoManager satisfies RepositoryManager over mocked repositories.
// RunInTx executes the body against a zero tx handle; the repositories
// behind it are mocks, so no real transaction is needed.
type mockRepoManager struct {
	users      *MockUsers
	authTokens *MockAuthTokens
}

func newMockRepoManager() *mockRepoManager {
	return &mockRepoManager{
		users:      &MockUsers{},
		authTokens: &MockAuthTokens{},
	}
}

func (m *mockRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *mockRepoManager) Validate() error { return nil }

func (m *mockRepoManager) Users() users.Users { return m.users }

func (m *mockRepoManager) AuthTokens() users.AuthTokens { return m.authTokens }

func (m *mockRepoManager) AssertExpectations(t mock.TestingT) {
	m.users.AssertExpectations(t)
	m.authTokens.AssertExpectations(t)
}

type MockUsers struct {
	mock.Mock
}

var _ users.Users = (*MockUsers)(nil)

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*users.User, error) {
	args := m.Called(ctx, id)
	return userResult(args)
}

func (m *MockUsers) GetActiveByID(ctx context.Context, id int64) (*users.User, error) {
	args := m.Called(ctx, id)
	return userResult(args)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	args := m.Called(ctx, email)
	return userResult(args)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*users.User, error) {
	args := m.Called(ctx, tx, email)
	return userResult(args)
}

func (m *MockUsers) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	args := m.Called(ctx, username)
	return userResult(args)
}

func (m *MockUsers) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*users.User, error) {
	args := m.Called(ctx, tx, username)
	return userResult(args)
}

func (m *MockUsers) GetByActivationToken(ctx context.Context, token string) (*users.User, error) {
	args := m.Called(ctx, token)
	return userResult(args)
}

func (m *MockUsers) GetByActivationTokenTx(ctx context.Context, tx bun.IDB, token string) (*users.User, error) {
	args := m.Called(ctx, tx, token)
	return userResult(args)
}

func (m *MockUsers) Create(ctx context.Context, record *users.User) (*users.User, error) {
	args := m.Called(ctx, record)
	return userResult(args)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *users.User) (*users.User, error) {
	args := m.Called(ctx, tx, record)
	if fn, ok := args.Get(0).(func(*users.User) *users.User); ok {
		return fn(record), args.Error(1)
	}
	return userResult(args)
}

func (m *MockUsers) Update(ctx context.Context, record *users.User, columns ...string) (*users.User, error) {
	args := m.Called(ctx, record, columns)
	return userResult(args)
}

func (m *MockUsers) UpdateTx(ctx context.Context, tx bun.IDB, record *users.User, columns ...string) (*users.User, error) {
	args := m.Called(ctx, tx, record, columns)
	return userResult(args)
}

func (m *MockUsers) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) DeleteTx(ctx context.Context, tx bun.IDB, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockUsers) ActivateTx(ctx context.Context, tx bun.IDB, record *users.User) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockUsers) ListActivePage(ctx context.Context, offset, limit int, excludeID int64) ([]*users.User, int, error) {
	args := m.Called(ctx, offset, limit, excludeID)
	var records []*users.User
	if v := args.Get(0); v != nil {
		records = v.([]*users.User)
	}
	return records, args.Int(1), args.Error(2)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, record *users.User) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, record *users.User) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func userResult(args mock.Arguments) (*users.User, error) {
	var record *users.User
	if v := args.Get(0); v != nil {
		record = v.(*users.User)
	}
	return record, args.Error(1)
}

type MockAuthTokens struct {
	mock.Mock
}

var _ users.AuthTokens = (*MockAuthTokens)(nil)

func (m *MockAuthTokens) Create(ctx context.Context, record *users.AuthToken) (*users.AuthToken, error) {
	args := m.Called(ctx, record)
	return tokenResult(args)
}

func (m *MockAuthTokens) CreateTx(ctx context.Context, tx bun.IDB, record *users.AuthToken) (*users.AuthToken, error) {
	args := m.Called(ctx, tx, record)
	return tokenResult(args)
}

func (m *MockAuthTokens) GetByToken(ctx context.Context, token string) (*users.AuthToken, error) {
	args := m.Called(ctx, token)
	return tokenResult(args)
}

func (m *MockAuthTokens) DeleteByUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthTokens) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID int64) error {
	args := m.Called(ctx, tx, userID)
	return args.Error(0)
}

func tokenResult(args mock.Arguments) (*users.AuthToken, error) {
	var record *users.AuthToken
	if v := args.Get(0); v != nil {
		record = v.(*users.AuthToken)
	}
	return record, args.Error(1)
}

// MockNotifier records dispatched activations.
type MockNotifier struct {
	mock.Mock
}

var _ users.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) SendAccountActivation(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

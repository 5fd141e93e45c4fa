package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccountService() (*AccountService, *memDB) {
	db := newMemDB()
	return NewAccountService(memUserStore{db}, "PLN"), db
}

func TestAccountService_Register(t *testing.T) {
	svc, db := newTestAccountService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Username: " alice ", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "PLN", u.Currency)
	assert.NotEqual(t, "secret123", u.Password)
	assert.Len(t, db.users, 1)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrConflict)

	u, err = svc.Register(ctx, RegisterInput{Username: "carol", Email: "carol@example.com", Password: "secret123", Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "USD", u.Currency)
}

func TestAccountService_Register_Validation(t *testing.T) {
	svc, _ := newTestAccountService()
	ctx := context.Background()

	cases := []RegisterInput{
		{Username: "ab", Email: "a@example.com", Password: "secret123"},
		{Username: "alice", Email: "not-an-email", Password: "secret123"},
		{Username: "alice", Email: "a@example.com", Password: "123"},
		{Username: "alice", Email: "a@example.com", Password: strings.Repeat("a", 80)},
		{Username: "alice", Email: "a@example.com", Password: strings.Repeat("密", 30)},
		{Username: "alice", Email: "a@example.com", Password: "secret123", Currency: "EURO"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestAccountService_Login(t *testing.T) {
	svc, _ := newTestAccountService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	u, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	u, err = svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccountService_CurrentAndChangePassword(t *testing.T) {
	svc, _ := newTestAccountService()
	ctx := context.Background()

	_, err := svc.Current(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "wrong", "newsecret"), ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "secret123", "123"), ErrValidation)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "secret123", strings.Repeat("a", 73)), ErrValidation)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "secret123", "newsecret"))

	_, err = svc.Login(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice", "newsecret")
	assert.NoError(t, err)
}

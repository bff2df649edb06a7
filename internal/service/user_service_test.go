package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"everkeep-api/internal/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Email: "  Jane@Example.COM ", Password: "hunter2hunter2",
		FirstName: "Jane", LastName: "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, domain.PlanFree, u.Plan)
	assert.Equal(t, "user", u.Role)

	// 邮箱唯一
	_, err = svc.Register(ctx, RegisterInput{
		Email: "jane@example.com", Password: "hunter2hunter2",
		FirstName: "Jane", LastName: "Doe",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := svc.Login(ctx, "JANE@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Login(ctx, "jane@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestBanLocksOutUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Email: "ban@example.com", Password: "hunter2hunter2",
		FirstName: "Bad", LastName: "Actor",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Ban(ctx, u.ID))

	// 软删后登录失效，列表也不再出现
	_, err = svc.Login(ctx, "ban@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users, total, err := svc.List(ctx, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, users)
}

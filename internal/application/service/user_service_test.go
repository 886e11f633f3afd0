package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

func createUser(t *testing.T, e *env, email string, role entity.Role, rate int64) *entity.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), CreateUserInput{
		Email:      email,
		FullName:   "Name " + email,
		Role:       role,
		HourlyRate: decimal.NewFromInt(rate),
		Password:   "Secret1",
	})
	require.NoError(t, err)
	return u
}

func TestUserService_Create(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	lecturer := createUser(t, e, "lee@uni.test", entity.RoleLecturer, 500)
	assert.True(t, lecturer.IsActive)
	assert.True(t, lecturer.HourlyRate.Equal(decimal.NewFromInt(500)))
	assert.NotEqual(t, "Secret1", lecturer.PasswordHash)

	coordinator := createUser(t, e, "coord@uni.test", entity.RoleCoordinator, 700)
	assert.True(t, coordinator.HourlyRate.IsZero(), "rate is kept for lecturers only")

	t.Run("invalid input", func(t *testing.T) {
		_, err := e.users.Create(ctx, CreateUserInput{
			Email:    "not-an-email",
			Role:     entity.Role("Dean"),
			Password: "short",
		})
		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)

		fields := map[string]bool{}
		for _, f := range verr.Fields {
			fields[f.Field] = true
		}
		assert.True(t, fields["email"])
		assert.True(t, fields["full_name"])
		assert.True(t, fields["role"])
		assert.True(t, fields["password"])
	})

	t.Run("lecturer rate out of range", func(t *testing.T) {
		_, err := e.users.Create(ctx, CreateUserInput{
			Email: "x@uni.test", FullName: "X", Role: entity.RoleLecturer,
			HourlyRate: decimal.NewFromInt(1001), Password: "Secret1",
		})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := e.users.Create(ctx, CreateUserInput{
			Email: "LEE@uni.test", FullName: "Dup", Role: entity.RoleHR, Password: "Secret1",
		})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})
}

func TestUserService_Login(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := createUser(t, e, "lee@uni.test", entity.RoleLecturer, 500)

	result, err := e.users.Login(ctx, "lee@uni.test", "Secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, u.ID, result.User.ID)

	_, err = e.users.Login(ctx, "lee@uni.test", "wrong")
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)

	_, err = e.users.Login(ctx, "nobody@uni.test", "Secret1")
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)

	_, err = e.users.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	_, err = e.users.Login(ctx, "lee@uni.test", "Secret1")
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)

	reactivated, err := e.users.SetActive(ctx, u.ID, true)
	require.NoError(t, err)
	assert.True(t, reactivated.IsActive)
	_, err = e.users.Login(ctx, "lee@uni.test", "Secret1")
	assert.NoError(t, err)
}

func TestUserService_Update(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := createUser(t, e, "lee@uni.test", entity.RoleLecturer, 500)

	updated, err := e.users.Update(ctx, u.ID, UpdateUserInput{
		Email:      "lee.new@uni.test",
		FullName:   "Lee New",
		HourlyRate: decimal.NewFromInt(600),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lee New", updated.FullName)
	assert.Equal(t, entity.RoleLecturer, updated.Role)

	me, err := e.users.Me(ctx, entity.Caller{UserID: u.ID, Role: entity.RoleLecturer})
	require.NoError(t, err)
	assert.Equal(t, "lee.new@uni.test", me.Email)
	assert.True(t, me.HourlyRate.Equal(decimal.NewFromInt(600)))

	_, err = e.users.Update(ctx, 999, UpdateUserInput{Email: "a@uni.test", FullName: "A"})
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = e.users.Update(ctx, u.ID, UpdateUserInput{Email: "", FullName: ""})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = e.users.SetActive(ctx, 999, false)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	all, err := e.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserService_CheckActive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := createUser(t, e, "hr@uni.test", entity.RoleHR, 0)
	caller := entity.Caller{UserID: u.ID, Role: entity.RoleHR}

	assert.NoError(t, e.users.CheckActive(ctx, caller))

	_, err := e.users.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	assert.ErrorIs(t, e.users.CheckActive(ctx, caller), entity.ErrForbidden)

	assert.ErrorIs(t, e.users.CheckActive(ctx, entity.Caller{UserID: 999, Role: entity.RoleHR}), entity.ErrUnauthenticated)
}

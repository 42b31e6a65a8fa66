package service_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/repository"
	"github.com/suteetoe/inventory-service/internal/service"
)

func TestCreateUserNormalizes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})

	out, err := f.svc.Create(ctx, service.UserInput{Username: "TestUser", Email: "Test.User@Example.com", Password: "secret"})
	require.NoError(t, err)
	u := out.(*model.User)
	assert.Equal(t, "testuser", u.Username)
	assert.Equal(t, "test.user@example.com", u.Email)
	assert.Equal(t, model.KindPlainUser, u.Kind)
	assert.NotEqual(t, "secret", u.Password, "password is stored hashed")

	_, err = f.svc.Create(ctx, service.UserInput{Username: "testuser", Email: "other@example.com", Password: "secret"})
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeDuplicateUsername))

	_, err = f.svc.Create(ctx, service.UserInput{Username: "another", Email: "TEST.USER@example.com", Password: "secret"})
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeDuplicateEmail))
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})

	tests := []struct {
		name string
		in   service.UserInput
		want error
	}{
		{"short username", service.UserInput{Username: "ab", Email: "a@example.com", Password: "x"}, errs.Code(errs.KindValidation, errs.CodeInvalidUsername)},
		{"bad email", service.UserInput{Username: "jane", Email: "jane@", Password: "x"}, errs.Code(errs.KindValidation, errs.CodeInvalidEmail)},
		{"empty password", service.UserInput{Username: "jane", Email: "jane@example.com", Password: " "}, errs.Code(errs.KindValidation, errs.CodeInvalidValue)},
		{"reserved email", service.UserInput{Username: "jane", Email: model.DeletedUserEmail, Password: "x"}, errs.Code(errs.KindValidation, errs.CodeReservedName)},
		{"reserved username", service.UserInput{Username: "Deleted_User", Email: "d@example.com", Password: "x"}, errs.Code(errs.KindValidation, errs.CodeReservedName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAdminUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	plain := f.user(t, "plain")

	out, err := f.svc.Create(ctx, service.AdminUserInput{UserInput: service.UserInput{
		Username: "boss", Email: "boss@example.com", Password: "secret",
	}})
	require.NoError(t, err)
	admin := out.(*model.User)
	assert.Equal(t, model.KindAdminUser, admin.Kind)
	assert.Equal(t, model.AdminStatusRegular, admin.AdminStatus)
	assert.Equal(t, model.AdminProfile{Status: model.AdminStatusRegular}, admin.Profile())

	_, err = f.svc.Create(ctx, service.AdminUserInput{
		UserInput:   service.UserInput{Username: "root", Email: "root@example.com", Password: "secret"},
		AdminStatus: "super",
	})
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeInvalidAdminStatus))

	admins, err := f.svc.AdminUsers(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "boss", admins[0].Username)

	everyone, err := f.svc.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, everyone, 2)

	plainOnly, err := f.svc.UsersBy(ctx, repository.Filters{"type": model.KindPlainUser})
	require.NoError(t, err)
	require.Len(t, plainOnly, 1)
	assert.Equal(t, plain.ID, plainOnly[0].ID)

	_, err = f.svc.GetByID(ctx, service.KindAdminUser, plain.ID)
	assert.ErrorIs(t, err, errs.Code(errs.KindNotFound, errs.CodeUserNotFound))
	got, err := f.svc.GetByID(ctx, service.KindAdminUser, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.(*model.User).ID)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	jane := f.user(t, "jane")
	f.user(t, "john")

	out, err := f.svc.UpdateByID(ctx, jane.ID, service.UserPatch{Username: ptr("Jane"), Email: ptr("JANE@example.org")})
	require.NoError(t, err, "own username is exempt from the uniqueness check")
	assert.Equal(t, "jane", out.(*model.User).Username)
	assert.Equal(t, "jane@example.org", out.(*model.User).Email)

	_, err = f.svc.UpdateByID(ctx, jane.ID, service.UserPatch{Username: ptr("JOHN")})
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeDuplicateUsername))

	_, err = f.svc.UpdateByID(ctx, jane.ID, service.UserPatch{Email: ptr("john@example.com")})
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeDuplicateEmail))

	_, err = f.svc.UpdateByID(ctx, jane.ID, service.UserPatch{AdminStatus: ptr("full")})
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeInvalidAdminStatus))

	_, err = f.svc.UpdateByID(ctx, jane.ID, service.UserPatch{}.AsAdmin())
	assert.ErrorIs(t, err, errs.Code(errs.KindNotFound, errs.CodeUserNotFound))

	_, err = f.svc.UpdateByID(ctx, jane.ID, service.UserPatch{Password: ptr("new-secret")})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "jane", "new-secret")
	assert.NoError(t, err)
}

func TestUpdateAdminStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	out, err := f.svc.Create(ctx, service.AdminUserInput{UserInput: service.UserInput{
		Username: "boss", Email: "boss@example.com", Password: "secret",
	}})
	require.NoError(t, err)
	boss := out.(*model.User)

	out, err = f.svc.UpdateByID(ctx, boss.ID, service.UserPatch{AdminStatus: ptr("full")}.AsAdmin())
	require.NoError(t, err)
	assert.Equal(t, model.AdminStatusFull, out.(*model.User).AdminStatus)

	logs, err := f.logs.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "update_admin_user", logs[0].Func)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	created := f.user(t, "jane")

	u, err := f.svc.Login(ctx, " JANE ", "secret-jane")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = f.svc.Login(ctx, "jane", "wrong")
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeInvalidCredentials))

	_, unknownErr := f.svc.Login(ctx, "nobody", "secret-jane")
	assert.ErrorIs(t, unknownErr, errs.Code(errs.KindValidation, errs.CodeInvalidCredentials))
	assert.Equal(t, errs.PublicMessage(err), errs.PublicMessage(unknownErr))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LoginAttemptsCounter.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.LoginAttemptsCounter.WithLabelValues("failure")))
}

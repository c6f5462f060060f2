package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samsedu/rise/core"
	"github.com/samsedu/rise/core/school"
	"github.com/samsedu/rise/core/user"
	emailsvc "github.com/samsedu/rise/services/email"
	inmemdb "github.com/samsedu/rise/storage/database/inmem"
)

func setup(t *testing.T) (user.Service, school.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)

	emailsvc.SentMessages = emailsvc.SentMessages[:0]
	schoolRepo := inmemdb.NewSchoolRepository(db)
	svc := user.NewServiceMock(inmemdb.NewUserRepository(db), schoolRepo, emailsvc.NewConsoleServiceMock())
	return svc, schoolRepo
}

func createSchool(t *testing.T, repo school.Repository, name string) school.School {
	t.Helper()
	sch, err := repo.CreateSchool(context.Background(), school.School{Name: name})
	require.NoError(t, err)
	return sch
}

func TestServiceRegisterBootstrap(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	first, err := svc.Register(ctx, user.RegisterUser{Email: "first@test.test", Password: "Secur3!pwd", PasswordConfirm: "Secur3!pwd"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleSuperAdmin, first.Role)
	assert.NotEmpty(t, first.ID)

	second, err := svc.Register(ctx, user.RegisterUser{Email: "second@test.test", Password: "Secur3!pwd", PasswordConfirm: "Secur3!pwd"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleUnassigned, second.Role)
}

func TestServiceProvision(t *testing.T) {
	ctx := context.Background()

	t.Run("superAdmin provisions a schoolAdmin and a welcome email goes out", func(t *testing.T) {
		svc, schoolRepo := setup(t)
		sch := createSchool(t, schoolRepo, "Northside High")
		caller := user.User{ID: "sa", Role: user.RoleSuperAdmin}

		usr, err := svc.Provision(ctx, caller, user.ProvisionUser{
			Email:    "admin@northside.test",
			Role:     user.RoleSchoolAdmin,
			SchoolID: sch.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, user.RoleSchoolAdmin, usr.Role)
		assert.Equal(t, sch.ID, usr.SchoolID)
		assert.Equal(t, "sa", usr.CreatedBy)
		assert.Empty(t, usr.PasswordHash) // set via the welcome link

		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, "Welcome! Set Your Password", msg.Subject)
		assert.Equal(t, "admin@northside.test", msg.To[0].Address)
		assert.Contains(t, msg.TextContent, "/password-reset/")
	})

	t.Run("schoolAdmin provisions a teacher in own school", func(t *testing.T) {
		svc, schoolRepo := setup(t)
		sch := createSchool(t, schoolRepo, "Northside High")
		caller := user.User{ID: "adm", Role: user.RoleSchoolAdmin, SchoolID: sch.ID}

		usr, err := svc.Provision(ctx, caller, user.ProvisionUser{
			Email:    "teacher@northside.test",
			Role:     user.RoleTeacher,
			SchoolID: sch.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, user.RoleTeacher, usr.Role)
	})

	t.Run("schoolAdmin cannot provision outside own school", func(t *testing.T) {
		svc, schoolRepo := setup(t)
		sch := createSchool(t, schoolRepo, "Northside High")
		other := createSchool(t, schoolRepo, "Southside High")
		caller := user.User{ID: "adm", Role: user.RoleSchoolAdmin, SchoolID: sch.ID}

		_, err := svc.Provision(ctx, caller, user.ProvisionUser{
			Email:    "teacher@southside.test",
			Role:     user.RoleTeacher,
			SchoolID: other.ID,
		})
		assert.Equal(t, user.ErrPermissionDenied, err)
		assert.Empty(t, emailsvc.SentMessages)
	})

	t.Run("unknown school is a field error", func(t *testing.T) {
		svc, _ := setup(t)
		caller := user.User{ID: "sa", Role: user.RoleSuperAdmin}

		_, err := svc.Provision(ctx, caller, user.ProvisionUser{
			Email:    "teacher@nowhere.test",
			Role:     user.RoleTeacher,
			SchoolID: "nope",
		})
		require.Error(t, err)
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok)
		assert.Equal(t, "school_id", vErr.Fields[0].Field)
	})
}

func TestServiceResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	usr, err := svc.Register(ctx, user.RegisterUser{Email: "reset@test.test", Password: "Secur3!pwd", PasswordConfirm: "Secur3!pwd"})
	require.NoError(t, err)

	token, err := user.MakeToken(usr)
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, user.ResetUserPassword{
		Token:           token,
		UID:             user.EncodeUID(usr),
		Password:        "N3w!passwd",
		PasswordConfirm: "N3w!passwd",
	})
	require.NoError(t, err)

	refreshed, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("N3w!passwd"))
	assert.Error(t, refreshed.CheckPassword("Secur3!pwd"))

	t.Run("used token is invalidated", func(t *testing.T) {
		err = svc.ResetPassword(ctx, user.ResetUserPassword{
			Token:           token,
			UID:             user.EncodeUID(usr),
			Password:        "An0ther!pwd",
			PasswordConfirm: "An0ther!pwd",
		})
		require.Error(t, err)
	})

	t.Run("garbage uid", func(t *testing.T) {
		err = svc.ResetPassword(ctx, user.ResetUserPassword{
			Token:           token,
			UID:             "%%%",
			Password:        "An0ther!pwd",
			PasswordConfirm: "An0ther!pwd",
		})
		require.Error(t, err)
	})
}

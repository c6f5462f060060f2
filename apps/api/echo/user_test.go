package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samsedu/rise/core/user"
	emailsvc "github.com/samsedu/rise/services/email"
)

func TestAPIHome(t *testing.T) {
	env := setupServer(t)
	rec := env.do(t, http.MethodGet, "/", "")
	checkCode(t, http.StatusOK, rec)
	assert.Contains(t, rec.Body.String(), "Welcome to the RISE API!")
}

func TestUserAPIRegisterAndLogin(t *testing.T) {
	env := setupServer(t)

	body := marshalObj(t, user.RegisterUser{
		Email:           "first@test.test",
		Password:        "Secur3!pwd",
		PasswordConfirm: "Secur3!pwd",
	})
	rec := env.do(t, http.MethodPost, "/v1/users/register", "", body)
	checkCode(t, http.StatusCreated, rec)

	var registered user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Equal(t, user.RoleSuperAdmin, registered.Role) // bootstrap rule

	t.Run("login", func(t *testing.T) {
		body := marshalObj(t, LoginRequest{Email: "first@test.test", Password: "Secur3!pwd"})
		rec := env.do(t, http.MethodPost, "/v1/users/login", "", body)
		checkCode(t, http.StatusOK, rec)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)

		me := env.do(t, http.MethodGet, "/v1/users/me", resp.Token)
		checkCode(t, http.StatusOK, me)
		assert.Contains(t, me.Body.String(), "first@test.test")
	})

	t.Run("wrong password", func(t *testing.T) {
		body := marshalObj(t, LoginRequest{Email: "first@test.test", Password: "nope"})
		rec := env.do(t, http.MethodPost, "/v1/users/login", "", body)
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("unknown email", func(t *testing.T) {
		body := marshalObj(t, LoginRequest{Email: "ghost@test.test", Password: "Secur3!pwd"})
		rec := env.do(t, http.MethodPost, "/v1/users/login", "", body)
		checkCode(t, http.StatusBadRequest, rec)
	})
}

func TestUserAPIProvision(t *testing.T) {
	env := setupServer(t)
	sch := env.createSchool(t, "Northside High")

	superAdmin := env.createUser(t, "sa@test.test", user.RoleSuperAdmin, "")
	teacher := env.createUser(t, "t@test.test", user.RoleTeacher, sch.ID)

	body := marshalObj(t, user.ProvisionUser{
		Email:    "admin@northside.test",
		Role:     user.RoleSchoolAdmin,
		SchoolID: sch.ID,
	})

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/provision", "", body)
		checkCode(t, http.StatusUnauthorized, rec)
	})

	t.Run("teacher is denied", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/provision", getToken(t, teacher), body)
		checkCode(t, http.StatusForbidden, rec)
	})

	t.Run("superAdmin provisions and the welcome email goes out", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/users/provision", getToken(t, superAdmin), body)
		checkCode(t, http.StatusCreated, rec)

		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.Equal(t, user.RoleSchoolAdmin, usr.Role)
		assert.Equal(t, sch.ID, usr.SchoolID)

		require.Len(t, emailsvc.SentMessages, 1)
		assert.Equal(t, "admin@northside.test", emailsvc.SentMessages[0].To[0].Address)
	})
}

func TestUserAPIQuery(t *testing.T) {
	env := setupServer(t)
	sch := env.createSchool(t, "Northside High")

	superAdmin := env.createUser(t, "sa@test.test", user.RoleSuperAdmin, "")
	teacher := env.createUser(t, "t@test.test", user.RoleTeacher, sch.ID)

	t.Run("superAdmin lists users", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/users", getToken(t, superAdmin))
		checkCode(t, http.StatusOK, rec)

		var users []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 2)
	})

	t.Run("teacher is denied", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/users", getToken(t, teacher))
		checkCode(t, http.StatusForbidden, rec)
	})
}

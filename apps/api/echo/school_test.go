package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samsedu/rise/core/school"
	"github.com/samsedu/rise/core/user"
)

func TestSchoolAPI(t *testing.T) {
	env := setupServer(t)

	superAdmin := env.createUser(t, "sa@test.test", user.RoleSuperAdmin, "")
	teacher := env.createUser(t, "t@test.test", user.RoleTeacher, "sch1")

	body := marshalObj(t, school.NewSchool{Name: "Northside High", ContactEmail: "office@northside.test"})

	t.Run("teacher is denied", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/schools", getToken(t, teacher), body)
		checkCode(t, http.StatusForbidden, rec)
	})

	var created school.School

	t.Run("superAdmin creates a school", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/schools", getToken(t, superAdmin), body)
		checkCode(t, http.StatusCreated, rec)

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "Northside High", created.Name)
		assert.Equal(t, superAdmin.ID, created.CreatedBy)
	})

	t.Run("duplicate name is a field error", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/schools", getToken(t, superAdmin), body)
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("list and retrieve", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/schools", getToken(t, superAdmin))
		checkCode(t, http.StatusOK, rec)

		var schools []school.School
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schools))
		require.Len(t, schools, 1)

		rec = env.do(t, http.MethodGet, "/v1/schools/"+created.ID, getToken(t, superAdmin))
		checkCode(t, http.StatusOK, rec)

		rec = env.do(t, http.MethodGet, "/v1/schools/nope", getToken(t, superAdmin))
		checkCode(t, http.StatusNotFound, rec)
	})
}

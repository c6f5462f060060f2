package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samsedu/rise/core/pointsheet"
	"github.com/samsedu/rise/core/user"
)

func perfectSheetBody(t *testing.T) []byte {
	t.Helper()
	scores := make([]pointsheet.PeriodScore, 0, pointsheet.NumPeriods)
	for i := 1; i <= pointsheet.NumPeriods; i++ {
		scores = append(scores, pointsheet.PeriodScore{Period: i, Respect: 2, Integrity: 2, Self: 2, Excellence: 2})
	}
	return marshalObj(t, pointsheet.NewReport{PeriodScores: scores})
}

func TestPointSheetAPISubmit(t *testing.T) {
	env := setupServer(t)
	sch := env.createSchool(t, "Northside High")
	other := env.createSchool(t, "Southside High")

	teacher := env.createUser(t, "t@northside.test", user.RoleTeacher, sch.ID)
	crossTeacher := env.createUser(t, "t@southside.test", user.RoleTeacher, other.ID)
	superAdmin := env.createUser(t, "sa@test.test", user.RoleSuperAdmin, "")

	st := env.createStudent(t, sch.ID, 1, 0)
	path := "/v1/students/" + st.ID + "/point-sheets"

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, "", perfectSheetBody(t))
		checkCode(t, http.StatusUnauthorized, rec)
	})

	t.Run("teacher of another school is denied", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, getToken(t, crossTeacher), perfectSheetBody(t))
		checkCode(t, http.StatusForbidden, rec)
	})

	t.Run("superAdmin has no school to submit for", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, getToken(t, superAdmin), perfectSheetBody(t))
		checkCode(t, http.StatusForbidden, rec)
	})

	t.Run("incomplete sheet is a field error", func(t *testing.T) {
		body := marshalObj(t, pointsheet.NewReport{
			PeriodScores: []pointsheet.PeriodScore{{Period: 1, Respect: 2, Integrity: 2, Self: 2, Excellence: 2}},
		})
		rec := env.do(t, http.MethodPost, path, getToken(t, teacher), body)
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("teacher records a successful day", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, path, getToken(t, teacher), perfectSheetBody(t))
		checkCode(t, http.StatusCreated, rec)

		var resp SubmitResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.NewLevel)
		assert.Equal(t, 1, resp.NewDaysInCurrentLevel)
		assert.False(t, resp.Completed)
		assert.True(t, resp.Report.IsSuccessfulDay)
		assert.Equal(t, "Point sheet recorded: level 1, day 1.", resp.Message)
	})

	t.Run("absent day", func(t *testing.T) {
		body := marshalObj(t, pointsheet.NewReport{IsAbsent: true})
		rec := env.do(t, http.MethodPost, path, getToken(t, teacher), body)
		checkCode(t, http.StatusCreated, rec)

		var resp SubmitResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Report.IsSuccessfulDay)
		assert.Equal(t, 1, resp.NewDaysInCurrentLevel) // unchanged
	})

	t.Run("unknown student", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/students/nope/point-sheets", getToken(t, teacher), perfectSheetBody(t))
		checkCode(t, http.StatusNotFound, rec)
	})
}

func TestPointSheetAPIQuery(t *testing.T) {
	env := setupServer(t)
	sch := env.createSchool(t, "Northside High")
	other := env.createSchool(t, "Southside High")

	teacher := env.createUser(t, "t@northside.test", user.RoleTeacher, sch.ID)
	crossTeacher := env.createUser(t, "t@southside.test", user.RoleTeacher, other.ID)
	superAdmin := env.createUser(t, "sa@test.test", user.RoleSuperAdmin, "")

	st := env.createStudent(t, sch.ID, 1, 0)
	path := "/v1/students/" + st.ID + "/point-sheets"

	rec := env.do(t, http.MethodPost, path, getToken(t, teacher), perfectSheetBody(t))
	checkCode(t, http.StatusCreated, rec)

	t.Run("superAdmin reads any student's history", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, path, getToken(t, superAdmin))
		checkCode(t, http.StatusOK, rec)

		var reports []pointsheet.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
		assert.Len(t, reports, 1)
	})

	t.Run("teacher of another school is denied", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, path, getToken(t, crossTeacher))
		checkCode(t, http.StatusForbidden, rec)
	})
}

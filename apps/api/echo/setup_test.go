package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samsedu/rise/core"
	"github.com/samsedu/rise/core/pointsheet"
	"github.com/samsedu/rise/core/school"
	"github.com/samsedu/rise/core/student"
	"github.com/samsedu/rise/core/user"
	emailsvc "github.com/samsedu/rise/services/email"
	inmemdb "github.com/samsedu/rise/storage/database/inmem"
)

// stubLogger satisfies core.Logger for tests.
type stubLogger struct{}

func (stubLogger) Enable(bool)                  {}
func (stubLogger) Debug(string, ...interface{}) {}
func (stubLogger) Info(string, ...interface{})  {}
func (stubLogger) Warn(string, ...interface{})  {}
func (stubLogger) Error(string, ...interface{}) {}
func (stubLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	server      Server
	userRepo    user.Repository
	userSvc     user.Service
	schoolRepo  school.Repository
	studentRepo student.Repository
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	core.Conf.Debug = false
	core.Conf.TestMode = true

	db, err := inmemdb.Open()
	require.NoError(t, err)

	emailsvc.SentMessages = emailsvc.SentMessages[:0]
	userRepo := inmemdb.NewUserRepository(db)
	schoolRepo := inmemdb.NewSchoolRepository(db)
	studentRepo := inmemdb.NewStudentRepository(db)

	usrSvc := user.NewServiceMock(userRepo, schoolRepo, emailsvc.NewConsoleServiceMock())
	schoolSvc := school.NewService(schoolRepo)
	studentSvc := student.NewService(studentRepo)
	pointSheetSvc := pointsheet.NewService(inmemdb.NewPointSheetRepository(db), studentRepo)

	server := NewServer(&Options{
		Address:        "localhost:0",
		DisableReqLogs: true,
		Logger:         stubLogger{},
		UserSvc:        usrSvc,
		SchoolSvc:      schoolSvc,
		StudentSvc:     studentSvc,
		PointSheetSvc:  pointSheetSvc,
	})
	return &testEnv{
		server:      server,
		userRepo:    userRepo,
		userSvc:     usrSvc,
		schoolRepo:  schoolRepo,
		studentRepo: studentRepo,
	}
}

func (env *testEnv) do(t *testing.T, method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) createUser(t *testing.T, email string, role user.Role, schoolID string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		Role:      role,
		SchoolID:  schoolID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	require.NoError(t, usr.SetPassword("Secur3!pwd"))

	usr, err := env.userRepo.UpdateOrCreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func (env *testEnv) createSchool(t *testing.T, name string) school.School {
	t.Helper()
	sch, err := env.schoolRepo.CreateSchool(context.Background(), school.School{Name: name})
	require.NoError(t, err)
	return sch
}

func (env *testEnv) createStudent(t *testing.T, schoolID string, level, days int) student.Student {
	t.Helper()
	now := time.Now().UTC()
	st, err := env.studentRepo.CreateStudent(context.Background(), student.Student{
		SchoolID:           schoolID,
		Name:               "Jordan Smith",
		StudentID:          "S-001",
		CurrentLevel:       level,
		DaysInCurrentLevel: days,
		ProgramStartDate:   now,
		CreatedAt:          now,
		LastUpdated:        now,
	})
	require.NoError(t, err)
	return st
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	require.NoError(t, err)
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func checkCode(t *testing.T, want int, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, want, rec.Body.String())
	}
}

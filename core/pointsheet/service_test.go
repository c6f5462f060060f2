package pointsheet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samsedu/rise/core/pointsheet"
	"github.com/samsedu/rise/core/student"
	"github.com/samsedu/rise/core/user"
	inmemdb "github.com/samsedu/rise/storage/database/inmem"
)

func perfectSheet() []pointsheet.PeriodScore {
	scores := make([]pointsheet.PeriodScore, 0, pointsheet.NumPeriods)
	for i := 1; i <= pointsheet.NumPeriods; i++ {
		scores = append(scores, pointsheet.PeriodScore{Period: i, Respect: 2, Integrity: 2, Self: 2, Excellence: 2})
	}
	return scores
}

func setup(t *testing.T) (pointsheet.Service, student.Repository, pointsheet.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewPointSheetRepository(db)
	students := inmemdb.NewStudentRepository(db)
	return pointsheet.NewService(repo, students), students, repo
}

func createStudent(t *testing.T, repo student.Repository, schoolID string, level, days int) student.Student {
	t.Helper()
	now := time.Now().UTC()
	st, err := repo.CreateStudent(context.Background(), student.Student{
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

func TestServiceSubmit(t *testing.T) {
	ctx := context.Background()
	teacher := user.User{ID: "t1", Email: "t@school.test", Role: user.RoleTeacher, SchoolID: "sch1"}

	t.Run("successful day advances the student", func(t *testing.T) {
		svc, students, _ := setup(t)
		st := createStudent(t, students, "sch1", 1, 0)

		res, err := svc.Submit(ctx, teacher, pointsheet.NewReport{StudentID: st.ID, PeriodScores: perfectSheet()})
		require.NoError(t, err)

		assert.Equal(t, 1, res.NewLevel)
		assert.Equal(t, 1, res.NewDaysInCurrentLevel)
		assert.False(t, res.Completed)
		assert.True(t, res.Report.IsSuccessfulDay)
		assert.Equal(t, 48, res.Report.TotalEarnedPoints)
		assert.Equal(t, 1, res.Report.LevelAtTimeOfReport)
		assert.NotEmpty(t, res.Report.ID)

		refreshed, err := students.GetStudentByID(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, refreshed.DaysInCurrentLevel)
		assert.Equal(t, st.Version+1, refreshed.Version)
	})

	t.Run("promotion on reaching the requirement", func(t *testing.T) {
		svc, students, _ := setup(t)
		st := createStudent(t, students, "sch1", 1, 9)

		res, err := svc.Submit(ctx, teacher, pointsheet.NewReport{StudentID: st.ID, PeriodScores: perfectSheet()})
		require.NoError(t, err)
		assert.Equal(t, 2, res.NewLevel)
		assert.Equal(t, 0, res.NewDaysInCurrentLevel)
	})

	t.Run("absent day is recorded but never successful", func(t *testing.T) {
		svc, students, _ := setup(t)
		st := createStudent(t, students, "sch1", 2, 5)

		res, err := svc.Submit(ctx, teacher, pointsheet.NewReport{StudentID: st.ID, IsAbsent: true})
		require.NoError(t, err)
		assert.False(t, res.Report.IsSuccessfulDay)
		assert.Equal(t, 0, res.Report.TotalPossiblePoints)
		assert.Equal(t, 2, res.NewLevel)
		assert.Equal(t, 5, res.NewDaysInCurrentLevel)
	})

	t.Run("level 4 completion is observed, not transitioned", func(t *testing.T) {
		svc, students, _ := setup(t)
		st := createStudent(t, students, "sch1", 4, 9)

		res, err := svc.Submit(ctx, teacher, pointsheet.NewReport{StudentID: st.ID, PeriodScores: perfectSheet()})
		require.NoError(t, err)
		assert.Equal(t, 4, res.NewLevel)
		assert.Equal(t, 10, res.NewDaysInCurrentLevel)
		assert.True(t, res.Completed)
	})

	t.Run("teacher of another school is denied", func(t *testing.T) {
		svc, students, _ := setup(t)
		st := createStudent(t, students, "sch2", 1, 0)

		_, err := svc.Submit(ctx, teacher, pointsheet.NewReport{StudentID: st.ID, PeriodScores: perfectSheet()})
		assert.Equal(t, user.ErrPermissionDenied, err)
	})

	t.Run("unassigned caller is denied", func(t *testing.T) {
		svc, students, _ := setup(t)
		st := createStudent(t, students, "sch1", 1, 0)

		caller := user.User{ID: "u1", Role: user.RoleUnassigned}
		_, err := svc.Submit(ctx, caller, pointsheet.NewReport{StudentID: st.ID, PeriodScores: perfectSheet()})
		assert.Equal(t, user.ErrPermissionDenied, err)
	})

	t.Run("unknown student", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.Submit(ctx, teacher, pointsheet.NewReport{StudentID: "nope", PeriodScores: perfectSheet()})
		assert.Equal(t, student.ErrNotFound, err)
	})

	t.Run("same-day submissions count independently", func(t *testing.T) {
		svc, students, _ := setup(t)
		st := createStudent(t, students, "sch1", 1, 0)

		for i := 1; i <= 2; i++ {
			res, err := svc.Submit(ctx, teacher, pointsheet.NewReport{StudentID: st.ID, PeriodScores: perfectSheet()})
			require.NoError(t, err)
			assert.Equal(t, i, res.NewDaysInCurrentLevel)
		}

		reports, err := svc.QueryByStudent(ctx, teacher, st.ID, nil)
		require.NoError(t, err)
		assert.Len(t, reports, 2)
	})
}

// conflictingRepo fails the first SaveReport with a version conflict, then
// delegates; the submission should retry and land.
type conflictingRepo struct {
	pointsheet.Repository
	conflicts int
}

func (r *conflictingRepo) SaveReport(ctx context.Context, rep pointsheet.Report, st student.Student) (pointsheet.Report, error) {
	if r.conflicts > 0 {
		r.conflicts--
		return pointsheet.Report{}, pointsheet.ErrVersionConflict
	}
	return r.Repository.SaveReport(ctx, rep, st)
}

func TestServiceSubmitRetriesOnVersionConflict(t *testing.T) {
	ctx := context.Background()
	teacher := user.User{ID: "t1", Email: "t@school.test", Role: user.RoleTeacher, SchoolID: "sch1"}

	db, err := inmemdb.Open()
	require.NoError(t, err)
	students := inmemdb.NewStudentRepository(db)
	repo := &conflictingRepo{Repository: inmemdb.NewPointSheetRepository(db), conflicts: 2}
	svc := pointsheet.NewService(repo, students)

	st := createStudent(t, students, "sch1", 1, 0)

	res, err := svc.Submit(ctx, teacher, pointsheet.NewReport{StudentID: st.ID, PeriodScores: perfectSheet()})
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewDaysInCurrentLevel)
}

func TestServiceSubmitGivesUpAfterRetryBudget(t *testing.T) {
	ctx := context.Background()
	teacher := user.User{ID: "t1", Email: "t@school.test", Role: user.RoleTeacher, SchoolID: "sch1"}

	db, err := inmemdb.Open()
	require.NoError(t, err)
	students := inmemdb.NewStudentRepository(db)
	repo := &conflictingRepo{Repository: inmemdb.NewPointSheetRepository(db), conflicts: 100}
	svc := pointsheet.NewService(repo, students)

	st := createStudent(t, students, "sch1", 1, 0)

	_, err = svc.Submit(ctx, teacher, pointsheet.NewReport{StudentID: st.ID, PeriodScores: perfectSheet()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modified concurrently")
}

func TestServiceQueryByStudent(t *testing.T) {
	ctx := context.Background()
	teacher := user.User{ID: "t1", Email: "t@school.test", Role: user.RoleTeacher, SchoolID: "sch1"}

	svc, students, _ := setup(t)
	st := createStudent(t, students, "sch1", 1, 0)

	_, err := svc.Submit(ctx, teacher, pointsheet.NewReport{StudentID: st.ID, PeriodScores: perfectSheet()})
	require.NoError(t, err)

	t.Run("superAdmin bypasses the school boundary", func(t *testing.T) {
		admin := user.User{ID: "a1", Role: user.RoleSuperAdmin}
		reports, err := svc.QueryByStudent(ctx, admin, st.ID, nil)
		require.NoError(t, err)
		assert.Len(t, reports, 1)
	})

	t.Run("staff of another school is denied", func(t *testing.T) {
		other := user.User{ID: "t2", Role: user.RoleTeacher, SchoolID: "sch2"}
		_, err := svc.QueryByStudent(ctx, other, st.ID, nil)
		assert.Equal(t, user.ErrPermissionDenied, err)
	})
}

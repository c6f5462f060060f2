package pointsheet

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/samsedu/rise/core"
	"github.com/samsedu/rise/core/student"
	"github.com/samsedu/rise/core/user"
)

var (
	// ErrVersionConflict signals that the student record changed between the
	// read and the write of a submission. Submissions retry on it; it only
	// surfaces when the retry budget is exhausted.
	ErrVersionConflict = errors.New("student record was modified concurrently")
)

// submissions retry the read-compute-write cycle this many times before
// giving up on a contended student record.
const maxSubmitAttempts = 3

type (
	Repository interface {
		// SaveReport persists the report and the student's new progress as a
		// single atomic unit, so no crash can leave the report log and the
		// level/day counters inconsistent. The student's Version field holds
		// the version the computation read; the write fails with
		// ErrVersionConflict if the stored version no longer matches.
		SaveReport(ctx context.Context, rep Report, st student.Student) (Report, error)
		// QueryReportsByStudent returns a student's reports; default ordering
		// is by date, descending.
		QueryReportsByStudent(ctx context.Context, studentID string, ordering []core.DBOrdering) ([]Report, error)
	}

	// StudentDirectory is the slice of the roster store the recorder reads.
	StudentDirectory interface {
		GetStudentByID(ctx context.Context, id string) (student.Student, error)
	}

	// SubmitResult is the outcome of processing a daily point sheet.
	SubmitResult struct {
		Report                Report `json:"report"`
		NewLevel              int    `json:"new_level"`
		NewDaysInCurrentLevel int    `json:"new_days_in_current_level"`
		// Completed observes that the student finished the terminal level.
		// Nothing transitions further; it is flagged for a human process.
		Completed bool `json:"completed"`
	}

	Service interface {
		Submit(ctx context.Context, caller user.User, nr NewReport) (SubmitResult, error)
		QueryByStudent(ctx context.Context, caller user.User, studentID string, ordering []core.DBOrdering) ([]Report, error)
	}

	service struct {
		repo     Repository
		students StudentDirectory
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, students StudentDirectory) Service {
	return &service{
		repo:     repo,
		students: students,
	}
}

// Submit processes one daily point sheet: it computes the day's totals,
// decides success against the student's current level threshold, runs the
// level-progression transition and persists the new student state together
// with the immutable report.
//
// The authorization gate is re-checked here so the service is safe to call
// directly. Two submissions for the same student may race on the student
// record; the version check turns that race into a bounded retry instead of
// a silent lost update.
//
// Note: two submissions on the same calendar day are deliberately counted as
// independent daily events; deduplication is a policy left to the caller.
func (svc *service) Submit(ctx context.Context, caller user.User, nr NewReport) (SubmitResult, error) {
	var lastErr error

	for attempt := 0; attempt < maxSubmitAttempts; attempt++ {
		st, err := svc.students.GetStudentByID(ctx, nr.StudentID)
		if err != nil {
			return SubmitResult{}, err
		}
		if err := user.CanSubmitPointSheet(caller, st.SchoolID); err != nil {
			return SubmitResult{}, err
		}

		earned, possible, percentage := ComputeTotals(nr.PeriodScores, nr.IsAbsent)
		success := IsSuccessfulDay(percentage, st.CurrentLevel)
		newLevel, newDays, completed := Advance(st.CurrentLevel, st.DaysInCurrentLevel, success)

		now := time.Now().UTC()
		rep := Report{
			StudentID:    st.ID,
			SchoolID:     st.SchoolID,
			Date:         now,
			TeacherID:    caller.ID,
			TeacherEmail: caller.Email,
			PeriodScores: nr.PeriodScores,
			IsAbsent:     nr.IsAbsent,

			TotalEarnedPoints:   earned,
			TotalPossiblePoints: possible,
			DailyPercentage:     percentage,
			IsSuccessfulDay:     success,
			LevelAtTimeOfReport: st.CurrentLevel,
		}

		st.CurrentLevel = newLevel
		st.DaysInCurrentLevel = newDays
		st.LastUpdated = now

		rep, err = svc.repo.SaveReport(ctx, rep, st)
		if err == ErrVersionConflict {
			lastErr = err
			continue
		}
		if err != nil {
			return SubmitResult{}, err
		}

		return SubmitResult{
			Report:                rep,
			NewLevel:              newLevel,
			NewDaysInCurrentLevel: newDays,
			Completed:             completed,
		}, nil
	}

	return SubmitResult{}, pkgerrors.Wrap(lastErr, "submitting point sheet")
}

func (svc *service) QueryByStudent(ctx context.Context, caller user.User, studentID string, ordering []core.DBOrdering) ([]Report, error) {
	st, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !caller.IsSuperAdmin() {
		if err := user.CanSubmitPointSheet(caller, st.SchoolID); err != nil {
			return nil, err
		}
	}
	return svc.repo.QueryReportsByStudent(ctx, studentID, ordering)
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/samsedu/rise/core"
	"github.com/samsedu/rise/core/pointsheet"
	"github.com/samsedu/rise/core/student"
)

type reportRow struct {
	ID                  string    `db:"id"`
	StudentID           string    `db:"student_id"`
	SchoolID            string    `db:"school_id"`
	Date                time.Time `db:"date"`
	TeacherID           string    `db:"teacher_id"`
	TeacherEmail        string    `db:"teacher_email"`
	PeriodScores        []byte    `db:"period_scores"`
	IsAbsent            bool      `db:"is_absent"`
	TotalEarnedPoints   int       `db:"total_earned_points"`
	TotalPossiblePoints int       `db:"total_possible_points"`
	DailyPercentage     float64   `db:"daily_percentage"`
	IsSuccessfulDay     bool      `db:"is_successful_day"`
	LevelAtTimeOfReport int       `db:"level_at_time_of_report"`
}

func packReport(rep pointsheet.Report) (reportRow, error) {
	scores, err := json.Marshal(rep.PeriodScores)
	if err != nil {
		return reportRow{}, errors.Wrap(err, "encoding period scores")
	}
	return reportRow{
		ID:                  rep.ID,
		StudentID:           rep.StudentID,
		SchoolID:            rep.SchoolID,
		Date:                rep.Date.UTC(),
		TeacherID:           rep.TeacherID,
		TeacherEmail:        rep.TeacherEmail,
		PeriodScores:        scores,
		IsAbsent:            rep.IsAbsent,
		TotalEarnedPoints:   rep.TotalEarnedPoints,
		TotalPossiblePoints: rep.TotalPossiblePoints,
		DailyPercentage:     rep.DailyPercentage,
		IsSuccessfulDay:     rep.IsSuccessfulDay,
		LevelAtTimeOfReport: rep.LevelAtTimeOfReport,
	}, nil
}

func unpackReport(row reportRow) (pointsheet.Report, error) {
	var scores []pointsheet.PeriodScore
	if len(row.PeriodScores) > 0 {
		if err := json.Unmarshal(row.PeriodScores, &scores); err != nil {
			return pointsheet.Report{}, errors.Wrap(err, "decoding period scores")
		}
	}
	return pointsheet.Report{
		ID:                  row.ID,
		StudentID:           row.StudentID,
		SchoolID:            row.SchoolID,
		Date:                row.Date,
		TeacherID:           row.TeacherID,
		TeacherEmail:        row.TeacherEmail,
		PeriodScores:        scores,
		IsAbsent:            row.IsAbsent,
		TotalEarnedPoints:   row.TotalEarnedPoints,
		TotalPossiblePoints: row.TotalPossiblePoints,
		DailyPercentage:     row.DailyPercentage,
		IsSuccessfulDay:     row.IsSuccessfulDay,
		LevelAtTimeOfReport: row.LevelAtTimeOfReport,
	}, nil
}

const reportColumns = "id, student_id, school_id, date, teacher_id, teacher_email, period_scores, " +
	"is_absent, total_earned_points, total_possible_points, daily_percentage, is_successful_day, level_at_time_of_report"

var reportOrderings = map[string]string{
	"date":             "date",
	"daily_percentage": "daily_percentage",
}

type pointSheetRepository struct {
	db *sqlx.DB
}

var _ pointsheet.Repository = (*pointSheetRepository)(nil) // interface compliance check

func NewPointSheetRepository(db *sqlx.DB) *pointSheetRepository {
	return &pointSheetRepository{db: db}
}

// SaveReport commits the report and the student's new progress in one
// transaction. The student update is guarded by the version the caller read;
// a lost race leaves zero rows affected and reports ErrVersionConflict so the
// caller can recompute.
func (repo pointSheetRepository) SaveReport(ctx context.Context, rep pointsheet.Report, st student.Student) (pointsheet.Report, error) {
	rep.ID = uuid.New().String()
	row, err := packReport(rep)
	if err != nil {
		return pointsheet.Report{}, err
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return pointsheet.Report{}, errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE students
		SET current_level = $1, days_in_current_level = $2, last_updated = $3, version = version + 1
		WHERE id = $4 AND version = $5`,
		st.CurrentLevel, st.DaysInCurrentLevel, st.LastUpdated.UTC(), st.ID, st.Version,
	)
	if err != nil {
		return pointsheet.Report{}, errors.Wrap(err, "updating student progress")
	}
	if n, err := res.RowsAffected(); err != nil {
		return pointsheet.Report{}, errors.Wrap(err, "updating student progress")
	} else if n == 0 {
		var exists bool
		if err = tx.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)", st.ID); err != nil {
			return pointsheet.Report{}, errors.Wrap(err, "updating student progress")
		}
		if !exists {
			return pointsheet.Report{}, student.ErrNotFound
		}
		return pointsheet.Report{}, pointsheet.ErrVersionConflict
	}

	query := `
		INSERT INTO point_sheet_reports (id, student_id, school_id, date, teacher_id, teacher_email, period_scores,
			is_absent, total_earned_points, total_possible_points, daily_percentage, is_successful_day, level_at_time_of_report)
		VALUES (:id, :student_id, :school_id, :date, :teacher_id, :teacher_email, :period_scores,
			:is_absent, :total_earned_points, :total_possible_points, :daily_percentage, :is_successful_day, :level_at_time_of_report)`
	if _, err = tx.NamedExecContext(ctx, query, row); err != nil {
		return pointsheet.Report{}, errors.Wrap(err, "inserting point sheet report")
	}

	if err = tx.Commit(); err != nil {
		return pointsheet.Report{}, errors.Wrap(err, "committing point sheet report")
	}
	return rep, nil
}

func (repo pointSheetRepository) QueryReportsByStudent(ctx context.Context, studentID string, ordering []core.DBOrdering) ([]pointsheet.Report, error) {
	query := "SELECT " + reportColumns + " FROM point_sheet_reports WHERE student_id = $1" +
		orderBy(ordering, reportOrderings, "date DESC")

	var rows []reportRow
	if err := repo.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return []pointsheet.Report{}, nil
		}
		return nil, errors.Wrap(err, "querying point sheet reports")
	}

	reports := make([]pointsheet.Report, 0, len(rows))
	for _, row := range rows {
		rep, err := unpackReport(row)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

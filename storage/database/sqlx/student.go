package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/samsedu/rise/core"
	"github.com/samsedu/rise/core/student"
)

type studentRow struct {
	ID                      string      `db:"id"`
	SchoolID                string      `db:"school_id"`
	Name                    string      `db:"name"`
	StudentID               string      `db:"student_id"`
	CurrentLevel            int         `db:"current_level"`
	DaysInCurrentLevel      int         `db:"days_in_current_level"`
	TotalDisciplineDaysLost int         `db:"total_discipline_days_lost"`
	ProgramStartDate        time.Time   `db:"program_start_date"`
	Version                 int         `db:"version"`
	CreatedBy               null.String `db:"created_by"`
	CreatedAt               time.Time   `db:"created_at"`
	LastUpdated             time.Time   `db:"last_updated"`
}

func packStudent(st student.Student) studentRow {
	return studentRow{
		ID:                      st.ID,
		SchoolID:                st.SchoolID,
		Name:                    st.Name,
		StudentID:               st.StudentID,
		CurrentLevel:            st.CurrentLevel,
		DaysInCurrentLevel:      st.DaysInCurrentLevel,
		TotalDisciplineDaysLost: st.TotalDisciplineDaysLost,
		ProgramStartDate:        st.ProgramStartDate.UTC(),
		Version:                 st.Version,
		CreatedBy:               null.NewString(st.CreatedBy, st.CreatedBy != ""),
		CreatedAt:               st.CreatedAt.UTC(),
		LastUpdated:             st.LastUpdated.UTC(),
	}
}

func unpackStudent(row studentRow) student.Student {
	return student.Student{
		ID:                      row.ID,
		SchoolID:                row.SchoolID,
		Name:                    row.Name,
		StudentID:               row.StudentID,
		CurrentLevel:            row.CurrentLevel,
		DaysInCurrentLevel:      row.DaysInCurrentLevel,
		TotalDisciplineDaysLost: row.TotalDisciplineDaysLost,
		ProgramStartDate:        row.ProgramStartDate,
		Version:                 row.Version,
		CreatedBy:               row.CreatedBy.String,
		CreatedAt:               row.CreatedAt,
		LastUpdated:             row.LastUpdated,
	}
}

const studentColumns = "id, school_id, name, student_id, current_level, days_in_current_level, " +
	"total_discipline_days_lost, program_start_date, version, created_by, created_at, last_updated"

var studentOrderings = map[string]string{
	"name":          "name",
	"student_id":    "student_id",
	"current_level": "current_level",
	"created_at":    "created_at",
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	row := packStudent(st)

	query := `
		INSERT INTO students (id, school_id, name, student_id, current_level, days_in_current_level,
			total_discipline_days_lost, program_start_date, version, created_by, created_at, last_updated)
		VALUES (:id, :school_id, :name, :student_id, :current_level, :days_in_current_level,
			:total_discipline_days_lost, :program_start_date, :version, :created_by, :created_at, :last_updated)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return unpackStudent(row), nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	query := "SELECT " + studentColumns + " FROM students WHERE id = $1"
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	return unpackStudent(row), nil
}

func (repo studentRepository) QueryStudentsBySchool(ctx context.Context, schoolID string, ordering []core.DBOrdering) ([]student.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE school_id = $1" +
		orderBy(ordering, studentOrderings, "name ASC")

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, unpackStudent(row))
	}
	return students, nil
}

// Classes

type classRow struct {
	ID         string         `db:"id"`
	TeacherID  string         `db:"teacher_id"`
	SchoolID   string         `db:"school_id"`
	Name       string         `db:"name"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	StudentIDs pq.StringArray `db:"student_ids"`
}

func unpackClass(row classRow) student.Class {
	return student.Class{
		ID:         row.ID,
		TeacherID:  row.TeacherID,
		SchoolID:   row.SchoolID,
		Name:       row.Name,
		StudentIDs: row.StudentIDs,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

// classColumns aggregates memberships into the row itself.
const classColumns = `c.id, c.teacher_id, c.school_id, c.name, c.created_at, c.updated_at,
	COALESCE(ARRAY_AGG(cs.student_id) FILTER (WHERE cs.student_id IS NOT NULL), '{}') AS student_ids`

const classGroup = " GROUP BY c.id, c.teacher_id, c.school_id, c.name, c.created_at, c.updated_at"

func (repo studentRepository) CreateClass(ctx context.Context, cls student.Class) (student.Class, error) {
	cls.ID = uuid.New().String()

	query := `
		INSERT INTO classes (id, teacher_id, school_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, query,
		cls.ID, cls.TeacherID, cls.SchoolID, cls.Name, cls.CreatedAt.UTC(), cls.UpdatedAt.UTC())
	if err != nil {
		return student.Class{}, errors.Wrap(err, "inserting class")
	}
	if cls.StudentIDs == nil {
		cls.StudentIDs = []string{}
	}
	return cls, nil
}

func (repo studentRepository) GetClassByID(ctx context.Context, id string) (student.Class, error) {
	var row classRow
	query := "SELECT " + classColumns +
		" FROM classes c LEFT JOIN class_students cs ON cs.class_id = c.id WHERE c.id = $1" + classGroup
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Class{}, student.ErrClassNotFound
		}
		return student.Class{}, errors.Wrap(err, "finding class by ID")
	}
	return unpackClass(row), nil
}

func (repo studentRepository) QueryClassesByTeacher(ctx context.Context, teacherID string) ([]student.Class, error) {
	var rows []classRow
	query := "SELECT " + classColumns +
		" FROM classes c LEFT JOIN class_students cs ON cs.class_id = c.id WHERE c.teacher_id = $1" +
		classGroup + " ORDER BY c.name ASC"
	if err := repo.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}

	classes := make([]student.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, unpackClass(row))
	}
	return classes, nil
}

func (repo studentRepository) UpdateClass(ctx context.Context, cls student.Class) (student.Class, error) {
	query := "UPDATE classes SET name = $1, updated_at = $2 WHERE id = $3"
	res, err := repo.db.ExecContext(ctx, query, cls.Name, cls.UpdatedAt.UTC(), cls.ID)
	if err != nil {
		return student.Class{}, errors.Wrap(err, "updating class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Class{}, student.ErrClassNotFound
	}
	return repo.GetClassByID(ctx, cls.ID)
}

func (repo studentRepository) DeleteClass(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM classes WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrClassNotFound
	}
	return nil
}

func (repo studentRepository) AddClassStudent(ctx context.Context, classID, studentID string) (student.Class, error) {
	query := "INSERT INTO class_students (class_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"
	if _, err := repo.db.ExecContext(ctx, query, classID, studentID); err != nil {
		return student.Class{}, errors.Wrap(err, "adding class student")
	}
	return repo.GetClassByID(ctx, classID)
}

func (repo studentRepository) RemoveClassStudent(ctx context.Context, classID, studentID string) (student.Class, error) {
	query := "DELETE FROM class_students WHERE class_id = $1 AND student_id = $2"
	if _, err := repo.db.ExecContext(ctx, query, classID, studentID); err != nil {
		return student.Class{}, errors.Wrap(err, "removing class student")
	}
	return repo.GetClassByID(ctx, classID)
}

package student

import (
	"context"
	"time"

	"github.com/samsedu/rise/core"
)

// Program levels. Every student starts at level 1; level 4 is terminal.
const (
	MinLevel = 1
	MaxLevel = 4
)

type Student struct {
	ID        string `json:"id"`
	SchoolID  string `json:"school_id"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"` // the school's internal identifier

	CurrentLevel            int       `json:"current_level"`
	DaysInCurrentLevel      int       `json:"days_in_current_level"`
	TotalDisciplineDaysLost int       `json:"total_discipline_days_lost"`
	ProgramStartDate        time.Time `json:"program_start_date"` // UTC

	// Version is the optimistic-concurrency token; every progress write
	// must carry the version it read.
	Version int `json:"-"`

	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`  // UTC
	LastUpdated time.Time `json:"last_updated"` // UTC
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name      string `json:"name" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.StudentID = core.CleanString(ns.StudentID)
	return core.Validate.Struct(ns)
}

// Class is a teacher-owned grouping of students. Its whole lifecycle belongs
// to the creating teacher. A student sits in at most one class per teacher;
// moving a student between classes is the client's remove-then-add concern.
type Class struct {
	ID         string    `json:"id"`
	TeacherID  string    `json:"teacher_id"`
	SchoolID   string    `json:"school_id"`
	Name       string    `json:"name"`
	StudentIDs []string  `json:"student_ids"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

func (c *Class) HasStudent(studentID string) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing
// Class (rename only; membership has its own operations).
type UpdateClass struct {
	Name string `json:"name" validate:"required"`
}

func (uc *UpdateClass) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	return core.Validate.Struct(uc)
}

// SchoolDirectory mirrors user.SchoolDirectory for enrollment checks.
type SchoolDirectory interface {
	SchoolExists(ctx context.Context, id string) (bool, error)
}

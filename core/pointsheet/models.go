package pointsheet

import (
	"time"

	"github.com/samsedu/rise/core"
)

// Daily point sheets score 4 categories (the RISE values) across 6 periods.
const (
	NumPeriods           = 6
	MaxPointsPerCategory = 2

	// ScoreNotApplicable marks a category slot that counts toward neither
	// earned nor possible points.
	ScoreNotApplicable = -1
)

// PeriodScore holds one period's category scores. Each score is 0..2, or
// ScoreNotApplicable.
type PeriodScore struct {
	Period     int    `json:"period" validate:"min=1,max=6"`
	Respect    int    `json:"respect" validate:"min=-1,max=2"`
	Integrity  int    `json:"integrity" validate:"min=-1,max=2"`
	Self       int    `json:"self" validate:"min=-1,max=2"`
	Excellence int    `json:"excellence" validate:"min=-1,max=2"`
	Notes      string `json:"notes"`
}

func (ps PeriodScore) categoryScores() [4]int {
	return [4]int{ps.Respect, ps.Integrity, ps.Self, ps.Excellence}
}

// Report is the immutable record of one daily point-sheet submission. It is
// append-only: once written it is never updated or deleted, forming the
// durable audit trail behind every progression decision.
type Report struct {
	ID           string        `json:"id"`
	StudentID    string        `json:"student_id"`
	SchoolID     string        `json:"school_id"`
	Date         time.Time     `json:"date"` // UTC, server-assigned
	TeacherID    string        `json:"teacher_id"`
	TeacherEmail string        `json:"teacher_email"`
	PeriodScores []PeriodScore `json:"period_scores"`
	IsAbsent     bool          `json:"is_absent"`

	TotalEarnedPoints   int     `json:"total_earned_points"`
	TotalPossiblePoints int     `json:"total_possible_points"`
	DailyPercentage     float64 `json:"daily_percentage"`
	IsSuccessfulDay     bool    `json:"is_successful_day"`
	LevelAtTimeOfReport int     `json:"level_at_time_of_report"`
}

// NewReport contains a teacher's daily point-sheet submission for a student.
type NewReport struct {
	StudentID    string        `json:"student_id" validate:"required"`
	PeriodScores []PeriodScore `json:"period_scores" validate:"required_without=IsAbsent,omitempty,len=6,dive"`
	IsAbsent     bool          `json:"is_absent"`
}

func (nr *NewReport) Validate() error {
	nr.StudentID = core.CleanString(nr.StudentID)
	return core.Validate.Struct(nr)
}

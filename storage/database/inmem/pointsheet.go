package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/samsedu/rise/core"
	"github.com/samsedu/rise/core/pointsheet"
	"github.com/samsedu/rise/core/student"
)

type pointSheetRepository struct {
	reports  *reportTable
	students *studentTable
}

var _ pointsheet.Repository = (*pointSheetRepository)(nil)

func NewPointSheetRepository(db *DB) *pointSheetRepository {
	return &pointSheetRepository{reports: db.report, students: db.student}
}

// SaveReport mirrors the transactional write of the SQL backend: the student
// update and the report append happen under one lock, guarded by the version
// the caller read.
func (repo *pointSheetRepository) SaveReport(ctx context.Context, rep pointsheet.Report, st student.Student) (pointsheet.Report, error) {
	repo.students.mutex.Lock()
	defer repo.students.mutex.Unlock()
	repo.reports.mutex.Lock()
	defer repo.reports.mutex.Unlock()

	origSt, ok := repo.students.table[st.ID]
	if !ok {
		return pointsheet.Report{}, student.ErrNotFound
	}
	if origSt.Version != st.Version {
		return pointsheet.Report{}, pointsheet.ErrVersionConflict
	}

	origSt.CurrentLevel = st.CurrentLevel
	origSt.DaysInCurrentLevel = st.DaysInCurrentLevel
	origSt.LastUpdated = st.LastUpdated
	origSt.Version++

	rep.ID = uuid.New().String()
	repo.reports.table[rep.ID] = &rep
	return rep, nil
}

func (repo *pointSheetRepository) QueryReportsByStudent(ctx context.Context, studentID string, ordering []core.DBOrdering) ([]pointsheet.Report, error) {
	repo.reports.mutex.RLock()
	defer repo.reports.mutex.RUnlock()

	reports := make([]pointsheet.Report, 0, len(repo.reports.table))
	for _, rep := range repo.reports.table {
		if rep.StudentID == studentID {
			reports = append(reports, *rep)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Date.After(reports[j].Date) })
	return reports, nil
}

package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/samsedu/rise/core"
	"github.com/samsedu/rise/core/student"
)

type studentRepository struct {
	students *studentTable
	classes  *classTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{students: db.student, classes: db.class}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	repo.students.mutex.Lock()
	defer repo.students.mutex.Unlock()

	st.ID = uuid.New().String()
	repo.students.table[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.students.mutex.RLock()
	defer repo.students.mutex.RUnlock()

	if st, ok := repo.students.table[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudentsBySchool(ctx context.Context, schoolID string, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.students.mutex.RLock()
	defer repo.students.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.students.table))
	for _, st := range repo.students.table {
		if st.SchoolID == schoolID {
			students = append(students, *st)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *studentRepository) CreateClass(ctx context.Context, cls student.Class) (student.Class, error) {
	repo.classes.mutex.Lock()
	defer repo.classes.mutex.Unlock()

	cls.ID = uuid.New().String()
	if cls.StudentIDs == nil {
		cls.StudentIDs = []string{}
	}
	repo.classes.table[cls.ID] = &cls
	return cls, nil
}

func (repo *studentRepository) GetClassByID(ctx context.Context, id string) (student.Class, error) {
	repo.classes.mutex.RLock()
	defer repo.classes.mutex.RUnlock()

	if cls, ok := repo.classes.table[id]; ok {
		return *cls, nil
	}
	return student.Class{}, student.ErrClassNotFound
}

func (repo *studentRepository) QueryClassesByTeacher(ctx context.Context, teacherID string) ([]student.Class, error) {
	repo.classes.mutex.RLock()
	defer repo.classes.mutex.RUnlock()

	classes := make([]student.Class, 0, len(repo.classes.table))
	for _, cls := range repo.classes.table {
		if cls.TeacherID == teacherID {
			classes = append(classes, *cls)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

func (repo *studentRepository) UpdateClass(ctx context.Context, cls student.Class) (student.Class, error) {
	repo.classes.mutex.Lock()
	defer repo.classes.mutex.Unlock()

	origCls, ok := repo.classes.table[cls.ID]
	if !ok {
		return student.Class{}, student.ErrClassNotFound
	}
	origCls.Name = cls.Name
	origCls.UpdatedAt = cls.UpdatedAt
	return *origCls, nil
}

func (repo *studentRepository) DeleteClass(ctx context.Context, id string) error {
	repo.classes.mutex.Lock()
	defer repo.classes.mutex.Unlock()

	if _, ok := repo.classes.table[id]; !ok {
		return student.ErrClassNotFound
	}
	delete(repo.classes.table, id)
	return nil
}

func (repo *studentRepository) AddClassStudent(ctx context.Context, classID, studentID string) (student.Class, error) {
	repo.classes.mutex.Lock()
	defer repo.classes.mutex.Unlock()

	cls, ok := repo.classes.table[classID]
	if !ok {
		return student.Class{}, student.ErrClassNotFound
	}
	if !cls.HasStudent(studentID) {
		cls.StudentIDs = append(cls.StudentIDs, studentID)
	}
	return *cls, nil
}

func (repo *studentRepository) RemoveClassStudent(ctx context.Context, classID, studentID string) (student.Class, error) {
	repo.classes.mutex.Lock()
	defer repo.classes.mutex.Unlock()

	cls, ok := repo.classes.table[classID]
	if !ok {
		return student.Class{}, student.ErrClassNotFound
	}
	for i, id := range cls.StudentIDs {
		if id == studentID {
			cls.StudentIDs = append(cls.StudentIDs[:i], cls.StudentIDs[i+1:]...)
			break
		}
	}
	return *cls, nil
}

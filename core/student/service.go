package student

import (
	"context"
	"errors"
	"time"

	"github.com/samsedu/rise/core"
	"github.com/samsedu/rise/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrClassNotFound = errors.New("class not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// QueryStudentsBySchool returns the school's students; default
		// ordering is by name, ascending.
		QueryStudentsBySchool(ctx context.Context, schoolID string, ordering []core.DBOrdering) ([]Student, error)

		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		QueryClassesByTeacher(ctx context.Context, teacherID string) ([]Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error
		AddClassStudent(ctx context.Context, classID, studentID string) (Class, error)
		RemoveClassStudent(ctx context.Context, classID, studentID string) (Class, error)
	}

	Service interface {
		Create(ctx context.Context, caller user.User, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, caller user.User, id string) (Student, error)
		QueryBySchool(ctx context.Context, caller user.User, ordering []core.DBOrdering) ([]Student, error)

		CreateClass(ctx context.Context, caller user.User, nc NewClass) (Class, error)
		QueryClasses(ctx context.Context, caller user.User) ([]Class, error)
		RenameClass(ctx context.Context, caller user.User, id string, uc UpdateClass) (Class, error)
		DeleteClass(ctx context.Context, caller user.User, id string) error
		AddToClass(ctx context.Context, caller user.User, classID, studentID string) (Class, error)
		RemoveFromClass(ctx context.Context, caller user.User, classID, studentID string) (Class, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create enrolls a new student in the caller's school. New students start the
// program at level 1 with 0 days completed.
func (svc *service) Create(ctx context.Context, caller user.User, ns NewStudent) (Student, error) {
	if err := user.CanManageRoster(caller, caller.SchoolID); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	st := Student{
		SchoolID:  caller.SchoolID,
		Name:      ns.Name,
		StudentID: ns.StudentID,

		CurrentLevel:       MinLevel,
		DaysInCurrentLevel: 0,
		ProgramStartDate:   now,

		CreatedBy:   caller.ID,
		CreatedAt:   now,
		LastUpdated: now,
	}
	return svc.repo.CreateStudent(ctx, st)
}

// GetByID fetches a student, enforcing the school boundary: staff may only
// see students of their own school.
func (svc *service) GetByID(ctx context.Context, caller user.User, id string) (Student, error) {
	st, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if !caller.IsSuperAdmin() && st.SchoolID != caller.SchoolID {
		return Student{}, user.ErrPermissionDenied
	}
	return st, nil
}

func (svc *service) QueryBySchool(ctx context.Context, caller user.User, ordering []core.DBOrdering) ([]Student, error) {
	if !caller.IsSchoolStaff() {
		return nil, user.ErrPermissionDenied
	}
	return svc.repo.QueryStudentsBySchool(ctx, caller.SchoolID, ordering)
}

// Classes. Lifecycle fully owned by the creating teacher.

func (svc *service) CreateClass(ctx context.Context, caller user.User, nc NewClass) (Class, error) {
	if !caller.IsTeacher() {
		return Class{}, user.ErrPermissionDenied
	}
	now := time.Now().UTC()
	cls := Class{
		TeacherID: caller.ID,
		SchoolID:  caller.SchoolID,
		Name:      nc.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *service) QueryClasses(ctx context.Context, caller user.User) ([]Class, error) {
	if !caller.IsTeacher() {
		return nil, user.ErrPermissionDenied
	}
	return svc.repo.QueryClassesByTeacher(ctx, caller.ID)
}

func (svc *service) getOwnedClass(ctx context.Context, caller user.User, id string) (Class, error) {
	cls, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if cls.TeacherID != caller.ID {
		return Class{}, user.ErrPermissionDenied
	}
	return cls, nil
}

func (svc *service) RenameClass(ctx context.Context, caller user.User, id string, uc UpdateClass) (Class, error) {
	cls, err := svc.getOwnedClass(ctx, caller, id)
	if err != nil {
		return Class{}, err
	}
	cls.Name = uc.Name
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *service) DeleteClass(ctx context.Context, caller user.User, id string) error {
	if _, err := svc.getOwnedClass(ctx, caller, id); err != nil {
		return err
	}
	return svc.repo.DeleteClass(ctx, id)
}

func (svc *service) AddToClass(ctx context.Context, caller user.User, classID, studentID string) (Class, error) {
	cls, err := svc.getOwnedClass(ctx, caller, classID)
	if err != nil {
		return Class{}, err
	}
	st, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return Class{}, err
	}
	if st.SchoolID != cls.SchoolID {
		return Class{}, user.ErrPermissionDenied
	}
	if cls.HasStudent(studentID) {
		return cls, nil
	}
	return svc.repo.AddClassStudent(ctx, classID, studentID)
}

func (svc *service) RemoveFromClass(ctx context.Context, caller user.User, classID, studentID string) (Class, error) {
	if _, err := svc.getOwnedClass(ctx, caller, classID); err != nil {
		return Class{}, err
	}
	return svc.repo.RemoveClassStudent(ctx, classID, studentID)
}

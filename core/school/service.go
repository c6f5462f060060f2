package school

import (
	"context"
	"errors"
	"time"

	"github.com/samsedu/rise/core"
)

var (
	// errors
	ErrNotFound   = errors.New("school not found")
	ErrNameExists = errors.New("a school with this name already exists")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		CreateSchool(ctx context.Context, sch School) (School, error)
		GetSchoolByID(ctx context.Context, id string) (School, error)
		SchoolExists(ctx context.Context, id string) (bool, error)
		// QueryAllSchools returns all schools ordered by name, ascending.
		QueryAllSchools(ctx context.Context) ([]School, error)
	}

	Service interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		Create(ctx context.Context, createdBy string, ns NewSchool) (School, error)
		GetByID(ctx context.Context, id string) (School, error)
		QueryAll(ctx context.Context) ([]School, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckNameUniqueness(ctx context.Context, name string) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, createdBy string, ns NewSchool) (School, error) {
	now := time.Now().UTC()
	sch := School{
		Name:         ns.Name,
		Address:      ns.Address,
		ContactEmail: ns.ContactEmail,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchoolByID(ctx, id)
}

func (svc *service) QueryAll(ctx context.Context) ([]School, error) {
	return svc.repo.QueryAllSchools(ctx)
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/samsedu/rise/core/school"
)

type schoolRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Address      string      `db:"address"`
	ContactEmail string      `db:"contact_email"`
	CreatedBy    null.String `db:"created_by"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func packSchool(sch school.School) schoolRow {
	return schoolRow{
		ID:           sch.ID,
		Name:         sch.Name,
		Address:      sch.Address,
		ContactEmail: sch.ContactEmail,
		CreatedBy:    null.NewString(sch.CreatedBy, sch.CreatedBy != ""),
		CreatedAt:    sch.CreatedAt.UTC(),
		UpdatedAt:    sch.UpdatedAt.UTC(),
	}
}

func unpackSchool(row schoolRow) school.School {
	return school.School{
		ID:           row.ID,
		Name:         row.Name,
		Address:      row.Address,
		ContactEmail: row.ContactEmail,
		CreatedBy:    row.CreatedBy.String,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

const schoolColumns = "id, name, address, contact_email, created_by, created_at, updated_at"

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) CheckNameUniqueness(ctx context.Context, name string) error {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM schools WHERE name = $1)"
	if err := repo.db.GetContext(ctx, &exists, query, name); err != nil {
		return errors.Wrap(err, "checking school uniqueness")
	}
	if exists {
		return school.ErrNameExists
	}
	return nil
}

func (repo schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	sch.ID = uuid.New().String()
	row := packSchool(sch)

	query := `
		INSERT INTO schools (id, name, address, contact_email, created_by, created_at, updated_at)
		VALUES (:id, :name, :address, :contact_email, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return unpackSchool(row), nil
}

func (repo schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	var row schoolRow
	query := "SELECT " + schoolColumns + " FROM schools WHERE id = $1"
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, errors.Wrap(err, "finding school by ID")
	}
	return unpackSchool(row), nil
}

func (repo schoolRepository) SchoolExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM schools WHERE id = $1)"
	if err := repo.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, errors.Wrap(err, "checking school existence")
	}
	return exists, nil
}

func (repo schoolRepository) QueryAllSchools(ctx context.Context) ([]school.School, error) {
	var rows []schoolRow
	query := "SELECT " + schoolColumns + " FROM schools ORDER BY name ASC"
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}

	schools := make([]school.School, 0, len(rows))
	for _, row := range rows {
		schools = append(schools, unpackSchool(row))
	}
	return schools, nil
}

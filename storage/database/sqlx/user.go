package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/samsedu/rise/core"
	"github.com/samsedu/rise/core/user"
)

type userRow struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	SchoolID     null.String `db:"school_id"`
	IsActive     null.Bool   `db:"is_active"`
	PasswordHash null.Bytes  `db:"password_hash"`
	CreatedBy    null.String `db:"created_by"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func packUser(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Email:        usr.Email,
		Role:         string(usr.Role),
		SchoolID:     null.NewString(usr.SchoolID, usr.SchoolID != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedBy:    null.NewString(usr.CreatedBy, usr.CreatedBy != ""),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func unpackUser(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Email:        row.Email,
		Role:         user.Role(row.Role),
		SchoolID:     row.SchoolID.String,
		IsActive:     row.IsActive.Ptr(),
		PasswordHash: row.PasswordHash.Bytes,
		CreatedBy:    row.CreatedBy.String,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

const userColumns = "id, email, role, school_id, is_active, password_hash, created_by, created_at, updated_at, last_login"

// userOrderings whitelists the fields exposed to the ordering query param.
var userOrderings = map[string]string{
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := "SELECT EXISTS (SELECT 1 FROM users WHERE email = ?"
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		query += " AND id NOT IN (?)"
		args = append(args, ids)
	}
	query += ")"

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}

	var exists bool
	if err = repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), inArgs...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

// RegisterUser inserts a self-registered user. The bootstrap role is decided
// inside the INSERT itself so the "first principal becomes superAdmin" rule
// holds under concurrent signups.
func (repo userRepository) RegisterUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := packUser(usr)

	query := `
		INSERT INTO users (id, email, role, school_id, is_active, password_hash, created_by, created_at, updated_at, last_login)
		VALUES ($1, $2,
			CASE WHEN EXISTS (SELECT 1 FROM users WHERE role = 'superAdmin') THEN 'unassigned' ELSE 'superAdmin' END,
			$3, $4, $5, $6, $7, $8, $9)
		RETURNING role`
	err := repo.db.QueryRowContext(ctx, query,
		row.ID, row.Email, row.SchoolID, row.IsActive, row.PasswordHash,
		row.CreatedBy, row.CreatedAt, row.UpdatedAt, row.LastLogin,
	).Scan(&row.Role)
	if err != nil {
		return user.User{}, errors.Wrap(err, "registering user")
	}
	return unpackUser(row), nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := packUser(usr)

	query := `
		INSERT INTO users (id, email, role, school_id, is_active, password_hash, created_by, created_at, updated_at, last_login)
		VALUES (:id, :email, :role, :school_id, :is_active, :password_hash, :created_by, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return unpackUser(row), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userRow
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return unpackUser(row), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	query := "SELECT " + userColumns + " FROM users WHERE email = $1"
	if err := repo.db.GetContext(ctx, &row, query, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by email")
	}
	return unpackUser(row), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	wheres := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)

	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			wheres = append(wheres, "email ILIKE ?")
			args = append(args, "%"+filter.Search+"%")
		}
		if len(filter.Roles) > 0 {
			roles := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				roles = append(roles, string(role))
			}
			wheres = append(wheres, "role IN (?)")
			args = append(args, roles)
		}
		if filter.SchoolID != "" {
			wheres = append(wheres, "school_id = ?")
			args = append(args, filter.SchoolID)
		}
		if filter.IsActive != nil {
			wheres = append(wheres, "is_active = ?")
			args = append(args, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			wheres = append(wheres, "created_at >= ?")
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			wheres = append(wheres, "created_at <= ?")
			args = append(args, filter.CreatedTo.UTC())
		}
	}

	query := "SELECT " + userColumns + " FROM users"
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += orderBy(ordering, userOrderings, "email ASC")

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	var rows []userRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), inArgs...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, unpackUser(row))
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if usr.Role != "" {
		sets = append(sets, "role = "+arg(string(usr.Role)))
	}
	if usr.SchoolID != "" {
		sets = append(sets, "school_id = "+arg(usr.SchoolID))
	}
	if usr.PasswordHash != nil {
		sets = append(sets, "password_hash = "+arg(usr.PasswordHash))
	}
	if isActive != nil {
		sets = append(sets, "is_active = "+arg(*isActive))
	}
	sets = append(sets, "updated_at = "+arg(time.Now().UTC()))

	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = " + arg(usr.ID) + " RETURNING " + userColumns

	var row userRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user")
	}
	return unpackUser(row), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.CreatedAt = time.Now().UTC()
		usr.UpdatedAt = usr.CreatedAt
		return repo.CreateUser(ctx, usr)
	}

	row := packUser(usr)
	query := `
		UPDATE users SET email = :email, role = :role, school_id = :school_id, is_active = :is_active,
			password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	query := "UPDATE users SET last_login = $1 WHERE id = $2 RETURNING " + userColumns
	if err := repo.db.GetContext(ctx, &row, query, time.Now().UTC(), usr.ID); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "setting lastLogin")
	}
	return unpackUser(row), nil
}

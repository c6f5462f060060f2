package user

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/samsedu/rise/core"
)

// Role is the closed set of roles a principal may hold. A principal holds
// exactly one role at a time.
type Role string

const (
	RoleSuperAdmin  Role = "superAdmin"
	RoleSchoolAdmin Role = "schoolAdmin"
	RoleTeacher     Role = "teacher"
	RoleUnassigned  Role = "unassigned"
)

var (
	AllRoles = []Role{RoleSuperAdmin, RoleSchoolAdmin, RoleTeacher, RoleUnassigned}

	// ProvisionableRoles are the only roles an administrator may assign
	// when provisioning an account.
	ProvisionableRoles = []Role{RoleTeacher, RoleSchoolAdmin}
)

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RequiresSchool reports whether a principal holding this role must belong
// to a school.
func (r Role) RequiresSchool() bool {
	return r == RoleSchoolAdmin || r == RoleTeacher
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	SchoolID     string    `json:"school_id,omitempty"` // required for schoolAdmin & teacher
	IsActive     *bool     `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(isActive bool) {
	u.IsActive = &isActive
}

func (u *User) IsSuperAdmin() bool  { return u.Role == RoleSuperAdmin }
func (u *User) IsSchoolAdmin() bool { return u.Role == RoleSchoolAdmin }
func (u *User) IsTeacher() bool     { return u.Role == RoleTeacher }

// IsSchoolStaff reports whether the user belongs to a school's staff
// (may manage rosters and submit point sheets for that school).
func (u *User) IsSchoolStaff() bool { return u.IsSchoolAdmin() || u.IsTeacher() }

// RegisterUser contains information needed for self-service signup.
type RegisterUser struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ru *RegisterUser) Validate(ctx context.Context, svc Service) error {
	ru.Email = core.CleanString(ru.Email, true /* lower */)

	if err := core.Validate.Struct(ru); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, ru.Email)
}

// ProvisionUser contains information needed to provision a new principal
// on behalf of a school (the admin-side account-creation procedure).
type ProvisionUser struct {
	Email    string `json:"email" validate:"required,email"`
	Role     Role   `json:"role" validate:"required,provisionrole"`
	SchoolID string `json:"school_id" validate:"required"`
}

func (pu *ProvisionUser) Validate(ctx context.Context, svc Service) error {
	pu.Email = core.CleanString(pu.Email, true /* lower */)
	pu.SchoolID = core.CleanString(pu.SchoolID)

	if err := core.Validate.Struct(pu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, pu.Email)
}

// UpdateUser defines what information may be provided to modify an existing
// User (admin-side role/school assignment and deactivation).
type UpdateUser struct {
	Role     Role   `json:"role" validate:"omitempty,anyrole"`
	SchoolID string `json:"school_id"`
	IsActive *bool  `json:"is_active"`
}

func (uu *UpdateUser) Validate(origUsr User) error {
	uu.SchoolID = core.CleanString(uu.SchoolID)
	if uu.Role == "" {
		uu.Role = origUsr.Role
	}
	if uu.SchoolID == "" {
		uu.SchoolID = origUsr.SchoolID
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	// role and school membership must stay mutually consistent
	if uu.Role.RequiresSchool() && uu.SchoolID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "school_id", Error: "this role requires a school"})
	}
	return nil
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []Role    `query:"role"`
	SchoolID    string    `query:"school_id"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.SchoolID == "" && qf.IsActive == nil &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.SchoolID = core.CleanString(qf.SchoolID)
}

package user

import "errors"

var (
	// ErrUnauthenticated is returned when no verified caller identity is available.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrPermissionDenied is returned when an identified caller lacks the rights
	// for the requested role or school scope.
	ErrPermissionDenied = errors.New("permission denied")
)

// The authorization gate. Pure decision functions over the caller's directory
// record; no storage or transport involved so they can be tested in isolation.
// Services re-run these checks themselves so they stay safe to call directly,
// regardless of what the transport layer already verified.

// CanProvision decides whether caller may create a principal with the given
// role in the given school.
//
// A superAdmin may provision any allowed role in any school. A schoolAdmin may
// only provision teachers within their own school. Everyone else is denied.
func CanProvision(caller User, targetRole Role, targetSchoolID string) error {
	if caller.ID == "" {
		return ErrUnauthenticated
	}
	switch caller.Role {
	case RoleSuperAdmin:
		return nil
	case RoleSchoolAdmin:
		if targetRole == RoleTeacher && targetSchoolID != "" && targetSchoolID == caller.SchoolID {
			return nil
		}
	}
	return ErrPermissionDenied
}

// CanSubmitPointSheet decides whether caller may record a daily point sheet
// for a student of the given school. Teachers and schoolAdmins may, and only
// within their own school.
func CanSubmitPointSheet(caller User, studentSchoolID string) error {
	if caller.ID == "" {
		return ErrUnauthenticated
	}
	if !caller.IsSchoolStaff() {
		return ErrPermissionDenied
	}
	if caller.SchoolID == "" || caller.SchoolID != studentSchoolID {
		return ErrPermissionDenied
	}
	return nil
}

// CanManageRoster decides whether caller may create or edit students of the
// given school. Reserved to that school's admin.
func CanManageRoster(caller User, schoolID string) error {
	if caller.ID == "" {
		return ErrUnauthenticated
	}
	if caller.IsSchoolAdmin() && caller.SchoolID == schoolID {
		return nil
	}
	return ErrPermissionDenied
}

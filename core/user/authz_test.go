package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanProvision(t *testing.T) {
	superAdmin := User{ID: "sa", Role: RoleSuperAdmin}
	schoolAdmin := User{ID: "adm", Role: RoleSchoolAdmin, SchoolID: "sch1"}
	teacher := User{ID: "t", Role: RoleTeacher, SchoolID: "sch1"}
	unassigned := User{ID: "u", Role: RoleUnassigned}

	tests := []struct {
		name     string
		caller   User
		role     Role
		schoolID string
		wantErr  error
	}{
		{name: "anonymous", caller: User{}, role: RoleTeacher, schoolID: "sch1", wantErr: ErrUnauthenticated},
		{name: "superAdmin provisions teacher anywhere", caller: superAdmin, role: RoleTeacher, schoolID: "sch2"},
		{name: "superAdmin provisions schoolAdmin", caller: superAdmin, role: RoleSchoolAdmin, schoolID: "sch1"},
		{name: "schoolAdmin provisions teacher in own school", caller: schoolAdmin, role: RoleTeacher, schoolID: "sch1"},
		{name: "schoolAdmin cannot provision in other school", caller: schoolAdmin, role: RoleTeacher, schoolID: "sch2", wantErr: ErrPermissionDenied},
		{name: "schoolAdmin cannot provision schoolAdmin", caller: schoolAdmin, role: RoleSchoolAdmin, schoolID: "sch1", wantErr: ErrPermissionDenied},
		{name: "schoolAdmin cannot provision without school", caller: schoolAdmin, role: RoleTeacher, wantErr: ErrPermissionDenied},
		{name: "teacher cannot provision", caller: teacher, role: RoleTeacher, schoolID: "sch1", wantErr: ErrPermissionDenied},
		{name: "unassigned cannot provision", caller: unassigned, role: RoleTeacher, schoolID: "sch1", wantErr: ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, CanProvision(tt.caller, tt.role, tt.schoolID))
		})
	}
}

func TestCanSubmitPointSheet(t *testing.T) {
	tests := []struct {
		name            string
		caller          User
		studentSchoolID string
		wantErr         error
	}{
		{name: "anonymous", caller: User{}, studentSchoolID: "sch1", wantErr: ErrUnauthenticated},
		{name: "teacher in own school", caller: User{ID: "t", Role: RoleTeacher, SchoolID: "sch1"}, studentSchoolID: "sch1"},
		{name: "schoolAdmin in own school", caller: User{ID: "a", Role: RoleSchoolAdmin, SchoolID: "sch1"}, studentSchoolID: "sch1"},
		{name: "teacher in other school", caller: User{ID: "t", Role: RoleTeacher, SchoolID: "sch1"}, studentSchoolID: "sch2", wantErr: ErrPermissionDenied},
		{name: "superAdmin has no school", caller: User{ID: "sa", Role: RoleSuperAdmin}, studentSchoolID: "sch1", wantErr: ErrPermissionDenied},
		{name: "unassigned", caller: User{ID: "u", Role: RoleUnassigned, SchoolID: "sch1"}, studentSchoolID: "sch1", wantErr: ErrPermissionDenied},
		{name: "teacher without school", caller: User{ID: "t", Role: RoleTeacher}, studentSchoolID: "", wantErr: ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, CanSubmitPointSheet(tt.caller, tt.studentSchoolID))
		})
	}
}

func TestCanManageRoster(t *testing.T) {
	tests := []struct {
		name     string
		caller   User
		schoolID string
		wantErr  error
	}{
		{name: "anonymous", caller: User{}, schoolID: "sch1", wantErr: ErrUnauthenticated},
		{name: "schoolAdmin in own school", caller: User{ID: "a", Role: RoleSchoolAdmin, SchoolID: "sch1"}, schoolID: "sch1"},
		{name: "schoolAdmin in other school", caller: User{ID: "a", Role: RoleSchoolAdmin, SchoolID: "sch1"}, schoolID: "sch2", wantErr: ErrPermissionDenied},
		{name: "teacher", caller: User{ID: "t", Role: RoleTeacher, SchoolID: "sch1"}, schoolID: "sch1", wantErr: ErrPermissionDenied},
		{name: "superAdmin", caller: User{ID: "sa", Role: RoleSuperAdmin}, schoolID: "sch1", wantErr: ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, CanManageRoster(tt.caller, tt.schoolID))
		})
	}
}

// Package authz holds the pure authorization predicates shared by the
// attendance and shift-assignment workflows. The rules, in priority order:
// HR acts anywhere; a manager acts only inside their own department; an
// employee acts only on themselves; and a user may always act on their own
// resources regardless of role.
package authz

import "github.com/danchok124-del/shift-manager-backend/internal/model"

// NoDepartmentSentinel is substituted for a manager without a department
// when filtering: serial ids start at 1, so it matches no real department.
const NoDepartmentSentinel uint = 0

// Actor describes the authenticated user making a request.
type Actor struct {
	UserID       uint
	Role         string
	DepartmentID *uint
}

// IsHR reports whether the actor carries the HR role.
func (a Actor) IsHR() bool { return a.Role == model.RoleHR }

// IsManager reports whether the actor carries the manager role.
func (a Actor) IsManager() bool { return a.Role == model.RoleManager }

// sameDepartment reports whether the actor's department matches the target's.
// A departmentless manager matches nothing; a departmentless target is only
// reachable by HR.
func (a Actor) sameDepartment(targetDeptID *uint) bool {
	if a.DepartmentID == nil || targetDeptID == nil {
		return false
	}
	return *a.DepartmentID == *targetDeptID
}

// CanViewUserRecords decides whether the actor may read records belonging to
// the target user. Self access is always permitted; otherwise the actor must
// be a manager or HR. Department narrowing for managers is applied separately
// through DepartmentScope.
func CanViewUserRecords(actor Actor, targetUserID uint) bool {
	if actor.UserID == targetUserID {
		return true
	}
	return actor.IsHR() || actor.IsManager()
}

// CanActOnUser decides whether the actor may perform a privileged action on
// the target user (assign to a shift, remove an assignment). Self is always
// permitted; HR is unrestricted; a manager is restricted to targets in their
// own department.
func CanActOnUser(actor Actor, targetUserID uint, targetDeptID *uint) bool {
	if actor.UserID == targetUserID {
		return true
	}
	if actor.IsHR() {
		return true
	}
	if actor.IsManager() {
		return actor.sameDepartment(targetDeptID)
	}
	return false
}

// CanManageShift decides whether the actor may create, update or delete a
// shift owned by the given department.
func CanManageShift(actor Actor, shiftDeptID uint) bool {
	if actor.IsHR() {
		return true
	}
	if actor.IsManager() {
		deptID := shiftDeptID
		return actor.sameDepartment(&deptID)
	}
	return false
}

// CanSelfAssign decides whether the actor may sign themselves up for a
// shift: the shift must be public or belong to the actor's own department.
func CanSelfAssign(actor Actor, isPublic bool, shiftDeptID uint) bool {
	if isPublic {
		return true
	}
	deptID := shiftDeptID
	return actor.sameDepartment(&deptID)
}

// DepartmentScope narrows a requested department filter to what the actor is
// allowed to see. HR passes the request through unchanged; a manager is
// pinned to their own department (or the sentinel when they have none, which
// yields an empty result set rather than an unscoped one).
func DepartmentScope(actor Actor, requested *uint) *uint {
	if !actor.IsManager() {
		return requested
	}
	if actor.DepartmentID != nil {
		return actor.DepartmentID
	}
	sentinel := NoDepartmentSentinel
	return &sentinel
}

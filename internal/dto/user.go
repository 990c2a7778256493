package dto

import (
	"time"

	"github.com/danchok124-del/shift-manager-backend/internal/model"
)

// ── user requests ──

// UserListQuery filters the user listing.
type UserListQuery struct {
	PageQuery
	Search       string `form:"search"       binding:"omitempty,max=100"`
	DepartmentID *uint  `form:"departmentId"`
	Role         string `form:"role"         binding:"omitempty,oneof=employee manager hr"`
}

// UpdateUserRequest patches a user profile. Nil fields are left untouched.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName"  binding:"omitempty,max=100"`
	Email     *string `json:"email"     binding:"omitempty,email"`
	Phone     *string `json:"phone"     binding:"omitempty,max=50"`
	CardID    *string `json:"cardId"    binding:"omitempty,max=100"`
}

// UpdateRoleRequest changes a user's role. HR only.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=employee manager hr"`
}

// AssignDepartmentRequest moves a user into a department; nil clears it.
type AssignDepartmentRequest struct {
	DepartmentID *uint `json:"departmentId"`
}

// DelegateRequest grants a time-boxed delegation to a user.
type DelegateRequest struct {
	UserID    uint      `json:"userId" binding:"required"`
	ExpiresAt time.Time `json:"expiresAt" binding:"required"`
}

// ScheduleQuery bounds the personal schedule window.
type ScheduleQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to"   time_format:"2006-01-02"`
}

// WorkReportQuery bounds the worked-hours report window.
type WorkReportQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to"   time_format:"2006-01-02"`
}

// ── user responses ──

// UserResponse is the sanitized user payload; no credential fields.
type UserResponse struct {
	ID           uint                `json:"id"`
	Email        string              `json:"email"`
	FirstName    string              `json:"firstName"`
	LastName     string              `json:"lastName"`
	Role         string              `json:"role"`
	Phone        *string             `json:"phone,omitempty"`
	CardID       *string             `json:"cardId,omitempty"`
	IsActive     bool                `json:"isActive"`
	DepartmentID *uint               `json:"departmentId"`
	Department   *DepartmentSummary  `json:"department,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// DepartmentSummary is the embedded department shape on user payloads.
type DepartmentSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NewUserResponse maps a model user to its wire shape.
func NewUserResponse(u *model.User) *UserResponse {
	resp := &UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		Phone:        u.Phone,
		CardID:       u.CardID,
		IsActive:     u.IsActive,
		DepartmentID: u.DepartmentID,
		CreatedAt:    u.CreatedAt,
	}
	if u.Department != nil {
		resp.Department = &DepartmentSummary{ID: u.Department.ID, Name: u.Department.Name}
	}
	return resp
}

// NewUserResponses maps a slice of users.
func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = *NewUserResponse(&users[i])
	}
	return out
}

// ScheduleEntry is one row of the personal schedule.
type ScheduleEntry struct {
	ShiftID    uint      `json:"shiftId"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Department string    `json:"department,omitempty"`
	Status     string    `json:"status"`
}

// WorkReport summarizes worked hours over a window.
type WorkReport struct {
	UserID     uint             `json:"userId"`
	From       *time.Time       `json:"from,omitempty"`
	To         *time.Time       `json:"to,omitempty"`
	TotalHours float64          `json:"totalHours"`
	Records    []WorkReportItem `json:"records"`
}

// WorkReportItem is one closed attendance record in a work report.
type WorkReportItem struct {
	AttendanceID uint       `json:"attendanceId"`
	ClockIn      time.Time  `json:"clockIn"`
	ClockOut     *time.Time `json:"clockOut"`
	Hours        float64    `json:"hours"`
	ShiftID      *uint      `json:"shiftId,omitempty"`
}

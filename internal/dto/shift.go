package dto

import (
	"time"

	"github.com/danchok124-del/shift-manager-backend/internal/model"
)

// ── shift requests ──

// ShiftListQuery filters the shift listing.
type ShiftListQuery struct {
	PageQuery
	DepartmentID *uint      `form:"departmentId"`
	IsPublic     *bool      `form:"isPublic"`
	StartDate    *time.Time `form:"startDate" time_format:"2006-01-02"`
	EndDate      *time.Time `form:"endDate"   time_format:"2006-01-02"`
}

// CreateShiftRequest creates a shift.
type CreateShiftRequest struct {
	Title             string    `json:"title"       binding:"required,max=255"`
	Description       string    `json:"description" binding:"omitempty"`
	StartTime         time.Time `json:"startTime"   binding:"required"`
	EndTime           time.Time `json:"endTime"     binding:"required,gtfield=StartTime"`
	DepartmentID      uint      `json:"departmentId" binding:"required"`
	IsPublic          bool      `json:"isPublic"`
	RequiredEmployees int       `json:"requiredEmployees" binding:"omitempty,min=1"`
}

// UpdateShiftRequest patches a shift. Nil fields are untouched.
type UpdateShiftRequest struct {
	Title             *string    `json:"title"       binding:"omitempty,max=255"`
	Description       *string    `json:"description"`
	StartTime         *time.Time `json:"startTime"`
	EndTime           *time.Time `json:"endTime"`
	IsPublic          *bool      `json:"isPublic"`
	RequiredEmployees *int       `json:"requiredEmployees" binding:"omitempty,min=1"`
}

// AssignUserRequest assigns a user to a shift. A missing UserID means the
// caller is signing up themselves.
type AssignUserRequest struct {
	UserID *uint `json:"userId"`
}

// ── shift responses ──

// ShiftResponse is the shift payload with occupancy figures.
type ShiftResponse struct {
	ID                uint                 `json:"id"`
	Title             string               `json:"title"`
	Description       string               `json:"description,omitempty"`
	StartTime         time.Time            `json:"startTime"`
	EndTime           time.Time            `json:"endTime"`
	DepartmentID      uint                 `json:"departmentId"`
	Department        *DepartmentSummary   `json:"department,omitempty"`
	IsPublic          bool                 `json:"isPublic"`
	RequiredEmployees int                  `json:"requiredEmployees"`
	AssignedCount     int64                `json:"assignedCount"`
	AvailableSlots    int64                `json:"availableSlots"`
	Assignments       []AssignmentResponse `json:"assignments,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
}

// AssignmentResponse is one assignment on a shift payload.
type AssignmentResponse struct {
	ID           uint          `json:"id"`
	UserID       uint          `json:"userId"`
	ShiftID      uint          `json:"shiftId"`
	Status       string        `json:"status"`
	AssignedByID *uint         `json:"assignedById,omitempty"`
	User         *UserResponse `json:"user,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// NewShiftResponse maps a shift with its confirmed-assignment count.
// AvailableSlots never goes below zero.
func NewShiftResponse(s *model.Shift, assignedCount int64) *ShiftResponse {
	available := int64(s.RequiredEmployees) - assignedCount
	if available < 0 {
		available = 0
	}
	resp := &ShiftResponse{
		ID:                s.ID,
		Title:             s.Title,
		Description:       s.Description,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		DepartmentID:      s.DepartmentID,
		IsPublic:          s.IsPublic,
		RequiredEmployees: s.RequiredEmployees,
		AssignedCount:     assignedCount,
		AvailableSlots:    available,
		CreatedAt:         s.CreatedAt,
	}
	if s.Department != nil {
		resp.Department = &DepartmentSummary{ID: s.Department.ID, Name: s.Department.Name}
	}
	return resp
}

// NewAssignmentResponse maps an assignment, embedding the user if loaded.
func NewAssignmentResponse(a *model.ShiftAssignment) *AssignmentResponse {
	resp := &AssignmentResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		ShiftID:      a.ShiftID,
		Status:       a.Status,
		AssignedByID: a.AssignedByID,
		CreatedAt:    a.CreatedAt,
	}
	if a.User != nil {
		resp.User = NewUserResponse(a.User)
	}
	return resp
}

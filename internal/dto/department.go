package dto

import (
	"time"

	"github.com/danchok124-del/shift-manager-backend/internal/model"
)

// ── department requests ──

// DepartmentListQuery filters the department listing.
type DepartmentListQuery struct {
	PageQuery
	Search string `form:"search" binding:"omitempty,max=100"`
}

// CreateDepartmentRequest creates a department.
type CreateDepartmentRequest struct {
	Name        string `json:"name"        binding:"required,max=255"`
	Description string `json:"description" binding:"omitempty"`
}

// UpdateDepartmentRequest patches a department. Nil fields are untouched.
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"        binding:"omitempty,max=255"`
	Description *string `json:"description"`
}

// AddDepartmentUserRequest adds a user to a department.
type AddDepartmentUserRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// ── department responses ──

// DepartmentResponse is the department payload with its member count.
type DepartmentResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	UserCount   int64     `json:"userCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewDepartmentResponse maps a department with a precomputed member count.
func NewDepartmentResponse(d *model.Department, userCount int64) *DepartmentResponse {
	return &DepartmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		UserCount:   userCount,
		CreatedAt:   d.CreatedAt,
	}
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/service"
	"github.com/danchok124-del/shift-manager-backend/pkg/response"
)

// DepartmentHandler serves the department endpoints.
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler creates the DepartmentHandler.
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// ListDepartments lists departments.
// GET /api/v1/departments
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	var q dto.DepartmentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	depts, total, err := h.deptSvc.FindAll(c.Request.Context(), &q)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OKPage(c, depts, response.NewMeta(total, q.GetPage(), q.GetLimit(10)))
}

// GetDepartment returns one department.
// GET /api/v1/departments/:id
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	dept, err := h.deptSvc.FindOne(c.Request.Context(), id)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dept)
}

// CreateDepartment creates a department. HR only.
// POST /api/v1/departments
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	dept, err := h.deptSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.Created(c, dept)
}

// UpdateDepartment patches a department. HR only.
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	dept, err := h.deptSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dept)
}

// DeleteDepartment deactivates a department. HR only.
// DELETE /api/v1/departments/:id
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.deptSvc.Remove(c.Request.Context(), id); err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "Department deactivated"})
}

// GetDepartmentUsers lists a department's members.
// GET /api/v1/departments/:id/users
func (h *DepartmentHandler) GetDepartmentUsers(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	users, err := h.deptSvc.GetUsers(c.Request.Context(), id)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, gin.H{"data": users})
}

// AddDepartmentUser adds a user to a department.
// POST /api/v1/departments/:id/users
func (h *DepartmentHandler) AddDepartmentUser(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AddDepartmentUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	user, err := h.deptSvc.AddUser(c.Request.Context(), id, req.UserID)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, user)
}

// RemoveDepartmentUser detaches a user from a department.
// DELETE /api/v1/departments/:id/users/:userId
func (h *DepartmentHandler) RemoveDepartmentUser(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := ParseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.deptSvc.RemoveUser(c.Request.Context(), id, userID); err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "User removed from department"})
}

func (h *DepartmentHandler) handleDepartmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDepartmentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrDepartmentNameExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrUserNotInDepartment):
		response.NotFound(c, err.Error())
	default:
		response.InternalError(c)
	}
}

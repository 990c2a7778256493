package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/service"
	"github.com/danchok124-del/shift-manager-backend/pkg/response"
)

// UserHandler serves the user endpoints.
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler creates the UserHandler.
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers lists users visible to the caller.
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	users, total, err := h.userSvc.FindAll(c.Request.Context(), actor, &q)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OKPage(c, users, response.NewMeta(total, q.GetPage(), q.GetLimit(10)))
}

// GetUser returns one user.
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userSvc.FindOne(c.Request.Context(), actor, id)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateUser patches a user profile.
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateRole changes a user's role. HR only.
// PUT /api/v1/users/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	user, err := h.userSvc.UpdateRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// AssignDepartment moves a user into a department.
// PUT /api/v1/users/:id/department
func (h *UserHandler) AssignDepartment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AssignDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	user, err := h.userSvc.AssignToDepartment(c.Request.Context(), actor, id, req.DepartmentID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// DeactivateUser soft-deletes a user account. HR only.
// DELETE /api/v1/users/:id
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userSvc.Deactivate(c.Request.Context(), actor, id); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "User deactivated"})
}

// GetSchedule returns a user's upcoming confirmed shifts.
// GET /api/v1/users/:id/schedule
func (h *UserHandler) GetSchedule(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var q dto.ScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	entries, err := h.userSvc.GetSchedule(c.Request.Context(), actor, id, &q)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, gin.H{"data": entries})
}

// GetWorkReport returns a user's worked-hours summary.
// GET /api/v1/users/:id/report
func (h *UserHandler) GetWorkReport(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var q dto.WorkReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	report, err := h.userSvc.GetWorkReport(c.Request.Context(), actor, id, &q)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, report)
}

// Delegate grants a time-boxed delegation to the user named in the body.
// POST /api/v1/users/delegate
func (h *UserHandler) Delegate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.DelegateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	user, err := h.userSvc.Delegate(c.Request.Context(), actor, req.UserID, req.ExpiresAt)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// RevokeDelegation clears a delegation grant.
// DELETE /api/v1/users/:id/delegation
func (h *UserHandler) RevokeDelegation(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userSvc.RevokeDelegation(c.Request.Context(), actor, id)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrCannotUpdateOthers),
		errors.Is(err, service.ErrOnlyHRChangesRoles),
		errors.Is(err, service.ErrScheduleForbidden),
		errors.Is(err, service.ErrReportForbidden),
		errors.Is(err, service.ErrDelegateForbidden):
		response.Forbidden(c, err.Error())
	default:
		response.InternalError(c)
	}
}

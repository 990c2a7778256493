package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/service"
	"github.com/danchok124-del/shift-manager-backend/pkg/response"
)

// ShiftHandler serves the shift and assignment endpoints.
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler creates the ShiftHandler.
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListShifts lists shifts in the caller's scope.
// GET /api/v1/shifts
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.ShiftListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	shifts, total, err := h.shiftSvc.FindAll(c.Request.Context(), actor, &q)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OKPage(c, shifts, response.NewMeta(total, q.GetPage(), q.GetLimit(10)))
}

// ListPublicShifts lists public shifts across departments.
// GET /api/v1/shifts/public
func (h *ShiftHandler) ListPublicShifts(c *gin.Context) {
	var q dto.ShiftListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	shifts, total, err := h.shiftSvc.FindPublic(c.Request.Context(), &q)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OKPage(c, shifts, response.NewMeta(total, q.GetPage(), q.GetLimit(10)))
}

// GetShift returns one shift with its assignments and free slots.
// GET /api/v1/shifts/:id
func (h *ShiftHandler) GetShift(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	shift, err := h.shiftSvc.FindOne(c.Request.Context(), id)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// CreateShift creates a shift. Managers and HR only.
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, shift)
}

// UpdateShift patches a shift. Managers and HR only.
// PUT /api/v1/shifts/:id
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	shift, err := h.shiftSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// DeleteShift deactivates a shift. Managers and HR only.
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.shiftSvc.Remove(c.Request.Context(), actor, id); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "Shift deactivated"})
}

// AssignUser assigns a user (or the caller) to a shift.
// POST /api/v1/shifts/:id/assign
func (h *ShiftHandler) AssignUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	// An empty body means the caller signs up themselves.
	var req dto.AssignUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	assignment, err := h.shiftSvc.AssignUser(c.Request.Context(), actor, id, req.UserID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, assignment)
}

// RemoveAssignment removes a user's assignment from a shift.
// DELETE /api/v1/shifts/:id/assign/:userId
func (h *ShiftHandler) RemoveAssignment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := ParseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.shiftSvc.RemoveAssignment(c.Request.Context(), actor, id, userID); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "Assignment removed"})
}

// GetAssignments lists a shift's assignments.
// GET /api/v1/shifts/:id/assignments
func (h *ShiftHandler) GetAssignments(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	assignments, err := h.shiftSvc.GetAssignments(c.Request.Context(), id)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, gin.H{"data": assignments})
}

func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrDepartmentNotFound),
		errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrOnlyManagersAssign),
		errors.Is(err, service.ErrAssignCrossDept),
		errors.Is(err, service.ErrCannotSignUp),
		errors.Is(err, service.ErrOnlyManagersRemove),
		errors.Is(err, service.ErrRemoveCrossDept),
		errors.Is(err, service.ErrShiftCreateCrossDpt),
		errors.Is(err, service.ErrShiftUpdateCrossDpt),
		errors.Is(err, service.ErrShiftDeleteCrossDpt):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrAlreadyAssigned),
		errors.Is(err, service.ErrShiftFull):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c)
	}
}

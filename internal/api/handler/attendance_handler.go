package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/service"
	"github.com/danchok124-del/shift-manager-backend/pkg/response"
)

// AttendanceHandler serves clock-in/out and attendance record endpoints.
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler creates the AttendanceHandler.
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// CardClockIn records a clock-in from a card reader.
// POST /api/v1/attendance/clock-in
func (h *AttendanceHandler) CardClockIn(c *gin.Context) {
	var req dto.CardClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	result, err := h.attendanceSvc.ClockInByCard(c.Request.Context(), req.CardID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, result)
}

// CardClockOut records a clock-out from a card reader.
// POST /api/v1/attendance/clock-out
func (h *AttendanceHandler) CardClockOut(c *gin.Context) {
	var req dto.CardClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	result, err := h.attendanceSvc.ClockOutByCard(c.Request.Context(), req.CardID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ManualClockIn records a clock-in for the caller against a shift.
// POST /api/v1/attendance/manual-clock-in
func (h *AttendanceHandler) ManualClockIn(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ManualClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	result, err := h.attendanceSvc.ManualClockIn(c.Request.Context(), actor, req.ShiftID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, result)
}

// ManualClockOut closes the caller's open attendance record.
// POST /api/v1/attendance/manual-clock-out
func (h *AttendanceHandler) ManualClockOut(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.ManualClockOut(c.Request.Context(), actor)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMy lists the caller's own attendance records.
// GET /api/v1/attendance/my
func (h *AttendanceHandler) ListMy(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.UserAttendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	records, total, totalHours, err := h.attendanceSvc.FindByUser(c.Request.Context(), actor, actor.UserID, &q)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	meta := response.NewMeta(total, q.GetPage(), q.GetLimit(31))
	meta.TotalHours = &totalHours
	response.OKPage(c, records, meta)
}

// ListByUser lists one user's attendance records with a running hours total.
// GET /api/v1/attendance/user/:id
func (h *AttendanceHandler) ListByUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var q dto.UserAttendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	records, total, totalHours, err := h.attendanceSvc.FindByUser(c.Request.Context(), actor, id, &q)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	meta := response.NewMeta(total, q.GetPage(), q.GetLimit(31))
	meta.TotalHours = &totalHours
	response.OKPage(c, records, meta)
}

// ListAll lists attendance records across users. Managers and HR only.
// GET /api/v1/attendance
func (h *AttendanceHandler) ListAll(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.AttendanceListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	records, total, err := h.attendanceSvc.FindAll(c.Request.Context(), actor, &q)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OKPage(c, records, response.NewMeta(total, q.GetPage(), q.GetLimit(50)))
}

// GetAttendance returns one attendance record.
// GET /api/v1/attendance/:id
func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.attendanceSvc.FindOne(c.Request.Context(), actor, id)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, record)
}

// UpdateAttendance corrects an attendance record. Managers and HR only.
// PUT /api/v1/attendance/:id
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	record, err := h.attendanceSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, record)
}

// DeleteAttendance removes an attendance record. Managers and HR only.
// DELETE /api/v1/attendance/:id
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.attendanceSvc.Remove(c.Request.Context(), actor, id); err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "Attendance record deleted"})
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	var tooEarly *service.TooEarlyError
	if errors.As(err, &tooEarly) {
		// Clients use minutesToWait to show a countdown.
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "bad_request",
			"message":       tooEarly.Message,
			"minutesToWait": tooEarly.MinutesToWait,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, service.ErrAttendanceNotFound),
		errors.Is(err, service.ErrShiftNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrAlreadyClockedIn),
		errors.Is(err, service.ErrSelfAlreadyClockedIn),
		errors.Is(err, service.ErrNoActiveClockIn),
		errors.Is(err, service.ErrNotAssignedToShift),
		errors.Is(err, service.ErrNoOpenAttendance),
		errors.Is(err, service.ErrNoShiftOnAttendance):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrAttendanceForbidden):
		response.Forbidden(c, err.Error())
	default:
		response.InternalError(c)
	}
}

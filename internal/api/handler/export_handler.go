package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danchok124-del/shift-manager-backend/internal/authz"
	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/service"
	"github.com/danchok124-del/shift-manager-backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves file exports: attendance spreadsheets and
// iCalendar schedule feeds.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates the ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAttendance streams attendance records as an xlsx workbook.
// Managers and HR only.
// GET /api/v1/export/attendance
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.AttendanceListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context(), actor, &q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportSchedule streams a user's confirmed shifts as an iCalendar feed.
// GET /api/v1/export/users/:id/schedule.ics
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	h.serveSchedule(c, actor, id)
}

// ExportMySchedule streams the caller's own iCalendar feed.
// GET /api/v1/export/my-schedule.ics
func (h *ExportHandler) ExportMySchedule(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	h.serveSchedule(c, actor, actor.UserID)
}

func (h *ExportHandler) serveSchedule(c *gin.Context, actor authz.Actor, userID uint) {
	var q dto.ScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Validation failed: "+err.Error())
		return
	}

	buf, filename, err := h.exportSvc.ExportUserScheduleICS(c.Request.Context(), actor, userID, &q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrScheduleForbidden),
		errors.Is(err, service.ErrAttendanceForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

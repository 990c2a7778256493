package handler

import (
	"github.com/danchok124-del/shift-manager-backend/internal/service"
)

// Handler bundles all HTTP handlers for router wiring.
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Department *DepartmentHandler
	Shift      *ShiftHandler
	Attendance *AttendanceHandler
	Export     *ExportHandler
}

// NewHandler builds every handler from the service layer.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, svc.User),
		User:       NewUserHandler(svc.User),
		Department: NewDepartmentHandler(svc.Department),
		Shift:      NewShiftHandler(svc.Shift),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Export:     NewExportHandler(svc.Export),
	}
}

package dto

import (
	"time"

	"github.com/danchok124-del/shift-manager-backend/internal/model"
)

// ── attendance requests ──

// CardClockRequest is the hardware terminal payload. The same shape serves
// clock-in and clock-out; the engine decides which applies.
type CardClockRequest struct {
	CardID string `json:"cardId" binding:"required,max=100"`
}

// ManualClockInRequest is the in-app clock-in for a planned shift.
type ManualClockInRequest struct {
	ShiftID uint `json:"shiftId" binding:"required"`
}

// AttendanceListQuery filters the administrative attendance listing.
type AttendanceListQuery struct {
	PageQuery
	UserID       *uint      `form:"userId"`
	DepartmentID *uint      `form:"departmentId"`
	StartDate    *time.Time `form:"startDate" time_format:"2006-01-02"`
	EndDate      *time.Time `form:"endDate"   time_format:"2006-01-02"`
}

// UserAttendanceQuery narrows a user's attendance listing to one calendar
// month. Month and year only apply together.
type UserAttendanceQuery struct {
	PageQuery
	Month *int `form:"month" binding:"omitempty,min=1,max=12"`
	Year  *int `form:"year"  binding:"omitempty,min=1970"`
}

// MonthRange resolves the month filter into a clock-in interval, inclusive
// on both ends. Both bounds are nil when the filter is absent.
func (q *UserAttendanceQuery) MonthRange() (start, end *time.Time) {
	if q.Month == nil || q.Year == nil {
		return nil, nil
	}
	s := time.Date(*q.Year, time.Month(*q.Month), 1, 0, 0, 0, 0, time.Local)
	e := s.AddDate(0, 1, 0).Add(-time.Second)
	return &s, &e
}

// UpdateAttendanceRequest corrects a record's timestamps or notes.
type UpdateAttendanceRequest struct {
	ClockIn  *time.Time `json:"clockIn"`
	ClockOut *time.Time `json:"clockOut"`
	Notes    *string    `json:"notes"`
}

// ── attendance responses ──

// AttendanceResponse is the attendance payload. HoursWorked is zero while
// the record is open.
type AttendanceResponse struct {
	ID          uint       `json:"id"`
	UserID      uint       `json:"userId"`
	UserName    string     `json:"userName,omitempty"`
	ShiftID     *uint      `json:"shiftId"`
	ShiftTitle  string     `json:"shiftTitle,omitempty"`
	ClockIn     time.Time  `json:"clockIn"`
	ClockOut    *time.Time `json:"clockOut"`
	HoursWorked float64    `json:"hoursWorked"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ClockResult confirms a clock action. HasPlannedShift reports whether the
// hardware clock-in matched a confirmed assignment for the day.
type ClockResult struct {
	Message         string              `json:"message"`
	Attendance      *AttendanceResponse `json:"attendance"`
	HasPlannedShift *bool               `json:"hasPlannedShift,omitempty"`
}

// NewAttendanceResponse maps an attendance record to its wire shape.
func NewAttendanceResponse(a *model.Attendance) *AttendanceResponse {
	resp := &AttendanceResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		ShiftID:     a.ShiftID,
		ClockIn:     a.ClockIn,
		ClockOut:    a.ClockOut,
		HoursWorked: a.HoursWorked(),
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
	}
	if a.User != nil {
		resp.UserName = a.User.FullName()
	}
	if a.Shift != nil {
		resp.ShiftTitle = a.Shift.Title
	}
	return resp
}

// NewAttendanceResponses maps a slice of records.
func NewAttendanceResponses(records []model.Attendance) []AttendanceResponse {
	out := make([]AttendanceResponse, len(records))
	for i := range records {
		out[i] = *NewAttendanceResponse(&records[i])
	}
	return out
}

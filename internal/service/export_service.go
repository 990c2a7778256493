package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/internal/authz"
	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/repository"
)

// ── export business errors ──

var (
	ErrExportNoRecords    = errors.New("No attendance records in the selected period")
	ErrExportGenerateFail = errors.New("Failed to generate export file")
)

// ExportService produces downloadable artifacts: an Excel attendance report
// and an iCalendar feed of a user's upcoming shifts. Both are returned as a
// buffer plus a suggested filename; the handler sets the response headers.
type ExportService interface {
	ExportAttendance(ctx context.Context, actor authz.Actor, q *dto.AttendanceListQuery) (*bytes.Buffer, string, error)
	ExportUserScheduleICS(ctx context.Context, actor authz.Actor, userID uint, q *dto.ScheduleQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates the ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── ExportAttendance ──────────────────────

// ExportAttendance writes the attendance listing visible to the actor into
// a single-sheet workbook, one row per record, with a total-hours footer.
func (s *exportService) ExportAttendance(ctx context.Context, actor authz.Actor, q *dto.AttendanceListQuery) (*bytes.Buffer, string, error) {
	filters := repository.AttendanceListFilters{
		UserID:       q.UserID,
		DepartmentID: authz.DepartmentScope(actor, q.DepartmentID),
		Start:        q.StartDate,
		End:          q.EndDate,
	}
	// Exports are unpaginated; cap at a generous upper bound.
	records, _, err := s.repo.Attendance.ListAll(ctx, filters, 0, 10000)
	if err != nil {
		s.logger.Error("listing attendance failed", zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendance"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Employee", "Shift", "Clock In", "Clock Out", "Hours", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", ErrExportGenerateFail
		}
	}

	var totalHours float64
	for i, rec := range records {
		row := i + 2
		name := fmt.Sprintf("#%d", rec.UserID)
		if rec.User != nil {
			name = rec.User.FullName()
		}
		shiftTitle := ""
		if rec.Shift != nil {
			shiftTitle = rec.Shift.Title
		}
		clockOut := ""
		if rec.ClockOut != nil {
			clockOut = rec.ClockOut.Format("2006-01-02 15:04")
		}
		notes := ""
		if rec.Notes != nil {
			notes = *rec.Notes
		}
		hours := rec.HoursWorked()
		totalHours += hours

		values := []interface{}{
			name,
			shiftTitle,
			rec.ClockIn.Format("2006-01-02 15:04"),
			clockOut,
			hours,
			notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", ErrExportGenerateFail
			}
		}
	}

	footer := len(records) + 2
	totalLabel, _ := excelize.CoordinatesToCellName(4, footer)
	totalCell, _ := excelize.CoordinatesToCellName(5, footer)
	f.SetCellValue(sheet, totalLabel, "Total")
	f.SetCellValue(sheet, totalCell, totalHours)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("writing workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", s.now().Format("2006-01-02"))
	return buf, filename, nil
}

// ────────────────────── ExportUserScheduleICS ──────────────────────

// ExportUserScheduleICS renders the user's confirmed shifts in the window
// (default next 30 days) as an iCalendar file.
func (s *exportService) ExportUserScheduleICS(ctx context.Context, actor authz.Actor, userID uint, q *dto.ScheduleQuery) (*bytes.Buffer, string, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("loading user failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, "", err
	}
	if !authz.CanActOnUser(actor, user.ID, user.DepartmentID) {
		return nil, "", ErrScheduleForbidden
	}

	from := s.now()
	if q.From != nil {
		from = *q.From
	}
	to := from.AddDate(0, 0, 30)
	if q.To != nil {
		to = *q.To
	}

	assignments, err := s.repo.Assignment.ListByUserInRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("listing schedule failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shift-manager//EN")

	for _, a := range assignments {
		if a.Shift == nil {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("shift-%d-user-%d@shift-manager", a.ShiftID, userID))
		event.SetCreatedTime(a.CreatedAt)
		event.SetDtStampTime(s.now())
		event.SetStartAt(a.Shift.StartTime)
		event.SetEndAt(a.Shift.EndTime)
		event.SetSummary(a.Shift.Title)
		if a.Shift.Description != "" {
			event.SetDescription(a.Shift.Description)
		}
		if a.Shift.Department != nil {
			event.SetLocation(a.Shift.Department.Name)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("schedule_%d_%s.ics", userID, s.now().Format("2006-01-02"))
	return buf, filename, nil
}

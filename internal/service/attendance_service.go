package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/internal/authz"
	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/model"
	"github.com/danchok124-del/shift-manager-backend/internal/repository"
	"github.com/danchok124-del/shift-manager-backend/pkg/keylock"
)

// ── attendance business errors ──

var (
	ErrCardNotFound         = errors.New("User with this card not found")
	ErrAlreadyClockedIn     = errors.New("User already clocked in. Please clock out first.")
	ErrNoActiveClockIn      = errors.New("No active clock-in found. Please clock in first.")
	ErrSelfAlreadyClockedIn = errors.New("You are already clocked in")
	ErrNotAssignedToShift   = errors.New("Nejste přihlášen k této směně.")
	ErrNoOpenAttendance     = errors.New("Nenalezen žádný aktivní příchod.")
	ErrNoShiftOnAttendance  = errors.New("Tato docházka není spojena s konkrétní směnou.")
	ErrAttendanceNotFound   = errors.New("Attendance record not found")
	ErrAttendanceForbidden  = errors.New("You can only view your own attendance records")
)

// TooEarlyError rejects a manual clock action attempted before the window
// opens. MinutesToWait is rounded up so the client can show a countdown.
type TooEarlyError struct {
	MinutesToWait int
	Message       string
}

func (e *TooEarlyError) Error() string { return e.Message }

// The manual clock window opens this long before a shift boundary. The
// comparison is strict: an action exactly at the threshold is allowed.
const clockWindow = 10 * time.Minute

// manualClockInNote marks records created through the web interface.
const manualClockInNote = "Manual web clock-in"

// Listing defaults differ between the personal and the global view.
const (
	defaultAttendancePageSize    = 31
	defaultAttendanceAllPageSize = 50
)

// AttendanceService implements the clock-in/clock-out state machine. A user
// has at most one open record at any time; every mutation that depends on
// that invariant runs under a per-user lock.
type AttendanceService interface {
	// ClockInByCard is the hardware terminal path. It tolerates users
	// without a planned shift and reports whether one was matched.
	ClockInByCard(ctx context.Context, cardID string) (*dto.ClockResult, error)
	ClockOutByCard(ctx context.Context, cardID string) (*dto.ClockResult, error)
	// ManualClockIn is the in-app path. It requires a confirmed
	// assignment on the shift and respects the early-clock window.
	ManualClockIn(ctx context.Context, actor authz.Actor, shiftID uint) (*dto.ClockResult, error)
	ManualClockOut(ctx context.Context, actor authz.Actor) (*dto.ClockResult, error)
	// FindByUser lists one user's records, optionally narrowed to a
	// calendar month, with the summed worked hours of the page.
	FindByUser(ctx context.Context, actor authz.Actor, userID uint, q *dto.UserAttendanceQuery) ([]dto.AttendanceResponse, int64, float64, error)
	FindAll(ctx context.Context, actor authz.Actor, q *dto.AttendanceListQuery) ([]dto.AttendanceResponse, int64, error)
	FindOne(ctx context.Context, actor authz.Actor, id uint) (*dto.AttendanceResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateAttendanceRequest) (*dto.AttendanceResponse, error)
	// Remove hard-deletes the record. Attendance is never soft-deleted.
	Remove(ctx context.Context, actor authz.Actor, id uint) error
}

type attendanceService struct {
	repo   *repository.Repository
	locks  *keylock.KeyLock
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService creates the AttendanceService.
func NewAttendanceService(repo *repository.Repository, locks *keylock.KeyLock, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, locks: locks, logger: logger, now: time.Now}
}

// ────────────────────── ClockInByCard ──────────────────────

func (s *attendanceService) ClockInByCard(ctx context.Context, cardID string) (*dto.ClockResult, error) {
	user, err := s.repo.User.GetByCardID(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		s.logger.Error("looking up card failed", zap.Error(err))
		return nil, err
	}

	unlock := s.locks.Lock(userKey(user.ID))
	defer unlock()

	open, err := s.repo.Attendance.GetOpenByUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("looking up open record failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	if open != nil {
		return nil, ErrAlreadyClockedIn
	}

	now := s.now()
	shiftID, hasShift, err := s.plannedShiftToday(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}

	att := &model.Attendance{
		UserID:  user.ID,
		ShiftID: shiftID,
		ClockIn: now,
		CardID:  &cardID,
	}
	if err := s.repo.Attendance.Create(ctx, att); err != nil {
		s.logger.Error("creating attendance failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("card clock-in",
		zap.Uint("user_id", user.ID),
		zap.Bool("has_planned_shift", hasShift),
	)
	return &dto.ClockResult{
		Message:         "Clock-in successful",
		Attendance:      dto.NewAttendanceResponse(att),
		HasPlannedShift: &hasShift,
	}, nil
}

// ────────────────────── ClockOutByCard ──────────────────────

func (s *attendanceService) ClockOutByCard(ctx context.Context, cardID string) (*dto.ClockResult, error) {
	user, err := s.repo.User.GetByCardID(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		s.logger.Error("looking up card failed", zap.Error(err))
		return nil, err
	}

	unlock := s.locks.Lock(userKey(user.ID))
	defer unlock()

	open, err := s.repo.Attendance.GetOpenByUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("looking up open record failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	if open == nil {
		return nil, ErrNoActiveClockIn
	}

	now := s.now()
	open.ClockOut = &now
	if err := s.repo.Attendance.Update(ctx, open); err != nil {
		s.logger.Error("closing attendance failed", zap.Uint("attendance_id", open.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("card clock-out", zap.Uint("user_id", user.ID), zap.Float64("hours", open.HoursWorked()))
	return &dto.ClockResult{
		Message:    "Clock-out successful",
		Attendance: dto.NewAttendanceResponse(open),
	}, nil
}

// ────────────────────── ManualClockIn ──────────────────────

func (s *attendanceService) ManualClockIn(ctx context.Context, actor authz.Actor, shiftID uint) (*dto.ClockResult, error) {
	unlock := s.locks.Lock(userKey(actor.UserID))
	defer unlock()

	// Checks run in a fixed order: open record, shift existence, clock
	// window, assignment. Reordering them changes which error a caller sees.
	open, err := s.repo.Attendance.GetOpenByUser(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("looking up open record failed", zap.Uint("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	if open != nil {
		return nil, ErrSelfAlreadyClockedIn
	}

	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("loading shift failed", zap.Uint("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	now := s.now()
	threshold := shift.StartTime.Add(-clockWindow)
	if now.Before(threshold) {
		wait := minutesUntil(now, threshold)
		return nil, &TooEarlyError{
			MinutesToWait: wait,
			Message:       fmt.Sprintf("Příliš brzy na příchod. Přihlásit se můžete nejdříve 10 minut před začátkem směny (za %d min).", wait),
		}
	}

	assignment, err := s.repo.Assignment.GetByUserAndShift(ctx, actor.UserID, shiftID)
	if err != nil {
		s.logger.Error("looking up assignment failed", zap.Error(err))
		return nil, err
	}
	if assignment == nil || assignment.Status != model.AssignmentConfirmed {
		return nil, ErrNotAssignedToShift
	}

	notes := manualClockInNote
	att := &model.Attendance{
		UserID:  actor.UserID,
		ShiftID: &shiftID,
		ClockIn: now,
		Notes:   &notes,
	}
	if err := s.repo.Attendance.Create(ctx, att); err != nil {
		s.logger.Error("creating attendance failed", zap.Uint("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("manual clock-in", zap.Uint("user_id", actor.UserID), zap.Uint("shift_id", shiftID))
	return &dto.ClockResult{
		Message:    "Příchod úspěšně zaznamenán",
		Attendance: dto.NewAttendanceResponse(att),
	}, nil
}

// ────────────────────── ManualClockOut ──────────────────────

func (s *attendanceService) ManualClockOut(ctx context.Context, actor authz.Actor) (*dto.ClockResult, error) {
	unlock := s.locks.Lock(userKey(actor.UserID))
	defer unlock()

	open, err := s.repo.Attendance.GetOpenByUser(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("looking up open record failed", zap.Uint("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	if open == nil {
		return nil, ErrNoOpenAttendance
	}
	if open.ShiftID == nil {
		return nil, ErrNoShiftOnAttendance
	}

	shift := open.Shift
	if shift == nil {
		shift, err = s.repo.Shift.GetByID(ctx, *open.ShiftID)
		if err != nil {
			s.logger.Error("loading shift failed", zap.Uint("shift_id", *open.ShiftID), zap.Error(err))
			return nil, err
		}
	}

	now := s.now()
	threshold := shift.EndTime.Add(-clockWindow)
	if now.Before(threshold) {
		wait := minutesUntil(now, threshold)
		return nil, &TooEarlyError{
			MinutesToWait: wait,
			Message:       fmt.Sprintf("Příliš brzy na odchod. Odhlásit se můžete nejdříve 10 minut před koncem směny (za %d min).", wait),
		}
	}

	open.ClockOut = &now
	if err := s.repo.Attendance.Update(ctx, open); err != nil {
		s.logger.Error("closing attendance failed", zap.Uint("attendance_id", open.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("manual clock-out", zap.Uint("user_id", actor.UserID), zap.Float64("hours", open.HoursWorked()))
	return &dto.ClockResult{
		Message:    "Odchod úspěšně zaznamenán.",
		Attendance: dto.NewAttendanceResponse(open),
	}, nil
}

// ────────────────────── FindByUser ──────────────────────

// FindByUser lists one user's records newest first and returns the summed
// worked hours of the page alongside the total count.
func (s *attendanceService) FindByUser(ctx context.Context, actor authz.Actor, userID uint, q *dto.UserAttendanceQuery) ([]dto.AttendanceResponse, int64, float64, error) {
	if !authz.CanViewUserRecords(actor, userID) {
		return nil, 0, 0, ErrAttendanceForbidden
	}
	if actor.IsManager() && actor.UserID != userID {
		target, err := s.repo.User.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, 0, ErrUserNotFound
			}
			return nil, 0, 0, err
		}
		if !authz.CanActOnUser(actor, target.ID, target.DepartmentID) {
			return nil, 0, 0, ErrAttendanceForbidden
		}
	}

	start, end := q.MonthRange()
	filters := repository.AttendanceListFilters{Start: start, End: end}
	records, total, err := s.repo.Attendance.ListByUser(ctx, userID, filters, q.Offset(defaultAttendancePageSize), q.GetLimit(defaultAttendancePageSize))
	if err != nil {
		s.logger.Error("listing attendance failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, 0, 0, err
	}

	var totalHours float64
	for _, rec := range records {
		totalHours += rec.HoursWorked()
	}
	return dto.NewAttendanceResponses(records), total, model.RoundHours(totalHours), nil
}

// ────────────────────── FindAll ──────────────────────

// FindAll is the administrative listing. Managers are narrowed to their own
// department through the user join.
func (s *attendanceService) FindAll(ctx context.Context, actor authz.Actor, q *dto.AttendanceListQuery) ([]dto.AttendanceResponse, int64, error) {
	filters := repository.AttendanceListFilters{
		UserID:       q.UserID,
		DepartmentID: authz.DepartmentScope(actor, q.DepartmentID),
		Start:        q.StartDate,
		End:          q.EndDate,
	}
	records, total, err := s.repo.Attendance.ListAll(ctx, filters, q.Offset(defaultAttendanceAllPageSize), q.GetLimit(defaultAttendanceAllPageSize))
	if err != nil {
		s.logger.Error("listing attendance failed", zap.Error(err))
		return nil, 0, err
	}
	return dto.NewAttendanceResponses(records), total, nil
}

// ────────────────────── FindOne ──────────────────────

func (s *attendanceService) FindOne(ctx context.Context, actor authz.Actor, id uint) (*dto.AttendanceResponse, error) {
	att, err := s.getAttendance(ctx, id)
	if err != nil {
		return nil, err
	}

	var targetDept *uint
	if att.User != nil {
		targetDept = att.User.DepartmentID
	}
	if !authz.CanActOnUser(actor, att.UserID, targetDept) {
		return nil, ErrAttendanceForbidden
	}
	return dto.NewAttendanceResponse(att), nil
}

// ────────────────────── Update ──────────────────────

// Update corrects timestamps or notes on a record. Managers and HR only;
// self-service corrections are not allowed.
// Update is the HR correction path. It overwrites timestamps directly and
// bypasses the clock-window checks.
func (s *attendanceService) Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateAttendanceRequest) (*dto.AttendanceResponse, error) {
	if !actor.IsHR() {
		return nil, ErrAttendanceForbidden
	}
	att, err := s.getAttendance(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ClockIn != nil {
		att.ClockIn = *req.ClockIn
	}
	if req.ClockOut != nil {
		att.ClockOut = req.ClockOut
	}
	if req.Notes != nil {
		att.Notes = req.Notes
	}

	if err := s.repo.Attendance.Update(ctx, att); err != nil {
		s.logger.Error("updating attendance failed", zap.Uint("attendance_id", id), zap.Error(err))
		return nil, err
	}
	return dto.NewAttendanceResponse(att), nil
}

// ────────────────────── Remove ──────────────────────

func (s *attendanceService) Remove(ctx context.Context, actor authz.Actor, id uint) error {
	if !actor.IsHR() {
		return ErrAttendanceForbidden
	}
	if _, err := s.getAttendance(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Attendance.Delete(ctx, id); err != nil {
		s.logger.Error("deleting attendance failed", zap.Uint("attendance_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("attendance deleted", zap.Uint("attendance_id", id))
	return nil
}

func (s *attendanceService) getAttendance(ctx context.Context, id uint) (*model.Attendance, error) {
	att, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("loading attendance failed", zap.Uint("attendance_id", id), zap.Error(err))
		return nil, err
	}
	return att, nil
}

// plannedShiftToday finds the user's confirmed assignment whose shift starts
// on the clock-in day. Returns the shift id when one matched.
func (s *attendanceService) plannedShiftToday(ctx context.Context, userID uint, now time.Time) (*uint, bool, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	assignment, err := s.repo.Assignment.FindConfirmedInWindow(ctx, userID, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("looking up planned shift failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, false, err
	}
	if assignment == nil {
		return nil, false, nil
	}
	shiftID := assignment.ShiftID
	return &shiftID, true, nil
}

// minutesUntil rounds the remaining wait up to whole minutes.
func minutesUntil(now, threshold time.Time) int {
	return int(math.Ceil(threshold.Sub(now).Minutes()))
}

func userKey(id uint) string { return fmt.Sprintf("user:%d", id) }

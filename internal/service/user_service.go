package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/internal/authz"
	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/model"
	"github.com/danchok124-del/shift-manager-backend/internal/repository"
)

// ── user business errors ──

var (
	ErrUserNotFound       = errors.New("User not found")
	ErrCannotUpdateOthers = errors.New("Cannot update other users")
	ErrOnlyHRChangesRoles = errors.New("Only HR can change roles")
	ErrScheduleForbidden  = errors.New("You can only view your own schedule")
	ErrReportForbidden    = errors.New("You can only view your own attendance records")
	ErrDelegateForbidden  = errors.New("Only managers can delegate permissions")
)

// Default listing page size for users.
const defaultUserPageSize = 10

// UserService handles user profiles, role management, delegation and the
// per-user scheduling queries.
type UserService interface {
	FindAll(ctx context.Context, actor authz.Actor, q *dto.UserListQuery) ([]dto.UserResponse, int64, error)
	FindOne(ctx context.Context, actor authz.Actor, id uint) (*dto.UserResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	UpdateRole(ctx context.Context, actor authz.Actor, id uint, role string) (*dto.UserResponse, error)
	AssignToDepartment(ctx context.Context, actor authz.Actor, id uint, departmentID *uint) (*dto.UserResponse, error)
	Deactivate(ctx context.Context, actor authz.Actor, id uint) error
	GetSchedule(ctx context.Context, actor authz.Actor, userID uint, q *dto.ScheduleQuery) ([]dto.ScheduleEntry, error)
	GetWorkReport(ctx context.Context, actor authz.Actor, userID uint, q *dto.WorkReportQuery) (*dto.WorkReport, error)
	Delegate(ctx context.Context, actor authz.Actor, targetID uint, expiresAt time.Time) (*dto.UserResponse, error)
	RevokeDelegation(ctx context.Context, actor authz.Actor, targetID uint) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewUserService creates the UserService.
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── FindAll ──────────────────────

// FindAll lists users. Managers are silently narrowed to their own
// department; a requested department filter outside their scope is ignored.
func (s *userService) FindAll(ctx context.Context, actor authz.Actor, q *dto.UserListQuery) ([]dto.UserResponse, int64, error) {
	filters := &repository.UserListFilters{
		Search:       q.Search,
		DepartmentID: authz.DepartmentScope(actor, q.DepartmentID),
		Role:         q.Role,
	}
	users, total, err := s.repo.User.List(ctx, filters, q.Offset(defaultUserPageSize), q.GetLimit(defaultUserPageSize))
	if err != nil {
		s.logger.Error("listing users failed", zap.Error(err))
		return nil, 0, err
	}
	return dto.NewUserResponses(users), total, nil
}

// ────────────────────── FindOne ──────────────────────

func (s *userService) FindOne(ctx context.Context, actor authz.Actor, id uint) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnUser(actor, user.ID, user.DepartmentID) {
		return nil, ErrUserNotFound
	}
	return dto.NewUserResponse(user), nil
}

// ────────────────────── Update ──────────────────────

// Update patches a profile. Employees may only update themselves; managers
// additionally anyone in their department; HR anyone.
func (s *userService) Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnUser(actor, user.ID, user.DepartmentID) {
		return nil, ErrCannotUpdateOthers
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.CardID != nil {
		user.CardID = req.CardID
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("updating user failed", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// ────────────────────── UpdateRole ──────────────────────

func (s *userService) UpdateRole(ctx context.Context, actor authz.Actor, id uint, role string) (*dto.UserResponse, error) {
	if !actor.IsHR() {
		return nil, ErrOnlyHRChangesRoles
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("updating role failed", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("role changed", zap.Uint("user_id", id), zap.String("role", role))
	return dto.NewUserResponse(user), nil
}

// ────────────────────── AssignToDepartment ──────────────────────

// AssignToDepartment moves a user between departments. HR only, same as the
// department membership endpoints.
func (s *userService) AssignToDepartment(ctx context.Context, actor authz.Actor, id uint, departmentID *uint) (*dto.UserResponse, error) {
	if !actor.IsHR() {
		return nil, ErrCannotUpdateOthers
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if departmentID != nil {
		if _, err := s.repo.Department.GetByID(ctx, *departmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
	}

	user.DepartmentID = departmentID
	user.Department = nil
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("assigning department failed", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}
	return s.FindOne(ctx, actor, id)
}

// ────────────────────── Deactivate ──────────────────────

// Deactivate soft-deletes a user account. HR only.
func (s *userService) Deactivate(ctx context.Context, actor authz.Actor, id uint) error {
	if !actor.IsHR() {
		return ErrCannotUpdateOthers
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}

	user.IsActive = false
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("deactivating user failed", zap.Uint("user_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("user deactivated", zap.Uint("user_id", id))
	return nil
}

// ────────────────────── GetSchedule ──────────────────────

// GetSchedule returns the user's confirmed shifts inside the window,
// defaulting to the next 30 days.
func (s *userService) GetSchedule(ctx context.Context, actor authz.Actor, userID uint, q *dto.ScheduleQuery) ([]dto.ScheduleEntry, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnUser(actor, user.ID, user.DepartmentID) {
		return nil, ErrScheduleForbidden
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
		return nil, err
	}

	entries := make([]dto.ScheduleEntry, 0, len(assignments))
	for _, a := range assignments {
		if a.Shift == nil {
			continue
		}
		entry := dto.ScheduleEntry{
			ShiftID:   a.ShiftID,
			Title:     a.Shift.Title,
			StartTime: a.Shift.StartTime,
			EndTime:   a.Shift.EndTime,
			Status:    a.Status,
		}
		if a.Shift.Department != nil {
			entry.Department = a.Shift.Department.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ────────────────────── GetWorkReport ──────────────────────

// GetWorkReport sums worked hours over the window, defaulting to the
// current calendar month. Open records contribute nothing.
func (s *userService) GetWorkReport(ctx context.Context, actor authz.Actor, userID uint, q *dto.WorkReportQuery) (*dto.WorkReport, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnUser(actor, user.ID, user.DepartmentID) {
		return nil, ErrReportForbidden
	}

	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now
	if q.From != nil {
		from = *q.From
	}
	if q.To != nil {
		to = *q.To
	}

	filters := repository.AttendanceListFilters{Start: &from, End: &to}
	records, _, err := s.repo.Attendance.ListByUser(ctx, userID, filters, 0, 1000)
	if err != nil {
		s.logger.Error("listing attendance failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	report := &dto.WorkReport{
		UserID:  userID,
		From:    &from,
		To:      &to,
		Records: make([]dto.WorkReportItem, 0, len(records)),
	}
	var total float64
	for _, rec := range records {
		hours := rec.HoursWorked()
		total += hours
		report.Records = append(report.Records, dto.WorkReportItem{
			AttendanceID: rec.ID,
			ClockIn:      rec.ClockIn,
			ClockOut:     rec.ClockOut,
			Hours:        hours,
			ShiftID:      rec.ShiftID,
		})
	}
	report.TotalHours = model.RoundHours(total)
	return report, nil
}

// ────────────────────── Delegate ──────────────────────

// Delegate records a time-boxed grant on the target user. The grant is
// informational; the rule engine does not evaluate it.
func (s *userService) Delegate(ctx context.Context, actor authz.Actor, targetID uint, expiresAt time.Time) (*dto.UserResponse, error) {
	if !actor.IsHR() && !actor.IsManager() {
		return nil, ErrDelegateForbidden
	}
	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if actor.IsManager() && !authz.CanActOnUser(actor, user.ID, user.DepartmentID) {
		return nil, ErrDelegateForbidden
	}

	grantor := actor.UserID
	user.DelegatedByID = &grantor
	user.DelegationExpiresAt = &expiresAt
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("storing delegation failed", zap.Uint("user_id", targetID), zap.Error(err))
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// ────────────────────── RevokeDelegation ──────────────────────

func (s *userService) RevokeDelegation(ctx context.Context, actor authz.Actor, targetID uint) (*dto.UserResponse, error) {
	if !actor.IsHR() && !actor.IsManager() {
		return nil, ErrDelegateForbidden
	}
	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if actor.IsManager() && !authz.CanActOnUser(actor, user.ID, user.DepartmentID) {
		return nil, ErrDelegateForbidden
	}

	user.DelegatedByID = nil
	user.DelegationExpiresAt = nil
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("clearing delegation failed", zap.Uint("user_id", targetID), zap.Error(err))
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) getUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("loading user failed", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

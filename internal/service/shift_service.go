package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/internal/authz"
	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/model"
	"github.com/danchok124-del/shift-manager-backend/internal/repository"
	"github.com/danchok124-del/shift-manager-backend/pkg/keylock"
)

// ── shift business errors ──

var (
	ErrShiftNotFound       = errors.New("Shift not found")
	ErrOnlyManagersAssign  = errors.New("Only managers can assign other employees")
	ErrAssignCrossDept     = errors.New("Managers can only assign employees from their own department")
	ErrCannotSignUp        = errors.New("Cannot sign up for this shift")
	ErrAlreadyAssigned     = errors.New("User is already assigned to this shift")
	ErrShiftFull           = errors.New("Shift is already full")
	ErrAssignmentNotFound  = errors.New("Assignment not found")
	ErrOnlyManagersRemove  = errors.New("Only managers can remove other employees")
	ErrRemoveCrossDept     = errors.New("Managers can only manage shifts in their own department")
	ErrShiftCreateCrossDpt = errors.New("Managers can only create shifts for their own department")
	ErrShiftUpdateCrossDpt = errors.New("Managers can only update shifts in their own department")
	ErrShiftDeleteCrossDpt = errors.New("Managers can only delete shifts in their own department")
)

const defaultShiftPageSize = 10

// ShiftService handles shift CRUD and the assignment capacity rules.
type ShiftService interface {
	FindAll(ctx context.Context, actor authz.Actor, q *dto.ShiftListQuery) ([]dto.ShiftResponse, int64, error)
	FindPublic(ctx context.Context, q *dto.ShiftListQuery) ([]dto.ShiftResponse, int64, error)
	FindOne(ctx context.Context, id uint) (*dto.ShiftResponse, error)
	Create(ctx context.Context, actor authz.Actor, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error)
	Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error)
	// Remove deactivates the shift; assignments are kept.
	Remove(ctx context.Context, actor authz.Actor, id uint) error
	// AssignUser assigns the target (or the actor, when target is nil) to
	// the shift. Checks run in a fixed order: existence, authorization,
	// uniqueness, capacity. The uniqueness and capacity checks and the
	// insert run under a per-shift lock so concurrent requests cannot
	// oversubscribe the shift.
	AssignUser(ctx context.Context, actor authz.Actor, shiftID uint, targetUserID *uint) (*dto.AssignmentResponse, error)
	RemoveAssignment(ctx context.Context, actor authz.Actor, shiftID, userID uint) error
	GetAssignments(ctx context.Context, shiftID uint) ([]dto.AssignmentResponse, error)
}

type shiftService struct {
	repo   *repository.Repository
	locks  *keylock.KeyLock
	logger *zap.Logger
}

// NewShiftService creates the ShiftService.
func NewShiftService(repo *repository.Repository, locks *keylock.KeyLock, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, locks: locks, logger: logger}
}

// ────────────────────── FindAll ──────────────────────

// FindAll lists active shifts. Only managers are narrowed to their own
// department; employees see the full listing, public shifts included.
func (s *shiftService) FindAll(ctx context.Context, actor authz.Actor, q *dto.ShiftListQuery) ([]dto.ShiftResponse, int64, error) {
	filters := repository.ShiftListFilters{
		DepartmentID: authz.DepartmentScope(actor, q.DepartmentID),
		IsPublic:     q.IsPublic,
		StartDate:    q.StartDate,
		EndDate:      q.EndDate,
	}
	return s.list(ctx, filters, q)
}

// ────────────────────── FindPublic ──────────────────────

// FindPublic lists active public shifts regardless of department.
func (s *shiftService) FindPublic(ctx context.Context, q *dto.ShiftListQuery) ([]dto.ShiftResponse, int64, error) {
	public := true
	filters := repository.ShiftListFilters{
		DepartmentID: q.DepartmentID,
		IsPublic:     &public,
		StartDate:    q.StartDate,
		EndDate:      q.EndDate,
	}
	return s.list(ctx, filters, q)
}

func (s *shiftService) list(ctx context.Context, filters repository.ShiftListFilters, q *dto.ShiftListQuery) ([]dto.ShiftResponse, int64, error) {
	shifts, total, err := s.repo.Shift.List(ctx, filters, q.Offset(defaultShiftPageSize), q.GetLimit(defaultShiftPageSize))
	if err != nil {
		s.logger.Error("listing shifts failed", zap.Error(err))
		return nil, 0, err
	}

	ids := make([]uint, 0, len(shifts))
	for _, sh := range shifts {
		ids = append(ids, sh.ID)
	}
	counts, err := s.repo.Shift.BatchCountConfirmed(ctx, ids)
	if err != nil {
		s.logger.Warn("counting assignments failed, reporting zero", zap.Error(err))
		counts = map[uint]int64{}
	}

	out := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		out = append(out, *dto.NewShiftResponse(&shifts[i], counts[shifts[i].ID]))
	}
	return out, total, nil
}

// ────────────────────── FindOne ──────────────────────

func (s *shiftService) FindOne(ctx context.Context, id uint) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByIDFull(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("loading shift failed", zap.Uint("shift_id", id), zap.Error(err))
		return nil, err
	}

	var confirmed int64
	for _, a := range shift.Assignments {
		if a.Status == model.AssignmentConfirmed {
			confirmed++
		}
	}
	resp := dto.NewShiftResponse(shift, confirmed)
	resp.Assignments = make([]dto.AssignmentResponse, 0, len(shift.Assignments))
	for i := range shift.Assignments {
		resp.Assignments = append(resp.Assignments, *dto.NewAssignmentResponse(&shift.Assignments[i]))
	}
	return resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, actor authz.Actor, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	if !authz.CanManageShift(actor, req.DepartmentID) {
		return nil, ErrShiftCreateCrossDpt
	}
	if _, err := s.repo.Department.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}

	required := req.RequiredEmployees
	if required < 1 {
		required = 1
	}
	shift := &model.Shift{
		Title:             req.Title,
		Description:       req.Description,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		DepartmentID:      req.DepartmentID,
		IsPublic:          req.IsPublic,
		RequiredEmployees: required,
		IsActive:          true,
	}
	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("creating shift failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("shift created", zap.Uint("shift_id", shift.ID), zap.Uint("department_id", shift.DepartmentID))
	return dto.NewShiftResponse(shift, 0), nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftService) Update(ctx context.Context, actor authz.Actor, id uint, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error) {
	shift, err := s.getShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageShift(actor, shift.DepartmentID) {
		return nil, ErrShiftUpdateCrossDpt
	}

	if req.Title != nil {
		shift.Title = *req.Title
	}
	if req.Description != nil {
		shift.Description = *req.Description
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if req.IsPublic != nil {
		shift.IsPublic = *req.IsPublic
	}
	if req.RequiredEmployees != nil && *req.RequiredEmployees >= 1 {
		shift.RequiredEmployees = *req.RequiredEmployees
	}

	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		s.logger.Error("updating shift failed", zap.Uint("shift_id", id), zap.Error(err))
		return nil, err
	}
	return s.FindOne(ctx, id)
}

// ────────────────────── Remove ──────────────────────

func (s *shiftService) Remove(ctx context.Context, actor authz.Actor, id uint) error {
	shift, err := s.getShift(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanManageShift(actor, shift.DepartmentID) {
		return ErrShiftDeleteCrossDpt
	}

	shift.IsActive = false
	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		s.logger.Error("deactivating shift failed", zap.Uint("shift_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("shift deactivated", zap.Uint("shift_id", id))
	return nil
}

// ────────────────────── AssignUser ──────────────────────

func (s *shiftService) AssignUser(ctx context.Context, actor authz.Actor, shiftID uint, targetUserID *uint) (*dto.AssignmentResponse, error) {
	shift, err := s.getShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	userID := actor.UserID
	if targetUserID != nil {
		userID = *targetUserID
	}
	// The target must exist before any permission check so that a missing
	// user surfaces as NotFound rather than Forbidden.
	target, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	selfAssign := userID == actor.UserID

	var assignedBy *uint
	if selfAssign {
		if !authz.CanSelfAssign(actor, shift.IsPublic, shift.DepartmentID) {
			return nil, ErrCannotSignUp
		}
	} else {
		if !actor.IsHR() && !actor.IsManager() {
			return nil, ErrOnlyManagersAssign
		}
		if !authz.CanActOnUser(actor, target.ID, target.DepartmentID) {
			return nil, ErrAssignCrossDept
		}
		by := actor.UserID
		assignedBy = &by
	}

	// The check-then-insert below must not interleave with another
	// assignment on the same shift.
	unlock := s.locks.Lock(shiftKey(shiftID))
	defer unlock()

	existing, err := s.repo.Assignment.GetByUserAndShift(ctx, userID, shiftID)
	if err != nil {
		s.logger.Error("looking up assignment failed", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyAssigned
	}

	confirmed, err := s.repo.Assignment.CountConfirmedByShift(ctx, shiftID)
	if err != nil {
		s.logger.Error("counting assignments failed", zap.Error(err))
		return nil, err
	}
	if confirmed >= int64(shift.RequiredEmployees) {
		return nil, ErrShiftFull
	}

	assignment := &model.ShiftAssignment{
		UserID:       userID,
		ShiftID:      shiftID,
		Status:       model.AssignmentConfirmed,
		AssignedByID: assignedBy,
	}
	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		s.logger.Error("creating assignment failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user assigned to shift",
		zap.Uint("shift_id", shiftID),
		zap.Uint("user_id", userID),
		zap.Bool("self", selfAssign),
	)
	return dto.NewAssignmentResponse(assignment), nil
}

// ────────────────────── RemoveAssignment ──────────────────────

func (s *shiftService) RemoveAssignment(ctx context.Context, actor authz.Actor, shiftID, userID uint) error {
	shift, err := s.getShift(ctx, shiftID)
	if err != nil {
		return err
	}

	assignment, err := s.repo.Assignment.GetByUserAndShift(ctx, userID, shiftID)
	if err != nil {
		s.logger.Error("looking up assignment failed", zap.Error(err))
		return err
	}
	if assignment == nil {
		return ErrAssignmentNotFound
	}

	// Managers are gated by the shift's department, not the target user's.
	if userID != actor.UserID {
		if !actor.IsHR() && !actor.IsManager() {
			return ErrOnlyManagersRemove
		}
		if !authz.CanManageShift(actor, shift.DepartmentID) {
			return ErrRemoveCrossDept
		}
	}

	if err := s.repo.Assignment.Delete(ctx, assignment.ID); err != nil {
		s.logger.Error("deleting assignment failed", zap.Uint("assignment_id", assignment.ID), zap.Error(err))
		return err
	}
	s.logger.Info("assignment removed", zap.Uint("shift_id", shiftID), zap.Uint("user_id", userID))
	return nil
}

// ────────────────────── GetAssignments ──────────────────────

func (s *shiftService) GetAssignments(ctx context.Context, shiftID uint) ([]dto.AssignmentResponse, error) {
	if _, err := s.getShift(ctx, shiftID); err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListByShift(ctx, shiftID)
	if err != nil {
		s.logger.Error("listing assignments failed", zap.Uint("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	out := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		out = append(out, *dto.NewAssignmentResponse(&assignments[i]))
	}
	return out, nil
}

func (s *shiftService) getShift(ctx context.Context, id uint) (*model.Shift, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("loading shift failed", zap.Uint("shift_id", id), zap.Error(err))
		return nil, err
	}
	return shift, nil
}

func shiftKey(id uint) string { return fmt.Sprintf("shift:%d", id) }

package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/internal/model"
)

// AssignmentRepository is the shift-assignment data-access interface.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.ShiftAssignment) error
	// GetByUserAndShift returns (nil, nil) when no assignment exists.
	GetByUserAndShift(ctx context.Context, userID, shiftID uint) (*model.ShiftAssignment, error)
	Delete(ctx context.Context, id uint) error
	CountConfirmedByShift(ctx context.Context, shiftID uint) (int64, error)
	ListByShift(ctx context.Context, shiftID uint) ([]model.ShiftAssignment, error)
	// ListByUserInRange returns the user's confirmed assignments whose
	// shift starts inside [from, to], ordered by shift start time.
	ListByUserInRange(ctx context.Context, userID uint, from, to time.Time) ([]model.ShiftAssignment, error)
	// FindConfirmedInWindow returns the user's first confirmed assignment
	// whose shift starts inside [from, to], or (nil, nil) when none does.
	FindConfirmedInWindow(ctx context.Context, userID uint, from, to time.Time) (*model.ShiftAssignment, error)
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo creates the GORM-backed AssignmentRepository.
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.ShiftAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByUserAndShift(ctx context.Context, userID, shiftID uint) (*model.ShiftAssignment, error) {
	var assignment model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND shift_id = ?", userID, shiftID).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.ShiftAssignment{}, id).Error
}

func (r *assignmentRepo) CountConfirmedByShift(ctx context.Context, shiftID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ShiftAssignment{}).
		Where("shift_id = ? AND status = ?", shiftID, model.AssignmentConfirmed).
		Count(&count).Error
	return count, err
}

func (r *assignmentRepo) ListByShift(ctx context.Context, shiftID uint) ([]model.ShiftAssignment, error) {
	var assignments []model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("shift_id = ?", shiftID).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListByUserInRange(ctx context.Context, userID uint, from, to time.Time) ([]model.ShiftAssignment, error) {
	var assignments []model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Shift.Department").
		Joins("JOIN shifts ON shifts.id = shift_assignments.shift_id").
		Where("shift_assignments.user_id = ? AND shift_assignments.status = ?", userID, model.AssignmentConfirmed).
		Where("shifts.start_time >= ? AND shifts.start_time <= ?", from, to).
		Order("shifts.start_time ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) FindConfirmedInWindow(ctx context.Context, userID uint, from, to time.Time) (*model.ShiftAssignment, error) {
	var assignment model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Joins("JOIN shifts ON shifts.id = shift_assignments.shift_id").
		Where("shift_assignments.user_id = ? AND shift_assignments.status = ?", userID, model.AssignmentConfirmed).
		Where("shifts.start_time >= ? AND shifts.start_time <= ?", from, to).
		Order("shifts.start_time ASC").
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/internal/model"
)

// ShiftListFilters narrows shift listings. Nil fields are ignored.
type ShiftListFilters struct {
	DepartmentID *uint
	IsPublic     *bool
	StartDate    *time.Time
	EndDate      *time.Time
}

// ShiftRepository is the shifts data-access interface.
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id uint) (*model.Shift, error)
	// GetByIDFull loads the shift with its department and assignments
	// including the assigned users.
	GetByIDFull(ctx context.Context, id uint) (*model.Shift, error)
	Update(ctx context.Context, shift *model.Shift) error
	List(ctx context.Context, filters ShiftListFilters, offset, limit int) ([]model.Shift, int64, error)
	// BatchCountConfirmed returns the number of confirmed assignments
	// per shift for the given shift ids.
	BatchCountConfirmed(ctx context.Context, shiftIDs []uint) (map[uint]int64, error)
}

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo creates the GORM-backed ShiftRepository.
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id uint) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) GetByIDFull(ctx context.Context, id uint) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Assignments").
		Preload("Assignments.User").
		Where("id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) Update(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Save(shift).Error
}

func (r *shiftRepo) List(ctx context.Context, filters ShiftListFilters, offset, limit int) ([]model.Shift, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Shift{}).Where("is_active = ?", true)

	if filters.DepartmentID != nil {
		query = query.Where("department_id = ?", *filters.DepartmentID)
	}
	if filters.IsPublic != nil {
		query = query.Where("is_public = ?", *filters.IsPublic)
	}
	if filters.StartDate != nil {
		query = query.Where("start_time >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("end_time <= ?", *filters.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shifts []model.Shift
	err := query.
		Preload("Department").
		Order("start_time ASC").
		Offset(offset).Limit(limit).
		Find(&shifts).Error
	return shifts, total, err
}

func (r *shiftRepo) BatchCountConfirmed(ctx context.Context, shiftIDs []uint) (map[uint]int64, error) {
	if len(shiftIDs) == 0 {
		return map[uint]int64{}, nil
	}

	type row struct {
		ShiftID uint
		Count   int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.ShiftAssignment{}).
		Select("shift_id, COUNT(*) AS count").
		Where("shift_id IN ? AND status = ?", shiftIDs, model.AssignmentConfirmed).
		Group("shift_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ShiftID] = r.Count
	}
	return counts, nil
}

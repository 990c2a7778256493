package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/internal/model"
)

// AttendanceListFilters narrows attendance listings. Nil fields are ignored.
// DepartmentID filters through the owning user's department.
type AttendanceListFilters struct {
	UserID       *uint
	DepartmentID *uint
	Start        *time.Time
	End          *time.Time
}

// AttendanceRepository is the attendance data-access interface.
type AttendanceRepository interface {
	Create(ctx context.Context, att *model.Attendance) error
	GetByID(ctx context.Context, id uint) (*model.Attendance, error)
	// GetOpenByUser returns the user's record with a null clock-out,
	// or (nil, nil) when the user has no open record.
	GetOpenByUser(ctx context.Context, userID uint) (*model.Attendance, error)
	Update(ctx context.Context, att *model.Attendance) error
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, filters AttendanceListFilters, offset, limit int) ([]model.Attendance, int64, error)
	ListAll(ctx context.Context, filters AttendanceListFilters, offset, limit int) ([]model.Attendance, int64, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo creates the GORM-backed AttendanceRepository.
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, att *model.Attendance) error {
	return r.db.WithContext(ctx).Create(att).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id uint) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Shift").
		Where("id = ?", id).
		First(&att).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attendanceRepo) GetOpenByUser(ctx context.Context, userID uint) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("user_id = ? AND clock_out IS NULL", userID).
		Order("clock_in DESC").
		First(&att).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attendanceRepo) Update(ctx context.Context, att *model.Attendance) error {
	return r.db.WithContext(ctx).Save(att).Error
}

func (r *attendanceRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Attendance{}, id).Error
}

func (r *attendanceRepo) ListByUser(ctx context.Context, userID uint, filters AttendanceListFilters, offset, limit int) ([]model.Attendance, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("attendances.user_id = ?", userID)
	query = applyAttendanceFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.Attendance
	err := query.
		Preload("Shift").
		Order("attendances.clock_in DESC").
		Offset(offset).Limit(limit).
		Find(&records).Error
	return records, total, err
}

func (r *attendanceRepo) ListAll(ctx context.Context, filters AttendanceListFilters, offset, limit int) ([]model.Attendance, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Attendance{})
	if filters.UserID != nil {
		query = query.Where("attendances.user_id = ?", *filters.UserID)
	}
	query = applyAttendanceFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.Attendance
	err := query.
		Preload("User").
		Preload("Shift").
		Order("attendances.clock_in DESC").
		Offset(offset).Limit(limit).
		Find(&records).Error
	return records, total, err
}

func applyAttendanceFilters(query *gorm.DB, filters AttendanceListFilters) *gorm.DB {
	if filters.DepartmentID != nil {
		query = query.
			Joins("JOIN users ON users.id = attendances.user_id").
			Where("users.department_id = ?", *filters.DepartmentID)
	}
	if filters.Start != nil {
		query = query.Where("attendances.clock_in >= ?", *filters.Start)
	}
	if filters.End != nil {
		query = query.Where("attendances.clock_in <= ?", *filters.End)
	}
	return query
}

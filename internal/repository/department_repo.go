package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/internal/model"
)

// DepartmentRepository is the departments data-access interface.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id uint) (*model.Department, error)
	GetByIDWithUsers(ctx context.Context, id uint) (*model.Department, error)
	GetByName(ctx context.Context, name string) (*model.Department, error)
	List(ctx context.Context, search string, offset, limit int) ([]model.Department, int64, error)
	Update(ctx context.Context, dept *model.Department) error
	CountUsers(ctx context.Context, departmentID uint) (int64, error)
	BatchCountUsers(ctx context.Context, departmentIDs []uint) (map[uint]int64, error)
}

type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo creates the GORM-backed DepartmentRepository.
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepo) GetByID(ctx context.Context, id uint) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) GetByIDWithUsers(ctx context.Context, id uint) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Preload("Users").
		Preload("Shifts").
		Where("id = ?", id).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) GetByName(ctx context.Context, name string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) List(ctx context.Context, search string, offset, limit int) ([]model.Department, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Department{})

	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var depts []model.Department
	err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&depts).Error
	return depts, total, err
}

func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

func (r *departmentRepo) CountUsers(ctx context.Context, departmentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

func (r *departmentRepo) BatchCountUsers(ctx context.Context, departmentIDs []uint) (map[uint]int64, error) {
	if len(departmentIDs) == 0 {
		return map[uint]int64{}, nil
	}

	type row struct {
		DepartmentID uint
		Count        int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("department_id, COUNT(*) AS count").
		Where("department_id IN ?", departmentIDs).
		Group("department_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.DepartmentID] = r.Count
	}
	return counts, nil
}

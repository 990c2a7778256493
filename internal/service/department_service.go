package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/model"
	"github.com/danchok124-del/shift-manager-backend/internal/repository"
)

// ── department business errors ──

var (
	ErrDepartmentNotFound   = errors.New("Department not found")
	ErrDepartmentNameExists = errors.New("Department with this name already exists")
	ErrUserNotInDepartment  = errors.New("User not found in this department")
)

const defaultDepartmentPageSize = 10

// DepartmentService handles department CRUD and membership.
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	FindAll(ctx context.Context, q *dto.DepartmentListQuery) ([]dto.DepartmentResponse, int64, error)
	FindOne(ctx context.Context, id uint) (*dto.DepartmentResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error)
	// Remove deactivates the department. Members keep their foreign key.
	Remove(ctx context.Context, id uint) error
	GetUsers(ctx context.Context, id uint) ([]dto.UserResponse, error)
	AddUser(ctx context.Context, id, userID uint) (*dto.UserResponse, error)
	RemoveUser(ctx context.Context, id, userID uint) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService creates the DepartmentService.
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	existing, err := s.repo.Department.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("looking up department failed", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrDepartmentNameExists
	}

	dept := &model.Department{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("creating department failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("department created", zap.Uint("department_id", dept.ID), zap.String("name", dept.Name))
	return dto.NewDepartmentResponse(dept, 0), nil
}

// ────────────────────── FindAll ──────────────────────

func (s *departmentService) FindAll(ctx context.Context, q *dto.DepartmentListQuery) ([]dto.DepartmentResponse, int64, error) {
	depts, total, err := s.repo.Department.List(ctx, q.Search, q.Offset(defaultDepartmentPageSize), q.GetLimit(defaultDepartmentPageSize))
	if err != nil {
		s.logger.Error("listing departments failed", zap.Error(err))
		return nil, 0, err
	}

	// One grouped count instead of a query per department.
	ids := make([]uint, 0, len(depts))
	for _, d := range depts {
		ids = append(ids, d.ID)
	}
	counts, err := s.repo.Department.BatchCountUsers(ctx, ids)
	if err != nil {
		s.logger.Warn("counting members failed, reporting zero", zap.Error(err))
		counts = map[uint]int64{}
	}

	out := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		out = append(out, *dto.NewDepartmentResponse(&depts[i], counts[depts[i].ID]))
	}
	return out, total, nil
}

// ────────────────────── FindOne ──────────────────────

func (s *departmentService) FindOne(ctx context.Context, id uint) (*dto.DepartmentResponse, error) {
	dept, err := s.getDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Department.CountUsers(ctx, id)
	if err != nil {
		s.logger.Warn("counting members failed, reporting zero", zap.Uint("department_id", id), zap.Error(err))
	}
	return dto.NewDepartmentResponse(dept, count), nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, id uint, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	dept, err := s.getDepartment(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != dept.Name {
		existing, err := s.repo.Department.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDepartmentNameExists
		}
		dept.Name = *req.Name
	}
	if req.Description != nil {
		dept.Description = *req.Description
	}

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		s.logger.Error("updating department failed", zap.Uint("department_id", id), zap.Error(err))
		return nil, err
	}
	return s.FindOne(ctx, id)
}

// ────────────────────── Remove ──────────────────────

func (s *departmentService) Remove(ctx context.Context, id uint) error {
	dept, err := s.getDepartment(ctx, id)
	if err != nil {
		return err
	}

	dept.IsActive = false
	if err := s.repo.Department.Update(ctx, dept); err != nil {
		s.logger.Error("deactivating department failed", zap.Uint("department_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("department deactivated", zap.Uint("department_id", id))
	return nil
}

// ────────────────────── GetUsers ──────────────────────

func (s *departmentService) GetUsers(ctx context.Context, id uint) ([]dto.UserResponse, error) {
	if _, err := s.getDepartment(ctx, id); err != nil {
		return nil, err
	}
	users, err := s.repo.User.ListByDepartment(ctx, id)
	if err != nil {
		s.logger.Error("listing members failed", zap.Uint("department_id", id), zap.Error(err))
		return nil, err
	}
	return dto.NewUserResponses(users), nil
}

// ────────────────────── AddUser ──────────────────────

func (s *departmentService) AddUser(ctx context.Context, id, userID uint) (*dto.UserResponse, error) {
	dept, err := s.getDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.DepartmentID = &dept.ID
	user.Department = nil
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("adding member failed", zap.Uint("department_id", id), zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	user.Department = dept
	return dto.NewUserResponse(user), nil
}

// ────────────────────── RemoveUser ──────────────────────

func (s *departmentService) RemoveUser(ctx context.Context, id, userID uint) error {
	if _, err := s.getDepartment(ctx, id); err != nil {
		return err
	}
	user, err := s.repo.User.GetInDepartment(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotInDepartment
		}
		return err
	}

	user.DepartmentID = nil
	user.Department = nil
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("removing member failed", zap.Uint("department_id", id), zap.Uint("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *departmentService) getDepartment(ctx context.Context, id uint) (*model.Department, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("loading department failed", zap.Uint("department_id", id), zap.Error(err))
		return nil, err
	}
	return dept, nil
}

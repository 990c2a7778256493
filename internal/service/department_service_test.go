package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/model"
	"github.com/danchok124-del/shift-manager-backend/internal/repository"
)

func setupDepartmentService() (DepartmentService, *mockDeptRepo, *mockUserRepo) {
	users := newMockUserRepo()
	depts := newMockDeptRepo(users)
	repo := &repository.Repository{
		User:       users,
		Department: depts,
		Shift:      newMockShiftRepo(newMockAssignmentRepo()),
		Assignment: newMockAssignmentRepo(),
		Attendance: newMockAttendanceRepo(users),
	}
	return NewDepartmentService(repo, zap.NewNop()), depts, users
}

func TestDepartmentCreate_Success(t *testing.T) {
	svc, _, _ := setupDepartmentService()

	result, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{
		Name:        "Kitchen",
		Description: "Back of house",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.Name != "Kitchen" || !result.IsActive {
		t.Errorf("unexpected department: %+v", result)
	}
}

func TestDepartmentCreate_DuplicateName(t *testing.T) {
	svc, _, _ := setupDepartmentService()

	if _, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "Kitchen"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "Kitchen"})
	if !errors.Is(err, ErrDepartmentNameExists) {
		t.Errorf("expected ErrDepartmentNameExists, got: %v", err)
	}
}

func TestDepartmentUpdate_RenameToTakenName(t *testing.T) {
	svc, _, _ := setupDepartmentService()

	first, _ := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "Kitchen"})
	if _, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "Bar"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	taken := "Bar"
	_, err := svc.Update(context.Background(), first.ID, &dto.UpdateDepartmentRequest{Name: &taken})
	if !errors.Is(err, ErrDepartmentNameExists) {
		t.Errorf("expected ErrDepartmentNameExists, got: %v", err)
	}
}

func TestDepartmentRemove_SoftDeleteKeepsMembers(t *testing.T) {
	svc, depts, users := setupDepartmentService()

	created, _ := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "Kitchen"})
	user := &model.User{Email: "m@example.com", Role: model.RoleEmployee, DepartmentID: &created.ID, IsActive: true}
	users.Create(context.Background(), user)

	if err := svc.Remove(context.Background(), created.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	stored := depts.depts[created.ID]
	if stored.IsActive {
		t.Error("expected department deactivated, not deleted")
	}
	kept, _ := users.GetByID(context.Background(), user.ID)
	if kept.DepartmentID == nil || *kept.DepartmentID != created.ID {
		t.Error("expected members to keep their department reference")
	}
}

func TestDepartmentFindAll_ReportsMemberCounts(t *testing.T) {
	svc, _, users := setupDepartmentService()

	created, _ := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "Kitchen"})
	for i := 0; i < 3; i++ {
		users.Create(context.Background(), &model.User{
			Email: "m@example.com", Role: model.RoleEmployee, DepartmentID: &created.ID, IsActive: true,
		})
	}

	result, total, err := svc.FindAll(context.Background(), &dto.DepartmentListQuery{})
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if total != 1 || len(result) != 1 {
		t.Fatalf("expected 1 department, got %d", total)
	}
	if result[0].UserCount != 3 {
		t.Errorf("expected 3 members, got %d", result[0].UserCount)
	}
}

func TestDepartmentAddRemoveUser(t *testing.T) {
	svc, _, users := setupDepartmentService()

	created, _ := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "Kitchen"})
	user := &model.User{Email: "m@example.com", Role: model.RoleEmployee, IsActive: true}
	users.Create(context.Background(), user)

	added, err := svc.AddUser(context.Background(), created.ID, user.ID)
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if added.DepartmentID == nil || *added.DepartmentID != created.ID {
		t.Error("expected user attached to department")
	}

	if err := svc.RemoveUser(context.Background(), created.ID, user.ID); err != nil {
		t.Fatalf("RemoveUser failed: %v", err)
	}
	detached, _ := users.GetByID(context.Background(), user.ID)
	if detached.DepartmentID != nil {
		t.Error("expected department reference cleared")
	}

	// Removing again fails: the user is no longer in the department.
	err = svc.RemoveUser(context.Background(), created.ID, user.ID)
	if !errors.Is(err, ErrUserNotInDepartment) {
		t.Errorf("expected ErrUserNotInDepartment, got: %v", err)
	}
}

func TestDepartmentFindOne_NotFound(t *testing.T) {
	svc, _, _ := setupDepartmentService()

	_, err := svc.FindOne(context.Background(), 999)
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("expected ErrDepartmentNotFound, got: %v", err)
	}
}

package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/danchok124-del/shift-manager-backend/internal/model"
	"github.com/danchok124-del/shift-manager-backend/internal/repository"
)

// ── mock UserRepository ──

type mockUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint]*model.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByCardID(_ context.Context, cardID string) (*model.User, error) {
	for _, u := range m.users {
		if u.CardID != nil && *u.CardID == cardID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByResetToken(_ context.Context, token string) (*model.User, error) {
	for _, u := range m.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetActiveByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := m.users[id]; ok && u.IsActive {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetInDepartment(_ context.Context, id, departmentID uint) (*model.User, error) {
	if u, ok := m.users[id]; ok && u.DepartmentID != nil && *u.DepartmentID == departmentID {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var matched []model.User
	for _, u := range m.users {
		if filters != nil {
			if filters.Search != "" {
				s := strings.ToLower(filters.Search)
				if !strings.Contains(strings.ToLower(u.FirstName), s) &&
					!strings.Contains(strings.ToLower(u.LastName), s) &&
					!strings.Contains(strings.ToLower(u.Email), s) {
					continue
				}
			}
			if filters.DepartmentID != nil {
				if u.DepartmentID == nil || *u.DepartmentID != *filters.DepartmentID {
					continue
				}
			}
			if filters.Role != "" && u.Role != filters.Role {
				continue
			}
		}
		matched = append(matched, *u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (m *mockUserRepo) ListByDepartment(_ context.Context, departmentID uint) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.DepartmentID != nil && *u.DepartmentID == departmentID {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.ID] = user
	return nil
}

// ── mock DepartmentRepository ──

type mockDeptRepo struct {
	depts  map[uint]*model.Department
	users  *mockUserRepo
	nextID uint
}

func newMockDeptRepo(users *mockUserRepo) *mockDeptRepo {
	return &mockDeptRepo{depts: make(map[uint]*model.Department), users: users, nextID: 1}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.ID == 0 {
		dept.ID = m.nextID
		m.nextID++
	}
	dept.CreatedAt = time.Now()
	m.depts[dept.ID] = dept
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id uint) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByIDWithUsers(ctx context.Context, id uint) (*model.Department, error) {
	return m.GetByID(ctx, id)
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context, search string, offset, limit int) ([]model.Department, int64, error) {
	var matched []model.Department
	for _, d := range m.depts {
		if search != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(search)) {
			continue
		}
		matched = append(matched, *d)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	m.depts[dept.ID] = dept
	return nil
}

func (m *mockDeptRepo) CountUsers(_ context.Context, departmentID uint) (int64, error) {
	var count int64
	for _, u := range m.users.users {
		if u.DepartmentID != nil && *u.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

func (m *mockDeptRepo) BatchCountUsers(ctx context.Context, departmentIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64)
	for _, id := range departmentIDs {
		c, _ := m.CountUsers(ctx, id)
		if c > 0 {
			counts[id] = c
		}
	}
	return counts, nil
}

// ── mock ShiftRepository ──

type mockShiftRepo struct {
	shifts      map[uint]*model.Shift
	assignments *mockAssignmentRepo
	nextID      uint
}

func newMockShiftRepo(assignments *mockAssignmentRepo) *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[uint]*model.Shift), assignments: assignments, nextID: 1}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ID == 0 {
		shift.ID = m.nextID
		m.nextID++
	}
	shift.CreatedAt = time.Now()
	m.shifts[shift.ID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id uint) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) GetByIDFull(ctx context.Context, id uint) (*model.Shift, error) {
	shift, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	copied := *shift
	copied.Assignments = nil
	for _, a := range m.assignments.assignments {
		if a.ShiftID == id {
			copied.Assignments = append(copied.Assignments, *a)
		}
	}
	return &copied, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	m.shifts[shift.ID] = shift
	return nil
}

func (m *mockShiftRepo) List(_ context.Context, filters repository.ShiftListFilters, offset, limit int) ([]model.Shift, int64, error) {
	var matched []model.Shift
	for _, s := range m.shifts {
		if !s.IsActive {
			continue
		}
		if filters.DepartmentID != nil && s.DepartmentID != *filters.DepartmentID {
			continue
		}
		if filters.IsPublic != nil && s.IsPublic != *filters.IsPublic {
			continue
		}
		if filters.StartDate != nil && s.StartTime.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && s.EndTime.After(*filters.EndDate) {
			continue
		}
		matched = append(matched, *s)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartTime.Before(matched[j].StartTime) })
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (m *mockShiftRepo) BatchCountConfirmed(ctx context.Context, shiftIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64)
	for _, id := range shiftIDs {
		c, _ := m.assignments.CountConfirmedByShift(ctx, id)
		if c > 0 {
			counts[id] = c
		}
	}
	return counts, nil
}

// ── mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[uint]*model.ShiftAssignment
	shifts      func(id uint) *model.Shift
	nextID      uint
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[uint]*model.ShiftAssignment), nextID: 1}
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *model.ShiftAssignment) error {
	if assignment.ID == 0 {
		assignment.ID = m.nextID
		m.nextID++
	}
	assignment.CreatedAt = time.Now()
	m.assignments[assignment.ID] = assignment
	return nil
}

func (m *mockAssignmentRepo) GetByUserAndShift(_ context.Context, userID, shiftID uint) (*model.ShiftAssignment, error) {
	for _, a := range m.assignments {
		if a.UserID == userID && a.ShiftID == shiftID {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id uint) error {
	delete(m.assignments, id)
	return nil
}

func (m *mockAssignmentRepo) CountConfirmedByShift(_ context.Context, shiftID uint) (int64, error) {
	var count int64
	for _, a := range m.assignments {
		if a.ShiftID == shiftID && a.Status == model.AssignmentConfirmed {
			count++
		}
	}
	return count, nil
}

func (m *mockAssignmentRepo) ListByShift(_ context.Context, shiftID uint) ([]model.ShiftAssignment, error) {
	var result []model.ShiftAssignment
	for _, a := range m.assignments {
		if a.ShiftID == shiftID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockAssignmentRepo) ListByUserInRange(_ context.Context, userID uint, from, to time.Time) ([]model.ShiftAssignment, error) {
	var result []model.ShiftAssignment
	for _, a := range m.assignments {
		if a.UserID != userID || a.Status != model.AssignmentConfirmed {
			continue
		}
		shift := m.resolveShift(a)
		if shift == nil || shift.StartTime.Before(from) || shift.StartTime.After(to) {
			continue
		}
		copied := *a
		copied.Shift = shift
		result = append(result, copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Shift.StartTime.Before(result[j].Shift.StartTime)
	})
	return result, nil
}

func (m *mockAssignmentRepo) FindConfirmedInWindow(ctx context.Context, userID uint, from, to time.Time) (*model.ShiftAssignment, error) {
	matched, err := m.ListByUserInRange(ctx, userID, from, to)
	if err != nil || len(matched) == 0 {
		return nil, err
	}
	return &matched[0], nil
}

func (m *mockAssignmentRepo) resolveShift(a *model.ShiftAssignment) *model.Shift {
	if a.Shift != nil {
		return a.Shift
	}
	if m.shifts != nil {
		return m.shifts(a.ShiftID)
	}
	return nil
}

// ── mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records map[uint]*model.Attendance
	users   *mockUserRepo
	nextID  uint
}

func newMockAttendanceRepo(users *mockUserRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[uint]*model.Attendance), users: users, nextID: 1}
}

func (m *mockAttendanceRepo) Create(_ context.Context, att *model.Attendance) error {
	if att.ID == 0 {
		att.ID = m.nextID
		m.nextID++
	}
	att.CreatedAt = time.Now()
	m.records[att.ID] = att
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id uint) (*model.Attendance, error) {
	if a, ok := m.records[id]; ok {
		copied := *a
		if m.users != nil {
			if u, ok := m.users.users[a.UserID]; ok {
				copied.User = u
			}
		}
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetOpenByUser(_ context.Context, userID uint) (*model.Attendance, error) {
	for _, a := range m.records {
		if a.UserID == userID && a.ClockOut == nil {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAttendanceRepo) Update(_ context.Context, att *model.Attendance) error {
	m.records[att.ID] = att
	return nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id uint) error {
	delete(m.records, id)
	return nil
}

func (m *mockAttendanceRepo) ListByUser(_ context.Context, userID uint, filters repository.AttendanceListFilters, offset, limit int) ([]model.Attendance, int64, error) {
	var matched []model.Attendance
	for _, a := range m.records {
		if a.UserID != userID {
			continue
		}
		if !m.matches(a, filters) {
			continue
		}
		matched = append(matched, *a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ClockIn.After(matched[j].ClockIn) })
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (m *mockAttendanceRepo) ListAll(_ context.Context, filters repository.AttendanceListFilters, offset, limit int) ([]model.Attendance, int64, error) {
	var matched []model.Attendance
	for _, a := range m.records {
		if filters.UserID != nil && a.UserID != *filters.UserID {
			continue
		}
		if !m.matches(a, filters) {
			continue
		}
		copied := *a
		if m.users != nil {
			if u, ok := m.users.users[a.UserID]; ok {
				copied.User = u
			}
		}
		matched = append(matched, copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ClockIn.After(matched[j].ClockIn) })
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (m *mockAttendanceRepo) matches(a *model.Attendance, filters repository.AttendanceListFilters) bool {
	if filters.DepartmentID != nil {
		if m.users == nil {
			return false
		}
		u, ok := m.users.users[a.UserID]
		if !ok || u.DepartmentID == nil || *u.DepartmentID != *filters.DepartmentID {
			return false
		}
	}
	if filters.Start != nil && a.ClockIn.Before(*filters.Start) {
		return false
	}
	if filters.End != nil && a.ClockIn.After(*filters.End) {
		return false
	}
	return true
}

// page applies offset/limit to a sorted slice.
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

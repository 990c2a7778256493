package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danchok124-del/shift-manager-backend/internal/api/middleware"
	"github.com/danchok124-del/shift-manager-backend/internal/authz"
	"github.com/danchok124-del/shift-manager-backend/internal/dto"
	"github.com/danchok124-del/shift-manager-backend/internal/model"
	"github.com/danchok124-del/shift-manager-backend/internal/service"
	"github.com/danchok124-del/shift-manager-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.UserResponse
	registerErr    error
	loginResult    *dto.TokenResponse
	loginErr       error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	logoutErr      error
	forgotErr      error
	resetErr       error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.UserResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error { return m.logoutErr }
func (m *mockAuthService) ForgotPassword(_ context.Context, _ string) error {
	return m.forgotErr
}
func (m *mockAuthService) ResetPassword(_ context.Context, _, _ string) error { return m.resetErr }
func (m *mockAuthService) ValidateUser(_ context.Context, _ uint) (*model.User, error) {
	return nil, nil
}

// ── Mock ShiftService ──

type mockShiftService struct {
	listResult   []dto.ShiftResponse
	listTotal    int64
	listErr      error
	oneResult    *dto.ShiftResponse
	oneErr       error
	createResult *dto.ShiftResponse
	createErr    error
	updateResult *dto.ShiftResponse
	updateErr    error
	removeErr    error
	assignResult *dto.AssignmentResponse
	assignErr    error
	unassignErr  error
	assignments  []dto.AssignmentResponse
	assignTarget *uint
}

func (m *mockShiftService) FindAll(_ context.Context, _ authz.Actor, _ *dto.ShiftListQuery) ([]dto.ShiftResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockShiftService) FindPublic(_ context.Context, _ *dto.ShiftListQuery) ([]dto.ShiftResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockShiftService) FindOne(_ context.Context, _ uint) (*dto.ShiftResponse, error) {
	return m.oneResult, m.oneErr
}
func (m *mockShiftService) Create(_ context.Context, _ authz.Actor, _ *dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockShiftService) Update(_ context.Context, _ authz.Actor, _ uint, _ *dto.UpdateShiftRequest) (*dto.ShiftResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockShiftService) Remove(_ context.Context, _ authz.Actor, _ uint) error { return m.removeErr }
func (m *mockShiftService) AssignUser(_ context.Context, _ authz.Actor, _ uint, targetUserID *uint) (*dto.AssignmentResponse, error) {
	m.assignTarget = targetUserID
	return m.assignResult, m.assignErr
}
func (m *mockShiftService) RemoveAssignment(_ context.Context, _ authz.Actor, _, _ uint) error {
	return m.unassignErr
}
func (m *mockShiftService) GetAssignments(_ context.Context, _ uint) ([]dto.AssignmentResponse, error) {
	return m.assignments, nil
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	clockInResult   *dto.ClockResult
	clockInErr      error
	clockOutResult  *dto.ClockResult
	clockOutErr     error
	manualInResult  *dto.ClockResult
	manualInErr     error
	manualOutResult *dto.ClockResult
	manualOutErr    error
	byUserRecords   []dto.AttendanceResponse
	byUserTotal     int64
	byUserHours     float64
	byUserErr       error
	allRecords      []dto.AttendanceResponse
	allTotal        int64
	allErr          error
	oneResult       *dto.AttendanceResponse
	oneErr          error
	updateResult    *dto.AttendanceResponse
	updateErr       error
	removeErr       error
}

func (m *mockAttendanceService) ClockInByCard(_ context.Context, _ string) (*dto.ClockResult, error) {
	return m.clockInResult, m.clockInErr
}
func (m *mockAttendanceService) ClockOutByCard(_ context.Context, _ string) (*dto.ClockResult, error) {
	return m.clockOutResult, m.clockOutErr
}
func (m *mockAttendanceService) ManualClockIn(_ context.Context, _ authz.Actor, _ uint) (*dto.ClockResult, error) {
	return m.manualInResult, m.manualInErr
}
func (m *mockAttendanceService) ManualClockOut(_ context.Context, _ authz.Actor) (*dto.ClockResult, error) {
	return m.manualOutResult, m.manualOutErr
}
func (m *mockAttendanceService) FindByUser(_ context.Context, _ authz.Actor, _ uint, _ *dto.UserAttendanceQuery) ([]dto.AttendanceResponse, int64, float64, error) {
	return m.byUserRecords, m.byUserTotal, m.byUserHours, m.byUserErr
}
func (m *mockAttendanceService) FindAll(_ context.Context, _ authz.Actor, _ *dto.AttendanceListQuery) ([]dto.AttendanceResponse, int64, error) {
	return m.allRecords, m.allTotal, m.allErr
}
func (m *mockAttendanceService) FindOne(_ context.Context, _ authz.Actor, _ uint) (*dto.AttendanceResponse, error) {
	return m.oneResult, m.oneErr
}
func (m *mockAttendanceService) Update(_ context.Context, _ authz.Actor, _ uint, _ *dto.UpdateAttendanceRequest) (*dto.AttendanceResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockAttendanceService) Remove(_ context.Context, _ authz.Actor, _ uint) error {
	return m.removeErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportAttendance(_ context.Context, _ authz.Actor, _ *dto.AttendanceListQuery) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportUserScheduleICS(_ context.Context, _ authz.Actor, _ uint, _ *dto.ScheduleQuery) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func withAuth(userID uint, role string, deptID *uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxRole, role)
		c.Set(middleware.CtxDepartmentID, deptID)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func doRequest(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	return out
}

func uintPtr(v uint) *uint { return &v }

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
		},
	}
	h := NewAuthHandler(mock, nil)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := doRequest(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "jan.novak@example.com",
		Password: "password123",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["accessToken"] != "test-access-token" {
		t.Errorf("expected accessToken in body, got %v", body)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := doRequest(r, "POST", "/auth/login", bytes.NewReader([]byte("not json")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, nil)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := doRequest(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "jan.novak@example.com",
		Password: "wrong-password",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerErr: service.ErrEmailExists}, nil)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	w := doRequest(r, "POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Email:     "jan.novak@example.com",
		Password:  "password123",
		FirstName: "Jan",
		LastName:  "Novák",
	}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestAuthHandler_ForgotPassword_AlwaysOK(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil)

	r := gin.New()
	r.POST("/auth/forgot-password", h.ForgotPassword)
	w := doRequest(r, "POST", "/auth/forgot-password", jsonBody(dto.ForgotPasswordRequest{
		Email: "nobody@example.com",
	}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ShiftHandler Tests
// ═══════════════════════════════════════════════════════════

func TestShiftHandler_AssignUser_SelfSignupEmptyBody(t *testing.T) {
	mock := &mockShiftService{
		assignResult: &dto.AssignmentResponse{ID: 1, UserID: 7, ShiftID: 3, Status: model.AssignmentConfirmed},
	}
	h := NewShiftHandler(mock)

	r := gin.New()
	r.POST("/shifts/:id/assign", withAuth(7, model.RoleEmployee, uintPtr(2)), h.AssignUser)
	w := doRequest(r, "POST", "/shifts/3/assign", nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.assignTarget != nil {
		t.Errorf("expected nil target for self signup, got %v", *mock.assignTarget)
	}
}

func TestShiftHandler_AssignUser_ManagerAssignsOther(t *testing.T) {
	mock := &mockShiftService{
		assignResult: &dto.AssignmentResponse{ID: 2, UserID: 9, ShiftID: 3, Status: model.AssignmentConfirmed},
	}
	h := NewShiftHandler(mock)

	r := gin.New()
	r.POST("/shifts/:id/assign", withAuth(1, model.RoleManager, uintPtr(2)), h.AssignUser)
	w := doRequest(r, "POST", "/shifts/3/assign", jsonBody(dto.AssignUserRequest{UserID: uintPtr(9)}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.assignTarget == nil || *mock.assignTarget != 9 {
		t.Errorf("expected target user 9, got %v", mock.assignTarget)
	}
}

func TestShiftHandler_AssignUser_ShiftFull(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{assignErr: service.ErrShiftFull})

	r := gin.New()
	r.POST("/shifts/:id/assign", withAuth(7, model.RoleEmployee, uintPtr(2)), h.AssignUser)
	w := doRequest(r, "POST", "/shifts/3/assign", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestShiftHandler_AssignUser_AlreadyAssigned(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{assignErr: service.ErrAlreadyAssigned})

	r := gin.New()
	r.POST("/shifts/:id/assign", withAuth(7, model.RoleEmployee, uintPtr(2)), h.AssignUser)
	w := doRequest(r, "POST", "/shifts/3/assign", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestShiftHandler_CreateShift_CrossDepartment(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{createErr: service.ErrShiftCreateCrossDpt})

	r := gin.New()
	r.POST("/shifts", withAuth(1, model.RoleManager, uintPtr(2)), h.CreateShift)
	w := doRequest(r, "POST", "/shifts", jsonBody(dto.CreateShiftRequest{
		Title:             "Ranní směna",
		StartTime:         time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		EndTime:           time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC),
		DepartmentID:      5,
		RequiredEmployees: 2,
	}))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestShiftHandler_RemoveAssignment_NotFound(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{unassignErr: service.ErrAssignmentNotFound})

	r := gin.New()
	r.DELETE("/shifts/:id/assign/:userId", withAuth(7, model.RoleEmployee, uintPtr(2)), h.RemoveAssignment)
	w := doRequest(r, "DELETE", "/shifts/3/assign/7", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestShiftHandler_GetShift_InvalidID(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{})

	r := gin.New()
	r.GET("/shifts/:id", h.GetShift)
	w := doRequest(r, "GET", "/shifts/abc", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_CardClockIn_UnknownCard(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{clockInErr: service.ErrCardNotFound})

	r := gin.New()
	r.POST("/attendance/clock-in", h.CardClockIn)
	w := doRequest(r, "POST", "/attendance/clock-in", jsonBody(dto.CardClockRequest{CardID: "CARD-404"}))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAttendanceHandler_ManualClockIn_TooEarly(t *testing.T) {
	mock := &mockAttendanceService{
		manualInErr: &service.TooEarlyError{
			MinutesToWait: 5,
			Message:       "Příliš brzy na příchod. Přihlásit se můžete nejdříve 10 minut před začátkem směny (za 5 min).",
		},
	}
	h := NewAttendanceHandler(mock)

	r := gin.New()
	r.POST("/attendance/manual-clock-in", withAuth(7, model.RoleEmployee, uintPtr(2)), h.ManualClockIn)
	w := doRequest(r, "POST", "/attendance/manual-clock-in", jsonBody(dto.ManualClockInRequest{ShiftID: 3}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["minutesToWait"] != float64(5) {
		t.Errorf("expected minutesToWait 5, got %v", body["minutesToWait"])
	}
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "za 5 min") {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestAttendanceHandler_ManualClockOut_NoOpenRecord(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{manualOutErr: service.ErrNoOpenAttendance})

	r := gin.New()
	r.POST("/attendance/manual-clock-out", withAuth(7, model.RoleEmployee, uintPtr(2)), h.ManualClockOut)
	w := doRequest(r, "POST", "/attendance/manual-clock-out", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Nenalezen žádný aktivní příchod." {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestAttendanceHandler_ListByUser_TotalHoursInMeta(t *testing.T) {
	mock := &mockAttendanceService{
		byUserRecords: []dto.AttendanceResponse{{ID: 1, UserID: 7, HoursWorked: 7.5}},
		byUserTotal:   1,
		byUserHours:   7.5,
	}
	h := NewAttendanceHandler(mock)

	r := gin.New()
	r.GET("/attendance/user/:id", withAuth(7, model.RoleEmployee, uintPtr(2)), h.ListByUser)
	w := doRequest(r, "GET", "/attendance/user/7", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	meta, _ := body["meta"].(map[string]interface{})
	if meta == nil {
		t.Fatalf("expected meta in body, got %v", body)
	}
	if meta["totalHours"] != float64(7.5) {
		t.Errorf("expected totalHours 7.5, got %v", meta["totalHours"])
	}
	if meta["limit"] != float64(31) {
		t.Errorf("expected default limit 31, got %v", meta["limit"])
	}
}

func TestAttendanceHandler_ListByUser_Forbidden(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{byUserErr: service.ErrAttendanceForbidden})

	r := gin.New()
	r.GET("/attendance/user/:id", withAuth(7, model.RoleEmployee, uintPtr(2)), h.ListByUser)
	w := doRequest(r, "GET", "/attendance/user/8", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAttendanceHandler_Unauthenticated(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	r := gin.New()
	r.POST("/attendance/manual-clock-out", h.ManualClockOut)
	w := doRequest(r, "POST", "/attendance/manual-clock-out", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportAttendance_Headers(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("xlsx-bytes"),
		filename: "attendance_2026-08-31.xlsx",
	}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/export/attendance", withAuth(1, model.RoleHR, nil), h.ExportAttendance)
	w := doRequest(r, "GET", "/export/attendance", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "attendance_2026-08-31.xlsx") {
		t.Errorf("unexpected Content-Disposition: %q", cd)
	}
	ct := w.Header().Get("Content-Type")
	if !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected Content-Type: %q", ct)
	}
}

func TestExportHandler_ExportAttendance_NoRecords(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoRecords})

	r := gin.New()
	r.GET("/export/attendance", withAuth(1, model.RoleHR, nil), h.ExportAttendance)
	w := doRequest(r, "GET", "/export/attendance", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestExportHandler_ExportSchedule_Forbidden(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrScheduleForbidden})

	r := gin.New()
	r.GET("/export/users/:id/schedule.ics", withAuth(7, model.RoleEmployee, uintPtr(2)), h.ExportSchedule)
	w := doRequest(r, "GET", "/export/users/8/schedule.ics", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

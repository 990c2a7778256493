package service

import (
	"go.uber.org/zap"

	"github.com/danchok124-del/shift-manager-backend/config"
	"github.com/danchok124-del/shift-manager-backend/internal/repository"
	"github.com/danchok124-del/shift-manager-backend/pkg/jwt"
	"github.com/danchok124-del/shift-manager-backend/pkg/keylock"
	"github.com/danchok124-del/shift-manager-backend/pkg/mailer"
	"github.com/danchok124-del/shift-manager-backend/pkg/redis"
)

// Service aggregates all business services.
type Service struct {
	Auth       AuthService
	User       UserService
	Department DepartmentService
	Shift      ShiftService
	Attendance AttendanceService
	Export     ExportService
}

// NewService wires the services. The mutating workflows share one lock
// table so per-user and per-shift critical sections stay consistent.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	mail mailer.Mailer,
	logger *zap.Logger,
) *Service {
	locks := keylock.New()
	return &Service{
		Auth:       NewAuthService(&cfg.Auth, repo, jwtMgr, rdb, mail, logger),
		User:       NewUserService(repo, logger),
		Department: NewDepartmentService(repo, logger),
		Shift:      NewShiftService(repo, locks, logger),
		Attendance: NewAttendanceService(repo, locks, logger),
		Export:     NewExportService(repo, logger),
	}
}

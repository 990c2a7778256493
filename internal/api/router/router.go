package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/danchok124-del/shift-manager-backend/config"
	"github.com/danchok124-del/shift-manager-backend/internal/api/handler"
	"github.com/danchok124-del/shift-manager-backend/internal/api/middleware"
	"github.com/danchok124-del/shift-manager-backend/internal/model"
	"github.com/danchok124-del/shift-manager-backend/pkg/jwt"
	"github.com/danchok124-del/shift-manager-backend/pkg/redis"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Setup builds the Gin engine with all routes and middleware wired.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	manageRoles := middleware.RoleAuth(model.RoleManager, model.RoleHR)
	hrOnly := middleware.RoleAuth(model.RoleHR)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// auth (public)
		authLimit := middleware.RateLimit(rdb, 10, time.Minute)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimit, h.Auth.Register)
			auth.POST("/login", authLimit, h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/forgot-password", middleware.RateLimit(rdb, 5, time.Minute), h.Auth.ForgotPassword)
			auth.POST("/reset-password", authLimit, h.Auth.ResetPassword)
		}

		// card reader endpoints, the device authenticates by card id
		cardLimit := middleware.RateLimit(rdb, 30, time.Minute)
		v1.POST("/attendance/clock-in", cardLimit, h.Attendance.CardClockIn)
		v1.POST("/attendance/clock-out", cardLimit, h.Attendance.CardClockOut)

		// public shift board
		v1.GET("/shifts/public", h.Shift.ListPublicShifts)

		// authenticated routes
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// users
			users := authorized.Group("/users")
			{
				users.GET("", manageRoles, h.User.ListUsers)
				users.GET("/me", h.Auth.Me)
				users.GET("/:id", h.User.GetUser) // self or scoped manager/hr
				users.PUT("/:id", h.User.UpdateUser)
				users.PUT("/:id/role", hrOnly, h.User.UpdateRole)
				users.PUT("/:id/department", hrOnly, h.User.AssignDepartment)
				users.DELETE("/:id", hrOnly, h.User.DeactivateUser)
				users.GET("/:id/schedule", h.User.GetSchedule)
				users.GET("/:id/report", h.User.GetWorkReport)
				users.POST("/delegate", manageRoles, h.User.Delegate)
				users.DELETE("/:id/delegation", manageRoles, h.User.RevokeDelegation)
			}

			// departments
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.ListDepartments)
				departments.GET("/:id", h.Department.GetDepartment)
				departments.POST("", hrOnly, h.Department.CreateDepartment)
				departments.PUT("/:id", hrOnly, h.Department.UpdateDepartment)
				departments.DELETE("/:id", hrOnly, h.Department.DeleteDepartment)
				departments.GET("/:id/users", manageRoles, h.Department.GetDepartmentUsers)
				departments.POST("/:id/users", hrOnly, h.Department.AddDepartmentUser)
				departments.DELETE("/:id/users/:userId", hrOnly, h.Department.RemoveDepartmentUser)
			}

			// shifts
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.ListShifts)
				shifts.GET("/:id", h.Shift.GetShift)
				shifts.POST("", manageRoles, h.Shift.CreateShift)
				shifts.PUT("/:id", manageRoles, h.Shift.UpdateShift)
				shifts.DELETE("/:id", manageRoles, h.Shift.DeleteShift)
				shifts.GET("/:id/assignments", h.Shift.GetAssignments)
				shifts.POST("/:id/assign", h.Shift.AssignUser) // self-signup or manager assign
				shifts.DELETE("/:id/assign/:userId", h.Shift.RemoveAssignment)
			}

			// attendance
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/manual-clock-in", h.Attendance.ManualClockIn)
				attendance.POST("/manual-clock-out", h.Attendance.ManualClockOut)
				attendance.GET("", manageRoles, h.Attendance.ListAll)
				attendance.GET("/my", h.Attendance.ListMy)
				attendance.GET("/user/:id", h.Attendance.ListByUser)
				attendance.GET("/:id", h.Attendance.GetAttendance)
				attendance.PUT("/:id", hrOnly, h.Attendance.UpdateAttendance)
				attendance.DELETE("/:id", hrOnly, h.Attendance.DeleteAttendance)
			}

			// exports
			export := authorized.Group("/export")
			{
				export.GET("/attendance", manageRoles, h.Export.ExportAttendance)
				export.GET("/my-schedule.ics", h.Export.ExportMySchedule)
				export.GET("/users/:id/schedule.ics", h.Export.ExportSchedule)
			}
		}
	}

	return r
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danchok124-del/shift-manager-backend/internal/api/middleware"
	"github.com/danchok124-del/shift-manager-backend/internal/authz"
	"github.com/danchok124-del/shift-manager-backend/pkg/jwt"
	"github.com/danchok124-del/shift-manager-backend/pkg/response"
)

// MustGetActor extracts the authenticated actor injected by the JWT
// middleware. On failure it writes a 401 and returns ok=false; the caller
// should return immediately.
func MustGetActor(c *gin.Context) (authz.Actor, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.Unauthorized(c, "Not authenticated")
		return authz.Actor{}, false
	}
	userID, ok := v.(uint)
	if !ok || userID == 0 {
		response.Unauthorized(c, "Not authenticated")
		return authz.Actor{}, false
	}

	role, _ := c.Get(middleware.CtxRole)
	roleStr, ok := role.(string)
	if !ok || roleStr == "" {
		response.Unauthorized(c, "Not authenticated")
		return authz.Actor{}, false
	}

	var deptID *uint
	if d, exists := c.Get(middleware.CtxDepartmentID); exists {
		deptID, _ = d.(*uint)
	}

	return authz.Actor{UserID: userID, Role: roleStr, DepartmentID: deptID}, true
}

// MustGetClaims extracts the full token claims, for logout.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return claims, true
}

// ParseIDParam parses a positive integer path parameter. On failure it
// writes a 400 and returns ok=false.
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

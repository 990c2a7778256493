package dto

// ── auth requests ──

// RegisterRequest creates a new employee account.
type RegisterRequest struct {
	Email        string  `json:"email"        binding:"required,email"`
	Password     string  `json:"password"     binding:"required,min=6"`
	FirstName    string  `json:"firstName"    binding:"required,max=100"`
	LastName     string  `json:"lastName"     binding:"required,max=100"`
	Phone        *string `json:"phone"        binding:"omitempty,max=50"`
	CardID       *string `json:"cardId"       binding:"omitempty,max=100"`
	DepartmentID *uint   `json:"departmentId"`
}

// LoginRequest exchanges credentials for a token pair.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ForgotPasswordRequest starts the reset flow for an email address.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest redeems a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token"       binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// ── auth responses ──

// TokenResponse is the login/refresh payload.
type TokenResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	User         *UserResponse `json:"user,omitempty"`
}

// MessageResponse wraps endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

package model

import "time"

// User roles. Managers are scoped to their own department, HR is
// unrestricted, employees act only on themselves.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
)

// User maps to the users table. CardID is the hardware badge identifier used
// by the clock-in terminal; it is unique among users that carry one.
type User struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Email     string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password  string  `gorm:"type:varchar(255);not null" json:"-"`
	FirstName string  `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName  string  `gorm:"type:varchar(100);not null" json:"lastName"`
	Role      string  `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	CardID    *string `gorm:"type:varchar(100)" json:"cardId,omitempty"`
	Phone     *string `gorm:"type:varchar(50)" json:"phone,omitempty"`
	IsActive  bool    `gorm:"not null;default:true" json:"isActive"`

	DepartmentID *uint       `json:"departmentId"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`

	// Delegation: a time-boxed grant of rights from another user. Stored but
	// never evaluated by the rule engine.
	DelegatedByID       *uint      `json:"delegatedById,omitempty"`
	DelegationExpiresAt *time.Time `json:"delegationExpiresAt,omitempty"`

	ResetPasswordToken   *string    `gorm:"type:varchar(128)" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName selects the table name.
func (User) TableName() string { return "users" }

// FullName returns the display name used in attendance responses.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

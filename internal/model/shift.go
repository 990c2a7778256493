package model

import "time"

// Assignment statuses. The engine only ever produces Confirmed; Pending and
// Cancelled exist in the data model but no workflow currently transitions
// through them.
const (
	AssignmentPending   = "pending"
	AssignmentConfirmed = "confirmed"
	AssignmentCancelled = "cancelled"
)

// Shift maps to the shifts table. The time window is [StartTime, EndTime);
// all window logic assumes StartTime < EndTime. RequiredEmployees is the
// capacity: the maximum number of confirmed assignments.
type Shift struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	StartTime   time.Time `gorm:"not null;index" json:"startTime"`
	EndTime     time.Time `gorm:"not null;index" json:"endTime"`

	DepartmentID uint        `gorm:"not null;index" json:"departmentId"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`

	// IsPublic shifts are visible and self-assignable across departments.
	IsPublic          bool `gorm:"not null;default:false" json:"isPublic"`
	RequiredEmployees int  `gorm:"not null;default:1" json:"requiredEmployees"`
	IsActive          bool `gorm:"not null;default:true" json:"isActive"`

	Assignments []ShiftAssignment `gorm:"foreignKey:ShiftID" json:"assignments,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName selects the table name.
func (Shift) TableName() string { return "shifts" }

// ShiftAssignment links one user to one shift; the (UserID, ShiftID) pair is
// unique. AssignedByID is nil for self sign-ups, otherwise the acting
// manager/HR user. Assignments are hard-deleted on removal.
type ShiftAssignment struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	UserID  uint  `gorm:"not null;uniqueIndex:uq_shift_assignments_user_shift" json:"userId"`
	ShiftID uint  `gorm:"not null;uniqueIndex:uq_shift_assignments_user_shift;index" json:"shiftId"`
	User    *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Shift   *Shift `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`

	Status       string `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AssignedByID *uint  `json:"assignedById"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName selects the table name.
func (ShiftAssignment) TableName() string { return "shift_assignments" }

package model

import "time"

// Department maps to the departments table. Departments are soft-deleted by
// flipping IsActive; users and shifts keep their foreign keys.
type Department struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true" json:"isActive"`

	Users  []User  `gorm:"foreignKey:DepartmentID" json:"users,omitempty"`
	Shifts []Shift `gorm:"foreignKey:DepartmentID" json:"shifts,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName selects the table name.
func (Department) TableName() string { return "departments" }

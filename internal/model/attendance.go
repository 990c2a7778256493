package model

import (
	"math"
	"time"
)

// Attendance maps to the attendance table. A nil ClockOut means the record is
// open: the user is currently clocked in. At most one open record may exist
// per user at any time; this is the central consistency invariant of the
// attendance engine. ShiftID is nil when no confirmed assignment matched the
// clock-in day. Attendance rows are hard-deleted, never deactivated.
type Attendance struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"not null;index" json:"userId"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	ShiftID *uint  `gorm:"index" json:"shiftId"`
	Shift   *Shift `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`

	ClockIn  time.Time  `gorm:"not null;index" json:"clockIn"`
	ClockOut *time.Time `json:"clockOut"`

	// CardID records which badge produced this record on the hardware path.
	CardID *string `gorm:"type:varchar(100)" json:"cardId,omitempty"`
	Notes  *string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName selects the table name.
func (Attendance) TableName() string { return "attendance" }

// IsOpen reports whether the record has no clock-out yet.
func (a *Attendance) IsOpen() bool { return a.ClockOut == nil }

// HoursWorked returns the worked hours of a closed record rounded to two
// decimal places, or 0 for an open record. The same computation must hold on
// every later read of the stored timestamps.
func (a *Attendance) HoursWorked() float64 {
	if a.ClockOut == nil {
		return 0
	}
	return RoundHours(float64(a.ClockOut.Sub(a.ClockIn).Milliseconds()) / 3600000)
}

// RoundHours rounds a duration in hours to two decimal places, half up.
func RoundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}

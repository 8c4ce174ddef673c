package model

import "time"

// Department represents an academic department (e.g., "Computer Science")
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Semester represents an academic term (e.g., "Semester 3")
type Semester struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subject represents an individual academic subject. Every subject belongs
// to exactly one department/semester pair; many subjects may share a pair.
type Subject struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	DepartmentID uint      `gorm:"not null;index" json:"department_id"`
	SemesterID   uint      `gorm:"not null;index" json:"semester_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Semester   Semester   `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
}

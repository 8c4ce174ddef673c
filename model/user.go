package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User represents a registered student or teacher.
//
// Affiliation ids are stored as ordered Postgres arrays. Teachers may carry
// several departments/semesters/subjects; for students only index 0 of
// DepartmentIDs and SemesterIDs is meaningful (the sequences are kept so a
// student and teacher record share one shape on the wire). SubjectIDs may be
// empty, in which case subjects are derived from the department/semester
// scope at read time (see services.AffiliationService).
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);not null" json:"role"` // student, teacher
	RollNumber   string         `gorm:"type:varchar(50)" json:"roll_number,omitempty"`

	DepartmentIDs pq.Int64Array `gorm:"type:bigint[]" json:"department_ids"`
	SemesterIDs   pq.Int64Array `gorm:"type:bigint[]" json:"semester_ids"`
	SubjectIDs    pq.Int64Array `gorm:"type:bigint[]" json:"subject_ids"`
}

// IsTeacher reports whether the user holds the teacher role.
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

// IsStudent reports whether the user holds the student role.
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

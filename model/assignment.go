package model

import "time"

// AssignmentStatus is the review state of a submitted assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending  AssignmentStatus = "pending"
	AssignmentStatusApproved AssignmentStatus = "approved"
	AssignmentStatusRejected AssignmentStatus = "rejected"
)

// Terminal reports whether no further review transition is defined from s.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentStatusApproved || s == AssignmentStatusRejected
}

// Valid reports whether s is a known status value.
func (s AssignmentStatus) Valid() bool {
	return s == AssignmentStatusPending || s.Terminal()
}

// Assignment represents a student submission awaiting teacher review.
// Status starts at pending and moves exactly once to approved or rejected;
// the student owns the record (edit/delete) only while it is pending.
type Assignment struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Title         string           `gorm:"not null" json:"title"`
	FileKey       string           `gorm:"not null" json:"file_key"`
	FileName      string           `gorm:"type:varchar(255)" json:"file_name"`
	Status        AssignmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewComment string           `gorm:"type:text" json:"review_comment,omitempty"`
	ReviewedByID  *uint            `gorm:"index" json:"reviewed_by_id,omitempty"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
	StudentID     uint             `gorm:"not null;index" json:"student_id"`
	SubjectID     uint             `gorm:"not null;index" json:"subject_id"`
	DepartmentID  uint             `gorm:"not null;index" json:"department_id"`
	SemesterID    uint             `gorm:"not null;index" json:"semester_id"`

	Student    User       `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	ReviewedBy *User      `gorm:"foreignKey:ReviewedByID" json:"reviewed_by,omitempty"`
	Subject    Subject    `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Semester   Semester   `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
}

// AssignmentFilter narrows an assignment listing. Nil/empty fields are
// unconstrained; set fields are ANDed. TeacherScopeSubjectIDs, when
// non-nil, restricts results to the given subject ids; it carries a
// teacher's expanded subject affiliations, already intersected with any
// explicit SubjectID the caller chose.
type AssignmentFilter struct {
	StudentID              *uint
	SubjectID              *uint
	DepartmentID           *uint
	SemesterID             *uint
	Status                 *AssignmentStatus
	TeacherScopeSubjectIDs []uint
	TitleContains          string
}

package model

import "time"

// Note represents a teacher-authored class note scoped to one
// department/semester/subject. The backing file lives in the blob store
// under FileKey.
type Note struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Title        string    `gorm:"not null" json:"title"`
	FileKey      string    `gorm:"not null" json:"file_key"`
	FileName     string    `gorm:"type:varchar(255)" json:"file_name"`
	TeacherID    uint      `gorm:"not null;index" json:"teacher_id"`
	SubjectID    uint      `gorm:"not null;index" json:"subject_id"`
	DepartmentID uint      `gorm:"not null;index" json:"department_id"`
	SemesterID   uint      `gorm:"not null;index" json:"semester_id"`

	Teacher    User       `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Subject    Subject    `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Semester   Semester   `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
}

// NoteFilter narrows a note listing. Nil/empty fields are unconstrained;
// set fields are ANDed together. TitleContains matches case-insensitively.
type NoteFilter struct {
	TeacherID     *uint
	SubjectID     *uint
	DepartmentID  *uint
	SemesterID    *uint
	TitleContains string
}

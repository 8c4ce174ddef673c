package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/campusshare/api/model"
	"github.com/campusshare/api/services"
)

// FindNotes lists notes matching the filter, hydrated with their scope
// entities and ordered newest first. Filter fields are ANDed; the title
// filter matches case-insensitively.
func (s *GORMStore) FindNotes(filter model.NoteFilter) ([]model.Note, error) {
	query := s.db.Model(&model.Note{})

	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.SemesterID != nil {
		query = query.Where("semester_id = ?", *filter.SemesterID)
	}
	if filter.TitleContains != "" {
		query = query.Where("title ILIKE ?", "%"+filter.TitleContains+"%")
	}

	var notes []model.Note
	err := query.
		Preload("Teacher").
		Preload("Subject").
		Preload("Department").
		Preload("Semester").
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

// NoteByID loads a hydrated note by primary key.
func (s *GORMStore) NoteByID(id uint) (*model.Note, error) {
	var note model.Note
	err := s.db.
		Preload("Teacher").
		Preload("Subject").
		Preload("Department").
		Preload("Semester").
		First(&note, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// CreateNote inserts a note.
func (s *GORMStore) CreateNote(note *model.Note) error {
	return s.db.Create(note).Error
}

// SaveNote persists all fields of an existing note.
func (s *GORMStore) SaveNote(note *model.Note) error {
	return s.db.Save(note).Error
}

// DeleteNote removes a note record.
func (s *GORMStore) DeleteNote(id uint) error {
	return s.db.Delete(&model.Note{}, id).Error
}

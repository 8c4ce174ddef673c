package database

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/campusshare/api/model"
	"github.com/campusshare/api/services"
)

// FindAssignments lists assignments matching the filter, hydrated and
// ordered newest first. Conventions match FindNotes.
func (s *GORMStore) FindAssignments(filter model.AssignmentFilter) ([]model.Assignment, error) {
	query := s.db.Model(&model.Assignment{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
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
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.TeacherScopeSubjectIDs != nil {
		query = query.Where("subject_id IN ?", filter.TeacherScopeSubjectIDs)
	}
	if filter.TitleContains != "" {
		query = query.Where("title ILIKE ?", "%"+filter.TitleContains+"%")
	}

	var assignments []model.Assignment
	err := query.
		Preload("Student").
		Preload("ReviewedBy").
		Preload("Subject").
		Preload("Department").
		Preload("Semester").
		Order("created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

// AssignmentByID loads a hydrated assignment by primary key.
func (s *GORMStore) AssignmentByID(id uint) (*model.Assignment, error) {
	var assignment model.Assignment
	err := s.db.
		Preload("Student").
		Preload("ReviewedBy").
		Preload("Subject").
		Preload("Department").
		Preload("Semester").
		First(&assignment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// CreateAssignment inserts an assignment.
func (s *GORMStore) CreateAssignment(assignment *model.Assignment) error {
	return s.db.Create(assignment).Error
}

// SaveAssignment persists all fields of an existing assignment.
func (s *GORMStore) SaveAssignment(assignment *model.Assignment) error {
	return s.db.Save(assignment).Error
}

// DeleteAssignment removes an assignment record.
func (s *GORMStore) DeleteAssignment(id uint) error {
	return s.db.Delete(&model.Assignment{}, id).Error
}

// FinalizeAssignment applies a review decision guarded by a compare-and-set
// on status = pending. Zero rows affected means the assignment was already
// reviewed (or a concurrent reviewer won); the caller surfaces that as an
// invalid transition.
func (s *GORMStore) FinalizeAssignment(id uint, decision model.AssignmentStatus, comment string, reviewerID uint, at time.Time) (bool, error) {
	result := s.db.Model(&model.Assignment{}).
		Where("id = ? AND status = ?", id, model.AssignmentStatusPending).
		Updates(map[string]interface{}{
			"status":         decision,
			"review_comment": comment,
			"reviewed_by_id": reviewerID,
			"reviewed_at":    at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

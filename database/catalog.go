package database

import (
	"github.com/campusshare/api/model"
)

// Departments returns the full department catalog.
func (s *GORMStore) Departments() ([]model.Department, error) {
	var departments []model.Department
	err := s.db.Order("name ASC").Find(&departments).Error
	return departments, err
}

// Semesters returns the full semester catalog.
func (s *GORMStore) Semesters() ([]model.Semester, error) {
	var semesters []model.Semester
	err := s.db.Order("id ASC").Find(&semesters).Error
	return semesters, err
}

// Subjects returns subjects, optionally narrowed by department and/or
// semester. Nil filters are unconstrained; no match is an empty slice.
func (s *GORMStore) Subjects(departmentID, semesterID *uint) ([]model.Subject, error) {
	query := s.db.Model(&model.Subject{})
	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	}
	if semesterID != nil {
		query = query.Where("semester_id = ?", *semesterID)
	}

	var subjects []model.Subject
	err := query.Order("name ASC").Find(&subjects).Error
	return subjects, err
}

// DepartmentsByID looks up departments by id; missing ids are skipped.
func (s *GORMStore) DepartmentsByID(ids []uint) ([]model.Department, error) {
	if len(ids) == 0 {
		return []model.Department{}, nil
	}
	var departments []model.Department
	err := s.db.Where("id IN ?", ids).Find(&departments).Error
	return departments, err
}

// SemestersByID looks up semesters by id; missing ids are skipped.
func (s *GORMStore) SemestersByID(ids []uint) ([]model.Semester, error) {
	if len(ids) == 0 {
		return []model.Semester{}, nil
	}
	var semesters []model.Semester
	err := s.db.Where("id IN ?", ids).Find(&semesters).Error
	return semesters, err
}

// SubjectsByID looks up subjects by id; missing ids are skipped.
func (s *GORMStore) SubjectsByID(ids []uint) ([]model.Subject, error) {
	if len(ids) == 0 {
		return []model.Subject{}, nil
	}
	var subjects []model.Subject
	err := s.db.Where("id IN ?", ids).Find(&subjects).Error
	return subjects, err
}

// SubjectsByScope returns subjects whose (department_id, semester_id) pair
// matches any combination of the given sets. The IN/IN query cannot yield
// duplicate rows.
func (s *GORMStore) SubjectsByScope(departmentIDs, semesterIDs []uint) ([]model.Subject, error) {
	if len(departmentIDs) == 0 || len(semesterIDs) == 0 {
		return []model.Subject{}, nil
	}
	var subjects []model.Subject
	err := s.db.
		Where("department_id IN ? AND semester_id IN ?", departmentIDs, semesterIDs).
		Find(&subjects).Error
	return subjects, err
}

package services

import (
	"github.com/lib/pq"

	"github.com/campusshare/api/model"
)

// CatalogStore is the read surface of the department/semester/subject
// catalog needed to expand user affiliations.
type CatalogStore interface {
	DepartmentsByID(ids []uint) ([]model.Department, error)
	SemestersByID(ids []uint) ([]model.Semester, error)
	SubjectsByID(ids []uint) ([]model.Subject, error)
	// SubjectsByScope returns every subject whose (department_id,
	// semester_id) pair matches any combination of the given id sets,
	// without duplicates.
	SubjectsByScope(departmentIDs, semesterIDs []uint) ([]model.Subject, error)
}

// TeacherScope is a teacher's affiliation id lists expanded into catalog
// entities.
type TeacherScope struct {
	Departments []model.Department `json:"departments"`
	Semesters   []model.Semester   `json:"semesters"`
	Subjects    []model.Subject    `json:"subjects"`
}

// StudentScope is a student's affiliations expanded into catalog entities.
// Department and Semester are nil when the student has none recorded.
type StudentScope struct {
	Department *model.Department `json:"department"`
	Semester   *model.Semester   `json:"semester"`
	Subjects   []model.Subject   `json:"subjects"`
}

// AffiliationService turns stored affiliation id lists into hydrated scope
// objects and answers which subjects a user's profile covers.
type AffiliationService struct {
	catalog CatalogStore
}

// NewAffiliationService creates a new affiliation service
func NewAffiliationService(catalog CatalogStore) *AffiliationService {
	return &AffiliationService{catalog: catalog}
}

// ExpandTeacher resolves a teacher's affiliation lists. When the teacher
// carries no explicit subject ids, subjects fall back to the cross-product
// of the department and semester lists. Older records predate explicit
// subject affiliations.
func (s *AffiliationService) ExpandTeacher(user *model.User) (*TeacherScope, error) {
	if !user.IsTeacher() {
		return nil, ErrRoleMismatch
	}

	departmentIDs := toUintIDs(user.DepartmentIDs)
	semesterIDs := toUintIDs(user.SemesterIDs)
	subjectIDs := toUintIDs(user.SubjectIDs)

	scope := &TeacherScope{
		Departments: []model.Department{},
		Semesters:   []model.Semester{},
		Subjects:    []model.Subject{},
	}

	var err error
	if len(departmentIDs) > 0 {
		if scope.Departments, err = s.catalog.DepartmentsByID(departmentIDs); err != nil {
			return nil, err
		}
	}
	if len(semesterIDs) > 0 {
		if scope.Semesters, err = s.catalog.SemestersByID(semesterIDs); err != nil {
			return nil, err
		}
	}

	switch {
	case len(subjectIDs) > 0:
		scope.Subjects, err = s.catalog.SubjectsByID(subjectIDs)
	case len(departmentIDs) > 0 && len(semesterIDs) > 0:
		scope.Subjects, err = s.catalog.SubjectsByScope(departmentIDs, semesterIDs)
	}
	if err != nil {
		return nil, err
	}

	return scope, nil
}

// ExpandStudent resolves a student's affiliations. Only index 0 of the
// department and semester lists is meaningful; extra elements are ignored.
func (s *AffiliationService) ExpandStudent(user *model.User) (*StudentScope, error) {
	if !user.IsStudent() {
		return nil, ErrRoleMismatch
	}

	scope := &StudentScope{Subjects: []model.Subject{}}

	departmentID := firstID(user.DepartmentIDs)
	semesterID := firstID(user.SemesterIDs)
	subjectIDs := toUintIDs(user.SubjectIDs)

	if departmentID != nil {
		departments, err := s.catalog.DepartmentsByID([]uint{*departmentID})
		if err != nil {
			return nil, err
		}
		if len(departments) > 0 {
			scope.Department = &departments[0]
		}
	}
	if semesterID != nil {
		semesters, err := s.catalog.SemestersByID([]uint{*semesterID})
		if err != nil {
			return nil, err
		}
		if len(semesters) > 0 {
			scope.Semester = &semesters[0]
		}
	}

	var err error
	switch {
	case len(subjectIDs) > 0:
		scope.Subjects, err = s.catalog.SubjectsByID(subjectIDs)
	case departmentID != nil && semesterID != nil:
		scope.Subjects, err = s.catalog.SubjectsByScope([]uint{*departmentID}, []uint{*semesterID})
	}
	if err != nil {
		return nil, err
	}

	return scope, nil
}

// SubjectIDsFor returns the set of subject ids a user's profile covers,
// regardless of role. For teachers this is the expanded (possibly derived)
// subject affiliation set; for students the enrolled subject set. Used for
// review authorization and visibility filtering.
func (s *AffiliationService) SubjectIDsFor(user *model.User) ([]uint, error) {
	var subjects []model.Subject
	switch user.Role {
	case model.RoleTeacher:
		scope, err := s.ExpandTeacher(user)
		if err != nil {
			return nil, err
		}
		subjects = scope.Subjects
	case model.RoleStudent:
		scope, err := s.ExpandStudent(user)
		if err != nil {
			return nil, err
		}
		subjects = scope.Subjects
	default:
		return nil, ErrRoleMismatch
	}

	ids := make([]uint, 0, len(subjects))
	for _, subject := range subjects {
		ids = append(ids, subject.ID)
	}
	return ids, nil
}

// ValidateAffiliations rejects any affiliation id that does not resolve to
// a catalog entity. The stored lists are plain id arrays with no database
// level foreign keys, so integrity is enforced here on every write.
func (s *AffiliationService) ValidateAffiliations(departmentIDs, semesterIDs, subjectIDs []uint) error {
	if len(departmentIDs) > 0 {
		departments, err := s.catalog.DepartmentsByID(departmentIDs)
		if err != nil {
			return err
		}
		if len(departments) != len(dedupIDs(departmentIDs)) {
			return newValidationError("department_ids", "unknown department id")
		}
	}
	if len(semesterIDs) > 0 {
		semesters, err := s.catalog.SemestersByID(semesterIDs)
		if err != nil {
			return err
		}
		if len(semesters) != len(dedupIDs(semesterIDs)) {
			return newValidationError("semester_ids", "unknown semester id")
		}
	}
	if len(subjectIDs) > 0 {
		subjects, err := s.catalog.SubjectsByID(subjectIDs)
		if err != nil {
			return err
		}
		if len(subjects) != len(dedupIDs(subjectIDs)) {
			return newValidationError("subject_ids", "unknown subject id")
		}
	}
	return nil
}

func toUintIDs(ids pq.Int64Array) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, uint(id))
		}
	}
	return out
}

func toInt64IDs(ids []uint) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}

func firstID(ids pq.Int64Array) *uint {
	for _, id := range ids {
		if id > 0 {
			v := uint(id)
			return &v
		}
	}
	return nil
}

func dedupIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

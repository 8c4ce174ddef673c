package services

import (
	"strings"

	"github.com/campusshare/api/model"
	"github.com/campusshare/api/utils/auth"
)

// UserStore owns persistence of User records.
type UserStore interface {
	UserByID(id uint) (*model.User, error)
	UserByEmail(email string) (*model.User, error)
	CreateUser(user *model.User) error
	SaveUser(user *model.User) error
}

// UserService owns registration, credential checks and profile operations.
type UserService struct {
	users        UserStore
	affiliations *AffiliationService
}

// NewUserService creates a new user service
func NewUserService(users UserStore, affiliations *AffiliationService) *UserService {
	return &UserService{users: users, affiliations: affiliations}
}

// RegisterInput carries a registration request. Affiliation lists are
// interpreted per role: students keep at most the first department and
// semester id, teachers keep all of them.
type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	Role          string
	RollNumber    string
	DepartmentIDs []uint
	SemesterIDs   []uint
	SubjectIDs    []uint
}

// Register creates a user. Returns ErrDuplicateEmail on email conflict and
// a ValidationError when required fields are missing or an affiliation id
// does not exist.
func (s *UserService) Register(in RegisterInput) (*model.User, error) {
	if in.Name == "" {
		return nil, newValidationError("name", "required")
	}
	if in.Email == "" {
		return nil, newValidationError("email", "required")
	}
	if in.Password == "" {
		return nil, newValidationError("password", "required")
	}
	if in.Role != model.RoleStudent && in.Role != model.RoleTeacher {
		return nil, newValidationError("role", "must be student or teacher")
	}

	if in.Role == model.RoleStudent {
		// Students carry singleton department/semester affiliations.
		in.DepartmentIDs = truncateToOne(in.DepartmentIDs)
		in.SemesterIDs = truncateToOne(in.SemesterIDs)
	}

	if err := s.affiliations.ValidateAffiliations(in.DepartmentIDs, in.SemesterIDs, in.SubjectIDs); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, newValidationError("password", err.Error())
	}

	user := &model.User{
		Name:          in.Name,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:  hash,
		Role:          in.Role,
		RollNumber:    in.RollNumber,
		DepartmentIDs: toInt64IDs(in.DepartmentIDs),
		SemesterIDs:   toInt64IDs(in.SemesterIDs),
		SubjectIDs:    toInt64IDs(in.SubjectIDs),
	}

	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials against a claimed role. Unknown email
// and bad password both come back as ErrInvalidCredentials; a correct
// password with the wrong claimed role is ErrRoleMismatch so the client can
// tell the user they picked the wrong portal rather than the wrong password.
func (s *UserService) Authenticate(email, password, claimedRole string) (*model.User, error) {
	user, err := s.users.UserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if claimedRole != "" && user.Role != claimedRole {
		return nil, ErrRoleMismatch
	}

	return user, nil
}

// TeacherProfile returns the teacher and their expanded affiliations.
func (s *UserService) TeacherProfile(id uint) (*model.User, *TeacherScope, error) {
	user, err := s.users.UserByID(id)
	if err != nil {
		return nil, nil, err
	}
	scope, err := s.affiliations.ExpandTeacher(user)
	if err != nil {
		return nil, nil, err
	}
	return user, scope, nil
}

// StudentProfile returns the student and their expanded affiliations.
func (s *UserService) StudentProfile(id uint) (*model.User, *StudentScope, error) {
	user, err := s.users.UserByID(id)
	if err != nil {
		return nil, nil, err
	}
	scope, err := s.affiliations.ExpandStudent(user)
	if err != nil {
		return nil, nil, err
	}
	return user, scope, nil
}

// TeacherProfilePatch applies partial updates to a teacher profile. Nil
// fields are left untouched; a non-nil empty slice clears the list.
type TeacherProfilePatch struct {
	Name          *string
	Email         *string
	DepartmentIDs *[]uint
	SemesterIDs   *[]uint
	SubjectIDs    *[]uint
}

// UpdateTeacherProfile patches a teacher record and returns the re-expanded
// profile.
func (s *UserService) UpdateTeacherProfile(id uint, patch TeacherProfilePatch) (*model.User, *TeacherScope, error) {
	user, err := s.users.UserByID(id)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsTeacher() {
		return nil, nil, ErrRoleMismatch
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}

	departmentIDs := toUintIDs(user.DepartmentIDs)
	semesterIDs := toUintIDs(user.SemesterIDs)
	subjectIDs := toUintIDs(user.SubjectIDs)
	if patch.DepartmentIDs != nil {
		departmentIDs = *patch.DepartmentIDs
	}
	if patch.SemesterIDs != nil {
		semesterIDs = *patch.SemesterIDs
	}
	if patch.SubjectIDs != nil {
		subjectIDs = *patch.SubjectIDs
	}
	if err := s.affiliations.ValidateAffiliations(departmentIDs, semesterIDs, subjectIDs); err != nil {
		return nil, nil, err
	}
	user.DepartmentIDs = toInt64IDs(departmentIDs)
	user.SemesterIDs = toInt64IDs(semesterIDs)
	user.SubjectIDs = toInt64IDs(subjectIDs)

	if err := s.users.SaveUser(user); err != nil {
		return nil, nil, err
	}

	scope, err := s.affiliations.ExpandTeacher(user)
	if err != nil {
		return nil, nil, err
	}
	return user, scope, nil
}

// StudentProfilePatch applies partial updates to a student profile. Nil
// fields are left untouched.
type StudentProfilePatch struct {
	Name         *string
	RollNumber   *string
	DepartmentID *uint
	SemesterID   *uint
	SubjectIDs   *[]uint
}

// UpdateStudentProfile patches a student record and returns the re-expanded
// profile.
func (s *UserService) UpdateStudentProfile(id uint, patch StudentProfilePatch) (*model.User, *StudentScope, error) {
	user, err := s.users.UserByID(id)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsStudent() {
		return nil, nil, ErrRoleMismatch
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.RollNumber != nil {
		user.RollNumber = *patch.RollNumber
	}

	departmentIDs := toUintIDs(user.DepartmentIDs)
	semesterIDs := toUintIDs(user.SemesterIDs)
	subjectIDs := toUintIDs(user.SubjectIDs)
	if patch.DepartmentID != nil {
		departmentIDs = []uint{*patch.DepartmentID}
	}
	if patch.SemesterID != nil {
		semesterIDs = []uint{*patch.SemesterID}
	}
	if patch.SubjectIDs != nil {
		subjectIDs = *patch.SubjectIDs
	}
	if err := s.affiliations.ValidateAffiliations(departmentIDs, semesterIDs, subjectIDs); err != nil {
		return nil, nil, err
	}
	user.DepartmentIDs = toInt64IDs(departmentIDs)
	user.SemesterIDs = toInt64IDs(semesterIDs)
	user.SubjectIDs = toInt64IDs(subjectIDs)

	if err := s.users.SaveUser(user); err != nil {
		return nil, nil, err
	}

	scope, err := s.affiliations.ExpandStudent(user)
	if err != nil {
		return nil, nil, err
	}
	return user, scope, nil
}

func truncateToOne(ids []uint) []uint {
	if len(ids) > 1 {
		return ids[:1]
	}
	return ids
}

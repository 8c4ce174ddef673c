package services

import (
	"errors"
	"testing"

	"github.com/campusshare/api/model"
)

func newUserServiceForTest() (*UserService, *fakeUserStore) {
	users := newFakeUserStore()
	affiliations := NewAffiliationService(seededCatalog())
	return NewUserService(users, affiliations), users
}

func registerTestUser(t *testing.T, svc *UserService, role string) *model.User {
	t.Helper()
	user, err := svc.Register(RegisterInput{
		Name:          "Asha Verma",
		Email:         "asha@example.edu",
		Password:      "correct-horse",
		Role:          role,
		DepartmentIDs: []uint{1},
		SemesterIDs:   []uint{3},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return user
}

func TestRegisterStudentTruncatesAffiliationLists(t *testing.T) {
	svc, _ := newUserServiceForTest()

	user, err := svc.Register(RegisterInput{
		Name:          "Ravi Kumar",
		Email:         "Ravi@Example.edu",
		Password:      "longenough",
		Role:          model.RoleStudent,
		DepartmentIDs: []uint{1, 2},
		SemesterIDs:   []uint{3, 9},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Email != "ravi@example.edu" {
		t.Errorf("expected lowercased email, got %q", user.Email)
	}
	if len(user.DepartmentIDs) != 1 || user.DepartmentIDs[0] != 1 {
		t.Errorf("expected student department list truncated to [1], got %v", user.DepartmentIDs)
	}
	if len(user.SemesterIDs) != 1 || user.SemesterIDs[0] != 3 {
		t.Errorf("expected student semester list truncated to [3], got %v", user.SemesterIDs)
	}
	if user.PasswordHash == "" || user.PasswordHash == "longenough" {
		t.Errorf("password must be stored hashed")
	}
}

func TestRegisterTeacherKeepsFullLists(t *testing.T) {
	svc, _ := newUserServiceForTest()

	user, err := svc.Register(RegisterInput{
		Name:          "Prof. Iyer",
		Email:         "iyer@example.edu",
		Password:      "longenough",
		Role:          model.RoleTeacher,
		DepartmentIDs: []uint{1, 2},
		SemesterIDs:   []uint{3, 9},
		SubjectIDs:    []uint{10, 13},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(user.DepartmentIDs) != 2 || len(user.SemesterIDs) != 2 || len(user.SubjectIDs) != 2 {
		t.Fatalf("teacher affiliation lists must be kept whole, got %v %v %v",
			user.DepartmentIDs, user.SemesterIDs, user.SubjectIDs)
	}
}

func TestRegisterRejectsUnknownAffiliation(t *testing.T) {
	svc, _ := newUserServiceForTest()

	_, err := svc.Register(RegisterInput{
		Name:          "Ghost",
		Email:         "ghost@example.edu",
		Password:      "longenough",
		Role:          model.RoleTeacher,
		DepartmentIDs: []uint{42},
	})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error for unknown department id, got %v", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newUserServiceForTest()

	_, err := svc.Register(RegisterInput{
		Name:     "Root",
		Email:    "root@example.edu",
		Password: "longenough",
		Role:     "admin",
	})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserServiceForTest()
	registerTestUser(t, svc, model.RoleStudent)

	_, err := svc.Register(RegisterInput{
		Name:     "Asha Again",
		Email:    "ASHA@example.edu",
		Password: "longenough",
		Role:     model.RoleStudent,
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newUserServiceForTest()
	registerTestUser(t, svc, model.RoleStudent)

	user, err := svc.Authenticate("asha@example.edu", "correct-horse", model.RoleStudent)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Email != "asha@example.edu" {
		t.Errorf("unexpected user %+v", user)
	}

	// Role omitted: any role passes.
	if _, err := svc.Authenticate("asha@example.edu", "correct-horse", ""); err != nil {
		t.Errorf("role-less authenticate should pass, got %v", err)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _ := newUserServiceForTest()
	registerTestUser(t, svc, model.RoleStudent)

	if _, err := svc.Authenticate("asha@example.edu", "wrong", model.RoleStudent); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate("nobody@example.edu", "whatever", model.RoleStudent); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email must also be ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateRoleMismatch(t *testing.T) {
	svc, _ := newUserServiceForTest()
	registerTestUser(t, svc, model.RoleStudent)

	// Correct password, wrong portal.
	_, err := svc.Authenticate("asha@example.edu", "correct-horse", model.RoleTeacher)
	if !errors.Is(err, ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
}

func TestUpdateTeacherProfilePartialPatch(t *testing.T) {
	svc, _ := newUserServiceForTest()
	teacher := registerTestUser(t, svc, model.RoleTeacher)

	// Patch only the name; affiliations stay.
	updated, scope, err := svc.UpdateTeacherProfile(teacher.ID, TeacherProfilePatch{
		Name: strPtr("Dr. Asha Verma"),
	})
	if err != nil {
		t.Fatalf("UpdateTeacherProfile: %v", err)
	}
	if updated.Name != "Dr. Asha Verma" {
		t.Errorf("name not updated: %q", updated.Name)
	}
	if len(updated.DepartmentIDs) != 1 || updated.DepartmentIDs[0] != 1 {
		t.Errorf("untouched affiliations must survive, got %v", updated.DepartmentIDs)
	}
	if len(scope.Departments) != 1 {
		t.Errorf("expected re-expanded scope, got %+v", scope)
	}

	// Patch subjects explicitly; fallback no longer applies.
	subjectIDs := []uint{13}
	updated, scope, err = svc.UpdateTeacherProfile(teacher.ID, TeacherProfilePatch{
		SubjectIDs: &subjectIDs,
	})
	if err != nil {
		t.Fatalf("UpdateTeacherProfile: %v", err)
	}
	if len(scope.Subjects) != 1 || scope.Subjects[0].ID != 13 {
		t.Errorf("expected explicit subject scope [13], got %+v", scope.Subjects)
	}
	_ = updated
}

func TestUpdateTeacherProfileRejectsUnknownIDs(t *testing.T) {
	svc, _ := newUserServiceForTest()
	teacher := registerTestUser(t, svc, model.RoleTeacher)

	bad := []uint{77}
	_, _, err := svc.UpdateTeacherProfile(teacher.ID, TeacherProfilePatch{DepartmentIDs: &bad})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStudentProfileSingletons(t *testing.T) {
	svc, _ := newUserServiceForTest()
	student := registerTestUser(t, svc, model.RoleStudent)

	updated, scope, err := svc.UpdateStudentProfile(student.ID, StudentProfilePatch{
		DepartmentID: uintPtr(2),
		SemesterID:   uintPtr(9),
	})
	if err != nil {
		t.Fatalf("UpdateStudentProfile: %v", err)
	}
	if len(updated.DepartmentIDs) != 1 || updated.DepartmentIDs[0] != 2 {
		t.Errorf("expected singleton department [2], got %v", updated.DepartmentIDs)
	}
	if scope.Department == nil || scope.Department.ID != 2 {
		t.Errorf("expected department 2 in scope, got %+v", scope.Department)
	}
	if scope.Semester == nil || scope.Semester.ID != 9 {
		t.Errorf("expected semester 9 in scope, got %+v", scope.Semester)
	}
}

func TestUpdateProfileRoleGuards(t *testing.T) {
	svc, _ := newUserServiceForTest()
	student := registerTestUser(t, svc, model.RoleStudent)

	if _, _, err := svc.UpdateTeacherProfile(student.ID, TeacherProfilePatch{}); !errors.Is(err, ErrRoleMismatch) {
		t.Fatalf("student patching teacher profile must fail, got %v", err)
	}
	if _, _, err := svc.StudentProfile(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

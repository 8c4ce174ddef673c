package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"

	"github.com/campusshare/api/model"
)

func newAssignmentServiceForTest() (*AssignmentService, *fakeAssignmentStore, *fakeBlobStore, *fakeOrphanStore) {
	assignments := newFakeAssignmentStore()
	blobs := newFakeBlobStore()
	orphans := newFakeOrphanStore()
	affiliations := NewAffiliationService(seededCatalog())
	return NewAssignmentService(assignments, blobs, orphans, affiliations), assignments, blobs, orphans
}

func submitTestAssignment(t *testing.T, svc *AssignmentService, title string, studentID, subjectID uint) *model.Assignment {
	t.Helper()
	subject := subjectID
	assignment := &model.Assignment{
		Title:        title,
		FileKey:      "assignments/" + title,
		FileName:     title + ".pdf",
		StudentID:    studentID,
		SubjectID:    subject,
		DepartmentID: 1,
		SemesterID:   3,
	}
	if err := svc.Submit(assignment); err != nil {
		t.Fatalf("Submit(%s): %v", title, err)
	}
	return assignment
}

func scopedTeacher(subjectIDs ...int64) *model.User {
	return &model.User{
		ID:         50,
		Role:       model.RoleTeacher,
		SubjectIDs: pq.Int64Array(subjectIDs),
	}
}

func TestSubmitForcesPending(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()

	reviewer := uint(9)
	assignment := &model.Assignment{
		Title:         "Sorting Lab",
		FileKey:       "assignments/sorting",
		StudentID:     1,
		SubjectID:     10,
		DepartmentID:  1,
		SemesterID:    3,
		Status:        model.AssignmentStatusApproved,
		ReviewComment: "smuggled",
		ReviewedByID:  &reviewer,
	}
	if err := svc.Submit(assignment); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if assignment.Status != model.AssignmentStatusPending {
		t.Errorf("status must be forced to pending, got %s", assignment.Status)
	}
	if assignment.ReviewComment != "" || assignment.ReviewedByID != nil || assignment.ReviewedAt != nil {
		t.Errorf("review fields must be cleared on submit: %+v", assignment)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()

	err := svc.Submit(&model.Assignment{FileKey: "k", StudentID: 1, SubjectID: 10, DepartmentID: 1, SemesterID: 3})
	if !IsValidationError(err) {
		t.Fatalf("missing title must fail, got %v", err)
	}
	err = svc.Submit(&model.Assignment{Title: "t", FileKey: "k", StudentID: 1, SubjectID: 10, DepartmentID: 1})
	if !IsValidationError(err) {
		t.Fatalf("missing semester must fail, got %v", err)
	}
}

func TestReviewApproves(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()
	assignment := submitTestAssignment(t, svc, "Sorting Lab", 1, 10)

	teacher := scopedTeacher(10, 11)
	reviewed, err := svc.Review(assignment.ID, teacher, model.AssignmentStatusApproved, "good work")
	if err != nil {
		t.Fatalf("Review: %v", err)
	}

	if reviewed.Status != model.AssignmentStatusApproved {
		t.Errorf("expected approved, got %s", reviewed.Status)
	}
	if reviewed.ReviewComment != "good work" {
		t.Errorf("comment not stored: %q", reviewed.ReviewComment)
	}
	if reviewed.ReviewedByID == nil || *reviewed.ReviewedByID != teacher.ID {
		t.Errorf("reviewer not recorded: %+v", reviewed.ReviewedByID)
	}
	if reviewed.ReviewedAt == nil {
		t.Errorf("review time not recorded")
	}
}

func TestReviewIsTerminal(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()
	assignment := submitTestAssignment(t, svc, "Sorting Lab", 1, 10)
	teacher := scopedTeacher(10)

	if _, err := svc.Review(assignment.ID, teacher, model.AssignmentStatusRejected, "incomplete"); err != nil {
		t.Fatalf("first review: %v", err)
	}

	// Second decision loses, record unchanged.
	_, err := svc.Review(assignment.ID, teacher, model.AssignmentStatusApproved, "changed my mind")
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}

	current, err := svc.Get(assignment.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if current.Status != model.AssignmentStatusRejected {
		t.Errorf("terminal status must be preserved, got %s", current.Status)
	}
	if current.ReviewComment != "incomplete" {
		t.Errorf("first decision's comment must survive, got %q", current.ReviewComment)
	}
}

func TestReviewDecisionMustBeTerminal(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()
	assignment := submitTestAssignment(t, svc, "Sorting Lab", 1, 10)
	teacher := scopedTeacher(10)

	_, err := svc.Review(assignment.ID, teacher, model.AssignmentStatusPending, "")
	if !IsValidationError(err) {
		t.Fatalf("pending is not a decision, got %v", err)
	}
	_, err = svc.Review(assignment.ID, teacher, model.AssignmentStatus("archived"), "")
	if !IsValidationError(err) {
		t.Fatalf("unknown decision must fail, got %v", err)
	}
}

func TestReviewRequiresSubjectScope(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()
	assignment := submitTestAssignment(t, svc, "Sorting Lab", 1, 10)

	outOfScope := scopedTeacher(13)
	if _, err := svc.Review(assignment.ID, outOfScope, model.AssignmentStatusApproved, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for out-of-scope reviewer, got %v", err)
	}

	student := &model.User{ID: 1, Role: model.RoleStudent, SubjectIDs: pq.Int64Array{10}}
	if _, err := svc.Review(assignment.ID, student, model.AssignmentStatusApproved, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("students cannot review, got %v", err)
	}
}

func TestReviewDerivedSubjectScope(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()
	assignment := submitTestAssignment(t, svc, "Sorting Lab", 1, 10)

	// No explicit subjects: scope derives from department x semester.
	teacher := &model.User{
		ID:            60,
		Role:          model.RoleTeacher,
		DepartmentIDs: pq.Int64Array{1},
		SemesterIDs:   pq.Int64Array{3},
	}
	if _, err := svc.Review(assignment.ID, teacher, model.AssignmentStatusApproved, ""); err != nil {
		t.Fatalf("derived scope should cover subject 10, got %v", err)
	}
}

func TestUpdatePendingOnly(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()
	assignment := submitTestAssignment(t, svc, "Sorting Lab", 1, 10)
	owner := &model.User{ID: 1, Role: model.RoleStudent}
	teacher := scopedTeacher(10)

	if _, err := svc.Update(context.Background(), assignment.ID, owner, AssignmentPatch{Title: strPtr("Sorting Lab v2")}); err != nil {
		t.Fatalf("pending update: %v", err)
	}

	if _, err := svc.Review(assignment.ID, teacher, model.AssignmentStatusApproved, ""); err != nil {
		t.Fatalf("Review: %v", err)
	}

	// Reviewed submissions are frozen for the student.
	if _, err := svc.Update(context.Background(), assignment.ID, owner, AssignmentPatch{Title: strPtr("too late")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden after review, got %v", err)
	}
}

func TestUpdateOwnerOnly(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()
	assignment := submitTestAssignment(t, svc, "Sorting Lab", 1, 10)
	other := &model.User{ID: 2, Role: model.RoleStudent}

	if _, err := svc.Update(context.Background(), assignment.ID, other, AssignmentPatch{Title: strPtr("mine now")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeletePendingOnly(t *testing.T) {
	svc, store, blobs, _ := newAssignmentServiceForTest()
	owner := &model.User{ID: 1, Role: model.RoleStudent}
	teacher := scopedTeacher(10)

	pending := submitTestAssignment(t, svc, "Pending Lab", 1, 10)
	reviewed := submitTestAssignment(t, svc, "Reviewed Lab", 1, 10)
	if _, err := svc.Review(reviewed.ID, teacher, model.AssignmentStatusRejected, "redo"); err != nil {
		t.Fatalf("Review: %v", err)
	}

	if err := svc.Delete(context.Background(), reviewed.ID, owner); !errors.Is(err, ErrForbidden) {
		t.Fatalf("reviewed submission must not be deletable, got %v", err)
	}

	if err := svc.Delete(context.Background(), pending.ID, owner); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.AssignmentByID(pending.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("record must be gone, got %v", err)
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != pending.FileKey {
		t.Errorf("expected blob %q deleted, got %v", pending.FileKey, blobs.deleted)
	}
}

func TestFindForTeacherScopesResults(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()

	submitTestAssignment(t, svc, "Math Lab", 1, 10)
	submitTestAssignment(t, svc, "Programming Lab", 2, 11)
	thermo := &model.Assignment{
		Title: "Thermo Lab", FileKey: "assignments/thermo",
		StudentID: 3, SubjectID: 13, DepartmentID: 2, SemesterID: 9,
	}
	if err := svc.Submit(thermo); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	teacher := scopedTeacher(10, 11)

	got, err := svc.FindForTeacher(teacher, model.AssignmentFilter{})
	if err != nil {
		t.Fatalf("FindForTeacher: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 in-scope assignments, got %d: %+v", len(got), got)
	}
	for _, a := range got {
		if a.SubjectID == 13 {
			t.Errorf("out-of-scope subject leaked into results")
		}
	}

	// Explicit subject filter inside the scope narrows.
	got, err = svc.FindForTeacher(teacher, model.AssignmentFilter{SubjectID: uintPtr(11)})
	if err != nil {
		t.Fatalf("FindForTeacher: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Programming Lab" {
		t.Fatalf("expected only Programming Lab, got %+v", got)
	}

	// Explicit subject filter outside the scope is an empty list, not an
	// error and not a leak.
	got, err = svc.FindForTeacher(teacher, model.AssignmentFilter{SubjectID: uintPtr(13)})
	if err != nil {
		t.Fatalf("FindForTeacher: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("out-of-scope subject filter must yield empty list, got %+v", got)
	}
}

func TestFindForTeacherStatusFilter(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()
	teacher := scopedTeacher(10)

	submitTestAssignment(t, svc, "First", 1, 10)
	second := submitTestAssignment(t, svc, "Second", 2, 10)
	if _, err := svc.Review(second.ID, teacher, model.AssignmentStatusApproved, ""); err != nil {
		t.Fatalf("Review: %v", err)
	}

	pending := model.AssignmentStatusPending
	got, err := svc.FindForTeacher(teacher, model.AssignmentFilter{Status: &pending})
	if err != nil {
		t.Fatalf("FindForTeacher: %v", err)
	}
	if len(got) != 1 || got[0].Title != "First" {
		t.Fatalf("expected only the pending assignment, got %+v", got)
	}
}

func TestFindScopedToStudent(t *testing.T) {
	svc, _, _, _ := newAssignmentServiceForTest()

	submitTestAssignment(t, svc, "Mine", 1, 10)
	submitTestAssignment(t, svc, "Theirs", 2, 10)

	got, err := svc.Find(model.AssignmentFilter{StudentID: uintPtr(1)})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Mine" {
		t.Fatalf("expected only the student's own submissions, got %+v", got)
	}
}

package services

import (
	"context"
	"time"

	"github.com/campusshare/api/model"
)

// AssignmentStore owns persistence of Assignment records.
type AssignmentStore interface {
	FindAssignments(filter model.AssignmentFilter) ([]model.Assignment, error)
	AssignmentByID(id uint) (*model.Assignment, error)
	CreateAssignment(assignment *model.Assignment) error
	SaveAssignment(assignment *model.Assignment) error
	DeleteAssignment(id uint) error
	// FinalizeAssignment applies a review decision with a compare-and-set
	// on status = pending. It reports false when the assignment was not
	// pending, so two concurrent reviews cannot both win.
	FinalizeAssignment(id uint, decision model.AssignmentStatus, comment string, reviewerID uint, at time.Time) (bool, error)
}

// AssignmentService owns student submissions and the review state machine:
// pending -> approved | rejected, terminal states final.
type AssignmentService struct {
	assignments  AssignmentStore
	blobs        BlobStore
	orphans      OrphanStore
	affiliations *AffiliationService
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(assignments AssignmentStore, blobs BlobStore, orphans OrphanStore, affiliations *AffiliationService) *AssignmentService {
	return &AssignmentService{
		assignments:  assignments,
		blobs:        blobs,
		orphans:      orphans,
		affiliations: affiliations,
	}
}

// Find lists assignments matching the filter, hydrated and newest first.
func (s *AssignmentService) Find(filter model.AssignmentFilter) ([]model.Assignment, error) {
	return s.assignments.FindAssignments(filter)
}

// FindForTeacher lists assignments visible to the teacher: those whose
// subject is covered by the teacher's expanded subject affiliations,
// intersected with any explicit subject filter. A subject filter outside
// the teacher's scope yields an empty list, not an error.
func (s *AssignmentService) FindForTeacher(teacher *model.User, filter model.AssignmentFilter) ([]model.Assignment, error) {
	scopeIDs, err := s.affiliations.SubjectIDsFor(teacher)
	if err != nil {
		return nil, err
	}
	if filter.SubjectID != nil {
		if !containsID(scopeIDs, *filter.SubjectID) {
			return []model.Assignment{}, nil
		}
		scopeIDs = []uint{*filter.SubjectID}
		filter.SubjectID = nil
	}
	if len(scopeIDs) == 0 {
		return []model.Assignment{}, nil
	}
	filter.TeacherScopeSubjectIDs = scopeIDs
	return s.assignments.FindAssignments(filter)
}

// Get returns a single hydrated assignment.
func (s *AssignmentService) Get(id uint) (*model.Assignment, error) {
	return s.assignments.AssignmentByID(id)
}

// Submit creates an assignment. Status is forced to pending and any review
// fields the caller supplied are discarded.
func (s *AssignmentService) Submit(assignment *model.Assignment) error {
	if assignment.Title == "" {
		return newValidationError("title", "required")
	}
	if assignment.FileKey == "" {
		return newValidationError("file", "required")
	}
	if assignment.StudentID == 0 || assignment.SubjectID == 0 || assignment.DepartmentID == 0 || assignment.SemesterID == 0 {
		return newValidationError("scope", "student, subject, department and semester are required")
	}

	assignment.Status = model.AssignmentStatusPending
	assignment.ReviewComment = ""
	assignment.ReviewedByID = nil
	assignment.ReviewedAt = nil
	return s.assignments.CreateAssignment(assignment)
}

// AssignmentPatch applies partial updates to a pending assignment. Nil
// fields are untouched.
type AssignmentPatch struct {
	Title        *string
	SubjectID    *uint
	DepartmentID *uint
	SemesterID   *uint
	FileKey      *string
	FileName     *string
}

// Update patches an assignment. Only the owning student may edit, and only
// while the assignment is still pending.
func (s *AssignmentService) Update(ctx context.Context, id uint, actor *model.User, patch AssignmentPatch) (*model.Assignment, error) {
	assignment, err := s.assignments.AssignmentByID(id)
	if err != nil {
		return nil, err
	}
	if assignment.StudentID != actor.ID {
		return nil, ErrForbidden
	}
	if assignment.Status != model.AssignmentStatusPending {
		return nil, ErrForbidden
	}

	oldKey := ""
	if patch.Title != nil {
		assignment.Title = *patch.Title
	}
	if patch.SubjectID != nil {
		assignment.SubjectID = *patch.SubjectID
	}
	if patch.DepartmentID != nil {
		assignment.DepartmentID = *patch.DepartmentID
	}
	if patch.SemesterID != nil {
		assignment.SemesterID = *patch.SemesterID
	}
	if patch.FileKey != nil && *patch.FileKey != assignment.FileKey {
		oldKey = assignment.FileKey
		assignment.FileKey = *patch.FileKey
	}
	if patch.FileName != nil {
		assignment.FileName = *patch.FileName
	}

	if err := s.assignments.SaveAssignment(assignment); err != nil {
		return nil, err
	}

	if oldKey != "" {
		scrubBlob(ctx, s.blobs, s.orphans, oldKey)
	}
	return assignment, nil
}

// Delete removes an assignment. A student cannot retract a reviewed
// submission: the pending-only guard holds on every path. Blob cleanup is
// best-effort, same policy as notes.
func (s *AssignmentService) Delete(ctx context.Context, id uint, actor *model.User) error {
	assignment, err := s.assignments.AssignmentByID(id)
	if err != nil {
		return err
	}
	if assignment.StudentID != actor.ID {
		return ErrForbidden
	}
	if assignment.Status != model.AssignmentStatusPending {
		return ErrForbidden
	}

	scrubBlob(ctx, s.blobs, s.orphans, assignment.FileKey)
	return s.assignments.DeleteAssignment(id)
}

// Review applies a teacher's decision to a pending assignment. The reviewer
// must be a teacher whose subject affiliations cover the assignment's
// subject. The transition itself is a compare-and-set on status = pending;
// a lost race or an already-reviewed assignment both come back as
// ErrInvalidStateTransition with the record unchanged.
func (s *AssignmentService) Review(id uint, reviewer *model.User, decision model.AssignmentStatus, comment string) (*model.Assignment, error) {
	if !decision.Terminal() {
		return nil, newValidationError("decision", "must be approved or rejected")
	}
	if !reviewer.IsTeacher() {
		return nil, ErrForbidden
	}

	assignment, err := s.assignments.AssignmentByID(id)
	if err != nil {
		return nil, err
	}

	scopeIDs, err := s.affiliations.SubjectIDsFor(reviewer)
	if err != nil {
		return nil, err
	}
	if !containsID(scopeIDs, assignment.SubjectID) {
		return nil, ErrForbidden
	}

	if assignment.Status != model.AssignmentStatusPending {
		return nil, ErrInvalidStateTransition
	}

	ok, err := s.assignments.FinalizeAssignment(id, decision, comment, reviewer.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStateTransition
	}

	return s.assignments.AssignmentByID(id)
}

package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/campusshare/api/model"
)

// In-memory stores backing the service tests. They mirror the query
// semantics of the GORM store closely enough for service-level behavior:
// ANDed filters, case-insensitive title search, newest-first ordering and
// the compare-and-set on assignment review.

type fakeCatalog struct {
	departments map[uint]model.Department
	semesters   map[uint]model.Semester
	subjects    map[uint]model.Subject
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		departments: make(map[uint]model.Department),
		semesters:   make(map[uint]model.Semester),
		subjects:    make(map[uint]model.Subject),
	}
}

func (f *fakeCatalog) addDepartment(id uint, name string) {
	f.departments[id] = model.Department{ID: id, Name: name}
}

func (f *fakeCatalog) addSemester(id uint, name string) {
	f.semesters[id] = model.Semester{ID: id, Name: name}
}

func (f *fakeCatalog) addSubject(id uint, name string, departmentID, semesterID uint) {
	f.subjects[id] = model.Subject{ID: id, Name: name, DepartmentID: departmentID, SemesterID: semesterID}
}

func (f *fakeCatalog) DepartmentsByID(ids []uint) ([]model.Department, error) {
	out := []model.Department{}
	for _, id := range uniqueIDs(ids) {
		if d, ok := f.departments[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeCatalog) SemestersByID(ids []uint) ([]model.Semester, error) {
	out := []model.Semester{}
	for _, id := range uniqueIDs(ids) {
		if s, ok := f.semesters[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCatalog) SubjectsByID(ids []uint) ([]model.Subject, error) {
	out := []model.Subject{}
	for _, id := range uniqueIDs(ids) {
		if s, ok := f.subjects[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// uniqueIDs mirrors IN-query semantics: one row per distinct id.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (f *fakeCatalog) SubjectsByScope(departmentIDs, semesterIDs []uint) ([]model.Subject, error) {
	deptSet := make(map[uint]bool)
	for _, id := range departmentIDs {
		deptSet[id] = true
	}
	semSet := make(map[uint]bool)
	for _, id := range semesterIDs {
		semSet[id] = true
	}

	out := []model.Subject{}
	for _, s := range f.subjects {
		if deptSet[s.DepartmentID] && semSet[s.SemesterID] {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeUserStore struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*model.User), nextID: 1}
}

func (f *fakeUserStore) UserByID(id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) UserByEmail(email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeUserStore) CreateUser(user *model.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) SaveUser(user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return ErrNotFound
	}
	for _, existing := range f.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

type fakeNoteStore struct {
	notes  map[uint]*model.Note
	nextID uint
}

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{notes: make(map[uint]*model.Note), nextID: 1}
}

func (f *fakeNoteStore) FindNotes(filter model.NoteFilter) ([]model.Note, error) {
	out := []model.Note{}
	for _, note := range f.notes {
		if filter.TeacherID != nil && note.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.SubjectID != nil && note.SubjectID != *filter.SubjectID {
			continue
		}
		if filter.DepartmentID != nil && note.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.SemesterID != nil && note.SemesterID != *filter.SemesterID {
			continue
		}
		if filter.TitleContains != "" &&
			!strings.Contains(strings.ToLower(note.Title), strings.ToLower(filter.TitleContains)) {
			continue
		}
		out = append(out, *note)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNoteStore) NoteByID(id uint) (*model.Note, error) {
	note, ok := f.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *note
	return &copied, nil
}

func (f *fakeNoteStore) CreateNote(note *model.Note) error {
	note.ID = f.nextID
	f.nextID++
	note.CreatedAt = time.Now()
	copied := *note
	f.notes[note.ID] = &copied
	return nil
}

func (f *fakeNoteStore) SaveNote(note *model.Note) error {
	if _, ok := f.notes[note.ID]; !ok {
		return ErrNotFound
	}
	copied := *note
	f.notes[note.ID] = &copied
	return nil
}

func (f *fakeNoteStore) DeleteNote(id uint) error {
	if _, ok := f.notes[id]; !ok {
		return ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

type fakeAssignmentStore struct {
	assignments map[uint]*model.Assignment
	nextID      uint
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{assignments: make(map[uint]*model.Assignment), nextID: 1}
}

func (f *fakeAssignmentStore) FindAssignments(filter model.AssignmentFilter) ([]model.Assignment, error) {
	scopeSet := map[uint]bool{}
	for _, id := range filter.TeacherScopeSubjectIDs {
		scopeSet[id] = true
	}

	out := []model.Assignment{}
	for _, a := range f.assignments {
		if filter.StudentID != nil && a.StudentID != *filter.StudentID {
			continue
		}
		if filter.SubjectID != nil && a.SubjectID != *filter.SubjectID {
			continue
		}
		if filter.DepartmentID != nil && a.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.SemesterID != nil && a.SemesterID != *filter.SemesterID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if len(filter.TeacherScopeSubjectIDs) > 0 && !scopeSet[a.SubjectID] {
			continue
		}
		if filter.TitleContains != "" &&
			!strings.Contains(strings.ToLower(a.Title), strings.ToLower(filter.TitleContains)) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAssignmentStore) AssignmentByID(id uint) (*model.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAssignmentStore) CreateAssignment(assignment *model.Assignment) error {
	assignment.ID = f.nextID
	f.nextID++
	assignment.CreatedAt = time.Now()
	copied := *assignment
	f.assignments[assignment.ID] = &copied
	return nil
}

func (f *fakeAssignmentStore) SaveAssignment(assignment *model.Assignment) error {
	if _, ok := f.assignments[assignment.ID]; !ok {
		return ErrNotFound
	}
	copied := *assignment
	f.assignments[assignment.ID] = &copied
	return nil
}

func (f *fakeAssignmentStore) DeleteAssignment(id uint) error {
	if _, ok := f.assignments[id]; !ok {
		return ErrNotFound
	}
	delete(f.assignments, id)
	return nil
}

func (f *fakeAssignmentStore) FinalizeAssignment(id uint, decision model.AssignmentStatus, comment string, reviewerID uint, at time.Time) (bool, error) {
	a, ok := f.assignments[id]
	if !ok {
		return false, nil
	}
	if a.Status != model.AssignmentStatusPending {
		return false, nil
	}
	a.Status = decision
	a.ReviewComment = comment
	a.ReviewedByID = &reviewerID
	a.ReviewedAt = &at
	return true, nil
}

type fakeBlobStore struct {
	deleted []string
	failOn  map[string]bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{failOn: make(map[string]bool)}
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	if f.failOn[key] {
		return errors.New("connection refused")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeOrphanStore struct {
	orphans map[string]string
}

func newFakeOrphanStore() *fakeOrphanStore {
	return &fakeOrphanStore{orphans: make(map[string]string)}
}

func (f *fakeOrphanStore) RecordOrphanBlob(key, reason string) error {
	f.orphans[key] = reason
	return nil
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

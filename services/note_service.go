package services

import (
	"context"
	"log"

	"github.com/campusshare/api/model"
)

// NoteStore owns persistence of Note records.
type NoteStore interface {
	FindNotes(filter model.NoteFilter) ([]model.Note, error)
	NoteByID(id uint) (*model.Note, error)
	CreateNote(note *model.Note) error
	SaveNote(note *model.Note) error
	DeleteNote(id uint) error
}

// BlobStore is the file-storage surface the content services depend on.
type BlobStore interface {
	Delete(ctx context.Context, key string) error
}

// OrphanStore records blob keys whose best-effort deletion failed, for the
// out-of-band sweep job.
type OrphanStore interface {
	RecordOrphanBlob(key, reason string) error
}

// NoteService owns teacher-authored notes and their blob lifecycle.
type NoteService struct {
	notes   NoteStore
	blobs   BlobStore
	orphans OrphanStore
}

// NewNoteService creates a new note service
func NewNoteService(notes NoteStore, blobs BlobStore, orphans OrphanStore) *NoteService {
	return &NoteService{notes: notes, blobs: blobs, orphans: orphans}
}

// Find lists notes matching the filter, hydrated and newest first.
func (s *NoteService) Find(filter model.NoteFilter) ([]model.Note, error) {
	return s.notes.FindNotes(filter)
}

// Get returns a single hydrated note.
func (s *NoteService) Get(id uint) (*model.Note, error) {
	return s.notes.NoteByID(id)
}

// Create validates required scope fields and inserts the note. The backing
// file must already be in the blob store under note.FileKey.
func (s *NoteService) Create(note *model.Note) error {
	if note.Title == "" {
		return newValidationError("title", "required")
	}
	if note.FileKey == "" {
		return newValidationError("file", "required")
	}
	if note.TeacherID == 0 || note.SubjectID == 0 || note.DepartmentID == 0 || note.SemesterID == 0 {
		return newValidationError("scope", "teacher, subject, department and semester are required")
	}
	return s.notes.CreateNote(note)
}

// NotePatch applies partial updates to a note. Nil fields are untouched.
// FileKey/FileName move the note onto a new blob; the old blob is removed
// best-effort.
type NotePatch struct {
	Title        *string
	SubjectID    *uint
	DepartmentID *uint
	SemesterID   *uint
	FileKey      *string
	FileName     *string
}

// Update patches a note. Only the authoring teacher may edit.
func (s *NoteService) Update(ctx context.Context, id uint, actor *model.User, patch NotePatch) (*model.Note, error) {
	note, err := s.notes.NoteByID(id)
	if err != nil {
		return nil, err
	}
	if note.TeacherID != actor.ID {
		return nil, ErrForbidden
	}

	oldKey := ""
	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.SubjectID != nil {
		note.SubjectID = *patch.SubjectID
	}
	if patch.DepartmentID != nil {
		note.DepartmentID = *patch.DepartmentID
	}
	if patch.SemesterID != nil {
		note.SemesterID = *patch.SemesterID
	}
	if patch.FileKey != nil && *patch.FileKey != note.FileKey {
		oldKey = note.FileKey
		note.FileKey = *patch.FileKey
	}
	if patch.FileName != nil {
		note.FileName = *patch.FileName
	}

	if err := s.notes.SaveNote(note); err != nil {
		return nil, err
	}

	if oldKey != "" {
		s.scrubBlob(ctx, oldKey)
	}
	return note, nil
}

// Delete removes a note. The backing blob is deleted best-effort: a failed
// blob delete is logged and queued for the sweep job, never surfaced. The
// record always goes.
func (s *NoteService) Delete(ctx context.Context, id uint, actor *model.User) error {
	note, err := s.notes.NoteByID(id)
	if err != nil {
		return err
	}
	if note.TeacherID != actor.ID {
		return ErrForbidden
	}

	s.scrubBlob(ctx, note.FileKey)
	return s.notes.DeleteNote(id)
}

func (s *NoteService) scrubBlob(ctx context.Context, key string) {
	scrubBlob(ctx, s.blobs, s.orphans, key)
}

// scrubBlob deletes a blob best-effort. Failures are logged with the key
// and recorded for the nightly sweep; they never fail the caller.
func scrubBlob(ctx context.Context, blobs BlobStore, orphans OrphanStore, key string) {
	if key == "" || blobs == nil {
		return
	}
	err := blobs.Delete(ctx, key)
	if err == nil {
		return
	}
	log.Printf("[BLOB] Failed to delete %s, queueing for sweep: %v", key, err)
	if orphans != nil {
		if recordErr := orphans.RecordOrphanBlob(key, err.Error()); recordErr != nil {
			log.Printf("[BLOB] Failed to record orphan %s: %v", key, recordErr)
		}
	}
}

package note

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campusshare/api/model"
	"github.com/campusshare/api/services"
	"github.com/campusshare/api/services/spaces"
	"github.com/campusshare/api/utils/middleware"
	"github.com/campusshare/api/utils/pdfvalidation"
	"github.com/campusshare/api/utils/response"
)

const maxUploadSize = 10 * 1024 * 1024 // 10MB

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// NoteHandler handles note-related requests
type NoteHandler struct {
	notes   *services.NoteService
	storage *spaces.Client
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(notes *services.NoteService, storage *spaces.Client) *NoteHandler {
	return &NoteHandler{notes: notes, storage: storage}
}

// ListNotes handles GET /api/v1/notes with optional teacher_id, subject_id,
// department_id, semester_id and search query filters
func (h *NoteHandler) ListNotes(c *fiber.Ctx) error {
	var filter model.NoteFilter
	var err error

	if filter.TeacherID, err = parseOptionalID(c.Query("teacher_id")); err != nil {
		return response.BadRequest(c, "Invalid teacher_id")
	}
	if filter.SubjectID, err = parseOptionalID(c.Query("subject_id")); err != nil {
		return response.BadRequest(c, "Invalid subject_id")
	}
	if filter.DepartmentID, err = parseOptionalID(c.Query("department_id")); err != nil {
		return response.BadRequest(c, "Invalid department_id")
	}
	if filter.SemesterID, err = parseOptionalID(c.Query("semester_id")); err != nil {
		return response.BadRequest(c, "Invalid semester_id")
	}
	filter.TitleContains = c.Query("search")

	notes, err := h.notes.Find(filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch notes")
	}
	return response.Success(c, notes)
}

// GetNote handles GET /api/v1/notes/:id
func (h *NoteHandler) GetNote(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid note ID")
	}

	note, err := h.notes.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Note not found")
		}
		return response.InternalServerError(c, "Failed to fetch note")
	}
	return response.Success(c, note)
}

// CreateNote handles POST /api/v1/notes. Multipart form: title, subject_id,
// department_id, semester_id and the file itself. Teacher only.
func (h *NoteHandler) CreateNote(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return response.BadRequest(c, "Title is required")
	}

	subjectID, err := parseID(c.FormValue("subject_id"))
	if err != nil {
		return response.BadRequest(c, "Invalid subject_id")
	}
	departmentID, err := parseID(c.FormValue("department_id"))
	if err != nil {
		return response.BadRequest(c, "Invalid department_id")
	}
	semesterID, err := parseID(c.FormValue("semester_id"))
	if err != nil {
		return response.BadRequest(c, "Invalid semester_id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}
	if msg := validateUpload(file); msg != "" {
		return response.BadRequest(c, msg)
	}

	key, err := h.storeUpload(c, "notes", file)
	if err != nil {
		return response.InternalServerError(c, "Failed to upload file")
	}

	note := &model.Note{
		Title:        title,
		FileKey:      key,
		FileName:     file.Filename,
		TeacherID:    user.ID,
		SubjectID:    subjectID,
		DepartmentID: departmentID,
		SemesterID:   semesterID,
	}

	if err := h.notes.Create(note); err != nil {
		// The record never existed, so the blob must not linger.
		h.storage.Delete(c.Context(), key)
		if services.IsValidationError(err) {
			return response.ValidationError(c, err)
		}
		return response.InternalServerError(c, "Failed to create note")
	}

	created, err := h.notes.Get(note.ID)
	if err != nil {
		return response.Created(c, note)
	}
	return response.Created(c, created)
}

// UpdateNote handles PATCH /api/v1/notes/:id. Accepts the same multipart
// form as create; absent fields are left untouched. Only the authoring
// teacher may edit.
func (h *NoteHandler) UpdateNote(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid note ID")
	}

	var patch services.NotePatch
	if title := strings.TrimSpace(c.FormValue("title")); title != "" {
		patch.Title = &title
	}
	if patch.SubjectID, err = parseOptionalID(c.FormValue("subject_id")); err != nil {
		return response.BadRequest(c, "Invalid subject_id")
	}
	if patch.DepartmentID, err = parseOptionalID(c.FormValue("department_id")); err != nil {
		return response.BadRequest(c, "Invalid department_id")
	}
	if patch.SemesterID, err = parseOptionalID(c.FormValue("semester_id")); err != nil {
		return response.BadRequest(c, "Invalid semester_id")
	}

	if file, ferr := c.FormFile("file"); ferr == nil {
		if msg := validateUpload(file); msg != "" {
			return response.BadRequest(c, msg)
		}
		key, uerr := h.storeUpload(c, "notes", file)
		if uerr != nil {
			return response.InternalServerError(c, "Failed to upload file")
		}
		patch.FileKey = &key
		patch.FileName = &file.Filename
	}

	note, err := h.notes.Update(c.Context(), id, user, patch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Note not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Only the authoring teacher can edit this note")
		case services.IsValidationError(err):
			return response.ValidationError(c, err)
		default:
			return response.InternalServerError(c, "Failed to update note")
		}
	}

	return response.SuccessWithMessage(c, "Note updated successfully", note)
}

// DeleteNote handles DELETE /api/v1/notes/:id
func (h *NoteHandler) DeleteNote(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid note ID")
	}

	if err := h.notes.Delete(c.Context(), id, user); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Note not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Only the authoring teacher can delete this note")
		default:
			return response.InternalServerError(c, "Failed to delete note")
		}
	}

	return response.SuccessWithMessage(c, "Note deleted successfully", nil)
}

// DownloadNote handles GET /api/v1/notes/:id/download, returning a
// short-lived presigned URL for the backing file
func (h *NoteHandler) DownloadNote(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid note ID")
	}

	note, err := h.notes.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Note not found")
		}
		return response.InternalServerError(c, "Failed to fetch note")
	}

	url, err := h.storage.GetPresignedURL(note.FileKey, 15*time.Minute)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate download URL")
	}

	return response.Success(c, fiber.Map{
		"url":       url,
		"file_name": note.FileName,
	})
}

func (h *NoteHandler) storeUpload(c *fiber.Ctx, prefix string, file *multipart.FileHeader) (string, error) {
	content, err := file.Open()
	if err != nil {
		return "", err
	}
	defer content.Close()

	key := spaces.GenerateKey(prefix, file.Filename)
	if _, err := h.storage.UploadFile(c.Context(), key, content, spaces.GetContentType(file.Filename)); err != nil {
		return "", err
	}
	return key, nil
}

// validateUpload enforces the upload whitelist and size limits. It returns
// a caller-facing message, empty when the file is acceptable.
func validateUpload(file *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "Only .pdf, .doc, .docx and .txt files are allowed"
	}

	if ext == ".pdf" {
		result, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.UploadLimits)
		if err != nil {
			return "Failed to validate PDF"
		}
		if !result.Valid {
			return result.Error
		}
		return ""
	}

	if file.Size > maxUploadSize {
		return "File size exceeds maximum allowed size of 10MB"
	}
	return ""
}

func parseID(raw string) (uint, error) {
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		if err == nil {
			err = strconv.ErrRange
		}
		return 0, err
	}
	return uint(parsed), nil
}

func parseOptionalID(raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

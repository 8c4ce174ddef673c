package assignment

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
	"github.com/campusshare/api/utils/validation"
)

const maxUploadSize = 10 * 1024 * 1024 // 10MB

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// AssignmentHandler handles assignment submission and review requests
type AssignmentHandler struct {
	assignments *services.AssignmentService
	storage     *spaces.Client
	validator   *validation.Validator
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignments *services.AssignmentService, storage *spaces.Client) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		storage:     storage,
		validator:   validation.NewValidator(),
	}
}

// ListMyAssignments handles GET /api/v1/assignments/mine. Student only;
// always scoped to the authenticated student's own submissions.
func (h *AssignmentHandler) ListMyAssignments(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	filter, err := parseFilter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	filter.StudentID = &user.ID

	assignments, err := h.assignments.Find(*filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch assignments")
	}
	return response.Success(c, assignments)
}

// ListForReview handles GET /api/v1/assignments. Teacher only; results are
// limited to subjects covered by the teacher's affiliations.
func (h *AssignmentHandler) ListForReview(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	filter, err := parseFilter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	assignments, ferr := h.assignments.FindForTeacher(user, *filter)
	if ferr != nil {
		if errors.Is(ferr, services.ErrRoleMismatch) {
			return response.Forbidden(c, "This operation requires the teacher role")
		}
		return response.InternalServerError(c, "Failed to fetch assignments")
	}
	return response.Success(c, assignments)
}

// GetAssignment handles GET /api/v1/assignments/:id. Students can only see
// their own submissions.
func (h *AssignmentHandler) GetAssignment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	assignment, err := h.assignments.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch assignment")
	}

	if user.IsStudent() && assignment.StudentID != user.ID {
		return response.Forbidden(c, "You can only view your own submissions")
	}

	return response.Success(c, assignment)
}

// SubmitAssignment handles POST /api/v1/assignments. Multipart form: title,
// subject_id, department_id, semester_id and the file itself. Student only.
func (h *AssignmentHandler) SubmitAssignment(c *fiber.Ctx) error {
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

	key, err := h.storeUpload(c, "assignments", file)
	if err != nil {
		return response.InternalServerError(c, "Failed to upload file")
	}

	assignment := &model.Assignment{
		Title:        title,
		FileKey:      key,
		FileName:     file.Filename,
		StudentID:    user.ID,
		SubjectID:    subjectID,
		DepartmentID: departmentID,
		SemesterID:   semesterID,
	}

	if err := h.assignments.Submit(assignment); err != nil {
		// The record never existed, so the blob must not linger.
		h.storage.Delete(c.Context(), key)
		if services.IsValidationError(err) {
			return response.ValidationError(c, err)
		}
		return response.InternalServerError(c, "Failed to submit assignment")
	}

	created, err := h.assignments.Get(assignment.ID)
	if err != nil {
		return response.Created(c, assignment)
	}
	return response.Created(c, created)
}

// UpdateAssignment handles PATCH /api/v1/assignments/:id. Only the owning
// student may edit, and only while the submission is still pending.
func (h *AssignmentHandler) UpdateAssignment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	var patch services.AssignmentPatch
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
		key, uerr := h.storeUpload(c, "assignments", file)
		if uerr != nil {
			return response.InternalServerError(c, "Failed to upload file")
		}
		patch.FileKey = &key
		patch.FileName = &file.Filename
	}

	assignment, err := h.assignments.Update(c.Context(), id, user, patch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Assignment not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Only pending submissions can be edited by their owner")
		case services.IsValidationError(err):
			return response.ValidationError(c, err)
		default:
			return response.InternalServerError(c, "Failed to update assignment")
		}
	}

	return response.SuccessWithMessage(c, "Assignment updated successfully", assignment)
}

// DeleteAssignment handles DELETE /api/v1/assignments/:id. Only the owning
// student may retract a submission, and only while it is still pending.
func (h *AssignmentHandler) DeleteAssignment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	if err := h.assignments.Delete(c.Context(), id, user); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Assignment not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Only pending submissions can be deleted by their owner")
		default:
			return response.InternalServerError(c, "Failed to delete assignment")
		}
	}

	return response.SuccessWithMessage(c, "Assignment deleted successfully", nil)
}

// ReviewRequest carries a teacher's review decision.
type ReviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Comment  string `json:"comment,omitempty"`
}

// ReviewAssignment handles POST /api/v1/assignments/:id/review. Teacher
// only; the assignment's subject must be covered by the reviewer's
// affiliations, and the submission must still be pending.
func (h *AssignmentHandler) ReviewAssignment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	assignment, err := h.assignments.Review(id, user, model.AssignmentStatus(req.Decision), req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Assignment not found")
		case errors.Is(err, services.ErrForbidden):
			return response.Forbidden(c, "Assignment is outside your subject scope")
		case errors.Is(err, services.ErrInvalidStateTransition):
			return response.Conflict(c, "Assignment has already been reviewed")
		case services.IsValidationError(err):
			return response.ValidationError(c, err)
		default:
			return response.InternalServerError(c, "Failed to review assignment")
		}
	}

	return response.SuccessWithMessage(c, "Assignment reviewed successfully", assignment)
}

// DownloadAssignment handles GET /api/v1/assignments/:id/download,
// returning a short-lived presigned URL for the backing file
func (h *AssignmentHandler) DownloadAssignment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	assignment, err := h.assignments.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch assignment")
	}

	if user.IsStudent() && assignment.StudentID != user.ID {
		return response.Forbidden(c, "You can only download your own submissions")
	}

	url, err := h.storage.GetPresignedURL(assignment.FileKey, 15*time.Minute)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate download URL")
	}

	return response.Success(c, fiber.Map{
		"url":       url,
		"file_name": assignment.FileName,
	})
}

func parseFilter(c *fiber.Ctx) (*model.AssignmentFilter, error) {
	var filter model.AssignmentFilter
	var err error

	if filter.SubjectID, err = parseOptionalID(c.Query("subject_id")); err != nil {
		return nil, errors.New("Invalid subject_id")
	}
	if filter.DepartmentID, err = parseOptionalID(c.Query("department_id")); err != nil {
		return nil, errors.New("Invalid department_id")
	}
	if filter.SemesterID, err = parseOptionalID(c.Query("semester_id")); err != nil {
		return nil, errors.New("Invalid semester_id")
	}
	if raw := c.Query("status"); raw != "" {
		status := model.AssignmentStatus(raw)
		if !status.Valid() {
			return nil, errors.New("Invalid status, must be pending, approved or rejected")
		}
		filter.Status = &status
	}
	filter.TitleContains = c.Query("search")

	return &filter, nil
}

func (h *AssignmentHandler) storeUpload(c *fiber.Ctx, prefix string, file *multipart.FileHeader) (string, error) {
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

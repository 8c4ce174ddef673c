package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/campusshare/api/services"
	"github.com/campusshare/api/utils/middleware"
	"github.com/campusshare/api/utils/response"
)

// TeacherProfileResponse is a teacher with expanded affiliations.
type TeacherProfileResponse struct {
	User  UserResponse           `json:"user"`
	Scope *services.TeacherScope `json:"scope"`
}

// StudentProfileResponse is a student with expanded affiliations.
type StudentProfileResponse struct {
	User  UserResponse           `json:"user"`
	Scope *services.StudentScope `json:"scope"`
}

// GetTeacherProfile returns the authenticated teacher's profile with
// affiliations expanded into catalog entities
func (h *AuthHandler) GetTeacherProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	user, scope, err := h.users.TeacherProfile(userID)
	if err != nil {
		return h.profileError(c, err)
	}

	return response.Success(c, TeacherProfileResponse{
		User:  newUserResponse(user),
		Scope: scope,
	})
}

// GetStudentProfile returns the authenticated student's profile with
// affiliations expanded into catalog entities
func (h *AuthHandler) GetStudentProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	user, scope, err := h.users.StudentProfile(userID)
	if err != nil {
		return h.profileError(c, err)
	}

	return response.Success(c, StudentProfileResponse{
		User:  newUserResponse(user),
		Scope: scope,
	})
}

// UpdateTeacherProfileRequest carries partial updates. Absent fields are
// left untouched; an empty list clears the affiliation.
type UpdateTeacherProfileRequest struct {
	Name          *string `json:"name,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	DepartmentIDs *[]uint `json:"department_ids,omitempty"`
	SemesterIDs   *[]uint `json:"semester_ids,omitempty"`
	SubjectIDs    *[]uint `json:"subject_ids,omitempty"`
}

// UpdateTeacherProfile patches the authenticated teacher's profile
func (h *AuthHandler) UpdateTeacherProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateTeacherProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, scope, err := h.users.UpdateTeacherProfile(userID, services.TeacherProfilePatch{
		Name:          req.Name,
		Email:         req.Email,
		DepartmentIDs: req.DepartmentIDs,
		SemesterIDs:   req.SemesterIDs,
		SubjectIDs:    req.SubjectIDs,
	})
	if err != nil {
		return h.profileError(c, err)
	}

	return response.SuccessWithMessage(c, "Profile updated successfully", TeacherProfileResponse{
		User:  newUserResponse(user),
		Scope: scope,
	})
}

// UpdateStudentProfileRequest carries partial updates for a student.
type UpdateStudentProfileRequest struct {
	Name         *string `json:"name,omitempty"`
	RollNumber   *string `json:"roll_number,omitempty"`
	DepartmentID *uint   `json:"department_id,omitempty"`
	SemesterID   *uint   `json:"semester_id,omitempty"`
	SubjectIDs   *[]uint `json:"subject_ids,omitempty"`
}

// UpdateStudentProfile patches the authenticated student's profile
func (h *AuthHandler) UpdateStudentProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateStudentProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, scope, err := h.users.UpdateStudentProfile(userID, services.StudentProfilePatch{
		Name:         req.Name,
		RollNumber:   req.RollNumber,
		DepartmentID: req.DepartmentID,
		SemesterID:   req.SemesterID,
		SubjectIDs:   req.SubjectIDs,
	})
	if err != nil {
		return h.profileError(c, err)
	}

	return response.SuccessWithMessage(c, "Profile updated successfully", StudentProfileResponse{
		User:  newUserResponse(user),
		Scope: scope,
	})
}

func (h *AuthHandler) profileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, services.ErrRoleMismatch):
		return response.Forbidden(c, "Account does not hold the requested role")
	case errors.Is(err, services.ErrDuplicateEmail):
		return response.Conflict(c, "User with this email already exists")
	case services.IsValidationError(err):
		return response.ValidationError(c, err)
	default:
		return response.InternalServerError(c, "Failed to load profile")
	}
}

package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campusshare/api/model"
	"github.com/campusshare/api/services"
	authutil "github.com/campusshare/api/utils/auth"
	"github.com/campusshare/api/utils/middleware"
	"github.com/campusshare/api/utils/response"
	"github.com/campusshare/api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	users                *services.UserService
	jwtManager           *authutil.JWTManager
	validator            *validation.Validator
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *services.UserService, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		users:                users,
		jwtManager:           jwtManager,
		validator:            validation.NewValidator(),
		bruteForceProtection: bruteForceProtection,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Name          string `json:"name" validate:"required,min=2"`
	Role          string `json:"role" validate:"required,oneof=student teacher"`
	RollNumber    string `json:"roll_number,omitempty"`
	DepartmentIDs []uint `json:"department_ids,omitempty"`
	SemesterIDs   []uint `json:"semester_ids,omitempty"`
	SubjectIDs    []uint `json:"subject_ids,omitempty"`
}

// RegisterResponse represents a successful registration response
type RegisterResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	RollNumber    string    `json:"roll_number,omitempty"`
	DepartmentIDs []uint    `json:"department_ids"`
	SemesterIDs   []uint    `json:"semester_ids"`
	SubjectIDs    []uint    `json:"subject_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		RollNumber:    user.RollNumber,
		DepartmentIDs: int64sToUints(user.DepartmentIDs),
		SemesterIDs:   int64sToUints(user.SemesterIDs),
		SubjectIDs:    int64sToUints(user.SubjectIDs),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

func int64sToUints(ids []int64) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, uint(id))
		}
	}
	return out
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Validate password strength
	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	user, err := h.users.Register(services.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Role:          req.Role,
		RollNumber:    req.RollNumber,
		DepartmentIDs: req.DepartmentIDs,
		SemesterIDs:   req.SemesterIDs,
		SubjectIDs:    req.SubjectIDs,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			return response.Conflict(c, "User with this email already exists")
		}
		if services.IsValidationError(err) {
			return response.ValidationError(c, err)
		}
		return response.InternalServerError(c, "Failed to create user")
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	res := RegisterResponse{
		User:         newUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60, // 24 hours in seconds
	}

	return response.Created(c, res)
}

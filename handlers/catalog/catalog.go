package catalog

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campusshare/api/model"
	"github.com/campusshare/api/utils/response"
)

// Store is the catalog read surface the handler depends on.
type Store interface {
	Departments() ([]model.Department, error)
	Semesters() ([]model.Semester, error)
	Subjects(departmentID, semesterID *uint) ([]model.Subject, error)
}

// CatalogHandler serves the department/semester/subject catalog
type CatalogHandler struct {
	store Store
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(store Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// ListDepartments handles GET /api/v1/catalog/departments
func (h *CatalogHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.store.Departments()
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch departments")
	}
	return response.Success(c, departments)
}

// ListSemesters handles GET /api/v1/catalog/semesters
func (h *CatalogHandler) ListSemesters(c *fiber.Ctx) error {
	semesters, err := h.store.Semesters()
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch semesters")
	}
	return response.Success(c, semesters)
}

// ListSubjects handles GET /api/v1/catalog/subjects with optional
// department_id and semester_id query filters
func (h *CatalogHandler) ListSubjects(c *fiber.Ctx) error {
	departmentID, err := parseOptionalID(c.Query("department_id"))
	if err != nil {
		return response.BadRequest(c, "Invalid department_id")
	}
	semesterID, err := parseOptionalID(c.Query("semester_id"))
	if err != nil {
		return response.BadRequest(c, "Invalid semester_id")
	}

	subjects, err := h.store.Subjects(departmentID, semesterID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch subjects")
	}
	return response.Success(c, subjects)
}

func parseOptionalID(raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	id := uint(parsed)
	return &id, nil
}

package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campusshare/api/database"
	assignment_handlers "github.com/campusshare/api/handlers/assignment"
	auth_handlers "github.com/campusshare/api/handlers/auth"
	catalog_handlers "github.com/campusshare/api/handlers/catalog"
	note_handlers "github.com/campusshare/api/handlers/note"
	"github.com/campusshare/api/services"
	"github.com/campusshare/api/services/spaces"
	"github.com/campusshare/api/utils/auth"
	"github.com/campusshare/api/utils/cache"
	"github.com/campusshare/api/utils/middleware"
	"github.com/campusshare/api/utils/response"
)

// SetupRoutes wires services, middleware and handlers onto the app.
func SetupRoutes(app *fiber.App, store *database.GORMStore, storage *spaces.Client) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "campusshare-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Initialize Redis cache for brute force protection
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, store.DB())

	// Services all share the GORM store through their narrow interfaces
	affiliationService := services.NewAffiliationService(store)
	userService := services.NewUserService(store, affiliationService)
	noteService := services.NewNoteService(store, storage, store)
	assignmentService := services.NewAssignmentService(store, storage, store, affiliationService)

	authHandler := auth_handlers.NewAuthHandler(userService, jwtManager, bruteForceProtection)
	catalogHandler := catalog_handlers.NewCatalogHandler(store)
	noteHandler := note_handlers.NewNoteHandler(noteService, storage)
	assignmentHandler := assignment_handlers.NewAssignmentHandler(assignmentService, storage)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.ServiceUnavailable(c, "Database unavailable")
		}
		return response.Success(c, fiber.Map{"status": "ok"})
	})

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Profile routes, shaped per role
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/teacher", authMiddleware.RequireTeacher(), authHandler.GetTeacherProfile)
	profileGroup.Patch("/teacher", authMiddleware.RequireTeacher(), authHandler.UpdateTeacherProfile)
	profileGroup.Get("/student", authMiddleware.RequireStudent(), authHandler.GetStudentProfile)
	profileGroup.Patch("/student", authMiddleware.RequireStudent(), authHandler.UpdateStudentProfile)

	// Catalog routes (public)
	catalogGroup := api.Group("/catalog")
	catalogGroup.Get("/departments", catalogHandler.ListDepartments)
	catalogGroup.Get("/semesters", catalogHandler.ListSemesters)
	catalogGroup.Get("/subjects", catalogHandler.ListSubjects)

	// Note routes
	notes := api.Group("/notes", authMiddleware.Required())
	notes.Get("/", noteHandler.ListNotes)
	notes.Get("/:id", noteHandler.GetNote)
	notes.Get("/:id/download", noteHandler.DownloadNote)
	notes.Post("/", authMiddleware.RequireTeacher(), noteHandler.CreateNote)
	notes.Patch("/:id", authMiddleware.RequireTeacher(), noteHandler.UpdateNote)
	notes.Delete("/:id", authMiddleware.RequireTeacher(), noteHandler.DeleteNote)

	// Assignment routes
	assignments := api.Group("/assignments", authMiddleware.Required())
	assignments.Get("/", authMiddleware.RequireTeacher(), assignmentHandler.ListForReview)
	assignments.Get("/mine", authMiddleware.RequireStudent(), assignmentHandler.ListMyAssignments)
	assignments.Get("/:id", assignmentHandler.GetAssignment)
	assignments.Get("/:id/download", assignmentHandler.DownloadAssignment)
	assignments.Post("/", authMiddleware.RequireStudent(), assignmentHandler.SubmitAssignment)
	assignments.Patch("/:id", authMiddleware.RequireStudent(), assignmentHandler.UpdateAssignment)
	assignments.Delete("/:id", authMiddleware.RequireStudent(), assignmentHandler.DeleteAssignment)
	assignments.Post("/:id/review", authMiddleware.RequireTeacher(), assignmentHandler.ReviewAssignment)
}

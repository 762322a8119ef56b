package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/AhmedYossry552/examination-system/internal/config"
	"github.com/AhmedYossry552/examination-system/internal/handler"
	"github.com/AhmedYossry552/examination-system/internal/middleware"
	"github.com/AhmedYossry552/examination-system/internal/response"
	"github.com/AhmedYossry552/examination-system/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Student    *handler.StudentHandler
	Instructor *handler.InstructorHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/instructor/login", handlers.Auth.InstructorLogin)
	}

	// ─── 2. Student Group (JWT + Single Session) ───────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/exams", handlers.Student.ListExams)
		studentAPI.POST("/exams/:exam_id/attempts", handlers.Student.StartAttempt)
		studentAPI.GET("/attempts/:attempt_id/paper", handlers.Student.GetPaper)
		studentAPI.PUT("/attempts/:attempt_id/answers", handlers.Student.UpsertAnswer)
		studentAPI.POST("/attempts/:attempt_id/answers/batch", handlers.Student.SubmitAnswers)
		studentAPI.POST("/attempts/:attempt_id/submit", handlers.Student.SubmitAttempt)
		studentAPI.GET("/attempts/:attempt_id/result", handlers.Student.GetResult)
		studentAPI.GET("/remedials", handlers.Student.RemedialHistory)
		studentAPI.GET("/notifications", handlers.Student.ListNotifications)
		studentAPI.POST("/notifications/:notification_id/read", handlers.Student.ReadNotification)
	}

	// ─── 3. Instructor Group (JWT) ─────────────────────────────────────
	instructorAPI := router.Group("/api/v1/instructor")
	instructorAPI.Use(middleware.RequireInstructorJWT(authService))
	{
		instructorAPI.GET("/exams/:exam_id/pending-grading", handlers.Instructor.PendingGrading)
		instructorAPI.POST("/answers/:answer_id/grade", handlers.Instructor.GradeTextAnswer)
		instructorAPI.GET("/attempts/:attempt_id/result", handlers.Instructor.GetAttemptResult)
		instructorAPI.GET("/attempts/:attempt_id/integrity", handlers.Instructor.AttemptIntegrity)
		instructorAPI.GET("/exams/:exam_id/integrity", handlers.Instructor.ExamIntegrity)
		instructorAPI.GET("/exams/:exam_id/item-stats", handlers.Instructor.ItemStatistics)
		instructorAPI.POST("/remedials/run", handlers.Instructor.RunRemedialAssignment)
		instructorAPI.GET("/exams/:exam_id/remedial/candidates", handlers.Instructor.RemedialCandidates)
		instructorAPI.GET("/exams/:exam_id/remedial/progress", handlers.Instructor.RemedialProgress)
		instructorAPI.POST("/students/:student_id/reset-session", handlers.Auth.ResetStudentSession)
	}

	// ─── 4. WebSocket Group (Instructor WS Auth) ───────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireInstructorWSAuth(authService))
	{
		ws.GET("/instructor/exams/:exam_id/monitor", handlers.WS.MonitorStream)
	}

	return router
}

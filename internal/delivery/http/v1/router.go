package v1

import (
	"net/http"
	"time"

	"go-interview-backend/config"
	"go-interview-backend/internal/delivery/http/middleware"
	"go-interview-backend/internal/delivery/http/response"
	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/storage"
	"go-interview-backend/pkg/token"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	InviteUC     domain.InviteUsecase
	InterviewUC  domain.InterviewUsecase
	VoiceUC      domain.VoiceUsecase
	VoiceCloneUC domain.VoiceCloneUsecase
	Validator    token.Validator
	AudioStore   *storage.AudioStore // nil when object storage is not configured
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger()) // Use standard Gin logger
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Public routes. Redemption is the brute-force target, so it gets the
	// strict fail-closed limiter on top of the global one.
	public := v1.Group("")
	public.Use(middleware.RateLimitMiddleware(middleware.RedeemRateLimitConfig(deps.Config.RateLimitRedeemThreshold, window)))
	NewSessionHandler(public, deps.InviteUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Candidate session routes
	session := v1.Group("")
	session.Use(middleware.SessionMiddleware(deps.Validator))
	{
		NewInterviewHandler(session, deps.InterviewUC, deps.VoiceUC, deps.AudioStore)

		voice := session.Group("")
		voice.Use(middleware.RateLimitMiddleware(middleware.VoiceRateLimitConfig(deps.Config.RateLimitVoiceThreshold, window)))
		NewVoiceHandler(voice, deps.VoiceUC)
	}

	// Staff routes
	staff := v1.Group("/staff")
	staff.Use(middleware.StaffKeyMiddleware(deps.Config.StaffAPIKey))
	NewStaffHandler(staff, deps.InviteUC, deps.VoiceCloneUC)

	return r
}

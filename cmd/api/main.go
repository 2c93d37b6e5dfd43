package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-interview-backend/config"
	_ "go-interview-backend/docs" // Important for Swagger
	v1 "go-interview-backend/internal/delivery/http/v1"
	"go-interview-backend/internal/domain"
	"go-interview-backend/internal/repository/postgres"
	"go-interview-backend/internal/repository/rediscache"
	"go-interview-backend/internal/usecase"
	"go-interview-backend/pkg/database"
	"go-interview-backend/pkg/email"
	"go-interview-backend/pkg/logger"
	"go-interview-backend/pkg/redis"
	"go-interview-backend/pkg/storage"
	"go-interview-backend/pkg/token"
	"go-interview-backend/pkg/tts"
	"go-interview-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// @title           Interview Backend API
// @version         1.0
// @description     Candidate interview access and voice synthesis backend using Clean Architecture.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey StaffKeyAuth
// @in header
// @name X-Staff-Key
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting interview backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional; everything degrades without it)
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using durable/in-memory fallbacks", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	inviteRepo := postgres.NewInviteRepository(dbPool)
	interviewRepo := postgres.NewInterviewRepository(dbPool)
	directoryRepo := postgres.NewDirectoryRepository(dbPool)
	questionRepo := postgres.NewQuestionRepository(dbPool)

	var audioCache domain.AudioCacheRepository = postgres.NewAudioCacheRepository(dbPool)
	var voiceCloneRepo domain.VoiceCloneRepository = postgres.NewVoiceCloneRepository(dbPool)
	if client := redis.Client(); client != nil {
		audioCache = rediscache.NewLayeredAudioCache(client, cfg.AudioCacheRedisTTL, audioCache)
		voiceCloneRepo = rediscache.NewVoiceCloneLimiter(client, voiceCloneRepo)
	}

	// 6. Setup Candidate Session Signer
	signer, err := token.NewHMACSigner(cfg.TokenSigningSecret)
	if err != nil {
		logger.Log.Error("Failed to initialize session signer", "error", err)
		os.Exit(1)
	}

	// 7. Setup TTS Client
	var ttsClient tts.Client
	if cfg.TTSFakeMode || cfg.TTSAPIKey == "" {
		logger.Log.Warn("TTS running in fake mode - synthesized audio is deterministic noise")
		ttsClient = tts.NewFakeClient()
	} else {
		ttsClient = tts.NewElevenLabsClient(cfg.TTSBaseURL, cfg.TTSAPIKey, time.Duration(cfg.TTSTimeoutSeconds)*time.Second)
	}

	// 8. Setup Email Service (invite re-send notifications)
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - invite refresh emails will be skipped")
	}

	// 9. Setup Audio Storage (optional)
	var audioStore *storage.AudioStore
	if cfg.S3Bucket != "" {
		audioStore, err = storage.NewAudioStore(context.Background(), storage.Config{
			Provider:        storage.Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			logger.Log.Warn("Audio storage unavailable - answer uploads disabled", "error", err)
			audioStore = nil
		}
	} else {
		logger.Log.Warn("AUDIO_BUCKET not configured - answer uploads disabled")
	}

	// 10. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)
	voiceUC := usecase.NewVoiceUsecase(ttsClient, audioCache, questionRepo, interviewRepo, directoryRepo, usecase.VoiceConfig{
		DefaultVoiceID:        cfg.TTSDefaultVoiceID,
		ModelID:               cfg.TTSModelID,
		DefaultStability:      0.5,
		DefaultSimilarity:     0.75,
		MaxCharsPerRequest:    cfg.MaxCharsPerRequest,
		MaxRequestsPerMessage: cfg.MaxRequestsPerMessage,
		WarmupWorkers:         cfg.WarmupWorkers,
	})
	inviteUC := usecase.NewInviteUsecase(inviteRepo, interviewRepo, directoryRepo, questionRepo, signer, emailService, usecase.InviteConfig{
		SessionTTL:  cfg.SessionTTL,
		InviteTTL:   cfg.InviteDefaultTTL,
		FrontendURL: cfg.FrontendURL,
	})
	interviewUC := usecase.NewInterviewUsecase(interviewRepo, voiceUC, validate)
	voiceCloneUC := usecase.NewVoiceCloneUsecase(voiceCloneRepo, cfg.VoiceCloneCooldown)

	// 11. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		InviteUC:     inviteUC,
		InterviewUC:  interviewUC,
		VoiceUC:      voiceUC,
		VoiceCloneUC: voiceCloneUC,
		Validator:    signer,
		AudioStore:   audioStore,
		Config:       cfg,
	})

	// 12. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	FrontendURL string
	StaffAPIKey string
	// Candidate session signing
	TokenSigningSecret string
	SessionTTL         time.Duration
	// Invite lifecycle
	InviteDefaultTTL time.Duration
	// TTS Provider (ElevenLabs-compatible API)
	TTSAPIKey             string
	TTSBaseURL            string
	TTSModelID            string
	TTSDefaultVoiceID     string
	TTSFakeMode           bool
	TTSTimeoutSeconds     int
	MaxCharsPerRequest    int
	MaxRequestsPerMessage int
	WarmupWorkers         int
	// Voice cloning
	VoiceCloneCooldown time.Duration
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	AudioCacheRedisTTL   time.Duration
	// HTTP Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	RateLimitVoiceThreshold  int
	RateLimitRedeemThreshold int
	// SMTP Configuration (invite re-send notifications)
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// S3-compatible audio storage
	S3Provider        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; ignored in production.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		StaffAPIKey: getEnv("STAFF_API_KEY", ""),
		// Candidate session signing
		TokenSigningSecret: getEnv("TOKEN_SIGNING_SECRET", ""),
		SessionTTL:         getEnvDuration("SESSION_TTL", 2*time.Hour),
		// Invite lifecycle
		InviteDefaultTTL: getEnvDuration("INVITE_DEFAULT_TTL", 7*24*time.Hour),
		// TTS Provider
		TTSAPIKey:             getEnv("TTS_API_KEY", getEnv("ELEVENLABS_API_KEY", "")),
		TTSBaseURL:            strings.TrimRight(getEnv("TTS_BASE_URL", "https://api.elevenlabs.io"), "/"),
		TTSModelID:            getEnv("TTS_MODEL_ID", "eleven_turbo_v2_5"),
		TTSDefaultVoiceID:     getEnv("TTS_DEFAULT_VOICE_ID", ""),
		TTSFakeMode:           getEnvBool("TTS_FAKE_MODE", false),
		TTSTimeoutSeconds:     getEnvInt("TTS_TIMEOUT_SECONDS", 30),
		MaxCharsPerRequest:    getEnvInt("TTS_MAX_CHARS_PER_REQUEST", 2400),
		MaxRequestsPerMessage: getEnvInt("TTS_MAX_REQUESTS_PER_MESSAGE", 4),
		WarmupWorkers:         getEnvInt("TTS_WARMUP_WORKERS", 4),
		// Voice cloning
		VoiceCloneCooldown: getEnvDuration("VOICE_CLONE_COOLDOWN", 24*time.Hour),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		AudioCacheRedisTTL:   getEnvDuration("AUDIO_CACHE_REDIS_TTL", 6*time.Hour),
		// HTTP Rate Limiting (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitVoiceThreshold:  getEnvInt("RATE_LIMIT_VOICE_THRESHOLD", 30),
		RateLimitRedeemThreshold: getEnvInt("RATE_LIMIT_REDEEM_THRESHOLD", 10),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "interviews@example.com"),
		// S3-compatible audio storage
		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("AUDIO_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if len(cfg.TokenSigningSecret) < 32 {
		log.Println("WARNING: TOKEN_SIGNING_SECRET must be at least 32 bytes. Candidate sessions cannot be issued.")
	}
	if cfg.TTSAPIKey == "" && !cfg.TTSFakeMode {
		log.Println("WARNING: TTS_API_KEY not configured. Voice synthesis will run in fake mode.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration returns a duration environment variable (Go syntax, e.g. "2h")
// or fallback if not set/invalid
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

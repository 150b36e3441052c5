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
	Port            string
	DatabaseURL     string
	JWTSecret       string
	SessionTTL      time.Duration
	ResetTokenTTL   time.Duration
	OTPTTL          time.Duration
	OTPLength       int
	AllowOrigins    []string
	FrontendBaseURL string
	GoogleAudience  string
	LogstashTCPAddr string

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOBucketProfile string
	MinIOPublicURL     string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPTimeout  time.Duration

	ElasticsearchURL     string
	CourseViewsIndex     string
	ProfileImageMaxBytes int64

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	otpLen := 6
	if v, err := strconv.Atoi(getenv("OTP_LENGTH", "6")); err == nil && v > 0 {
		otpLen = v
	}

	imageMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("PROFILE_IMAGE_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		imageMax = v
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		SessionTTL:      duration("SESSION_TTL", time.Hour),
		ResetTokenTTL:   duration("PASSWORD_RESET_TTL", 15*time.Minute),
		OTPTTL:          duration("OTP_TTL", 10*time.Minute),
		OTPLength:       otpLen,
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		FrontendBaseURL: getenv("FRONTEND_BASE_URL", ""),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		MinIOEndpoint:      getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketProfile: getenv("MINIO_BUCKET_PROFILE", "lms-profiles"),
		MinIOPublicURL:     getenv("MINIO_PUBLIC_URL", ""),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", ""),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),
		SMTPTimeout:  duration("SMTP_TIMEOUT", 10*time.Second),

		ElasticsearchURL:     getenv("ELASTICSEARCH_URL", ""),
		CourseViewsIndex:     getenv("COURSE_VIEWS_INDEX", "lms-course-views"),
		ProfileImageMaxBytes: imageMax,

		AdminName:     getenv("ADMIN_NAME", "Administrator"),
		AdminEmail:    getenv("ADMIN_EMAIL", ""),
		AdminPassword: getenv("ADMIN_PASSWORD", ""),
	}
}

func duration(k string, d time.Duration) time.Duration {
	raw := getenv(k, "")
	if raw == "" {
		return d
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", k, raw, d)
		return d
	}
	return parsed
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

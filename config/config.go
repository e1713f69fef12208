package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port string

	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDSN      string
	DBDebug    bool

	JWTKey      string
	JWTTTLHours int
	SaltRound   int

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string

	PdfServiceURL   string // optional PNG -> PDF conversion service
	CertificateDir  string // where generated certificate artifacts are stored
	CertificateFont string // optional TrueType/OpenType file for certificate text

	CorsOrigins  []string
	RateLimitMax int

	ExamGraceSeconds int
	AttemptSweepSpec string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port: getEnv("PORT", "3000"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "hadith"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBDSN:      getEnv("DB_DSN", ""),
		DBDebug:    getEnvBool("DB_DEBUG", false),

		JWTKey:      getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),
		SaltRound:   getEnvInt("SALT_ROUND", 10),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@hadith.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Hadith University"),

		PdfServiceURL:   getEnv("PDF_SERVICE_URL", ""),
		CertificateDir:  getEnv("CERTIFICATE_DIR", "./storage/certificates"),
		CertificateFont: getEnv("CERTIFICATE_FONT", ""),

		CorsOrigins:  getEnvList("CORS_ORIGINS"),
		RateLimitMax: getEnvInt("RATE_LIMIT_MAX", 120),

		ExamGraceSeconds: getEnvInt("EXAM_GRACE_SECONDS", 30),
		AttemptSweepSpec: getEnv("ATTEMPT_SWEEP_SPEC", "@every 1m"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. E-mails will be written to the log.")
	}
}

// Default returns a configuration with every default applied and no environment lookups.
// Used by tests and tools that never call LoadConfig.
func Default() *Config {
	return &Config{
		Port:             "3000",
		DBDriver:         "sqlite",
		DBName:           "file::memory:",
		JWTKey:           "defaultSecret",
		JWTTTLHours:      24,
		SaltRound:        4,
		EmailSender:      "no-reply@hadith.local",
		EmailSenderName:  "Hadith University",
		CertificateDir:   os.TempDir(),
		RateLimitMax:     120,
		ExamGraceSeconds: 30,
		AttemptSweepSpec: "@every 1m",
	}
}

// Get returns AppConfig, falling back to Default when LoadConfig was never called.
func Get() *Config {
	if AppConfig == nil {
		AppConfig = Default()
	}
	return AppConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return b
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

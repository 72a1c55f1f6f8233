package profile

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Defaults applied by FromEnv and Validate.
const (
	DefaultTimezone                 = "Asia/Kolkata"
	DefaultDepartmentFuzzyThreshold = 0.75
	DefaultDateFuzzyThreshold       = 0.70
	DefaultMinDepartmentConfidence  = 0.70
	DefaultOCRLanguages             = "eng"
	DefaultOCRMaxConcurrency        = 2
	DefaultOCRCacheSize             = 256
	DefaultMaxUploadBytes           = 10 << 20
	DefaultRateLimitRPS             = 10
	DefaultRateLimitBurst           = 20
)

// DefaultDepartments is the department vocabulary used when none is configured.
var DefaultDepartments = []string{"dentist", "cardiologist", "neurologist", "orthopedic", "dermatologist", "ent"}

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Version is the current version of server
	Version string

	// Parsing Configuration
	Timezone                 string   // APPTINTENT_TIMEZONE (default: Asia/Kolkata)
	Departments              []string // APPTINTENT_DEPARTMENTS, comma separated
	DepartmentFuzzyThreshold float64  // APPTINTENT_DEPARTMENT_FUZZY_THRESHOLD (default: 0.75)
	DateFuzzyThreshold       float64  // APPTINTENT_DATE_FUZZY_THRESHOLD (default: 0.70)
	MinDepartmentConfidence  float64  // APPTINTENT_MIN_DEPARTMENT_CONFIDENCE (default: 0.70)

	// Image Processing Configuration
	OCREnabled        bool   // APPTINTENT_OCR_ENABLED (default: false)
	TesseractPath     string // APPTINTENT_OCR_TESSERACT_PATH (default: tesseract)
	TessdataPath      string // APPTINTENT_OCR_TESSDATA_PATH (default: "")
	OCRLanguages      string // APPTINTENT_OCR_LANGUAGES (default: eng)
	OCRMaxConcurrency int    // APPTINTENT_OCR_MAX_CONCURRENCY (default: 2)
	OCRCacheSize      int    // APPTINTENT_OCR_CACHE_SIZE (default: 256, 0 disables)
	MaxUploadBytes    int64  // APPTINTENT_MAX_UPLOAD_BYTES (default: 10 MiB)

	// Rate Limiting
	RateLimitRPS   float64 // APPTINTENT_RATE_LIMIT_RPS (default: 10)
	RateLimitBurst int     // APPTINTENT_RATE_LIMIT_BURST (default: 20)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getFloatEnv returns the parsed float or the default when unset or invalid.
func getFloatEnv(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("invalid float env value, using default", slog.String("key", key), slog.String("value", raw))
		return defaultValue
	}
	return v
}

// getIntEnv returns the parsed integer or the default when unset or invalid.
func getIntEnv(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("invalid integer env value, using default", slog.String("key", key), slog.String("value", raw))
		return defaultValue
	}
	return v
}

// splitList splits a comma separated list, dropping blank items.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// FromEnv loads configuration from APPTINTENT_* environment variables.
func (p *Profile) FromEnv() {
	p.Timezone = getEnvOrDefault("APPTINTENT_TIMEZONE", DefaultTimezone)
	p.Departments = splitList(os.Getenv("APPTINTENT_DEPARTMENTS"))
	if len(p.Departments) == 0 {
		p.Departments = append([]string(nil), DefaultDepartments...)
	}
	p.DepartmentFuzzyThreshold = getFloatEnv("APPTINTENT_DEPARTMENT_FUZZY_THRESHOLD", DefaultDepartmentFuzzyThreshold)
	p.DateFuzzyThreshold = getFloatEnv("APPTINTENT_DATE_FUZZY_THRESHOLD", DefaultDateFuzzyThreshold)
	p.MinDepartmentConfidence = getFloatEnv("APPTINTENT_MIN_DEPARTMENT_CONFIDENCE", DefaultMinDepartmentConfidence)

	p.OCREnabled = os.Getenv("APPTINTENT_OCR_ENABLED") == "true"
	p.TesseractPath = getEnvOrDefault("APPTINTENT_OCR_TESSERACT_PATH", "tesseract")
	p.TessdataPath = os.Getenv("APPTINTENT_OCR_TESSDATA_PATH")
	p.OCRLanguages = getEnvOrDefault("APPTINTENT_OCR_LANGUAGES", DefaultOCRLanguages)
	p.OCRMaxConcurrency = int(getIntEnv("APPTINTENT_OCR_MAX_CONCURRENCY", DefaultOCRMaxConcurrency))
	p.OCRCacheSize = int(getIntEnv("APPTINTENT_OCR_CACHE_SIZE", DefaultOCRCacheSize))
	p.MaxUploadBytes = getIntEnv("APPTINTENT_MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)

	p.RateLimitRPS = getFloatEnv("APPTINTENT_RATE_LIMIT_RPS", DefaultRateLimitRPS)
	p.RateLimitBurst = int(getIntEnv("APPTINTENT_RATE_LIMIT_BURST", DefaultRateLimitBurst))
}

// Location returns the configured timezone. Call Validate first.
func (p *Profile) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validThreshold(v float64) bool {
	return v > 0 && v <= 1
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	if p.Timezone == "" {
		p.Timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		slog.Error("failed to load timezone", slog.String("timezone", p.Timezone), slog.String("error", err.Error()))
		return errors.Wrapf(err, "invalid timezone %s", p.Timezone)
	}

	if len(p.Departments) == 0 {
		p.Departments = append([]string(nil), DefaultDepartments...)
	}

	for name, v := range map[string]float64{
		"department fuzzy threshold": p.DepartmentFuzzyThreshold,
		"date fuzzy threshold":       p.DateFuzzyThreshold,
		"min department confidence":  p.MinDepartmentConfidence,
	} {
		if !validThreshold(v) {
			return errors.Errorf("%s must be in (0, 1], got %v", name, v)
		}
	}

	if p.OCRMaxConcurrency < 1 {
		p.OCRMaxConcurrency = DefaultOCRMaxConcurrency
	}
	if p.OCRCacheSize < 0 {
		p.OCRCacheSize = 0
	}
	if p.MaxUploadBytes <= 0 {
		p.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if p.OCRLanguages == "" {
		p.OCRLanguages = DefaultOCRLanguages
	}
	if p.RateLimitRPS <= 0 {
		return errors.Errorf("rate limit rps must be positive, got %v", p.RateLimitRPS)
	}
	if p.RateLimitBurst < 1 {
		p.RateLimitBurst = 1
	}

	return nil
}

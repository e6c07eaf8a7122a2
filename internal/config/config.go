package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	LogFile     string `envconfig:"LOG_FILE"`

	// Launch parameters, consumed once at startup
	RegistryURL string `envconfig:"REGISTRY_URL" default:"http://localhost:8080/registry"`
	Identifier  string `envconfig:"ENROLL_IDENTIFIER"`

	// Zero leaves registry requests bounded only by the caller
	RegistryTimeout time.Duration `envconfig:"REGISTRY_TIMEOUT"`

	// Detector
	Detector         string        `envconfig:"DETECTOR" default:"deepface"`
	DeepFaceURL      string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceModel    string        `envconfig:"DEEPFACE_MODEL" default:"Facenet"`
	DeepFaceDetector string        `envconfig:"DEEPFACE_DETECTOR" default:"ssd"`
	DetectorTimeout  time.Duration `envconfig:"DETECTOR_TIMEOUT" default:"10s"`

	// Camera
	CameraURL        string `envconfig:"CAMERA_URL"`
	CameraWidth      int    `envconfig:"CAMERA_WIDTH" default:"300"`
	CameraHeight     int    `envconfig:"CAMERA_HEIGHT" default:"480"`
	CameraFacingMode string `envconfig:"CAMERA_FACING_MODE" default:"user"`
	DisplayWidth     int    `envconfig:"DISPLAY_WIDTH"`
	DisplayHeight    int    `envconfig:"DISPLAY_HEIGHT"`

	// Enrollment
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"500ms"`
	ConflictPolicy string        `envconfig:"CONFLICT_POLICY" default:"confirm"`
	CachePolicy    string        `envconfig:"CACHE_POLICY" default:"strict"`

	// Local display cache
	CacheBackend string `envconfig:"CACHE_BACKEND" default:"file"`
	CacheDir     string `envconfig:"CACHE_DIR" default:".rekko-enroll"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the cross-field constraints envconfig tags cannot express
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 {
		return fmt.Errorf("camera dimensions must be positive, got %dx%d", c.CameraWidth, c.CameraHeight)
	}
	if c.CacheBackend == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when CACHE_BACKEND=postgres")
	}
	return nil
}

// DisplaySize returns the overlay surface size, defaulting to the camera size
func (c *Config) DisplaySize() (int, int) {
	w, h := c.DisplayWidth, c.DisplayHeight
	if w <= 0 {
		w = c.CameraWidth
	}
	if h <= 0 {
		h = c.CameraHeight
	}
	return w, h
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RegistryConfig configures the registry reference server
type RegistryConfig struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	LogFile     string `envconfig:"LOG_FILE"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
}

func LoadRegistry() (*RegistryConfig, error) {
	var cfg RegistryConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load registry config: %w", err)
	}
	return &cfg, nil
}

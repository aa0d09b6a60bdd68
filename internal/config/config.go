package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/api/option"

	"scripture/internal/logger"
)

// ErrMissingCredentials is returned by CheckCredentials when neither credential
// variable is present in the environment.
var ErrMissingCredentials = errors.New("GOOGLE_APPLICATION_CREDENTIALS environment variable is not set. " +
	"Please set it to the path of your service account JSON key file")

// OCR engines understood by the transcribe pipeline.
const (
	EngineDocumentAI = "documentai"
	EngineVision     = "vision"
)

// MaxRetriesLimit bounds OCR_MAX_RETRIES.
const MaxRetriesLimit = 20

// Ledger backends.
const (
	LedgerFile      = "file"
	LedgerFirestore = "firestore"
	LedgerNone      = "none"
)

// Config is built once per process and handed by value to every component.
type Config struct {
	// Google Cloud Configuration
	GoogleCloudProject     string
	GoogleCloudLocation    string
	DocumentAIProcessorID  string
	DocumentAIProcessorVer string
	CredentialsFile        string
	CredentialsJSON        string

	// Object store layout
	Bucket       string
	InputPrefix  string
	OutputPrefix string

	// Batch OCR behaviour
	Engine            string
	WaitTimeout       time.Duration
	MaxRetries        int
	BaseDelay         time.Duration
	MaxJitter         time.Duration
	UnitPause         time.Duration
	PerFileOutput     bool
	PrefixMode        bool
	StartFrom         int
	PreflightMaxPages int

	// Completed-unit ledger
	LedgerBackend    string
	LedgerPath       string
	LedgerCollection string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("GOOGLE_CLOUD_PROJECT", "")
	v.SetDefault("GOOGLE_CLOUD_LOCATION", "us")
	v.SetDefault("DOCUMENT_AI_PROCESSOR_ID", "")
	v.SetDefault("DOCUMENT_AI_PROCESSOR_VERSION", "")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "")
	v.SetDefault("GOOGLE_CREDENTIALS", "")
	v.SetDefault("GCS_BUCKET", "")
	v.SetDefault("GCS_INPUT_PREFIX", "주석/")
	v.SetDefault("GCS_OUTPUT_PREFIX", "text_annotations/")
	v.SetDefault("OCR_ENGINE", EngineDocumentAI)
	v.SetDefault("OCR_WAIT_TIMEOUT", 30*time.Minute)
	v.SetDefault("OCR_MAX_RETRIES", 5)
	v.SetDefault("OCR_BASE_DELAY", 30*time.Second)
	v.SetDefault("OCR_MAX_JITTER", 10*time.Second)
	v.SetDefault("OCR_UNIT_PAUSE", 10*time.Second)
	v.SetDefault("OCR_PER_FILE_OUTPUT", false)
	v.SetDefault("OCR_PREFIX_MODE", false)
	v.SetDefault("OCR_START_FROM", 0)
	v.SetDefault("PREFLIGHT_MAX_PAGES", 0)
	v.SetDefault("LEDGER_BACKEND", LedgerFile)
	v.SetDefault("LEDGER_PATH", "transcribe_ledger.json")
	v.SetDefault("LEDGER_COLLECTION", "transcribe_ledger")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_TIME_FORMAT", time.RFC3339)
	v.SetDefault("LOG_OUTPUT", "stderr")
}

// New returns a viper instance with defaults registered and the environment
// wired in.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

// Load builds a Config from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		GoogleCloudProject:     v.GetString("GOOGLE_CLOUD_PROJECT"),
		GoogleCloudLocation:    v.GetString("GOOGLE_CLOUD_LOCATION"),
		DocumentAIProcessorID:  v.GetString("DOCUMENT_AI_PROCESSOR_ID"),
		DocumentAIProcessorVer: v.GetString("DOCUMENT_AI_PROCESSOR_VERSION"),
		CredentialsFile:        v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		CredentialsJSON:        v.GetString("GOOGLE_CREDENTIALS"),
		Bucket:                 v.GetString("GCS_BUCKET"),
		InputPrefix:            DirPrefix(v.GetString("GCS_INPUT_PREFIX")),
		OutputPrefix:           DirPrefix(v.GetString("GCS_OUTPUT_PREFIX")),
		Engine:                 strings.ToLower(v.GetString("OCR_ENGINE")),
		WaitTimeout:            v.GetDuration("OCR_WAIT_TIMEOUT"),
		MaxRetries:             v.GetInt("OCR_MAX_RETRIES"),
		BaseDelay:              v.GetDuration("OCR_BASE_DELAY"),
		MaxJitter:              v.GetDuration("OCR_MAX_JITTER"),
		UnitPause:              v.GetDuration("OCR_UNIT_PAUSE"),
		PerFileOutput:          v.GetBool("OCR_PER_FILE_OUTPUT"),
		PrefixMode:             v.GetBool("OCR_PREFIX_MODE"),
		StartFrom:              v.GetInt("OCR_START_FROM"),
		PreflightMaxPages:      v.GetInt("PREFLIGHT_MAX_PAGES"),
		LedgerBackend:          strings.ToLower(v.GetString("LEDGER_BACKEND")),
		LedgerPath:             v.GetString("LEDGER_PATH"),
		LedgerCollection:       v.GetString("LEDGER_COLLECTION"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		LogFormat:              v.GetString("LOG_FORMAT"),
		LogTimeFormat:          v.GetString("LOG_TIME_FORMAT"),
		LogOutput:              v.GetString("LOG_OUTPUT"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Engine {
	case EngineDocumentAI, EngineVision:
	default:
		return fmt.Errorf("OCR_ENGINE must be %q or %q, got %q", EngineDocumentAI, EngineVision, c.Engine)
	}
	switch c.LedgerBackend {
	case LedgerFile, LedgerFirestore, LedgerNone:
	default:
		return fmt.Errorf("LEDGER_BACKEND must be one of file, firestore, none, got %q", c.LedgerBackend)
	}
	if c.MaxRetries < 0 || c.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("OCR_MAX_RETRIES must be between 0 and %d, got %d", MaxRetriesLimit, c.MaxRetries)
	}
	if c.PrefixMode && c.Engine == EngineVision {
		return fmt.Errorf("OCR_PREFIX_MODE is only supported by the %s engine", EngineDocumentAI)
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("OCR_WAIT_TIMEOUT must be positive")
	}
	return nil
}

// ValidateStorage checks the fields every bucket-facing command needs.
func (c Config) ValidateStorage() error {
	if c.Bucket == "" {
		return fmt.Errorf("GCS_BUCKET is required")
	}
	return nil
}

// ValidateOCR checks the fields the transcribe pipeline needs on top of storage.
func (c Config) ValidateOCR() error {
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.GoogleCloudProject == "" {
		return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required")
	}
	if c.Engine == EngineDocumentAI && c.DocumentAIProcessorID == "" {
		return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for the documentai engine")
	}
	if c.LedgerBackend == LedgerFirestore && c.LedgerCollection == "" {
		return fmt.Errorf("LEDGER_COLLECTION is required for the firestore ledger")
	}
	return nil
}

// CheckCredentials gates every cloud-facing entry point.
func (c Config) CheckCredentials() error {
	if c.CredentialsFile == "" && c.CredentialsJSON == "" {
		return ErrMissingCredentials
	}
	if c.CredentialsFile != "" {
		if _, err := os.Stat(c.CredentialsFile); err != nil {
			return fmt.Errorf("credentials file %s: %w", c.CredentialsFile, err)
		}
	}
	return nil
}

// ClientOptions returns the credential options shared by every Google client,
// preferring inline JSON over a file path. With neither set the clients fall
// back to Application Default Credentials.
func (c Config) ClientOptions() []option.ClientOption {
	switch {
	case c.CredentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(c.CredentialsJSON))}
	case c.CredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}
	default:
		return nil
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// DirPrefix makes sure a non-empty prefix ends with a slash and has no
// leading slash.
func DirPrefix(p string) string {
	p = strings.TrimPrefix(p, "/")
	if p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

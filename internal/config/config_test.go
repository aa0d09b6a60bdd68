package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine != EngineDocumentAI {
		t.Errorf("Engine = %q, want %q", cfg.Engine, EngineDocumentAI)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.BaseDelay != 30*time.Second {
		t.Errorf("BaseDelay = %v, want 30s", cfg.BaseDelay)
	}
	if cfg.MaxJitter != 10*time.Second {
		t.Errorf("MaxJitter = %v, want 10s", cfg.MaxJitter)
	}
	if cfg.WaitTimeout != 30*time.Minute {
		t.Errorf("WaitTimeout = %v, want 30m", cfg.WaitTimeout)
	}
	if cfg.InputPrefix != "주석/" {
		t.Errorf("InputPrefix = %q", cfg.InputPrefix)
	}
}

func TestLoadNormalizesPrefixes(t *testing.T) {
	cfg, err := Load(newViper(map[string]any{
		"GCS_INPUT_PREFIX":  "/scans",
		"GCS_OUTPUT_PREFIX": "out/text",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.InputPrefix != "scans/" {
		t.Errorf("InputPrefix = %q, want scans/", cfg.InputPrefix)
	}
	if cfg.OutputPrefix != "out/text/" {
		t.Errorf("OutputPrefix = %q, want out/text/", cfg.OutputPrefix)
	}
}

func TestDirPrefix(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"주석":        "주석/",
		"주석/":       "주석/",
		"/주석/01_창세기": "주석/01_창세기/",
	}
	for in, want := range tests {
		if got := DirPrefix(in); got != want {
			t.Errorf("DirPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"unknown engine", map[string]any{"OCR_ENGINE": "tesseract"}},
		{"unknown ledger", map[string]any{"LEDGER_BACKEND": "redis"}},
		{"negative retries", map[string]any{"OCR_MAX_RETRIES": -1}},
		{"too many retries", map[string]any{"OCR_MAX_RETRIES": MaxRetriesLimit + 1}},
		{"zero timeout", map[string]any{"OCR_WAIT_TIMEOUT": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(newViper(tt.overrides)); err == nil {
				t.Fatalf("Load() expected error")
			}
		})
	}
}

func TestValidateOCR(t *testing.T) {
	cfg, err := Load(newViper(map[string]any{"GCS_BUCKET": "theologpt"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.ValidateStorage(); err != nil {
		t.Fatalf("ValidateStorage() error = %v", err)
	}
	if err := cfg.ValidateOCR(); err == nil {
		t.Fatalf("ValidateOCR() expected missing project error")
	}

	cfg.GoogleCloudProject = "theologpt"
	if err := cfg.ValidateOCR(); err == nil {
		t.Fatalf("ValidateOCR() expected missing processor error")
	}

	cfg.Engine = EngineVision
	if err := cfg.ValidateOCR(); err != nil {
		t.Fatalf("ValidateOCR() vision engine error = %v", err)
	}
}

func TestCheckCredentials(t *testing.T) {
	var cfg Config
	if err := cfg.CheckCredentials(); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("CheckCredentials() = %v, want ErrMissingCredentials", err)
	}

	cfg.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	if err := cfg.CheckCredentials(); err == nil {
		t.Fatalf("CheckCredentials() expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.CredentialsFile = path
	if err := cfg.CheckCredentials(); err != nil {
		t.Fatalf("CheckCredentials() error = %v", err)
	}

	cfg = Config{CredentialsJSON: `{"type":"service_account"}`}
	if err := cfg.CheckCredentials(); err != nil {
		t.Fatalf("CheckCredentials() inline error = %v", err)
	}
}

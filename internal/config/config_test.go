package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_PORT", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("VISION_MODEL", "")
	t.Setenv("VISION_TIMEOUT_SECONDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port 8080, got %q", cfg.APIPort)
	}
	if cfg.NATSSubject != "documents.uploaded" {
		t.Fatalf("expected default subject documents.uploaded, got %q", cfg.NATSSubject)
	}
	if cfg.VisionModel != "llama3.2-vision:11b" {
		t.Fatalf("expected default vision model, got %q", cfg.VisionModel)
	}
	if cfg.VisionTimeoutSeconds != 120 {
		t.Fatalf("expected default vision timeout 120, got %d", cfg.VisionTimeoutSeconds)
	}
	if cfg.WorkerMetricsPort != "9090" {
		t.Fatalf("expected default worker metrics port 9090, got %q", cfg.WorkerMetricsPort)
	}
}

func TestLoadParsesEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_PORT", "9999")
	t.Setenv("VISION_REQUESTS_PER_MIN", "5")
	t.Setenv("VISION_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("expected api port override, got %q", cfg.APIPort)
	}
	if cfg.VisionRequestsPerMin != 5 {
		t.Fatalf("expected vision rpm 5, got %d", cfg.VisionRequestsPerMin)
	}
	if cfg.VisionTimeoutSeconds != 120 {
		t.Fatalf("unparseable int override must keep the default, got %d", cfg.VisionTimeoutSeconds)
	}
}

func TestLoadAppliesConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_port: \"7777\"\nnats_subject: \"docs.in\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "8888")
	t.Setenv("NATS_SUBJECT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NATSSubject != "docs.in" {
		t.Fatalf("expected file value for subject, got %q", cfg.NATSSubject)
	}
	if cfg.APIPort != "8888" {
		t.Fatalf("expected env to override file, got %q", cfg.APIPort)
	}
}

func TestLoadRejectsBrokenConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_port: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "UPLOAD_DIR", "AUDIO_DIR", "ARTIFACT_DIR",
		"RUN_TIMEOUT", "TRANSLATE_CONCURRENCY", "CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.UploadDir != DefaultUploadDir || cfg.AudioDir != DefaultAudioDir || cfg.ArtifactDir != DefaultArtifactDir {
		t.Errorf("dirs = %q %q %q", cfg.UploadDir, cfg.AudioDir, cfg.ArtifactDir)
	}
	if cfg.RunTimeout != DefaultRunTimeout {
		t.Errorf("RunTimeout = %v", cfg.RunTimeout)
	}
	if cfg.TranslateConcurrency != DefaultTranslateConcurrency {
		t.Errorf("TranslateConcurrency = %d", cfg.TranslateConcurrency)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("UPLOAD_DIR", "/data/uploads")
	t.Setenv("RETAIN_MEDIA", "true")
	t.Setenv("UPLOAD_MAX_BYTES", "1048576")
	t.Setenv("TRANSLATE_CONCURRENCY", "8")
	t.Setenv("RUN_TIMEOUT", "5m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("S3_PREFIX", "/runs/artifacts/")
	t.Setenv("CORS_ORIGINS", "https://app.example.com,https://staging.example.com")

	cfg := Load()

	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.UploadDir != "/data/uploads" {
		t.Errorf("UploadDir = %q", cfg.UploadDir)
	}
	if !cfg.RetainMedia {
		t.Error("RetainMedia not set")
	}
	if cfg.MaxUploadBytes != 1048576 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.TranslateConcurrency != 8 {
		t.Errorf("TranslateConcurrency = %d", cfg.TranslateConcurrency)
	}
	if cfg.RunTimeout != 5*time.Minute {
		t.Errorf("RunTimeout = %v", cfg.RunTimeout)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.S3Prefix != "runs/artifacts/" {
		t.Errorf("S3Prefix = %q", cfg.S3Prefix)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TRANSLATE_CONCURRENCY", "-3")
	t.Setenv("RUN_TIMEOUT", "soon")

	cfg := Load()

	if cfg.TranslateConcurrency != DefaultTranslateConcurrency {
		t.Errorf("negative concurrency not rejected: %d", cfg.TranslateConcurrency)
	}
	if cfg.RunTimeout != DefaultRunTimeout {
		t.Errorf("unparseable timeout not rejected: %v", cfg.RunTimeout)
	}
}

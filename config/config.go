package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for the STT pipeline. Most can be overridden via environment
// variables; see Load.
const (
	// DefaultUploadDir is where raw uploaded videos are persisted.
	DefaultUploadDir = "uploaded_videos"

	// DefaultAudioDir is where extracted waveform files are written.
	DefaultAudioDir = "extracted_audio"

	// DefaultArtifactDir is where transcript and translation artifacts land.
	DefaultArtifactDir = "artifacts"

	// DefaultRunTimeout bounds a single pipeline run end to end.
	DefaultRunTimeout = 30 * time.Minute

	// DefaultTranslateConcurrency limits in-flight translation calls per run.
	DefaultTranslateConcurrency = 4

	// TranscriptHeader is the first line of the transcript artifact.
	TranscriptHeader = "[한글번역]"

	// TranslationHeader is the first line of the translation artifact.
	TranslationHeader = "[영어번역]"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Addr string

	UploadDir   string
	AudioDir    string
	ArtifactDir string

	// RetainMedia keeps the uploaded video and extracted audio after a run
	// instead of deleting them.
	RetainMedia bool

	// MaxUploadBytes caps a single uploaded video; zero means unlimited.
	MaxUploadBytes int64

	WhisperURL      string
	WhisperModel    string
	WhisperLanguage string

	CohereAPIKey string
	CohereModel  string
	SourceLang   string
	TargetLang   string

	TranslateConcurrency int
	RunTimeout           time.Duration

	// RedisAddr enables the Redis-backed user store when non-empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// KafkaBrokers enables run event publishing when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// S3Bucket enables artifact mirroring when non-empty.
	S3Bucket       string
	S3Region       string
	S3Prefix       string
	S3UsePathStyle bool

	CORSOrigins []string
}

// Load builds a Config from environment variables, falling back to defaults.
func Load() Config {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	return Config{
		Addr: addr,

		UploadDir:      GetEnvOrDefault("UPLOAD_DIR", DefaultUploadDir),
		AudioDir:       GetEnvOrDefault("AUDIO_DIR", DefaultAudioDir),
		ArtifactDir:    GetEnvOrDefault("ARTIFACT_DIR", DefaultArtifactDir),
		RetainMedia:    envBool("RETAIN_MEDIA", false),
		MaxUploadBytes: envInt64("UPLOAD_MAX_BYTES", DefaultMaxUploadBytes),

		WhisperURL:      GetEnvOrDefault("WHISPER_URL", "http://localhost:9000"),
		WhisperModel:    GetEnvOrDefault("WHISPER_MODEL", "large"),
		WhisperLanguage: GetEnvOrDefault("WHISPER_LANGUAGE", "ko"),

		CohereAPIKey: strings.TrimSpace(os.Getenv("COHERE_API_KEY")),
		CohereModel:  GetEnvOrDefault("COHERE_MODEL", "command-r-plus"),
		SourceLang:   GetEnvOrDefault("SOURCE_LANG", "Korean"),
		TargetLang:   GetEnvOrDefault("TARGET_LANG", "English"),

		TranslateConcurrency: envInt("TRANSLATE_CONCURRENCY", DefaultTranslateConcurrency),
		RunTimeout:           envDuration("RUN_TIMEOUT", DefaultRunTimeout),

		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   GetEnvOrDefault("KAFKA_TOPIC", "voxbridge.runs"),

		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Prefix:       normalizePrefix(os.Getenv("S3_PREFIX")),
		S3UsePathStyle: envBool("S3_USE_PATH_STYLE", false),

		CORSOrigins: splitListOrDefault(os.Getenv("CORS_ORIGINS"), []string{"http://localhost:3000"}),
	}
}

// GetEnvOrDefault returns the env value for key, or def when unset/empty.
func GetEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitListOrDefault(v string, def []string) []string {
	if out := splitList(v); len(out) > 0 {
		return out
	}
	return def
}

func normalizePrefix(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	return strings.Trim(v, "/") + "/"
}

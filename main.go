package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"voxbridge/api"
	"voxbridge/common"
	"voxbridge/config"
	"voxbridge/events"
	"voxbridge/logger"
	"voxbridge/media"
	"voxbridge/pipeline"
	"voxbridge/store"
	"voxbridge/transcribe"
	"voxbridge/translate"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("voxbridge")

	if cfg.CohereAPIKey == "" {
		log.Fatal().Msg("COHERE_API_KEY is required")
	}

	for _, dir := range []string{cfg.UploadDir, cfg.AudioDir, cfg.ArtifactDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create data directory")
		}
	}

	extractor := media.NewExtractor(logger.WithComponent(log, "media"))

	// The whisper client is shared across concurrent runs; it holds no
	// per-call state.
	transcriber := transcribe.NewWhisperClient(
		cfg.WhisperURL, cfg.WhisperModel, cfg.WhisperLanguage,
		logger.WithComponent(log, "transcribe"),
	)

	provider := translate.NewCohereTranslator(cfg.CohereAPIKey, cfg.CohereModel, cfg.SourceLang, cfg.TargetLang)
	translator := translate.NewTranslator(provider, cfg.TranslateConcurrency, logger.WithComponent(log, "translate"))

	runner := pipeline.NewRunner(cfg, extractor, transcriber, translator, logger.WithComponent(log, "pipeline"))

	// Optional artifact mirror (uploads are skipped if not configured)
	if cfg.S3Bucket != "" {
		mirror, err := common.NewArtifactMirror(context.Background(), common.MirrorConfig{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Prefix:       cfg.S3Prefix,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to init S3 client; artifact mirroring disabled")
		} else {
			runner.Mirror = mirror
			log.Info().Str("bucket", cfg.S3Bucket).Msg("artifact mirroring enabled")
		}
	} else {
		log.Info().Msg("S3 not configured; artifact mirroring disabled")
	}

	// Optional run event publishing
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger.WithComponent(log, "events"))
		if err != nil {
			log.Warn().Err(err).Msg("failed to init Kafka producer; run events disabled")
		} else {
			defer publisher.Close()
			runner.Events = publisher
			log.Info().Str("topic", cfg.KafkaTopic).Msg("run event publishing enabled")
		}
	} else {
		log.Info().Msg("Kafka not configured; run events disabled")
	}

	var users store.UserStore
	if cfg.RedisAddr != "" {
		redisStore, err := store.NewRedisUserStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect Redis; using in-memory user store")
			users = store.NewMemoryUserStore()
		} else {
			defer redisStore.Close()
			users = redisStore
			log.Info().Str("addr", cfg.RedisAddr).Msg("Redis user store enabled")
		}
	} else {
		log.Info().Msg("Redis not configured; using in-memory user store")
		users = store.NewMemoryUserStore()
	}

	r := api.NewRouter(cfg, runner, users, logger.WithComponent(log, "api"))

	log.Info().Str("addr", cfg.Addr).Msg("starting API server")
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// Package pipeline sequences one upload through audio extraction,
// transcription, translation and artifact persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"voxbridge/artifact"
	"voxbridge/common"
	"voxbridge/config"
	"voxbridge/events"
	"voxbridge/media"
	"voxbridge/transcribe"
	"voxbridge/translate"
)

// RunResult is the successful outcome of one pipeline run. Transcription
// and Translation are the artifact files' full contents, read back from
// disk so the response always matches what was persisted.
type RunResult struct {
	RunID           string
	Filename        string
	Transcription   string
	Translation     string
	SegmentCount    int
	FailedSegments  int
	TranscriptPath  string
	TranslationPath string
}

// AudioExtractor pulls the audio track out of a stored video file.
// *media.Extractor is the production implementation.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath, destDir string) (string, error)
}

var _ AudioExtractor = (*media.Extractor)(nil)

// Runner owns the pipeline's dependencies. Construct once at startup; a
// Runner is safe for concurrent runs because every run works inside its own
// run-ID directory.
type Runner struct {
	cfg         config.Config
	extractor   AudioExtractor
	transcriber transcribe.Provider
	translator  *translate.Translator
	log         zerolog.Logger

	// Optional post-run steps; nil when not configured.
	Mirror *common.ArtifactMirror
	Events *events.Publisher
}

func NewRunner(cfg config.Config, extractor AudioExtractor, transcriber transcribe.Provider, translator *translate.Translator, log zerolog.Logger) *Runner {
	return &Runner{
		cfg:         cfg,
		extractor:   extractor,
		transcriber: transcriber,
		translator:  translator,
		log:         log,
	}
}

// Run executes the full pipeline for one uploaded video. filename is the
// client-supplied name; it is used only for the base name inside the run's
// private directories, never as a path.
func (r *Runner) Run(ctx context.Context, filename string, content io.Reader) (*RunResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	runID := uuid.NewString()
	log := r.log.With().Str("run_id", runID).Logger()
	log.Info().Str("filename", filename).Msg("pipeline run started")

	res, err := r.run(ctx, log, runID, filename, content)
	if err != nil {
		var stageErr *StageError
		stage := ""
		if errors.As(err, &stageErr) {
			stage = stageErr.Stage
		}
		log.Error().Err(err).Str("stage", stage).Msg("pipeline run failed")
		r.publish(log, events.RunEvent{
			RunID:      runID,
			Filename:   filename,
			Status:     "failed",
			Stage:      stage,
			Error:      err.Error(),
			FinishedAt: time.Now().UTC(),
		})
		return nil, err
	}

	log.Info().
		Int("segments", res.SegmentCount).
		Int("failed_segments", res.FailedSegments).
		Msg("pipeline run completed")

	r.mirrorArtifacts(log, res)
	r.publish(log, events.RunEvent{
		RunID:          runID,
		Filename:       filename,
		Status:         "completed",
		SegmentCount:   res.SegmentCount,
		FailedSegments: res.FailedSegments,
		FinishedAt:     time.Now().UTC(),
	})
	return res, nil
}

func (r *Runner) run(ctx context.Context, log zerolog.Logger, runID, filename string, content io.Reader) (*RunResult, error) {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return nil, fail(StageUpload, &ValidationError{Reason: "missing filename"})
	}

	videoDir := filepath.Join(r.cfg.UploadDir, runID)
	audioDir := filepath.Join(r.cfg.AudioDir, runID)
	artifactDir := filepath.Join(r.cfg.ArtifactDir, runID)

	defer func() {
		if !r.cfg.RetainMedia {
			_ = os.RemoveAll(videoDir)
			_ = os.RemoveAll(audioDir)
		}
	}()

	videoPath, err := persistUpload(videoDir, base, content, r.cfg.MaxUploadBytes)
	if err != nil {
		return nil, fail(StageUpload, err)
	}
	log.Info().Str("video", videoPath).Msg("video persisted")

	audioPath, err := r.extractor.ExtractAudio(ctx, videoPath, audioDir)
	if err != nil {
		return nil, fail(StageAudioExtraction, err)
	}
	log.Info().Str("audio", audioPath).Msg("audio extracted")

	segments, err := r.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fail(StageTranscription, &TranscriptionError{Err: err})
	}
	log.Info().Int("segments", len(segments)).Msg("transcription complete")

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	transcriptPath := filepath.Join(artifactDir, stem+"_transcription.txt")
	translationPath := filepath.Join(artifactDir, stem+"_translation.txt")

	err = artifact.Write(transcriptPath, config.TranscriptHeader, segments,
		func(s transcribe.Segment) (float64, float64, string) { return s.Start, s.End, s.Text })
	if err != nil {
		_ = os.RemoveAll(artifactDir)
		return nil, fail(StageTranscriptWrite, &PersistenceError{Path: transcriptPath, Err: err})
	}

	results := r.translator.TranslateSegments(ctx, segments)
	if err := ctx.Err(); err != nil {
		// Expired mid-batch: the remaining sentinels reflect the timeout,
		// not real per-segment outcomes. Abort instead of degrading.
		_ = os.RemoveAll(artifactDir)
		return nil, fail(StageTranslation, err)
	}
	failedSegments := 0
	for _, res := range results {
		if res.Failed {
			failedSegments++
		}
	}

	err = artifact.Write(translationPath, config.TranslationHeader, results,
		func(t translate.Result) (float64, float64, string) { return t.Start, t.End, t.Display() })
	if err != nil {
		_ = os.RemoveAll(artifactDir)
		return nil, fail(StageTranslationWrite, &PersistenceError{Path: translationPath, Err: err})
	}

	transcription, err := artifact.Read(transcriptPath)
	if err != nil {
		return nil, fail(StageResponse, &PersistenceError{Path: transcriptPath, Err: err})
	}
	translation, err := artifact.Read(translationPath)
	if err != nil {
		return nil, fail(StageResponse, &PersistenceError{Path: translationPath, Err: err})
	}

	return &RunResult{
		RunID:           runID,
		Filename:        filename,
		Transcription:   transcription,
		Translation:     translation,
		SegmentCount:    len(segments),
		FailedSegments:  failedSegments,
		TranscriptPath:  transcriptPath,
		TranslationPath: translationPath,
	}, nil
}

func persistUpload(dir, base string, content io.Reader, maxBytes int64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &PersistenceError{Path: dir, Err: err}
	}

	if maxBytes > 0 {
		content = io.LimitReader(content, maxBytes+1)
	}

	path := filepath.Join(dir, base)
	f, err := os.Create(path)
	if err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}

	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", &PersistenceError{Path: path, Err: err}
	}
	if n == 0 {
		_ = os.Remove(path)
		return "", &ValidationError{Reason: "empty file"}
	}
	if maxBytes > 0 && n > maxBytes {
		_ = os.Remove(path)
		return "", &ValidationError{Reason: fmt.Sprintf("file exceeds %d byte limit", maxBytes)}
	}
	return path, nil
}

// mirrorArtifacts uploads both artifacts when a mirror is configured.
// Best effort: failures are logged and never fail the run.
func (r *Runner) mirrorArtifacts(log zerolog.Logger, res *RunResult) {
	if r.Mirror == nil {
		log.Debug().Msg("artifact mirror not configured; skipping")
		return
	}

	for _, path := range []string{res.TranscriptPath, res.TranslationPath} {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		key, err := r.Mirror.MirrorFile(ctx, res.RunID, path)
		cancel()

		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("artifact mirror failed")
			continue
		}
		log.Debug().Str("key", key).Msg("artifact mirrored")
	}
}

func (r *Runner) publish(log zerolog.Logger, event events.RunEvent) {
	if r.Events == nil {
		return
	}
	if err := r.Events.Publish(event); err != nil {
		log.Warn().Err(err).Msg("run event publish failed")
	}
}

func fail(stage string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("timeout: %w", err)
	}
	return &StageError{Stage: stage, Err: err}
}

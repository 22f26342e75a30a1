package pipeline

import "fmt"

// Stage names surfaced to callers when a run fails.
const (
	StageUpload           = "upload"
	StageAudioExtraction  = "audio-extraction"
	StageTranscription    = "transcription"
	StageTranscriptWrite  = "transcript-write"
	StageTranslation      = "translation"
	StageTranslationWrite = "translation-write"
	StageResponse         = "response"
)

// StageError is the single fatal error shape a run can return: the stage
// that failed plus the underlying cause. Per-segment translation failures
// never become a StageError; they degrade the translation artifact locally.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ValidationError reports a malformed upload, e.g. an empty file or an
// unusable filename. Fails the run before any stage work happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid upload: " + e.Reason }

// TranscriptionError wraps a speech-to-text backend failure.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return fmt.Sprintf("transcription: %v", e.Err) }
func (e *TranscriptionError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed artifact or upload write/read.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persist %s: %v", e.Path, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

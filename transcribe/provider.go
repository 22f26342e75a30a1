// Package transcribe defines the speech-to-text provider contract and the
// whisper-server backend used by the pipeline.
package transcribe

import "context"

// Segment is a time-aligned portion of a transcript, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Provider is a speech-to-text backend. A call is atomic: either the full
// ordered segment sequence comes back or an error does.
type Provider interface {
	Transcribe(ctx context.Context, audioPath string) ([]Segment, error)
}

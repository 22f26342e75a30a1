// Package media extracts the audio track of an uploaded video into a
// waveform file that the transcription backend can consume.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"voxbridge/config"
)

// DecodeError reports a video that ffmpeg could not decode into audio,
// typically because the container is unreadable or has no audio track.
type DecodeError struct {
	Path   string
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("decode %s: no usable audio", e.Path)
	}
	return fmt.Sprintf("decode %s: %s", e.Path, e.Detail)
}

// Extractor turns video containers into 16 kHz mono WAV files.
type Extractor struct {
	log zerolog.Logger
}

func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// AudioPath derives the waveform filename for a video: same base name,
// extension replaced with .wav, placed under destDir.
func AudioPath(videoPath, destDir string) string {
	base := filepath.Base(videoPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(destDir, stem+"."+config.AudioFormat)
}

// ExtractAudio decodes the audio track of videoPath into a WAV file under
// destDir and returns the written path. The ffmpeg process is killed if ctx
// expires, so no decoder handle outlives the run.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	audioPath := AudioPath(videoPath, destDir)

	var stderr bytes.Buffer
	cmd := ffmpeg.Input(videoPath).
		Output(audioPath, ffmpeg.KwArgs{
			"vn": "",
			"ac": config.AudioChannels,
			"ar": config.AudioSampleRate,
			"f":  config.AudioFormat,
		}).
		OverWriteOutput().
		WithErrorOutput(&stderr).
		Compile()

	if err := cmd.Start(); err != nil {
		return "", &DecodeError{Path: videoPath, Detail: err.Error()}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		_ = os.Remove(audioPath)
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			_ = os.Remove(audioPath)
			return "", &DecodeError{Path: videoPath, Detail: stderrTail(stderr.String())}
		}
	}

	if fi, err := os.Stat(audioPath); err != nil || fi.Size() == 0 {
		_ = os.Remove(audioPath)
		return "", &DecodeError{Path: videoPath, Detail: "ffmpeg produced no audio output"}
	}

	e.log.Debug().Str("video", videoPath).Str("audio", audioPath).Msg("audio extracted")
	return audioPath, nil
}

// stderrTail keeps the last few lines of ffmpeg output, which carry the
// actual failure reason.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "ffmpeg failed"
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}

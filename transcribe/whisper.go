package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// WhisperClient talks to a whisper server exposing the OpenAI-compatible
// /v1/audio/transcriptions endpoint. The client is constructed once at
// startup and shared across runs; it holds no per-call state.
type WhisperClient struct {
	baseURL  string
	model    string
	language string
	hc       *http.Client
	log      zerolog.Logger
}

func NewWhisperClient(baseURL, model, language string, log zerolog.Logger) *WhisperClient {
	return &WhisperClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		language: language,
		// Transcription time scales with audio duration; the per-run
		// context is the real bound.
		hc:  &http.Client{Timeout: 60 * time.Minute},
		log: log,
	}
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
}

// Transcribe uploads the audio file and returns its timed segments, ordered
// by start time.
func (w *WhisperClient) Transcribe(ctx context.Context, audioPath string) ([]Segment, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", w.model); err != nil {
		return nil, err
	}
	if w.language != "" {
		if err := mw.WriteField("language", w.language); err != nil {
			return nil, err
		}
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	if err := mw.WriteField("timestamp_granularities[]", "segment"); err != nil {
		return nil, err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("whisper http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var wr whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	segments := normalizeSegments(wr)
	w.log.Debug().Int("segments", len(segments)).Str("audio", audioPath).Msg("transcription done")
	return segments, nil
}

// normalizeSegments converts the wire segments into the ordered, trimmed
// form the pipeline relies on: start non-decreasing, start <= end.
func normalizeSegments(wr whisperResponse) []Segment {
	segments := make([]Segment, 0, len(wr.Segments))
	for _, s := range wr.Segments {
		end := s.End
		if end < s.Start {
			end = s.Start
		}
		segments = append(segments, Segment{
			Start: s.Start,
			End:   end,
			Text:  strings.TrimSpace(s.Text),
		})
	}

	// Models emit segments in order already; keep equal starts stable.
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	// Some servers return only the full text when the audio is very short.
	if len(segments) == 0 && strings.TrimSpace(wr.Text) != "" {
		segments = append(segments, Segment{Text: strings.TrimSpace(wr.Text)})
	}
	return segments
}

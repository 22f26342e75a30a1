package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voxbridge/config"
	"voxbridge/media"
	"voxbridge/pipeline"
	"voxbridge/store"
	"voxbridge/transcribe"
	"voxbridge/translate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeExtractor struct {
	fail bool
}

func (f *fakeExtractor) ExtractAudio(_ context.Context, videoPath, destDir string) (string, error) {
	if f.fail {
		return "", &media.DecodeError{Path: videoPath, Detail: "no audio stream"}
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	path := media.AudioPath(videoPath, destDir)
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeTranscriber struct {
	segments []transcribe.Segment
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) ([]transcribe.Segment, error) {
	return f.segments, nil
}

type echoProvider struct{}

func (echoProvider) Translate(_ context.Context, text string) (string, error) {
	return "T:" + text, nil
}

func newTestRouter(t *testing.T, extractor pipeline.AudioExtractor) *gin.Engine {
	t.Helper()
	root := t.TempDir()
	cfg := config.Config{
		UploadDir:            filepath.Join(root, "uploads"),
		AudioDir:             filepath.Join(root, "audio"),
		ArtifactDir:          filepath.Join(root, "artifacts"),
		TranslateConcurrency: 2,
		RunTimeout:           time.Minute,
		CORSOrigins:          []string{"http://localhost:3000"},
	}
	transcriber := &fakeTranscriber{segments: []transcribe.Segment{
		{Start: 0, End: 2.5, Text: "안녕하세요"},
	}}
	translator := translate.NewTranslator(echoProvider{}, cfg.TranslateConcurrency, zerolog.Nop())
	runner := pipeline.NewRunner(cfg, extractor, transcriber, translator, zerolog.Nop())
	return NewRouter(cfg, runner, store.NewMemoryUserStore(), zerolog.Nop())
}

func multipartVideo(t *testing.T, field, filename, contents string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(contents)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestSTTVideoSuccess(t *testing.T) {
	r := newTestRouter(t, &fakeExtractor{})

	body, contentType := multipartVideo(t, "file", "clip.mp4", "videobytes")
	req := httptest.NewRequest(http.MethodPost, "/stt-video", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp STTResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Transcription, config.TranscriptHeader+"\n") {
		t.Errorf("transcription missing header: %q", resp.Transcription)
	}
	if !strings.Contains(resp.Translation, "[0.00s - 2.50s] T:안녕하세요") {
		t.Errorf("translation payload = %q", resp.Translation)
	}
	if resp.RunID == "" || resp.Filename != "clip.mp4" || resp.SegmentCount != 1 {
		t.Errorf("metadata = %+v", resp)
	}
}

func TestSTTVideoMissingFile(t *testing.T) {
	r := newTestRouter(t, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodPost, "/stt-video", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSTTVideoEmptyUpload(t *testing.T) {
	r := newTestRouter(t, &fakeExtractor{})

	body, contentType := multipartVideo(t, "file", "clip.mp4", "")
	req := httptest.NewRequest(http.MethodPost, "/stt-video", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["stage"] != pipeline.StageUpload {
		t.Errorf("stage = %q, want %q", resp["stage"], pipeline.StageUpload)
	}
}

func TestSTTVideoExtractionFailure(t *testing.T) {
	r := newTestRouter(t, &fakeExtractor{fail: true})

	body, contentType := multipartVideo(t, "file", "silent.mp4", "videobytes")
	req := httptest.NewRequest(http.MethodPost, "/stt-video", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["stage"] != pipeline.StageAudioExtraction {
		t.Errorf("stage = %q, want %q", resp["stage"], pipeline.StageAudioExtraction)
	}
	if resp["error"] == "" {
		t.Error("error message missing")
	}
}

func TestUploadVideo(t *testing.T) {
	r := newTestRouter(t, &fakeExtractor{})

	body, contentType := multipartVideo(t, "file", "clip.mp4", "videobytes")
	req := httptest.NewRequest(http.MethodPost, "/upload-video", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["upload_id"] == "" {
		t.Error("upload_id missing")
	}
	if !strings.Contains(resp["message"], "clip.mp4") {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestUserRoutes(t *testing.T) {
	r := newTestRouter(t, &fakeExtractor{})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/users", `{"username":"alice","password":"pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created store.User
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Username != "alice" || created.ID == 0 {
		t.Errorf("created user = %+v", created)
	}

	if w := do(http.MethodPost, "/users", `{"username":"alice","password":"other"}`); w.Code != http.StatusBadRequest {
		t.Errorf("duplicate create status = %d, want 400", w.Code)
	}

	if w := do(http.MethodPost, "/users", `{"username":"nopassword"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing password status = %d, want 400", w.Code)
	}

	w = do(http.MethodGet, "/users", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var users []store.User
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Errorf("list = %+v", users)
	}

	if w := do(http.MethodGet, "/users/1", ""); w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}
	if w := do(http.MethodGet, "/users/999", ""); w.Code != http.StatusNotFound {
		t.Errorf("get missing status = %d, want 404", w.Code)
	}
	if w := do(http.MethodGet, "/users/abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("get bad id status = %d, want 400", w.Code)
	}
}

func TestHealthRoutes(t *testing.T) {
	r := newTestRouter(t, &fakeExtractor{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Hello Root!") {
		t.Errorf("root route: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("health route: %d %s", w.Code, w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Allow-Origin %q", got)
	}
}

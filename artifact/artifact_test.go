package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testSegment struct {
	start, end float64
	text       string
}

func segmentLine(s testSegment) (float64, float64, string) {
	return s.start, s.end, s.text
}

func TestFormatLine(t *testing.T) {
	tests := []struct {
		start, end float64
		text       string
		want       string
	}{
		{0, 2.5, "hello", "[0.00s - 2.50s] hello"},
		{1.234, 5.678, "안녕하세요", "[1.23s - 5.68s] 안녕하세요"},
		{10, 10, "", "[10.00s - 10.00s] "},
	}
	for _, tt := range tests {
		if got := FormatLine(tt.start, tt.end, tt.text); got != tt.want {
			t.Errorf("FormatLine(%v, %v, %q) = %q, want %q", tt.start, tt.end, tt.text, got, tt.want)
		}
	}
}

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "video_transcription.txt")
	segments := []testSegment{
		{0, 2.5, "hello"},
		{2.5, 4.0, "world"},
	}

	if err := Write(path, "[한글번역]", segments, segmentLine); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := "[한글번역]\n[0.00s - 2.50s] hello\n[2.50s - 4.00s] world\n"
	if got != want {
		t.Errorf("artifact contents = %q, want %q", got, want)
	}
}

func TestWriteLineCountMatchesSegments(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		path := filepath.Join(t.TempDir(), "a.txt")
		segments := make([]testSegment, n)
		if err := Write(path, "header", segments, segmentLine); err != nil {
			t.Fatalf("Write: %v", err)
		}
		got, err := Read(path)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
		if len(lines) != n+1 {
			t.Errorf("n=%d: got %d lines, want %d (header + segments)", n, len(lines), n+1)
		}
	}
}

func TestWriteOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("stale contents that are much longer than the replacement"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Write(path, "h", []testSegment{{0, 1, "x"}}, segmentLine); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "h\n[0.00s - 1.00s] x\n" {
		t.Errorf("overwrite left %q", got)
	}
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := Write(path, "h", []testSegment{{0, 1, "x"}}, segmentLine); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.txt" {
		t.Errorf("directory contains %v, want only a.txt", entries)
	}
}

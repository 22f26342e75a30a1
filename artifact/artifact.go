// Package artifact writes and reads the persisted transcript and
// translation text files.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FormatLine renders one segment line. Timestamps are fixed at two decimal
// places; this format is part of the artifact contract.
func FormatLine(start, end float64, text string) string {
	return fmt.Sprintf("[%.2fs - %.2fs] %s", start, end, text)
}

// Write serializes a header line plus one formatted line per item to path.
// The file is written to a temp sibling and renamed into place, so a reader
// never sees a partially written artifact.
func Write[T any](path, header string, items []T, line func(T) (start, end float64, text string)) error {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, item := range items {
		start, end, text := line(item)
		b.WriteString(FormatLine(start, end, text))
		b.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

// Read returns the full artifact contents.
func Read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	return string(b), nil
}

package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// fileRecord is the on-disk form, read by probes and humans.
type fileRecord struct {
	Status
	UpdatedAt time.Time `json:"updated_at"`
}

// Writer persists the latest condition to a file. The write is atomic so a
// concurrent reader never sees a torn record.
type Writer struct {
	Path string

	now func() time.Time
}

func NewWriter(path string) *Writer {
	return &Writer{Path: path, now: time.Now}
}

// Write replaces the persisted condition.
func (w *Writer) Write(s Status) error {
	record := fileRecord{Status: s, UpdatedAt: w.now().UTC()}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(w.Path), 0o755); err != nil {
		return fmt.Errorf("create status directory: %w", err)
	}
	tmp := w.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write status file: %w", err)
	}
	if err := os.Rename(tmp, w.Path); err != nil {
		return fmt.Errorf("replace status file: %w", err)
	}
	return nil
}

package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"poagov/internal/model"
)

// JSONLFile appends JSON records to a file, one per line.
type JSONLFile struct {
	path string
	mu   sync.Mutex
}

// NewJSONLFile returns a JSONLFile for path. The file is created on first Append.
func NewJSONLFile(path string) *JSONLFile {
	return &JSONLFile{path: path}
}

// Append writes records as JSON lines.
func (f *JSONLFile) Append(records ...interface{}) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(f.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// ArchiveSink appends every notification to a JSONL file (--archive).
type ArchiveSink struct {
	file *JSONLFile
}

// NewArchiveSink returns an ArchiveSink appending to path.
func NewArchiveSink(path string) *ArchiveSink {
	return &ArchiveSink{file: NewJSONLFile(path)}
}

// Dispatch appends n as one JSON line.
func (s *ArchiveSink) Dispatch(ctx context.Context, n model.Notification) error {
	if err := s.file.Append(n); err != nil {
		return fmt.Errorf("archive %s: %w", n.Key(), err)
	}
	return nil
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileNotifier appends events as JSON lines to a local file, one record per
// line. The file is opened per write so external log rotation is safe.
type FileNotifier struct {
	mu   sync.Mutex
	path string
}

// NewFileNotifier creates a notifier appending to the file at path.
func NewFileNotifier(path string) *FileNotifier {
	return &FileNotifier{path: path}
}

// Notify appends one JSON record to the file.
func (f *FileNotifier) Notify(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open notification file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

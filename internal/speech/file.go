package speech

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sync"
)

// FileRecorder "records" by reading a prepared audio file. It stands in
// for a microphone on the command line.
type FileRecorder struct {
	mu     sync.Mutex
	path   string
	active bool
}

// NewFileRecorder returns a recorder that yields the contents of path.
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

// Start checks that the file is readable. A missing or unreadable file
// is reported as ErrPermissionDenied.
func (r *FileRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return ErrAlreadyRecording
	}
	if _, err := os.Stat(r.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, r.path)
		}
		return err
	}
	r.active = true
	return nil
}

// Stop returns the file contents. An empty file yields nil.
func (r *FileRecorder) Stop(ctx context.Context) (*Audio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return nil, ErrNotRecording
	}
	r.active = false

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	mt := mime.TypeByExtension(filepath.Ext(r.path))
	if mt == "" {
		mt = "audio/wav"
	}
	return &Audio{Data: data, MIMEType: mt}, nil
}

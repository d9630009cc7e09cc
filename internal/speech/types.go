// Package speech connects the microphone and a transcription service to
// the coaching voice task.
package speech

import (
	"context"
	"errors"
)

// Audio is a recorded clip.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Recorder captures microphone audio. At most one recording is active at a
// time.
type Recorder interface {
	// Start begins recording. It returns ErrPermissionDenied when the
	// microphone is unavailable.
	Start(ctx context.Context) error
	// Stop ends recording and returns the clip, or nil if nothing was
	// captured.
	Stop(ctx context.Context) (*Audio, error)
}

// Transcriber turns speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio, language string) (string, error)
}

var (
	ErrPermissionDenied = errors.New("speech: microphone permission denied")
	ErrAlreadyRecording = errors.New("speech: already recording")
	ErrNotRecording     = errors.New("speech: not recording")
	ErrNoAudio          = errors.New("speech: no audio captured")
	ErrEmptyTranscript  = errors.New("speech: empty transcript")
)

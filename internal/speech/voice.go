package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/jarvis/internal/session"
)

// Lesson is the part of a session the voice flow drives.
type Lesson interface {
	AddMessage(speaker session.Speaker, text string) error
	SetCoachingRecording(recording bool) error
	SetStudentVoiceAnswer(text string) error
	ReceiveCoachingTask() error
	CompleteCoachingTask() error
}

const (
	msgMicDenied  = "I can't hear you yet. Please allow microphone access and try again."
	msgNotCaught  = "Sorry, I didn't catch that. Please try again."
	msgNoRecorded = "Nothing was recorded. Please try again."
)

// VoiceAnswer records a spoken answer to the current voice task. A failed
// transcription leaves the task open so the student can retry.
type VoiceAnswer struct {
	rec    Recorder
	tr     Transcriber
	lesson Lesson
	cfg    Config
	log    *zap.Logger

	mu        sync.Mutex
	recording bool
}

// NewVoiceAnswer creates a voice flow. log may be nil.
func NewVoiceAnswer(rec Recorder, tr Transcriber, lesson Lesson, cfg Config, log *zap.Logger) *VoiceAnswer {
	if log == nil {
		log = zap.NewNop()
	}
	return &VoiceAnswer{rec: rec, tr: tr, lesson: lesson, cfg: cfg, log: log}
}

// Start begins recording. A denied microphone is reported in the chat and
// not retried.
func (v *VoiceAnswer) Start(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.recording {
		return ErrAlreadyRecording
	}
	if err := v.rec.Start(ctx); err != nil {
		v.log.Warn("start recording", zap.Error(err))
		v.say(session.SpeakerJarvis, msgMicDenied)
		return fmt.Errorf("start recording: %w", err)
	}
	v.recording = true
	if err := v.lesson.SetCoachingRecording(true); err != nil {
		v.log.Warn("set recording flag", zap.Error(err))
	}
	return nil
}

// Finish stops recording, transcribes the clip and, on success, submits it
// as the student's answer and completes the task.
func (v *VoiceAnswer) Finish(ctx context.Context) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.recording {
		return "", ErrNotRecording
	}
	v.recording = false

	audio, err := v.rec.Stop(ctx)
	if ferr := v.lesson.SetCoachingRecording(false); ferr != nil {
		v.log.Warn("clear recording flag", zap.Error(ferr))
	}
	if err != nil {
		v.say(session.SpeakerJarvis, msgNoRecorded)
		return "", fmt.Errorf("stop recording: %w", err)
	}
	if audio == nil || len(audio.Data) == 0 {
		v.say(session.SpeakerJarvis, msgNoRecorded)
		return "", ErrNoAudio
	}

	text, err := v.tr.Transcribe(ctx, *audio, v.cfg.Language)
	if err != nil {
		v.log.Warn("transcription failed", zap.Error(err))
		v.say(session.SpeakerJarvis, msgNotCaught)
		return "", fmt.Errorf("transcribe: %w", err)
	}

	if err := v.lesson.SetStudentVoiceAnswer(text); err != nil {
		return "", err
	}
	v.say(session.SpeakerStudent, text)
	if err := v.lesson.ReceiveCoachingTask(); err != nil {
		return text, fmt.Errorf("receive task: %w", err)
	}
	if err := v.lesson.CompleteCoachingTask(); err != nil {
		return text, fmt.Errorf("complete task: %w", err)
	}
	return text, nil
}

func (v *VoiceAnswer) say(speaker session.Speaker, text string) {
	if err := v.lesson.AddMessage(speaker, text); err != nil && !errors.Is(err, session.ErrClosed) {
		v.log.Warn("add message", zap.Error(err))
	}
}

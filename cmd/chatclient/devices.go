package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/korylprince/dental-receptionist/voice"
)

const segmentSize = 16 << 10

//fileDevice "records" by replaying an audio file in segments
type fileDevice struct {
	path string
}

type fileStream struct{}

func (fileStream) Stop() error { return nil }

func (d *fileDevice) Open(ctx context.Context, onData func([]byte)) (voice.Stream, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, segmentSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			onData(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read audio file: %w", err)
		}
	}

	return fileStream{}, nil
}

//execSpeaker speaks by running an external text-to-speech command
type execSpeaker struct {
	args []string
	log  *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newExecSpeaker(command string, l *log.Logger) *execSpeaker {
	return &execSpeaker{args: strings.Fields(command), log: l}
}

func (s *execSpeaker) Speak(ctx context.Context, u voice.Utterance) error {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	defer cancel()

	args := append(append([]string(nil), s.args[1:]...), u.Text)
	cmd := exec.CommandContext(ctx, s.args[0], args...)
	cmd.Env = append(os.Environ(), "SPEECH_LANG="+u.Lang, fmt.Sprintf("SPEECH_RATE=%.2f", u.Rate))

	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run %s: %w", s.args[0], err)
	}
	return nil
}

func (s *execSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Package widget assembles one chat surface: a transcript controller, a voice
// capture bridge and speech output sharing a single backend session.
package widget

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/korylprince/dental-receptionist/chatbot"
	"github.com/korylprince/dental-receptionist/voice"
)

// ErrUnmounted is returned by operations on an unmounted Surface
var ErrUnmounted = errors.New("widget: surface is unmounted")

// Backend is everything a Surface needs from the receptionist backend.
// *chatbot.Client implements it.
type Backend interface {
	chatbot.Transport
	chatbot.SessionSource
	voice.Transcriber
}

// Config configures a Surface
type Config struct {
	Backend Backend

	//Sessions keeps the session ID between mounts; defaults to a MemorySessionStore
	Sessions chatbot.SessionStore

	//Device and Speaker may be nil; voice input or output is then unavailable
	Device  voice.Device
	Speaker voice.Speaker

	Language string // defaults to "en"
	Muted    bool

	OnUpdate func(chatbot.Update)
	OnStatus func(string) // voice bar status
	OnNotice func(string) // blocking user notice

	Logger *log.Logger
}

// Surface is a mounted chat widget
type Surface struct {
	sessionID  string
	controller *chatbot.Controller
	bridge     *voice.Bridge
	output     *voice.Output
	log        *log.Logger

	mu      sync.Mutex
	mounted bool
}

// Mount resolves the session and builds the surface's components
func Mount(ctx context.Context, cfg Config) (*Surface, error) {
	if cfg.Backend == nil {
		return nil, errors.New("widget: Backend is required")
	}
	if cfg.Sessions == nil {
		cfg.Sessions = &chatbot.MemorySessionStore{}
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	l := cfg.Logger
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}

	id, err := chatbot.ResolveSession(ctx, cfg.Sessions, cfg.Backend)
	if err != nil {
		return nil, err
	}

	s := &Surface{sessionID: id, log: l, mounted: true}

	opts := []chatbot.Option{
		chatbot.WithGreeting(chatbot.Greeting()),
		chatbot.WithLogger(l),
	}
	if cfg.OnUpdate != nil {
		opts = append(opts, chatbot.WithListener(cfg.OnUpdate))
	}
	s.controller = chatbot.NewController(cfg.Backend, opts...)

	s.output = voice.NewOutput(cfg.Speaker,
		voice.WithMuted(cfg.Muted),
		voice.WithOutputLanguage(cfg.Language),
		voice.WithOutputLogger(l),
	)

	bopts := []voice.BridgeOption{
		voice.WithLanguage(cfg.Language),
		voice.WithBridgeLogger(l),
	}
	if cfg.OnStatus != nil {
		bopts = append(bopts, voice.WithStatus(cfg.OnStatus))
	}
	if cfg.OnNotice != nil {
		bopts = append(bopts, voice.WithNotice(cfg.OnNotice))
	}
	s.bridge = voice.NewBridge(cfg.Device, cfg.Backend, func(ctx context.Context, text string) {
		s.Submit(ctx, text)
	}, bopts...)

	return s, nil
}

// Submit sends text as the next user message and blocks until the reply is
// complete. Blank text, a busy controller or an unmounted surface make Submit
// a no-op that returns false.
func (s *Surface) Submit(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || !s.Mounted() {
		return false
	}
	if s.controller.Streaming() {
		return false
	}

	s.output.Cancel()
	return s.controller.Send(ctx, s.sessionID, text, s.output.Speak)
}

// StartVoice begins a recording
func (s *Surface) StartVoice(ctx context.Context) error {
	if !s.Mounted() {
		return ErrUnmounted
	}
	if s.controller.Streaming() {
		return voice.ErrBusy
	}
	return s.bridge.Start(ctx)
}

// StopVoice ends the recording and submits whatever was said
func (s *Surface) StopVoice(ctx context.Context) error {
	if !s.Mounted() {
		return ErrUnmounted
	}
	return s.bridge.Stop(ctx)
}

// SetLanguage changes the transcription and speech language
func (s *Surface) SetLanguage(lang string) {
	s.bridge.SetLanguage(lang)
	s.output.SetLanguage(lang)
}

// Unmount releases the capture device and silences speech. An exchange in
// flight runs to completion but the surface accepts no further input.
func (s *Surface) Unmount() {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return
	}
	s.mounted = false
	s.mu.Unlock()

	s.bridge.Abandon()
	s.output.Cancel()
	s.log.Printf("Unmounted chat surface for session %s", s.sessionID)
}

// Mounted reports whether the surface accepts input
func (s *Surface) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// SessionID returns the backend session the surface is bound to
func (s *Surface) SessionID() string {
	return s.sessionID
}

// Controller returns the surface's transcript controller
func (s *Surface) Controller() *chatbot.Controller {
	return s.controller
}

// Bridge returns the surface's voice capture bridge
func (s *Surface) Bridge() *voice.Bridge {
	return s.bridge
}

// Output returns the surface's speech output
func (s *Surface) Output() *voice.Output {
	return s.output
}

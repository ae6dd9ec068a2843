// Package voice captures spoken input for a chat surface and speaks replies
// back. Platform audio is reached only through the Device and Speaker
// interfaces, so every state transition can be driven by tests.
package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Recording format sent to the transcriber
const (
	RecordingFilename    = "recording.webm"
	RecordingContentType = "audio/webm"
)

// Status texts shown in the voice bar
const (
	StatusListening        = "Listening…"
	StatusProcessing       = "Processing…"
	StatusTranscribeFailed = "Transcription failed"
)

// DeviceNotice is shown when the capture device cannot be opened
const DeviceNotice = "Microphone access denied or unavailable."

var (
	// ErrBusy is returned by Start while a recording is being captured or processed
	ErrBusy = errors.New("voice: recording already in progress")
	// ErrDeviceUnavailable wraps capture device failures
	ErrDeviceUnavailable = errors.New("voice: capture device unavailable")

	errNoDevice = errors.New("no capture device configured")
)

// State is a Bridge state
type State int

// States
const (
	Idle State = iota
	Listening
	Processing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Processing:
		return "processing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Device is an audio input capability
type Device interface {
	//Open acquires the input and starts capturing. onData is called with each
	//captured segment until the returned Stream is stopped.
	Open(ctx context.Context, onData func(segment []byte)) (Stream, error)
}

// Stream is an open capture. Stop halts capture and releases the input.
type Stream interface {
	Stop() error
}

// Transcriber turns one recording into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, contentType, language string) (string, error)
}

// ForwardFunc receives transcribed text to send as a chat message
type ForwardFunc func(ctx context.Context, text string)

// BridgeOption configures a Bridge
type BridgeOption func(*Bridge)

// WithLanguage sets the initial transcription language
func WithLanguage(lang string) BridgeOption {
	return func(b *Bridge) {
		b.lang = lang
	}
}

// WithNotice sets fn to receive blocking user notices (device failures)
func WithNotice(fn func(string)) BridgeOption {
	return func(b *Bridge) {
		b.notice = fn
	}
}

// WithStatus sets fn to receive every voice bar status change
func WithStatus(fn func(string)) BridgeOption {
	return func(b *Bridge) {
		b.onStatus = fn
	}
}

// WithBridgeLogger sets the logger used for diagnostics
func WithBridgeLogger(l *log.Logger) BridgeOption {
	return func(b *Bridge) {
		b.log = l
	}
}

// Bridge records one utterance at a time, transcribes it and forwards the text:
//
//	idle -> listening -> (stop) -> processing -> idle
//	idle -> listening -> (stop, nothing captured) -> idle
//
// A recording must fully resolve before the next one may start.
type Bridge struct {
	device      Device
	transcriber Transcriber
	forward     ForwardFunc
	notice      func(string)
	onStatus    func(string)
	log         *log.Logger

	mu       sync.Mutex
	state    State
	opening  bool
	lang     string
	status   string
	stream   Stream
	segments [][]byte
	gen      uint64 // recording generation; stale onData calls are dropped
}

// NewBridge returns an idle Bridge
func NewBridge(device Device, transcriber Transcriber, forward ForwardFunc, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		device:      device,
		transcriber: transcriber,
		forward:     forward,
		lang:        "en",
		log:         log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start opens the capture device and begins buffering audio
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.state != Idle || b.opening {
		b.mu.Unlock()
		return ErrBusy
	}
	b.opening = true
	b.gen++
	gen := b.gen
	b.segments = nil
	b.mu.Unlock()

	var stream Stream
	err := errNoDevice
	if b.device != nil {
		stream, err = b.device.Open(ctx, func(segment []byte) { b.capture(gen, segment) })
	}

	b.mu.Lock()
	b.opening = false
	if err != nil {
		b.gen++
		b.segments = nil
		b.mu.Unlock()

		b.log.Printf("Could not open capture device: %v", err)
		b.setStatus("")
		if b.notice != nil {
			b.notice(DeviceNotice)
		}
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	b.state = Listening
	b.stream = stream
	b.mu.Unlock()

	b.setStatus(StatusListening)
	return nil
}

func (b *Bridge) capture(gen uint64, segment []byte) {
	if len(segment) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	b.segments = append(b.segments, append([]byte(nil), segment...))
}

// release must be called with mu held
func (b *Bridge) release() {
	if b.stream == nil {
		return
	}
	if err := b.stream.Stop(); err != nil {
		b.log.Printf("Could not stop capture stream: %v", err)
	}
	b.stream = nil
}

// Stop ends the recording, uploads it once and forwards non-empty text. It
// blocks until the transcription resolves. Stop does nothing unless listening.
func (b *Bridge) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.state != Listening {
		b.mu.Unlock()
		return nil
	}
	b.release()
	b.gen++
	segments := b.segments
	b.segments = nil
	lang := b.lang

	audio := bytes.Join(segments, nil)
	if len(audio) == 0 {
		b.state = Idle
		b.mu.Unlock()
		b.setStatus("")
		return nil
	}
	b.state = Processing
	b.mu.Unlock()

	b.setStatus(StatusProcessing)

	text, err := b.transcriber.Transcribe(ctx, bytes.NewReader(audio), RecordingFilename, RecordingContentType, lang)

	b.mu.Lock()
	b.state = Idle
	b.mu.Unlock()

	if err != nil {
		b.log.Printf("Transcription error: %v", err)
		b.setStatus(StatusTranscribeFailed)
		return nil
	}
	b.setStatus("")

	if text = strings.TrimSpace(text); text != "" && b.forward != nil {
		b.forward(ctx, text)
	}
	return nil
}

// Toggle stops a running recording or starts a new one
func (b *Bridge) Toggle(ctx context.Context) error {
	if b.State() == Listening {
		return b.Stop(ctx)
	}
	return b.Start(ctx)
}

// Abandon releases the capture device without transcribing anything
func (b *Bridge) Abandon() {
	b.mu.Lock()
	if b.state == Listening {
		b.release()
		b.gen++
		b.segments = nil
		b.state = Idle
	}
	b.mu.Unlock()
	b.setStatus("")
}

func (b *Bridge) setStatus(s string) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
	if b.onStatus != nil {
		b.onStatus(s)
	}
}

// State returns the current state
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Status returns the current voice bar text
func (b *Bridge) Status() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// SetLanguage sets the language for later transcriptions
func (b *Bridge) SetLanguage(lang string) {
	b.mu.Lock()
	b.lang = lang
	b.mu.Unlock()
}

// Language returns the transcription language
func (b *Bridge) Language() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lang
}

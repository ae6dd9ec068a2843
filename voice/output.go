package voice

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
)

// SpeechRate is the rate replies are spoken at
const SpeechRate = 0.95

// Utterance is one piece of text to speak
type Utterance struct {
	Text string
	Lang string // BCP 47 tag, e.g. en-US
	Rate float64
}

// Speaker is a speech synthesis capability. Speak blocks until the utterance
// finishes, is cancelled, or ctx is done. Cancel stops whatever is being spoken.
type Speaker interface {
	Speak(ctx context.Context, u Utterance) error
	Cancel()
}

// SpeechLang maps a transcription language to a synthesis voice tag
func SpeechLang(lang string) string {
	switch strings.ToLower(lang) {
	case "", "en":
		return "en-US"
	case "es":
		return "es-ES"
	}
	return lang
}

// OutputOption configures an Output
type OutputOption func(*Output)

// WithMuted sets the initial mute state
func WithMuted(muted bool) OutputOption {
	return func(o *Output) {
		o.muted = muted
	}
}

// WithOutputLanguage sets the language replies are spoken in
func WithOutputLanguage(lang string) OutputOption {
	return func(o *Output) {
		o.lang = lang
	}
}

// WithOutputLogger sets the logger used for diagnostics
func WithOutputLogger(l *log.Logger) OutputOption {
	return func(o *Output) {
		o.log = l
	}
}

// Output speaks completed replies with cancel-then-speak semantics
type Output struct {
	speaker Speaker
	log     *log.Logger

	mu    sync.Mutex
	muted bool
	lang  string
	seq   uint64 // current utterance; bumped by every Speak and Cancel
	stop  context.CancelFunc

	// held while an utterance is being spoken so two never overlap
	playing sync.Mutex
}

// NewOutput returns an Output backed by speaker. A nil speaker is silent.
func NewOutput(speaker Speaker, opts ...OutputOption) *Output {
	o := &Output{
		speaker: speaker,
		lang:    "en",
		log:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Speak cancels any utterance in progress and, unless muted, starts speaking
// text in the background. Empty text only cancels. Utterances superseded
// before they start are never spoken.
func (o *Output) Speak(text string) {
	if o.speaker == nil {
		return
	}

	o.mu.Lock()
	o.invalidate()
	if o.muted || strings.TrimSpace(text) == "" {
		o.mu.Unlock()
		o.speaker.Cancel()
		return
	}
	seq := o.seq
	ctx, cancel := context.WithCancel(context.Background())
	o.stop = cancel
	u := Utterance{Text: text, Lang: SpeechLang(o.lang), Rate: SpeechRate}
	o.mu.Unlock()

	o.speaker.Cancel()
	go o.play(ctx, seq, u)
}

// invalidate makes any queued or playing utterance stale. o.mu must be held.
func (o *Output) invalidate() {
	o.seq++
	if o.stop != nil {
		o.stop()
		o.stop = nil
	}
}

func (o *Output) play(ctx context.Context, seq uint64, u Utterance) {
	o.playing.Lock()
	defer o.playing.Unlock()

	o.mu.Lock()
	current := seq == o.seq
	o.mu.Unlock()
	if !current {
		return
	}

	if err := o.speaker.Speak(ctx, u); err != nil && ctx.Err() == nil {
		o.log.Printf("Speech output %d failed: %v", seq, err)
	}
}

// Cancel stops any utterance in progress and drops any not yet started
func (o *Output) Cancel() {
	if o.speaker == nil {
		return
	}
	o.mu.Lock()
	o.invalidate()
	o.mu.Unlock()
	o.speaker.Cancel()
}

// SetMuted sets the mute state. Muting cancels any utterance in progress.
func (o *Output) SetMuted(muted bool) {
	o.mu.Lock()
	o.muted = muted
	o.mu.Unlock()
	if muted {
		o.Cancel()
	}
}

// ToggleMuted flips the mute state and returns the new state
func (o *Output) ToggleMuted() bool {
	o.mu.Lock()
	muted := !o.muted
	o.mu.Unlock()
	o.SetMuted(muted)
	return muted
}

// Muted reports whether speech is muted
func (o *Output) Muted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

// SetLanguage sets the language later replies are spoken in
func (o *Output) SetLanguage(lang string) {
	o.mu.Lock()
	o.lang = lang
	o.mu.Unlock()
}

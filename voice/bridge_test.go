package voice_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korylprince/dental-receptionist/voice"
)

type fakeStream struct {
	stopped int
}

func (s *fakeStream) Stop() error {
	s.stopped++
	return nil
}

// fakeDevice hands the onData callback back to the test
type fakeDevice struct {
	err    error
	onData func([]byte)
	stream *fakeStream
	opened int
}

func (d *fakeDevice) Open(ctx context.Context, onData func([]byte)) (voice.Stream, error) {
	d.opened++
	if d.err != nil {
		return nil, d.err
	}
	d.onData = onData
	d.stream = &fakeStream{}
	return d.stream, nil
}

type fakeTranscriber struct {
	mu     sync.Mutex
	text   string
	err    error
	calls  int
	audio  []string
	lang   string
	file   string
	ctype  string
	during func() // called while transcribing
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename, contentType, language string) (string, error) {
	data, _ := io.ReadAll(audio)
	t.mu.Lock()
	t.calls++
	t.audio = append(t.audio, string(data))
	t.lang, t.file, t.ctype = language, filename, contentType
	t.mu.Unlock()
	if t.during != nil {
		t.during()
	}
	return t.text, t.err
}

type forwarded struct {
	texts []string
}

func (f *forwarded) fn(ctx context.Context, text string) {
	f.texts = append(f.texts, text)
}

func TestBridgeRecordTranscribeForward(t *testing.T) {
	dev := &fakeDevice{}
	tr := &fakeTranscriber{text: "  I need a cleaning  "}
	var fwd forwarded
	var statuses []string

	b := voice.NewBridge(dev, tr, fwd.fn, voice.WithLanguage("es"), voice.WithStatus(func(s string) {
		statuses = append(statuses, s)
	}))
	assert.Equal(t, voice.Idle, b.State())

	require.NoError(t, b.Start(context.Background()))
	assert.Equal(t, voice.Listening, b.State())
	assert.Equal(t, voice.StatusListening, b.Status())

	dev.onData([]byte("abc"))
	dev.onData(nil)
	dev.onData([]byte("def"))

	var during voice.State
	tr.during = func() { during = b.State() }

	require.NoError(t, b.Stop(context.Background()))

	assert.Equal(t, voice.Processing, during)
	assert.Equal(t, voice.Idle, b.State())
	assert.Equal(t, 1, dev.stream.stopped)
	assert.Equal(t, 1, tr.calls)
	assert.Equal(t, []string{"abcdef"}, tr.audio)
	assert.Equal(t, "es", tr.lang)
	assert.Equal(t, voice.RecordingFilename, tr.file)
	assert.Equal(t, voice.RecordingContentType, tr.ctype)
	assert.Equal(t, []string{"I need a cleaning"}, fwd.texts)
	assert.Equal(t, []string{voice.StatusListening, voice.StatusProcessing, ""}, statuses)
}

func TestBridgeNothingCaptured(t *testing.T) {
	dev := &fakeDevice{}
	tr := &fakeTranscriber{text: "unused"}
	var fwd forwarded
	b := voice.NewBridge(dev, tr, fwd.fn)

	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, b.Stop(context.Background()))

	assert.Equal(t, voice.Idle, b.State())
	assert.Zero(t, tr.calls)
	assert.Empty(t, fwd.texts)
	assert.Equal(t, 1, dev.stream.stopped)
	assert.Empty(t, b.Status())
}

func TestBridgeBlankTranscript(t *testing.T) {
	dev := &fakeDevice{}
	tr := &fakeTranscriber{text: "   "}
	var fwd forwarded
	b := voice.NewBridge(dev, tr, fwd.fn)

	require.NoError(t, b.Start(context.Background()))
	dev.onData([]byte("noise"))
	require.NoError(t, b.Stop(context.Background()))

	assert.Equal(t, 1, tr.calls)
	assert.Empty(t, fwd.texts)
	assert.Equal(t, voice.Idle, b.State())
}

func TestBridgeTranscribeFailure(t *testing.T) {
	dev := &fakeDevice{}
	tr := &fakeTranscriber{err: errors.New("HTTP 500")}
	var fwd forwarded
	b := voice.NewBridge(dev, tr, fwd.fn)

	require.NoError(t, b.Start(context.Background()))
	dev.onData([]byte("audio"))
	require.NoError(t, b.Stop(context.Background()))

	assert.Equal(t, voice.Idle, b.State())
	assert.Equal(t, voice.StatusTranscribeFailed, b.Status())
	assert.Empty(t, fwd.texts)

	// a failed transcription does not block the next recording
	require.NoError(t, b.Start(context.Background()))
	assert.Equal(t, voice.Listening, b.State())
}

func TestBridgeDeviceUnavailable(t *testing.T) {
	dev := &fakeDevice{err: errors.New("permission denied")}
	var notices []string
	b := voice.NewBridge(dev, &fakeTranscriber{}, nil, voice.WithNotice(func(s string) {
		notices = append(notices, s)
	}))

	err := b.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, voice.ErrDeviceUnavailable)
	assert.Equal(t, voice.Idle, b.State())
	assert.Equal(t, []string{voice.DeviceNotice}, notices)
}

func TestBridgeNoDevice(t *testing.T) {
	b := voice.NewBridge(nil, &fakeTranscriber{}, nil)
	assert.ErrorIs(t, b.Start(context.Background()), voice.ErrDeviceUnavailable)
	assert.Equal(t, voice.Idle, b.State())
}

func TestBridgeStartWhileBusy(t *testing.T) {
	dev := &fakeDevice{}
	tr := &fakeTranscriber{text: "hello"}
	b := voice.NewBridge(dev, tr, nil)

	require.NoError(t, b.Start(context.Background()))
	assert.ErrorIs(t, b.Start(context.Background()), voice.ErrBusy)
	assert.Equal(t, 1, dev.opened)

	dev.onData([]byte("x"))
	var busyErr error
	tr.during = func() { busyErr = b.Start(context.Background()) }
	require.NoError(t, b.Stop(context.Background()))

	assert.ErrorIs(t, busyErr, voice.ErrBusy)
	assert.Equal(t, 1, dev.opened)
}

func TestBridgeStopWhenIdle(t *testing.T) {
	tr := &fakeTranscriber{}
	b := voice.NewBridge(&fakeDevice{}, tr, nil)
	require.NoError(t, b.Stop(context.Background()))
	assert.Zero(t, tr.calls)
}

func TestBridgeToggle(t *testing.T) {
	dev := &fakeDevice{}
	tr := &fakeTranscriber{text: "book me"}
	var fwd forwarded
	b := voice.NewBridge(dev, tr, fwd.fn)

	require.NoError(t, b.Toggle(context.Background()))
	assert.Equal(t, voice.Listening, b.State())
	dev.onData([]byte("x"))
	require.NoError(t, b.Toggle(context.Background()))
	assert.Equal(t, voice.Idle, b.State())
	assert.Equal(t, []string{"book me"}, fwd.texts)
}

func TestBridgeAbandon(t *testing.T) {
	dev := &fakeDevice{}
	tr := &fakeTranscriber{text: "lost"}
	var fwd forwarded
	b := voice.NewBridge(dev, tr, fwd.fn)

	require.NoError(t, b.Start(context.Background()))
	onData := dev.onData
	onData([]byte("abc"))
	b.Abandon()

	assert.Equal(t, voice.Idle, b.State())
	assert.Equal(t, 1, dev.stream.stopped)

	// late segments from the abandoned recording are dropped
	onData([]byte("late"))
	require.NoError(t, b.Start(context.Background()))
	dev.onData([]byte("new"))
	require.NoError(t, b.Stop(context.Background()))

	assert.Equal(t, []string{"new"}, tr.audio)
	assert.Equal(t, []string{"lost"}, fwd.texts)
}

func TestBridgeSetLanguage(t *testing.T) {
	dev := &fakeDevice{}
	tr := &fakeTranscriber{text: "hi"}
	b := voice.NewBridge(dev, tr, nil)
	assert.Equal(t, "en", b.Language())

	b.SetLanguage("ur")
	require.NoError(t, b.Start(context.Background()))
	dev.onData([]byte("x"))
	require.NoError(t, b.Stop(context.Background()))
	assert.Equal(t, "ur", tr.lang)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", voice.Idle.String())
	assert.Equal(t, "listening", voice.Listening.String())
	assert.Equal(t, "processing", voice.Processing.String())
}

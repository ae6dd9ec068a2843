package widget_test

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korylprince/dental-receptionist/api"
	"github.com/korylprince/dental-receptionist/chatbot"
	"github.com/korylprince/dental-receptionist/httpapi"
	"github.com/korylprince/dental-receptionist/voice"
	"github.com/korylprince/dental-receptionist/widget"
)

type stream struct{ stopped bool }

func (s *stream) Stop() error {
	s.stopped = true
	return nil
}

// device delivers a fixed recording as soon as it is opened
type device struct {
	audio  []byte
	stream *stream
}

func (d *device) Open(ctx context.Context, onData func([]byte)) (voice.Stream, error) {
	onData(d.audio)
	d.stream = &stream{}
	return d.stream, nil
}

type speaker struct {
	mu     sync.Mutex
	spoken []voice.Utterance
	said   chan struct{}
}

func (s *speaker) Speak(ctx context.Context, u voice.Utterance) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, u)
	s.mu.Unlock()
	s.said <- struct{}{}
	return nil
}

func (s *speaker) Cancel() {}

func (s *speaker) wait(t *testing.T) voice.Utterance {
	t.Helper()
	select {
	case <-s.said:
	case <-time.After(5 * time.Second):
		t.Fatal("reply was not spoken")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spoken[len(s.spoken)-1]
}

func newBackend(t *testing.T, transcript string) *chatbot.Client {
	t.Helper()

	a, err := api.NewAdmin("admin", "admin123")
	require.NoError(t, err)
	store := api.NewMemoryStore(a)

	sessions := httpapi.NewMemorySessionStore(time.Hour)
	t.Cleanup(sessions.Close)

	srv := httptest.NewServer(httpapi.NewRouter(io.Discard, sessions, store, &httpapi.ChatConfig{
		Transcriber: httpapi.StaticTranscriber{Text: transcript},
	}))
	t.Cleanup(srv.Close)

	return chatbot.NewClient(srv.URL)
}

func TestMountAndSubmit(t *testing.T) {
	sp := &speaker{said: make(chan struct{}, 4)}
	var kinds []chatbot.UpdateKind

	s, err := widget.Mount(context.Background(), widget.Config{
		Backend:  newBackend(t, ""),
		Speaker:  sp,
		OnUpdate: func(u chatbot.Update) { kinds = append(kinds, u.Kind) },
	})
	require.NoError(t, err)
	defer s.Unmount()

	assert.NotEmpty(t, s.SessionID())
	msgs := s.Controller().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, chatbot.GreetingID, msgs[0].ID)

	assert.False(t, s.Submit(context.Background(), "   "))
	require.True(t, s.Submit(context.Background(), "What are your hours?"))

	msgs = s.Controller().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, chatbot.RoleUser, msgs[1].Role)
	assert.Equal(t, "What are your hours?", msgs[1].Text)
	assert.Equal(t, chatbot.RoleBot, msgs[2].Role)
	assert.Contains(t, msgs[2].Text, "Sunday Closed")
	assert.False(t, msgs[2].IsError)

	assert.Equal(t, chatbot.UpdateUser, kinds[0])
	assert.Equal(t, chatbot.UpdateTool, kinds[1])
	assert.Equal(t, chatbot.UpdateIdle, kinds[len(kinds)-1])

	u := sp.wait(t)
	assert.Equal(t, msgs[2].Text, u.Text)
	assert.Equal(t, "en-US", u.Lang)
}

func TestSubmitBackendError(t *testing.T) {
	sp := &speaker{said: make(chan struct{}, 4)}
	s, err := widget.Mount(context.Background(), widget.Config{Backend: newBackend(t, ""), Speaker: sp})
	require.NoError(t, err)
	defer s.Unmount()

	require.True(t, s.Submit(context.Background(), "/fail Model unavailable"))

	msgs := s.Controller().Messages()
	last := msgs[len(msgs)-1]
	assert.True(t, last.IsError)
	assert.Equal(t, chatbot.ErrorMarker+"Model unavailable", last.Text)
	assert.False(t, s.Controller().Streaming())

	// error replies are never spoken
	select {
	case <-sp.said:
		t.Fatal("error reply was spoken")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestVoiceRoundTrip(t *testing.T) {
	sp := &speaker{said: make(chan struct{}, 4)}
	dev := &device{audio: []byte("webm")}
	var statuses []string

	s, err := widget.Mount(context.Background(), widget.Config{
		Backend:  newBackend(t, "Quiero reservar una limpieza"),
		Device:   dev,
		Speaker:  sp,
		Language: "es",
		OnStatus: func(st string) { statuses = append(statuses, st) },
	})
	require.NoError(t, err)
	defer s.Unmount()

	require.NoError(t, s.StartVoice(context.Background()))
	assert.Equal(t, voice.Listening, s.Bridge().State())
	require.NoError(t, s.StopVoice(context.Background()))
	assert.True(t, dev.stream.stopped)
	assert.Equal(t, voice.Idle, s.Bridge().State())

	msgs := s.Controller().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "Quiero reservar una limpieza", msgs[1].Text)
	assert.Contains(t, statuses, voice.StatusListening)
	assert.Contains(t, statuses, voice.StatusProcessing)

	assert.Equal(t, "es-ES", sp.wait(t).Lang)
}

func TestMountReusesStoredSession(t *testing.T) {
	backend := newBackend(t, "")
	sessions := &chatbot.MemorySessionStore{}
	require.NoError(t, sessions.Save("kept-session"))

	s, err := widget.Mount(context.Background(), widget.Config{Backend: backend, Sessions: sessions})
	require.NoError(t, err)
	assert.Equal(t, "kept-session", s.SessionID())
}

func TestUnmount(t *testing.T) {
	s, err := widget.Mount(context.Background(), widget.Config{Backend: newBackend(t, "")})
	require.NoError(t, err)

	s.Unmount()
	s.Unmount()
	assert.False(t, s.Mounted())
	assert.False(t, s.Submit(context.Background(), "hello"))
	assert.ErrorIs(t, s.StartVoice(context.Background()), widget.ErrUnmounted)
	assert.ErrorIs(t, s.StopVoice(context.Background()), widget.ErrUnmounted)
	assert.Len(t, s.Controller().Messages(), 1)
}

func TestMountWithoutDevice(t *testing.T) {
	var notices []string
	s, err := widget.Mount(context.Background(), widget.Config{
		Backend:  newBackend(t, ""),
		OnNotice: func(n string) { notices = append(notices, n) },
	})
	require.NoError(t, err)
	defer s.Unmount()

	assert.ErrorIs(t, s.StartVoice(context.Background()), voice.ErrDeviceUnavailable)
	assert.Equal(t, []string{voice.DeviceNotice}, notices)
}

func TestMountRequiresBackend(t *testing.T) {
	_, err := widget.Mount(context.Background(), widget.Config{})
	assert.Error(t, err)
}

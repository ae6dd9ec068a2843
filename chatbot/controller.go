package chatbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

// ErrorMarker prefixes the text of error transcript entries
const ErrorMarker = "⚠️ "

const readSize = 4096

// maxEmptyReads is how many reads in a row may return no data and no error
// before the stream is abandoned
const maxEmptyReads = 100

// Transport opens one exchange with the backend and returns the event stream body
type Transport interface {
	OpenChat(ctx context.Context, sessionID, message string) (io.ReadCloser, error)
}

// UpdateKind identifies the transition an Update reports
type UpdateKind int

// UpdateKinds
const (
	UpdateUser  UpdateKind = iota // user message appended, typing started
	UpdateTool                    // tool indicator set
	UpdateText                    // bot message created or grown
	UpdateError                   // error entry appended
	UpdateDone                    // exchange completed successfully
	UpdateIdle                    // exchange over; ready for the next Send
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateUser:
		return "user"
	case UpdateTool:
		return "tool"
	case UpdateText:
		return "text"
	case UpdateError:
		return "error"
	case UpdateDone:
		return "done"
	case UpdateIdle:
		return "idle"
	}
	return fmt.Sprintf("UpdateKind(%d)", int(k))
}

// State is a snapshot of everything a chat surface renders
type State struct {
	Messages  []ChatMessage
	Typing    bool
	Tool      string // name of the running tool, or empty
	Streaming bool
}

// ToolLabel returns the display label for the running tool
func (s State) ToolLabel() string {
	return ToolLabel(s.Tool)
}

// Update is delivered to listeners after every state transition
type Update struct {
	Kind  UpdateKind
	State State
}

// Option configures a Controller
type Option func(*Controller)

// WithListener registers fn to receive every Update, in order, on the
// goroutine running Send
func WithListener(fn func(Update)) Option {
	return func(c *Controller) {
		c.listeners = append(c.listeners, fn)
	}
}

// WithLogger sets the logger used for diagnostics
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithGreeting seeds the transcript with a bot greeting
func WithGreeting(text string) Option {
	return func(c *Controller) {
		c.greeting = text
	}
}

// WithClock overrides the time source for message timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller owns a chat transcript and drives at most one exchange at a time
type Controller struct {
	transport Transport
	listeners []func(Update)
	log       *log.Logger
	greeting  string
	now       func() time.Time

	mu       sync.Mutex
	messages []ChatMessage
	typing   bool
	tool     string
	inFlight bool
}

// exchange is the state of one outstanding Send
type exchange struct {
	acc    strings.Builder
	botIdx int // index of the bot message in the transcript, or -1
	done   completion
}

// NewController returns a Controller that opens exchanges with t
func NewController(t Transport, opts ...Option) *Controller {
	c := &Controller{
		transport: t,
		log:       log.New(io.Discard, "", 0),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.greeting != "" {
		c.messages = append(c.messages, ChatMessage{
			ID:        GreetingID,
			Role:      RoleBot,
			Text:      c.greeting,
			Timestamp: c.now(),
		})
	}

	return c
}

// Send appends text as a user message and streams the reply into the
// transcript. It blocks until the exchange ends. If another exchange is in
// flight Send does nothing and returns false.
//
// Failures never escape Send: they are recorded as error entries in the
// transcript. onComplete, if non-nil, is called once with the full reply text
// when the backend reports a clean completion, after the transcript holds
// that text.
func (c *Controller) Send(ctx context.Context, sessionID, text string, onComplete CompletionFunc) bool {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return false
	}
	c.inFlight = true
	c.typing = true
	c.messages = append(c.messages, ChatMessage{
		ID:        newID(userIDPrefix),
		Role:      RoleUser,
		Text:      text,
		Timestamp: c.now(),
	})
	state := c.snapshot()
	c.mu.Unlock()

	defer c.finish()
	c.notify(UpdateUser, state)

	ex := &exchange{botIdx: -1, done: completion{fn: onComplete}}
	if err := c.stream(ctx, ex, sessionID, text); err != nil {
		c.log.Printf("Chat exchange failed: %v", err)
		c.fail(err)
	}

	return true
}

func (c *Controller) stream(ctx context.Context, ex *exchange, sessionID, text string) error {
	body, err := c.transport.OpenChat(ctx, sessionID, text)
	if err != nil {
		return err
	}
	defer body.Close()

	f := NewFramer()
	buf := make([]byte, readSize)
	empty := 0
	for {
		n, rErr := body.Read(buf)
		if n > 0 {
			empty = 0
			for _, line := range f.Push(buf[:n]) {
				e, ok := DecodeLine(line)
				if !ok {
					continue
				}
				if c.handle(ex, e) {
					//first terminal event ends the exchange; anything after it is not read
					f.Close()
					return nil
				}
			}
		}

		if errors.Is(rErr, io.EOF) {
			if dropped := f.Close(); dropped > 0 {
				c.log.Printf("Discarded %d bytes of unterminated stream data", dropped)
			}
			c.log.Println("Chat stream ended without a terminal event")
			return nil
		}
		if rErr != nil {
			return fmt.Errorf("failed to read stream: %w", rErr)
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return fmt.Errorf("failed to read stream: %w", io.ErrNoProgress)
			}
		}
	}
}

// handle applies e to the transcript and reports whether it was terminal
func (c *Controller) handle(ex *exchange, e Event) bool {
	var kind UpdateKind

	c.mu.Lock()
	switch e.Type {
	case EventText:
		c.typing = false
		c.tool = ""
		ex.acc.WriteString(e.Chunk)
		if ex.botIdx < 0 {
			ex.botIdx = len(c.messages)
			c.messages = append(c.messages, ChatMessage{
				ID:        newID(botIDPrefix),
				Role:      RoleBot,
				Text:      ex.acc.String(),
				Timestamp: c.now(),
			})
		} else {
			c.messages[ex.botIdx].Text = ex.acc.String()
		}
		kind = UpdateText
	case EventTool:
		c.typing = false
		c.tool = e.Name
		kind = UpdateTool
	case EventError:
		c.typing = false
		c.tool = ""
		c.appendError(ErrorMarker + e.Message)
		kind = UpdateError
	case EventDone:
		c.typing = false
		c.tool = ""
		kind = UpdateDone
	}
	state := c.snapshot()
	c.mu.Unlock()

	c.notify(kind, state)

	if e.Type == EventDone {
		ex.done.dispatch(ex.acc.String())
	}

	return e.Terminal()
}

// fail records a transport failure
func (c *Controller) fail(err error) {
	c.mu.Lock()
	c.typing = false
	c.tool = ""
	c.appendError(ErrorMarker + "Connection error: " + err.Error())
	state := c.snapshot()
	c.mu.Unlock()

	c.notify(UpdateError, state)
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.inFlight = false
	c.typing = false
	state := c.snapshot()
	c.mu.Unlock()

	c.notify(UpdateIdle, state)
}

// appendError must be called with mu held
func (c *Controller) appendError(text string) {
	c.messages = append(c.messages, ChatMessage{
		ID:        newID(errorIDPrefix),
		Role:      RoleBot,
		Text:      text,
		IsError:   true,
		Timestamp: c.now(),
	})
}

// snapshot must be called with mu held
func (c *Controller) snapshot() State {
	msgs := make([]ChatMessage, len(c.messages))
	copy(msgs, c.messages)
	return State{
		Messages:  msgs,
		Typing:    c.typing,
		Tool:      c.tool,
		Streaming: c.inFlight,
	}
}

func (c *Controller) notify(kind UpdateKind, state State) {
	u := Update{Kind: kind, State: state}
	for _, fn := range c.listeners {
		fn(u)
	}
}

// State returns a snapshot of the transcript and indicators
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Messages returns a copy of the transcript
func (c *Controller) Messages() []ChatMessage {
	return c.State().Messages
}

// Streaming reports whether an exchange is in flight
func (c *Controller) Streaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

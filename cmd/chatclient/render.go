package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/korylprince/dental-receptionist/chatbot"
)

var (
	brandPrimary = lipgloss.Color("#0EA5E9") // Sky
	brandError   = lipgloss.Color("#EF4444") // Red
	textMuted    = lipgloss.Color("#6B7280") // Gray

	promptStyle = lipgloss.NewStyle().
			Bold(true)

	botStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(brandError).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(textMuted).
			Italic(true)

	greetingStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandPrimary).
			Padding(0, 1)
)

//renderer prints transcript changes as they stream in
type renderer struct {
	w io.Writer

	mu      sync.Mutex
	printed int    // runes of the current bot message already printed
	botID   string // ID of the bot message being printed
	tool    string
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{w: w}
}

func (r *renderer) greet(msgs []chatbot.ChatMessage) {
	for _, m := range msgs {
		if m.ID == chatbot.GreetingID {
			fmt.Fprintln(r.w, greetingStyle.Render(m.Text))
		}
	}
}

func (r *renderer) update(u chatbot.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := u.State.Messages
	last := chatbot.ChatMessage{}
	if len(msgs) > 0 {
		last = msgs[len(msgs)-1]
	}

	switch u.Kind {
	case chatbot.UpdateUser:
		r.botID, r.printed, r.tool = "", 0, ""
		fmt.Fprint(r.w, dimStyle.Render("…"))
	case chatbot.UpdateTool:
		if u.State.Tool != r.tool {
			r.tool = u.State.Tool
			fmt.Fprint(r.w, "\r"+dimStyle.Render(u.State.ToolLabel()))
		}
	case chatbot.UpdateText:
		text := []rune(last.Text)
		if last.ID != r.botID {
			r.botID, r.printed = last.ID, 0
			fmt.Fprint(r.w, "\r"+botStyle.Render("Sarah: "))
		}
		fmt.Fprint(r.w, string(text[r.printed:]))
		r.printed = len(text)
	case chatbot.UpdateError:
		fmt.Fprint(r.w, "\r"+errorStyle.Render(last.Text))
	case chatbot.UpdateIdle:
		fmt.Fprintln(r.w)
	}
}

func (r *renderer) status(s string) {
	if s == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, dimStyle.Render("🎤 "+s))
}

func (r *renderer) notice(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, errorStyle.Render(s))
}

package chatbot_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korylprince/dental-receptionist/chatbot"
)

func pushAll(f *chatbot.Framer, chunks ...[]byte) []string {
	var lines []string
	for _, c := range chunks {
		lines = append(lines, f.Push(c)...)
	}
	return lines
}

func TestFramerSplitsLines(t *testing.T) {
	f := chatbot.NewFramer()

	lines := f.Push([]byte("one\ntwo\n\nthree"))
	assert.Equal(t, []string{"one", "two", ""}, lines)
	assert.Equal(t, len("three"), f.Buffered())

	lines = f.Push([]byte(" more\n"))
	assert.Equal(t, []string{"three more"}, lines)
	assert.Zero(t, f.Buffered())
}

func TestFramerEverySplitOffset(t *testing.T) {
	stream := "data: {\"type\":\"text\",\"chunk\":\"Привет 😊 héllo\"}\n\ndata: {\"type\":\"done\"}\n"
	want := []string{
		`data: {"type":"text","chunk":"Привет 😊 héllo"}`,
		"",
		`data: {"type":"done"}`,
	}
	b := []byte(stream)

	for i := 0; i <= len(b); i++ {
		f := chatbot.NewFramer()
		got := pushAll(f, b[:i], b[i:])
		require.Equal(t, want, got, "split at byte %d", i)
		assert.Zero(t, f.Close(), "split at byte %d", i)
	}
}

func TestFramerByteAtATime(t *testing.T) {
	stream := "α\nβγ\n😊\n"
	f := chatbot.NewFramer()

	var chunks [][]byte
	for i := 0; i < len(stream); i++ {
		chunks = append(chunks, []byte{stream[i]})
	}

	assert.Equal(t, []string{"α", "βγ", "😊"}, pushAll(f, chunks...))
}

func TestFramerDiscardsTrailingFragment(t *testing.T) {
	f := chatbot.NewFramer()

	lines := f.Push([]byte("data: {\"type\":\"done\"}\ndata: {\"type\":\"te"))
	assert.Equal(t, []string{`data: {"type":"done"}`}, lines)

	dropped := f.Close()
	assert.Equal(t, len(`data: {"type":"te`), dropped)
	assert.Zero(t, f.Buffered())
}

func TestFramerDiscardsPartialCharacterAtClose(t *testing.T) {
	f := chatbot.NewFramer()
	emoji := []byte("😊")

	assert.Empty(t, f.Push(emoji[:2]))
	assert.Equal(t, 2, f.Buffered())
	assert.Equal(t, 2, f.Close())
}

func TestFramerInvalidBytes(t *testing.T) {
	f := chatbot.NewFramer()

	lines := f.Push([]byte("a\xffb\n"))
	require.Len(t, lines, 1)
	assert.Equal(t, "a�b", lines[0])
}

func TestFramerLongLine(t *testing.T) {
	f := chatbot.NewFramer()
	long := strings.Repeat("é", 10000)

	lines := f.Push([]byte(long + "\n"))
	require.Len(t, lines, 1)
	assert.Equal(t, long, lines[0])
}

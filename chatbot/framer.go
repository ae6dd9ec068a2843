package chatbot

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Framer reassembles newline-terminated lines from a chunked byte stream.
// Bytes are decoded as UTF-8 with a single stateful decoder, so a multi-byte
// character split across chunks decodes the same as if it had arrived whole.
// Invalid sequences decode to U+FFFD.
type Framer struct {
	dec     transform.Transformer
	pending []byte // undecoded tail of the last chunk (partial character)
	partial strings.Builder
	scratch [4096]byte
}

// NewFramer returns an empty Framer
func NewFramer() *Framer {
	return &Framer{dec: unicode.UTF8.NewDecoder()}
}

// Push consumes chunk and returns every line it completed, in order and
// without the trailing newline. Text after the last newline is held until a
// later chunk completes it.
func (f *Framer) Push(chunk []byte) []string {
	src := chunk
	if len(f.pending) > 0 {
		src = append(f.pending, chunk...)
		f.pending = nil
	}

	var lines []string
	for len(src) > 0 {
		nDst, nSrc, err := f.dec.Transform(f.scratch[:], src, false)
		lines = f.split(string(f.scratch[:nDst]), lines)
		src = src[nSrc:]

		if errors.Is(err, transform.ErrShortSrc) {
			//incomplete character; wait for more bytes
			f.pending = append([]byte(nil), src...)
			break
		}
		if err != nil && !errors.Is(err, transform.ErrShortDst) {
			break
		}
		if nDst == 0 && nSrc == 0 {
			f.pending = append([]byte(nil), src...)
			break
		}
	}

	return lines
}

func (f *Framer) split(text string, lines []string) []string {
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			f.partial.WriteString(text)
			return lines
		}
		f.partial.WriteString(text[:i])
		lines = append(lines, f.partial.String())
		f.partial.Reset()
		text = text[i+1:]
	}
}

// Buffered returns the number of bytes held back waiting for a newline
func (f *Framer) Buffered() int {
	return f.partial.Len() + len(f.pending)
}

// Close ends the stream. An unterminated final fragment is not a line and is
// discarded; Close returns how many bytes were dropped.
func (f *Framer) Close() int {
	n := f.Buffered()
	f.partial.Reset()
	f.pending = nil
	f.dec.Reset()
	return n
}

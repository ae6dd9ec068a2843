package chatbot

import "sync"

// CompletionFunc receives the full reply text of a cleanly completed exchange
type CompletionFunc func(text string)

// completion invokes a CompletionFunc at most once per exchange
type completion struct {
	once sync.Once
	fn   CompletionFunc
}

func (c *completion) dispatch(text string) {
	if c.fn == nil {
		return
	}
	c.once.Do(func() { c.fn(text) })
}

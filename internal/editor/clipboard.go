package editor

import "sync"

// Clipboard is the session clipboard shared by every editor.
type Clipboard struct {
	mu   sync.Mutex
	text string
}

// Set replaces the clipboard content.
func (c *Clipboard) Set(s string) {
	c.mu.Lock()
	c.text = s
	c.mu.Unlock()
}

// Get returns the clipboard content.
func (c *Clipboard) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

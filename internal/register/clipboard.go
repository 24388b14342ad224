package register

import "github.com/atotto/clipboard"

// ClipboardProvider abstracts system clipboard access.
type ClipboardProvider interface {
	// Get returns the current clipboard content.
	Get() (string, error)

	// Set sets the clipboard content.
	Set(content string) error
}

// SystemClipboard is the OS clipboard.
type SystemClipboard struct{}

// Get reads the OS clipboard.
func (SystemClipboard) Get() (string, error) {
	return clipboard.ReadAll()
}

// Set writes the OS clipboard.
func (SystemClipboard) Set(content string) error {
	return clipboard.WriteAll(content)
}

// SystemClipboardAvailable reports whether the platform has a usable
// clipboard utility.
func SystemClipboardAvailable() bool {
	return !clipboard.Unsupported
}

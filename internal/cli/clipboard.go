package cli

import "github.com/atotto/clipboard"

// systemClipboard writes share links to the OS clipboard.
type systemClipboard struct{}

func (systemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// Package notify carries user-facing notices from the sync layer to
// whatever renders them.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Level distinguishes success notices from failures.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one localized message for the viewer.
type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// Writer prints notices as single lines.
func Writer(w io.Writer) Notifier {
	var mu sync.Mutex
	return Func(func(n Notice) {
		mu.Lock()
		defer mu.Unlock()
		mark := "✓"
		if n.Level == LevelError {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s: %s\n", mark, n.Title, n.Message)
	})
}

// Success builds a notice titled "Thành công".
func Success(message string) Notice {
	return Notice{Level: LevelSuccess, Title: TitleSuccess, Message: message}
}

// Failure builds an error notice with the given title.
func Failure(title, message string) Notice {
	return Notice{Level: LevelError, Title: title, Message: message}
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice, or the zero Notice.
func (r *Recorder) Last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

// Reset forgets recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

package logging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// LogEntry is a single log record forwarded to live stream subscribers.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Channel   string `json:"channel"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// StreamFilter selects which entries a subscriber receives. An empty
// Channel matches every channel.
type StreamFilter struct {
	Channel Channel
	Level   slog.Level
}

func (f StreamFilter) matches(entry LogEntry) bool {
	if f.Channel != "" && f.Channel != Channel(entry.Channel) {
		return false
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(entry.Level)); err != nil {
		return true
	}
	return level >= f.Level
}

type streamSubscriber struct {
	filter StreamFilter
	ch     chan LogEntry
	closed atomic.Bool
}

// LogStream fans log records out to live subscribers. Slow subscribers
// lose records rather than blocking the logger.
type LogStream struct {
	mu          sync.RWMutex
	subscribers map[*streamSubscriber]struct{}
	closed      atomic.Bool
}

var errStreamClosed = errors.New("logging: stream closed")

// NewLogStream creates an empty stream.
func NewLogStream() *LogStream {
	return &LogStream{subscribers: make(map[*streamSubscriber]struct{})}
}

// Subscribe registers a subscriber until ctx is done.
func (s *LogStream) Subscribe(ctx context.Context, filter StreamFilter) (<-chan LogEntry, error) {
	if s.closed.Load() {
		return nil, errStreamClosed
	}
	sub := &streamSubscriber{filter: filter, ch: make(chan LogEntry, 100)}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return nil, errStreamClosed
	}
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.remove(sub)
	}()
	return sub.ch, nil
}

func (s *LogStream) remove(sub *streamSubscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[sub]; !ok {
		return
	}
	delete(s.subscribers, sub)
	if sub.closed.CompareAndSwap(false, true) {
		close(sub.ch)
	}
}

// Publish forwards entry to every matching subscriber without blocking.
func (s *LogStream) Publish(entry LogEntry) {
	if s.closed.Load() {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sub := range s.subscribers {
		if sub.closed.Load() || !sub.filter.matches(entry) {
			continue
		}
		select {
		case sub.ch <- entry:
		default:
		}
	}
}

// Shutdown closes every subscriber channel.
func (s *LogStream) Shutdown() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subscribers {
		if sub.closed.CompareAndSwap(false, true) {
			close(sub.ch)
		}
	}
	s.subscribers = make(map[*streamSubscriber]struct{})
}

// Writer returns an io.Writer that decodes JSON log lines into the stream.
func (s *LogStream) Writer() io.Writer {
	return streamWriter{stream: s}
}

type streamWriter struct {
	stream *LogStream
}

func (w streamWriter) Write(p []byte) (int, error) {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err != nil {
		return len(p), nil
	}
	w.stream.Publish(LogEntry{
		Timestamp: stringField(raw, "time"),
		Level:     stringField(raw, "level"),
		Channel:   stringField(raw, "channel"),
		Message:   stringField(raw, "msg"),
	})
	return len(p), nil
}

func stringField(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

// fanoutHandler hands each record to several handlers.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return fanoutHandler{handlers: next}
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return fanoutHandler{handlers: next}
}

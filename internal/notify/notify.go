// Package notify implements the transient user-notification channel shared by
// the poller and the host registry.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a message stays visible before it is dismissed.
const DefaultTTL = 3 * time.Second

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Message is a single notification. A zero TTL means DefaultTTL.
type Message struct {
	Level Level
	Text  string
	TTL   time.Duration
}

// Notifier receives notifications.
type Notifier interface {
	Notify(msg Message)
}

// Func adapts a function to the Notifier interface.
type Func func(Message)

// Notify calls f(msg).
func (f Func) Notify(msg Message) { f(msg) }

// Discard drops every message.
var Discard Notifier = Func(func(Message) {})

// WithDefaultTTL returns a Notifier that gives messages without a TTL the
// given one before passing them to n.
func WithDefaultTTL(n Notifier, ttl time.Duration) Notifier {
	if ttl <= 0 {
		return n
	}
	return Func(func(msg Message) {
		if msg.TTL <= 0 {
			msg.TTL = ttl
		}
		n.Notify(msg)
	})
}

// Info sends an info-level message.
func Info(n Notifier, text string) {
	n.Notify(Message{Level: LevelInfo, Text: text})
}

// Success sends a success-level message.
func Success(n Notifier, text string) {
	n.Notify(Message{Level: LevelSuccess, Text: text})
}

// Error sends an error-level message.
func Error(n Notifier, text string) {
	n.Notify(Message{Level: LevelError, Text: text})
}

// Recorder stores every message it receives. Useful in tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Notify appends msg.
func (r *Recorder) Notify(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message, if any.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// HasLevel reports whether any recorded message has the given level.
func (r *Recorder) HasLevel(level Level) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

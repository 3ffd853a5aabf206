package service

import (
	"sync"
	"time"
)

// DefaultNoticeWindow is how long a notice stays visible
const DefaultNoticeWindow = 5 * time.Second

// NoticeLevel represents the severity of a notice
type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeSuccess NoticeLevel = "success"
)

// Notice is a transient, toast-style message for the user
type Notice struct {
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}

// Notifier holds at most one notice. A notice clears itself after the
// window; posting a new one restarts the window.
type Notifier struct {
	window time.Duration

	mu      sync.Mutex
	current *Notice
	timer   *time.Timer
	seq     uint64
}

// NewNotifier creates a notifier with the given visibility window
func NewNotifier(window time.Duration) *Notifier {
	if window <= 0 {
		window = DefaultNoticeWindow
	}
	return &Notifier{window: window}
}

// Error posts an error notice
func (n *Notifier) Error(message string) {
	n.post(NoticeError, message)
}

// Success posts a success notice
func (n *Notifier) Success(message string) {
	n.post(NoticeSuccess, message)
}

func (n *Notifier) post(level NoticeLevel, message string) {
	if n == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.seq++
	seq := n.seq
	n.current = &Notice{Level: level, Message: message, CreatedAt: time.Now()}

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.window, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.seq == seq {
			n.current = nil
			n.timer = nil
		}
	})
}

// Current returns the visible notice, if any
func (n *Notifier) Current() (Notice, bool) {
	if n == nil {
		return Notice{}, false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notice{}, false
	}
	return *n.current, true
}

// Clear removes the visible notice
func (n *Notifier) Clear() {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Notifier surfaces transient messages to the shopper (toasts in a UI, stderr
// lines in the CLI).
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string, err error)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Success(context.Context, string)       {}
func (Nop) Error(context.Context, string, error) {}

// LogNotifier writes notifications to out and records them in the log.
type LogNotifier struct {
	mu   sync.Mutex
	out  io.Writer
	logg *logger.Logger
}

func NewLogNotifier(out io.Writer, logg *logger.Logger) *LogNotifier {
	if out == nil {
		out = io.Discard
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogNotifier{out: out, logg: logg}
}

func (n *LogNotifier) Success(ctx context.Context, message string) {
	if message == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.out, "✓ %s\n", message)
	n.logg.Info(n.logg.WithField(ctx, "notice", message), "notify.success")
}

// Error shows message, or the public message derived from err when message is empty.
func (n *LogNotifier) Error(ctx context.Context, message string, err error) {
	text := Message(message, err)
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.out, "✗ %s\n", text)
	n.logg.Warn(n.logg.WithFields(ctx, map[string]any{
		"notice":     text,
		"error_code": string(pkgerrors.CodeOf(err)),
	}), "notify.error")
}

// Message picks the text shown for a failure. Validation and business errors
// carry their own message; everything else falls back to message, then the
// public text of the error code.
func Message(message string, err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Kind() {
		case pkgerrors.KindValidation, pkgerrors.KindBusiness:
			if typed.Message() != "" {
				return typed.Message()
			}
		}
	}
	if message != "" {
		return message
	}
	return pkgerrors.UserMessage(err)
}

// Notice is one recorded notification.
type Notice struct {
	Success bool
	Message string
	Err     error
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Success(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Success: true, Message: message})
}

func (r *Recorder) Error(_ context.Context, message string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Message: Message(message, err), Err: err})
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Errors returns only the failure notices.
func (r *Recorder) Errors() []Notice {
	var out []Notice
	for _, n := range r.Notices() {
		if !n.Success {
			out = append(out, n)
		}
	}
	return out
}

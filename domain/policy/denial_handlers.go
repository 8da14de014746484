package policy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/reglet-dev/sieve/domain/ports"
)

// Ensure implementations satisfy the interface.
var _ ports.DenialHandler = (*StderrDenialHandler)(nil)
var _ ports.DenialHandler = (*SlogDenialHandler)(nil)
var _ ports.DenialHandler = (*NopDenialHandler)(nil)
var _ ports.DenialHandler = (*RecordingDenialHandler)(nil)

// StderrDenialHandler writes denials to stderr, or to W when set.
type StderrDenialHandler struct {
	W io.Writer
}

func (h *StderrDenialHandler) OnDenial(name, requester, reason string) {
	w := h.W
	if w == nil {
		w = os.Stderr
	}
	if requester != "" {
		fmt.Fprintf(w, "Resolution Denied: %s requested by %s (Reason: %s)\n", name, requester, reason)
		return
	}
	fmt.Fprintf(w, "Resolution Denied: %s (Reason: %s)\n", name, reason)
}

// SlogDenialHandler logs denials at warn level through a structured logger.
// A nil Logger uses slog.Default().
type SlogDenialHandler struct {
	Logger *slog.Logger
}

func (h *SlogDenialHandler) OnDenial(name, requester, reason string) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, "sandbox: resolution denied",
		slog.String("name", name),
		slog.String("requester", requester),
		slog.String("reason", reason),
	)
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(name, requester, reason string) {}

// Denial is one refused resolution captured by RecordingDenialHandler.
type Denial struct {
	Name      string
	Requester string
	Reason    string
}

// RecordingDenialHandler keeps every denial in memory for audits and tests.
type RecordingDenialHandler struct {
	mu      sync.Mutex
	denials []Denial
}

func (h *RecordingDenialHandler) OnDenial(name, requester, reason string) {
	h.mu.Lock()
	h.denials = append(h.denials, Denial{Name: name, Requester: requester, Reason: reason})
	h.mu.Unlock()
}

// Denials returns a copy of the recorded denials in arrival order.
func (h *RecordingDenialHandler) Denials() []Denial {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Denial, len(h.denials))
	copy(out, h.denials)
	return out
}

package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID tags every record emitted by one daemon run.
const FieldSessionID = "session_id"

type sessionIDHandler struct {
	slog.Handler
	sessionID string
}

func newSessionIDHandler(base slog.Handler, sessionID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &sessionIDHandler{Handler: base, sessionID: sessionID}
}

func (h *sessionIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	return h.Handler.Handle(ctx, record)
}

func (h *sessionIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionIDHandler{Handler: h.Handler.WithAttrs(attrs), sessionID: h.sessionID}
}

func (h *sessionIDHandler) WithGroup(name string) slog.Handler {
	return &sessionIDHandler{Handler: h.Handler.WithGroup(name), sessionID: h.sessionID}
}

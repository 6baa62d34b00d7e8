package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// shortRequestID is how many characters of a request id the console shows.
const shortRequestID = 8

// prettyHandler renders one line per record:
//
//	2006-01-02 15:04:05 INFO [ipc #1a2b3c4d] message process=firefox key=value
//
// The component and request id move into the bracketed header and the
// process field, when present, is printed first. Debug records list their
// fields on separate lines.
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// consoleLine is a record split into its header and remaining fields.
type consoleLine struct {
	component string
	requestID string
	fields    []kv
}

func (h *prettyHandler) split(record slog.Record) consoleLine {
	all := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&all, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&all, h.groups, attr)
		return true
	})

	var line consoleLine
	var proc []kv
	for _, field := range dedupeKVsByKey(all) {
		switch field.key {
		case FieldComponent:
			line.component = attrString(field.value)
		case FieldRequestID:
			line.requestID = attrString(field.value)
		case FieldProcess:
			proc = append(proc, field)
		default:
			line.fields = append(line.fields, field)
		}
	}
	line.fields = append(proc, line.fields...)
	return line
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	line := h.split(record)

	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}

	var buf bytes.Buffer
	buf.Grow(128 + len(line.fields)*24)
	buf.WriteString(formatTimestamp(timestamp))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	writeHeader(&buf, line)
	buf.WriteByte(' ')
	buf.WriteString(message)
	if h.addSource {
		if src := record.Source(); src != nil {
			buf.WriteString(" [")
			buf.WriteString(filepath.Base(src.File))
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(src.Line))
			buf.WriteByte(']')
		}
	}
	if record.Level < slog.LevelInfo {
		writeFieldBlock(&buf, line.fields)
	} else {
		writeFieldInline(&buf, line.fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func writeHeader(buf *bytes.Buffer, line consoleLine) {
	if line.component == "" && line.requestID == "" {
		return
	}
	buf.WriteString(" [")
	buf.WriteString(line.component)
	if line.requestID != "" {
		if line.component != "" {
			buf.WriteByte(' ')
		}
		buf.WriteByte('#')
		id := line.requestID
		if len(id) > shortRequestID {
			id = id[:shortRequestID]
		}
		buf.WriteString(id)
	}
	buf.WriteByte(']')
}

func writeFieldInline(buf *bytes.Buffer, fields []kv) {
	for _, field := range fields {
		buf.WriteByte(' ')
		buf.WriteString(field.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(field.value))
	}
	buf.WriteByte('\n')
}

func writeFieldBlock(buf *bytes.Buffer, fields []kv) {
	buf.WriteByte('\n')
	for _, field := range fields {
		buf.WriteString("    ")
		buf.WriteString(field.key)
		buf.WriteString(": ")
		buf.WriteString(formatValue(field.value))
		buf.WriteByte('\n')
	}
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *prettyHandler) clone() *prettyHandler {
	return &prettyHandler{
		mu:        h.mu,
		writer:    h.writer,
		level:     h.level,
		attrs:     slices.Clone(h.attrs),
		groups:    slices.Clone(h.groups),
		addSource: h.addSource,
	}
}

type kv struct {
	key   string
	value slog.Value
}

// dedupeKVsByKey keeps the first position of each key with its last value.
func dedupeKVsByKey(fields []kv) []kv {
	if len(fields) < 2 {
		return fields
	}
	positions := make(map[string]int, len(fields))
	out := make([]kv, 0, len(fields))
	for _, field := range fields {
		if field.key == "" {
			continue
		}
		if pos, ok := positions[field.key]; ok {
			out[pos].value = field.value
			continue
		}
		positions[field.key] = len(out)
		out = append(out, field)
	}
	return out
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(slices.Clone(prefix), attr.Key)
		}
		flattenAttrs(dst, next, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(append(slices.Clone(prefix), key), ".")
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"proctrack/internal/ipc"
	"proctrack/internal/logging"
	"proctrack/internal/state"
)

// Env is what handlers may touch.
type Env struct {
	Store *state.Store
	// Shutdown runs after the quit response has been written.
	Shutdown func()
}

// Result is a handler's Ok message. Process names the single tracked
// process a mutation touched, if any.
type Result struct {
	Message string
	Process string
}

// Handler executes one request kind.
type Handler func(ctx context.Context, env Env, payload json.RawMessage) (Result, error)

// Table is the dispatch table for every request kind.
var Table = map[ipc.Kind]Handler{
	ipc.KindShow:     showProcesses,
	ipc.KindExport:   showProcesses,
	ipc.KindSettings: showSettings,
	ipc.KindAdd:      addProcess,
	ipc.KindRemove:   removeProcess,
	ipc.KindOption:   changeOptions,
	ipc.KindChange:   changeProcess,
	ipc.KindDuration: changeDuration,
	ipc.KindImport:   importProcesses,
	ipc.KindMove:     moveProcess,
	ipc.KindQuit:     quit,
}

// readOnly kinds are not logged at info level.
var readOnly = map[ipc.Kind]bool{
	ipc.KindShow:     true,
	ipc.KindExport:   true,
	ipc.KindSettings: true,
}

// ErrShuttingDown is returned for requests that arrive after Close.
var ErrShuttingDown = errors.New("server is shutting down")

// Dispatcher routes decoded requests through Table.
type Dispatcher struct {
	env    Env
	table  map[ipc.Kind]Handler
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher binds the table to env.
func NewDispatcher(env Env, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		env:    env,
		table:  Table,
		logger: logging.NewComponentLogger(logger, "commands"),
	}
}

// Handle implements ipc.Handler.
func (d *Dispatcher) Handle(ctx context.Context, req ipc.Request) (ipc.Reply, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ipc.Reply{}, ErrShuttingDown
	}
	handler, ok := d.table[req.Kind]
	if !ok {
		return ipc.Reply{}, fmt.Errorf("unsupported request %q", req.Kind)
	}
	res, err := handler(ctx, d.env, req.Payload)
	if err != nil {
		return ipc.Reply{}, err
	}
	if !readOnly[req.Kind] {
		attrs := []logging.Attr{
			logging.String(logging.FieldCommand, string(req.Kind)),
			logging.String(logging.FieldEventType, "command_applied"),
		}
		if res.Process != "" {
			attrs = append(attrs, logging.String(logging.FieldProcess, res.Process))
		}
		logging.WithContext(ctx, d.logger).Info(res.Message, logging.Args(attrs...)...)
	}
	reply := ipc.Reply{Message: res.Message}
	if req.Kind == ipc.KindQuit {
		reply.After = d.env.Shutdown
	}
	return reply, nil
}

// Close waits for in-flight requests and rejects every later one.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

func decode[T any](kind ipc.Kind, payload json.RawMessage) (T, error) {
	var out T
	if len(payload) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("invalid %s request -> %v", kind, err)
	}
	return out, nil
}

package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"proctrack/internal/logging"
)

const (
	// MaxRequestBytes bounds a single request body.
	MaxRequestBytes = 1 << 20
	readTimeout     = 5 * time.Second
	writeTimeout    = 5 * time.Second
)

// Reply is a handler's successful result. After, when set, runs once the
// response has been written and the connection closed.
type Reply struct {
	Message string
	After   func()
}

// Handler executes decoded requests.
type Handler interface {
	Handle(ctx context.Context, req Request) (Reply, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) (Reply, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req Request) (Reply, error) {
	return f(ctx, req)
}

// Server accepts one request per connection on a Unix domain socket.
type Server struct {
	path     string
	handler  Handler
	logger   *slog.Logger
	listener net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer binds the socket at path. An existing socket file is replaced
// only when nothing answers on it.
func NewServer(ctx context.Context, path string, handler Handler, logger *slog.Logger) (*Server, error) {
	if handler == nil {
		return nil, errors.New("ipc server requires handler")
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := removeStaleSocket(path); err != nil {
		return nil, err
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("restrict socket permissions: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:     path,
		handler:  handler,
		logger:   logger,
		listener: listener,
		ctx:      serverCtx,
		cancel:   cancel,
	}, nil
}

func removeStaleSocket(path string) error {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat socket: %w", err)
	}
	conn, err := net.DialTimeout("unix", path, 500*time.Millisecond)
	if err == nil {
		_ = conn.Close()
		return fmt.Errorf("socket %s is in use by another daemon", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}

// Path returns the bound socket path.
func (s *Server) Path() string {
	return s.path
}

// Serve starts accepting connections until Close or context cancellation.
func (s *Server) Serve() {
	s.logger.Info("IPC server listening",
		logging.String("socket", s.path),
		logging.String(logging.FieldEventType, "ipc_listening"),
	)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		go func() {
			<-s.ctx.Done()
			_ = s.listener.Close()
		}()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"),
				)
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.serveConn(c)
			}(conn)
		}
	}()
}

// StopAccepting closes the listener without waiting for connections already
// accepted. It is safe to call from a connection's After hook.
func (s *Server) StopAccepting() {
	s.cancel()
	_ = s.listener.Close()
}

// Close stops accepting, waits for in-flight connections and removes the
// socket file.
func (s *Server) Close() {
	s.cancel()
	_ = s.listener.Close()
	s.wg.Wait()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"),
		)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	ctx := logging.WithRequestID(s.ctx, uuid.NewString())
	logger := logging.WithContext(ctx, s.logger)

	after, err := s.exchange(ctx, conn, logger)
	_ = conn.Close()
	if err != nil {
		logging.WarnWithContext(logger, "request dropped", "ipc_request_invalid",
			logging.Error(err),
			logging.String(logging.FieldImpact, "client receives no response"),
			logging.String(logging.FieldErrorHint, "send one JSON request and close the write side"),
		)
		return
	}
	if after != nil {
		after()
	}
}

func (s *Server) exchange(ctx context.Context, conn net.Conn, logger *slog.Logger) (func(), error) {
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	body, err := io.ReadAll(io.LimitReader(conn, MaxRequestBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	if len(body) > MaxRequestBytes {
		return nil, fmt.Errorf("request exceeds %d bytes", MaxRequestBytes)
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}

	start := time.Now()
	reply, handleErr := s.handler.Handle(ctx, req)
	env := OK(reply.Message)
	if handleErr != nil {
		env = Fail(handleErr.Error())
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldCommand, string(req.Kind)),
		logging.Duration("elapsed", time.Since(start)),
	}
	if handleErr != nil {
		logger.Info("request failed", logging.Args(append(attrs, logging.Error(handleErr))...)...)
	} else {
		logger.Debug("request handled", logging.Args(attrs...)...)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write response: %w", err)
	}
	if handleErr != nil {
		return nil, nil
	}
	return reply.After, nil
}

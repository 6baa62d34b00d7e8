package ipc_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"proctrack/internal/ipc"
	"proctrack/internal/logging"
)

func startServer(t *testing.T, handler ipc.Handler) (*ipc.Server, string) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "proctrack.sock")
	srv, err := ipc.NewServer(context.Background(), socket, handler, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)
	return srv, socket
}

func echoHandler() ipc.HandlerFunc {
	return func(_ context.Context, req ipc.Request) (ipc.Reply, error) {
		switch req.Kind {
		case ipc.KindRemove:
			return ipc.Reply{}, errors.New("no processes to remove")
		default:
			return ipc.Reply{Message: string(req.Kind) + ":" + string(req.Payload)}, nil
		}
	}
}

func TestRequestMarshalTagged(t *testing.T) {
	req, err := ipc.NewRequest(ipc.KindShow, ipc.SelectPayload{IDs: "0-3"})
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"show":{"ids":"0-3"}}` {
		t.Fatalf("unexpected encoding %s", data)
	}

	quit, _ := ipc.NewRequest(ipc.KindQuit, nil)
	data, _ = json.Marshal(quit)
	if string(data) != `{"quit":{}}` {
		t.Fatalf("unexpected quit encoding %s", data)
	}
}

func TestRequestUnmarshal(t *testing.T) {
	tests := []struct {
		input   string
		kind    ipc.Kind
		payload string
		wantErr bool
	}{
		{input: `{"add":{"name":"vim"}}`, kind: ipc.KindAdd, payload: `{"name":"vim"}`},
		{input: `"quit"`, kind: ipc.KindQuit, payload: `{}`},
		{input: `{"settings":null}`, kind: ipc.KindSettings, payload: `{}`},
		{input: `{"launch":{}}`, wantErr: true},
		{input: `"launch"`, wantErr: true},
		{input: `{"add":{},"remove":{}}`, wantErr: true},
		{input: `{}`, wantErr: true},
		{input: `[1]`, wantErr: true},
	}
	for _, tt := range tests {
		var req ipc.Request
		err := json.Unmarshal([]byte(tt.input), &req)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tt.input, err)
		}
		if req.Kind != tt.kind || string(req.Payload) != tt.payload {
			t.Fatalf("%s: got %s %s", tt.input, req.Kind, req.Payload)
		}
	}
}

func TestEnvelopeEncoding(t *testing.T) {
	ok, _ := json.Marshal(ipc.OK("added vim"))
	if string(ok) != `{"Ok":"added vim"}` {
		t.Fatalf("unexpected ok envelope %s", ok)
	}
	fail, _ := json.Marshal(ipc.Fail("no processes to remove"))
	if string(fail) != `{"Err":"no processes to remove"}` {
		t.Fatalf("unexpected err envelope %s", fail)
	}

	var env ipc.Envelope
	if err := json.Unmarshal([]byte(`{"Ok":""}`), &env); err != nil {
		t.Fatal(err)
	}
	if msg, err := env.Result(); err != nil || msg != "" {
		t.Fatalf("empty Ok should be success, got %q %v", msg, err)
	}
	if _, err := (ipc.Envelope{}).Result(); err == nil {
		t.Fatal("empty envelope must be malformed")
	}
}

func TestServerClientRoundTrip(t *testing.T) {
	_, socket := startServer(t, echoHandler())

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msg, err := client.Do(ctx, ipc.KindAdd, ipc.AddPayload{Name: "vim"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if msg != `add:{"name":"vim"}` {
		t.Fatalf("unexpected message %q", msg)
	}

	_, err = client.Do(ctx, ipc.KindRemove, ipc.RemovePayload{ID: 0})
	var remote *ipc.RemoteError
	if !errors.As(err, &remote) || remote.Message != "no processes to remove" {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestSocketPermissions(t *testing.T) {
	_, socket := startServer(t, echoHandler())
	info, err := os.Stat(socket)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected socket mode 0600, got %o", perm)
	}
}

func TestMalformedRequestGetsNoResponse(t *testing.T) {
	_, socket := startServer(t, echoHandler())

	conn, err := net.Dial("unix", socket)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(`{"add":`)); err != nil {
		t.Fatal(err)
	}
	_ = conn.(*net.UnixConn).CloseWrite()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	body, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(body) != 0 {
		t.Fatalf("expected no response, got %s", body)
	}

	// The server keeps serving other connections.
	client := ipc.NewClient(socket)
	if _, err := client.Do(context.Background(), ipc.KindSettings, nil); err != nil {
		t.Fatalf("follow-up request failed: %v", err)
	}
}

func TestAfterHookRunsAfterResponse(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	handler := ipc.HandlerFunc(func(_ context.Context, req ipc.Request) (ipc.Reply, error) {
		return ipc.Reply{
			Message: "stopping server",
			After: func() {
				calls.Add(1)
				close(done)
			},
		}, nil
	})
	_, socket := startServer(t, handler)

	msg, err := ipc.NewClient(socket).Quit(context.Background())
	if err != nil || msg != "stopping server" {
		t.Fatalf("unexpected quit result %q %v", msg, err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("after hook never ran")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one hook call, got %d", calls.Load())
	}
}

func TestStopAcceptingFromAfterHook(t *testing.T) {
	var srv *ipc.Server
	stopped := make(chan struct{})
	handler := ipc.HandlerFunc(func(_ context.Context, req ipc.Request) (ipc.Reply, error) {
		if req.Kind != ipc.KindQuit {
			return ipc.Reply{Message: "ok"}, nil
		}
		return ipc.Reply{
			Message: "stopping server",
			After: func() {
				srv.StopAccepting()
				close(stopped)
			},
		}, nil
	})
	srv, socket := startServer(t, handler)

	if _, err := ipc.NewClient(socket).Quit(context.Background()); err != nil {
		t.Fatalf("quit: %v", err)
	}
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("after hook never ran")
	}
	if _, err := ipc.Dial(socket); err == nil {
		t.Fatal("expected dial to fail once the listener is closed")
	}
}

func TestStaleSocketReplaced(t *testing.T) {
	dir := t.TempDir()
	socket := filepath.Join(dir, "proctrack.sock")
	if err := os.WriteFile(socket, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	srv, err := ipc.NewServer(context.Background(), socket, echoHandler(), nil)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("expected stale socket to be replaced: %v", err)
	}
	srv.Close()
}

func TestLiveSocketNotStolen(t *testing.T) {
	_, socket := startServer(t, echoHandler())
	if _, err := ipc.NewServer(context.Background(), socket, echoHandler(), nil); err == nil {
		t.Fatal("expected second server on a live socket to fail")
	}
}

func TestDialMissingSocket(t *testing.T) {
	if _, err := ipc.Dial(filepath.Join(t.TempDir(), "missing.sock")); err == nil {
		t.Fatal("expected dial error")
	}
}

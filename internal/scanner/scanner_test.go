package scanner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

func writeComm(t *testing.T, root, pid, name string) {
	t.Helper()
	dir := filepath.Join(root, pid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "comm"), []byte(name+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestProcFSReadsNumericEntries(t *testing.T) {
	root := t.TempDir()
	writeComm(t, root, "1", "init")
	writeComm(t, root, "42", "vim")
	writeComm(t, root, "43", "vim")
	writeComm(t, root, "self", "ignored")
	if err := os.MkdirAll(filepath.Join(root, "99"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := ProcFS{Root: root}.RunningProcesses(context.Background())
	if err != nil {
		t.Fatalf("RunningProcesses: %v", err)
	}
	if got, want := Sorted(names), []string{"init", "vim"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestProcFSMissingRoot(t *testing.T) {
	_, err := ProcFS{Root: filepath.Join(t.TempDir(), "nope")}.RunningProcesses(context.Background())
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestProcFSHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	writeComm(t, root, "1", "init")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (ProcFS{Root: root}).RunningProcesses(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestParsePSOutput(t *testing.T) {
	names := parsePSOutput([]byte("launchd\n  Safari\n\nvim\nvim\n"))
	if got, want := Sorted(names), []string{"Safari", "launchd", "vim"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestPSUsesCommandContext(t *testing.T) {
	var gotName string
	var gotArgs []string
	orig := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotName, gotArgs = name, args
		return exec.CommandContext(ctx, "printf", "one\ntwo\n")
	}
	t.Cleanup(func() { commandContext = orig })

	names, err := PS{}.RunningProcesses(context.Background())
	if err != nil {
		t.Skipf("printf unavailable: %v", err)
	}
	if gotName != "ps" || !reflect.DeepEqual(gotArgs, []string{"-axco", "comm="}) {
		t.Fatalf("unexpected invocation %s %v", gotName, gotArgs)
	}
	if got, want := Sorted(names), []string{"one", "two"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFuncAdapter(t *testing.T) {
	s := Func(func(context.Context) (map[string]struct{}, error) {
		return map[string]struct{}{"x": {}}, nil
	})
	names, err := s.RunningProcesses(context.Background())
	if err != nil || len(names) != 1 {
		t.Fatalf("unexpected result %v %v", names, err)
	}
}

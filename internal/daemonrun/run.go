package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"proctrack/internal/commands"
	"proctrack/internal/config"
	"proctrack/internal/daemon"
	"proctrack/internal/ipc"
	"proctrack/internal/logging"
	"proctrack/internal/preflight"
	"proctrack/internal/scanner"
	"proctrack/internal/state"
)

// finalSaveTimeout bounds the save performed on the way out.
const finalSaveTimeout = 30 * time.Second

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides the configured level when set.
	LogLevel    string
	Development bool
	// Scanner replaces the platform scanner; tests use it.
	Scanner scanner.Scanner
	// Ready, when set, is called once the socket is accepting requests.
	Ready func()
}

// Run starts the proctrack daemon and blocks until a signal or a quit
// request stops it. Startup failures are returned.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancelSignals := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancelSignals()
	runCtx, stop := context.WithCancel(signalCtx)
	defer stop()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	sessionID := uuid.NewString()
	logger, err := logging.NewFromConfig(cfg, sessionID)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	scan := opts.Scanner
	if scan == nil {
		scan = scanner.Default()
	}
	results := preflight.RunAll(runCtx, cfg, scan)
	logPreflight(logger, results)
	if err := preflight.Failed(results); err != nil {
		logging.ErrorWithContext(logger, "preflight failed", "preflight_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run proctrack status for each check"),
		)
		return err
	}

	files := state.FilesFromConfig(cfg)
	store, err := state.Load(files, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "load state", "state_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or move aside the files in "+cfg.Paths.DataDir),
		)
		return err
	}
	backoff := time.Duration(cfg.Persistence.LockBackoffMillis) * time.Millisecond
	writer := state.NewWriter(store, files, backoff, logger)
	writer.Start()
	defer writer.Close()

	d, err := daemon.New(cfg, store, writer, scan, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(runCtx); err != nil {
		return err
	}
	defer d.Stop()

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	var (
		server     *ipc.Server
		dispatcher *commands.Dispatcher
		saveOnce   sync.Once
	)
	// finalSave refuses further requests before saving so that every
	// acknowledged change is on disk.
	finalSave := func(reason string) {
		saveOnce.Do(func() {
			if server != nil {
				server.StopAccepting()
			}
			if dispatcher != nil {
				dispatcher.Close()
			}
			d.Stop()
			ctx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
			defer cancel()
			if err := writer.Save(ctx, reason); err != nil {
				logging.ErrorWithContext(logger, "final save failed", "final_save_failed",
					logging.Error(err),
					logging.String("reason", reason),
					logging.String(logging.FieldErrorHint, "check permissions on "+cfg.Paths.DataDir),
				)
			}
		})
	}

	dispatcher = commands.NewDispatcher(commands.Env{
		Store: store,
		Shutdown: func() {
			finalSave("quit")
			stop()
		},
	}, logger)

	server, err = ipc.NewServer(runCtx, cfg.Paths.SocketPath, dispatcher, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer server.Close()
	server.Serve()

	logger.Info("proctrack daemon ready",
		logging.String(logging.FieldEventType, "daemon_ready"),
		logging.String("socket", cfg.Paths.SocketPath),
		logging.String("data_dir", cfg.Paths.DataDir),
		logging.Int("pid", os.Getpid()),
	)
	if opts.Ready != nil {
		opts.Ready()
	}

	<-runCtx.Done()
	if signalCtx.Err() != nil {
		finalSave("signal")
	}
	logger.Info("proctrack daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logPreflight(logger *slog.Logger, results []preflight.Result) {
	for _, r := range results {
		if r.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
			)
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_check_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "fix the reported path or dependency and restart"),
			logging.String(logging.FieldImpact, "daemon will not start"),
		)
	}
}

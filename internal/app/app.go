package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/insight/internal/config"
	"github.com/five82/insight/internal/insight"
	"github.com/five82/insight/internal/lifecycle"
	"github.com/five82/insight/internal/logging"
	"github.com/five82/insight/internal/prefs"
	"github.com/five82/insight/internal/ui"
)

// Options configure the insight application.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/insight/prefs.toml
	ServiceURL string        // overrides service_url when set
	Timeout    time.Duration // overrides request_timeout when positive

	// Headless runs
	URL    string
	JSON   bool
	Stdout io.Writer
	Stderr io.Writer
}

// runtime is everything both modes share once startup succeeds.
type runtime struct {
	cfg        config.Config
	logger     *log.Logger
	closer     io.Closer
	logErr     error
	client     *insight.Client
	controller *lifecycle.Controller
}

func (r *runtime) Close() {
	if r.closer != nil {
		_ = r.closer.Close()
	}
}

// fallbackLogger builds the logger used when the log file cannot be opened.
type fallbackLogger func(level string) *log.Logger

// discardLogger drops everything. The TUI must not write to stderr while
// the alt screen is up.
func discardLogger(level string) *log.Logger {
	return logging.New(io.Discard, level)
}

func setup(opts Options, fallback fallbackLogger) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.ServiceURL); v != "" {
		cfg.ServiceURL = v
	}
	if opts.Timeout > 0 {
		cfg.RequestTimeout = opts.Timeout
	}

	logger, closer, logErr := logging.OpenFile(cfg.LogPath(), cfg.LogLevel)
	if logErr != nil {
		logger = fallback(cfg.LogLevel)
		logger.Warn("file logging disabled", "path", cfg.LogPath(), "error", logErr)
	}

	client, err := insight.NewClient(cfg.ServiceURL,
		insight.WithTimeout(cfg.RequestTimeout),
		insight.WithLogger(logger),
	)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("init insight client: %w", err)
	}

	controller := lifecycle.New(client, lifecycle.WithLogger(logger))
	controller.OnTransition(func(from, to lifecycle.State) {
		logger.Debug("state changed", "from", from.Status(), "to", to.Status())
	})

	logger.Info("insight starting", "endpoint", client.Endpoint(), "timeout", cfg.RequestTimeout)

	return &runtime{
		cfg:        cfg,
		logger:     logger,
		closer:     closer,
		logErr:     logErr,
		client:     client,
		controller: controller,
	}, nil
}

// Run boots the insight TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	rt, err := setup(opts, discardLogger)
	if err != nil {
		return err
	}
	defer rt.Close()

	var notice string
	if rt.logErr != nil {
		notice = fmt.Sprintf("File logging disabled: %v", rt.logErr)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	err = ui.Run(ui.Options{
		Context:    ctx,
		Controller: rt.controller,
		Logger:     rt.logger,
		Endpoint:   rt.client.Endpoint(),
		LogPath:    rt.cfg.LogPath(),
		PrefsPath:  prefsPath,
		Prefs:      prefs.Load(prefsPath),
		InitialURL: opts.URL,
		Notice:     notice,
	})
	rt.logger.Info("insight stopped", "error", err)
	if rt.logErr != nil {
		fmt.Fprintf(stderr(opts), "insight: file logging disabled (%s): %v\n", rt.cfg.LogPath(), rt.logErr)
	}
	return err
}

func stdout(opts Options) io.Writer {
	if opts.Stdout != nil {
		return opts.Stdout
	}
	return os.Stdout
}

func stderr(opts Options) io.Writer {
	if opts.Stderr != nil {
		return opts.Stderr
	}
	return os.Stderr
}

// Package main is the entry point for the modal editing shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/dshills/modal/internal/config"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/plugin/lua"
	"github.com/dshills/modal/internal/register"
	"github.com/dshills/modal/internal/session"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// Options are the command line flags.
type Options struct {
	Config    string   `short:"c" long:"config" description:"Path to the TOML configuration file" default:"modal.toml"`
	Keys      string   `short:"k" long:"keys" description:"Replay keys in vim notation without a terminal and print the result"`
	Registers string   `short:"r" long:"registers" description:"YAML file registers are loaded from and saved to"`
	Plugins   []string `short:"p" long:"plugin" description:"Lua plugin script to load (repeatable)"`
	LogLevel  string   `long:"log-level" description:"Log level (debug, info, warn, error)"`
	LogFile   string   `long:"log-file" description:"Write the log to this file"`
	Version   bool     `short:"v" long:"version" description:"Show version information"`

	Args struct {
		File string `positional-arg-name:"FILE" description:"File to edit"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [FILE]"
	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return 0
		}
		return 2
	}
	if opts.Version {
		fmt.Printf("modal %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.Registers == "" {
		opts.Registers = cfg.Registers.File
	}

	headless := opts.Keys != ""
	log, closeLog, err := newLogger(cfg, opts, headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	text, err := readFile(opts.Args.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	buf := buffer.New(text)

	registers := register.NewTable(registerOptions(cfg, log)...)
	if err := loadRegisters(registers, opts.Registers); err != nil {
		log.Warn("%v", err)
	}
	if opts.Args.File != "" {
		registers.SetSpecial(register.Alternate, opts.Args.File)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if headless {
		return runHeadless(ctx, cfg, buf, registers, log, opts)
	}
	return runTerminal(ctx, cfg, buf, registers, log, opts)
}

// newLogger builds the logger from the configuration, with flags taking
// precedence. The terminal shell logs nowhere unless a file is given.
func newLogger(cfg config.Config, opts Options, headless bool) (*logging.Logger, func(), error) {
	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	path := cfg.Log.File
	if opts.LogFile != "" {
		path = opts.LogFile
	}

	lcfg := logging.DefaultConfig()
	lcfg.Level = logging.ParseLevel(level)
	closeFn := func() {}
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		lcfg.Output = f
		closeFn = func() { f.Close() }
	case !headless:
		lcfg.Output = io.Discard
	}
	return logging.New(lcfg), closeFn, nil
}

func registerOptions(cfg config.Config, log *logging.Logger) []register.Option {
	opts := []register.Option{register.WithLogger(log)}
	if cfg.Registers.UseSystemClipboard && register.SystemClipboardAvailable() {
		opts = append(opts, register.WithClipboard(register.SystemClipboard{}))
	}
	return opts
}

func readFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func loadRegisters(t *register.Table, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening registers file: %w", err)
	}
	defer f.Close()
	return t.Load(f)
}

func saveRegisters(t *register.Table, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating registers file: %w", err)
	}
	if err := t.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// newSession builds a session with faults recovered and metrics on, and
// loads the configured plugins into it.
func newSession(cfg config.Config, buf *buffer.Buffer, ui session.UI, registers *register.Table, log *logging.Logger, opts Options) (*session.Session, *lua.Plugins, error) {
	sopts := session.DefaultOptions()
	sopts.RecoverFaults = true
	sopts.EnableMetrics = true

	s, err := session.New(cfg, buf, ui, registers, log, sopts)
	if err != nil {
		return nil, nil, err
	}

	plugins := lua.New(s, log)
	scripts := append(append([]string(nil), cfg.Plugins.Scripts...), opts.Plugins...)
	if err := plugins.LoadAll(scripts); err != nil {
		log.Warn("some plugins failed to load")
	}
	return s, plugins, nil
}

// runHeadless replays opts.Keys and prints the resulting text.
func runHeadless(ctx context.Context, cfg config.Config, buf *buffer.Buffer, registers *register.Table, log *logging.Logger, opts Options) int {
	ui := &printUI{w: os.Stderr}
	s, plugins, err := newSession(cfg, buf, ui, registers, log, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer plugins.Close()

	events, err := key.ParseSequence(opts.Keys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	code := 0
	if err := s.HandleKeys(ctx, events); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code = 1
	}
	fmt.Println(buf.String())

	if m := s.Metrics(); m != nil {
		log.Info("dispatched %d steps, %d panics recovered", m.TotalDispatches(), m.TotalPanics())
		for _, a := range m.TopActions(5) {
			log.Debug("%s: %d dispatches, %d aborted, max %s", a.Name, a.DispatchCount, a.AbortCount, a.MaxDuration)
		}
	}
	if err := saveRegisters(registers, opts.Registers); err != nil {
		log.Error("%v", err)
	}
	return code
}

// printUI writes status messages to w.
type printUI struct {
	session.NopUI
	w io.Writer
}

func (u *printUI) SetStatusText(text string, isError bool) {
	if isError {
		fmt.Fprintf(u.w, "error: %s\n", text)
		return
	}
	fmt.Fprintln(u.w, text)
}

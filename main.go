// pattern: Imperative Shell
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"repomirror/internal/cli"
	"repomirror/internal/config"
	"repomirror/internal/logging"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses global flags, loads configuration and dispatches the command.
// It returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("repomirror", flag.ContinueOnError)
	fs.SetOutput(stderr)
	// Stop at the subcommand so its own flags and --help reach it.
	fs.SetInterspersed(false)

	configPath := fs.String("config", "", "config file (default: ~/.config/repomirror/config.yaml)")
	workingDir := fs.StringP("working-dir", "w", "", "directory holding all clones")
	gitBinary := fs.String("git", "", "git executable (default: git on PATH)")
	bare := fs.Bool("bare", false, "keep canonical clones bare")
	lock := fs.Bool("lock", false, "serialize operations on a repository across processes")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")

	fs.Usage = func() {
		cli.NewApp(version).PrintHelp(stderr)
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if fs.Changed("working-dir") {
		cfg.WorkingDirectory = config.ExpandPath(*workingDir)
	}
	if fs.Changed("git") {
		cfg.GitBinary = *gitBinary
	}
	if fs.Changed("bare") {
		cfg.Bare = *bare
	}
	if fs.Changed("lock") {
		cfg.Lock = *lock
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	logManager, err := logging.NewManager(logging.Config{
		FilePath:   cfg.LogFile,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Level:      cfg.LogLevel,
		Console:    stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")

	binary, err := cfg.ResolveGitBinary()
	if err != nil {
		// Commands that never run git still work; the others fail when
		// they try to start it.
		appLogger.Debug("git lookup failed", "error", err)
		binary = cfg.GitBinary
		if binary == "" {
			binary = "git"
		}
	}
	appLogger.Debug("configuration loaded",
		"working_directory", cfg.WorkingDirectory,
		"git", binary,
		"bare", cfg.Bare,
		"lock", cfg.Lock,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &cli.Env{
		Config:    cfg,
		GitBinary: binary,
		Logs:      logManager,
		Stdout:    stdout,
	}
	app := cli.BuildApp(version, env)
	app.Stderr = stderr

	code := app.Execute(ctx, fs.Args())
	if code != 0 {
		appLogger.Debug("command failed", "args", fs.Args(), "exit_code", code)
	}
	return code
}

// loadConfig loads the configuration from the given file or the default location.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(config.ExpandPath(path))
	}
	return config.Load()
}

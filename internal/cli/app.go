// pattern: Functional Core
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// Command represents a single CLI command with its metadata and handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(ctx context.Context, args []string) error
}

// Group represents a group of related commands.
type Group struct {
	Name     string
	Summary  string
	Commands map[string]*Command
}

// App represents the top-level CLI application with groups and ungrouped commands.
type App struct {
	groups   map[string]*Group
	commands map[string]*Command
	version  string

	// Stderr receives help and error output. Defaults to os.Stderr.
	Stderr io.Writer
}

// UsageError reports wrong arguments for a command. Execute prints the
// command's usage line instead of the error text.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return e.Usage
}

func usageErr(usage string) error {
	return &UsageError{Usage: usage}
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string) *App {
	return &App{
		groups:   make(map[string]*Group),
		commands: make(map[string]*Command),
		version:  version,
		Stderr:   os.Stderr,
	}
}

// AddGroup creates and registers a new command group.
func (a *App) AddGroup(name, summary string) *Group {
	g := &Group{
		Name:     name,
		Summary:  summary,
		Commands: make(map[string]*Command),
	}
	a.groups[name] = g
	return g
}

// AddCommand registers an ungrouped (top-level) command.
func (a *App) AddCommand(cmd *Command) {
	a.commands[cmd.Name] = cmd
}

// AddCommand registers a command in the group.
func (g *Group) AddCommand(cmd *Command) {
	g.Commands[cmd.Name] = cmd
}

// Execute dispatches the CLI arguments to the appropriate command and
// returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		a.PrintHelp(a.Stderr)
		if len(args) == 0 {
			return 1
		}
		return 0
	}

	cmdName := args[0]

	if cmd, ok := a.commands[cmdName]; ok {
		return a.run(ctx, cmd, args[1:])
	}

	if group, ok := a.groups[cmdName]; ok {
		if len(args) < 2 || isHelp(args[1]) {
			group.PrintHelp(a.Stderr)
			return 0
		}

		if cmd, ok := group.Commands[args[1]]; ok {
			return a.run(ctx, cmd, args[2:])
		}

		fmt.Fprintf(a.Stderr, "unknown command %q\n\n", cmdName+" "+args[1])
		group.PrintHelp(a.Stderr)
		return 1
	}

	fmt.Fprintf(a.Stderr, "unknown command %q\n\n", cmdName)
	a.PrintHelp(a.Stderr)
	return 1
}

func (a *App) run(ctx context.Context, cmd *Command, args []string) int {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			fmt.Fprintf(a.Stderr, "%s\n", cmd.Usage)
			return 0
		}
	}

	err := cmd.Run(ctx, args)
	if err == nil {
		return 0
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintf(a.Stderr, "%s\n", usage.Usage)
		return 1
	}
	fmt.Fprintf(a.Stderr, "error: %v\n", err)
	return 1
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "--help" || arg == "-h"
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: repomirror [options] <command>\n\n")
	fmt.Fprintf(w, "Commands:\n")

	for _, name := range []string{"path", "list", "status", "clone", "update", "export", "head", "clean", "search", "version"} {
		if cmd, ok := a.commands[name]; ok {
			fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
		}
	}

	if len(a.groups) > 0 {
		fmt.Fprintf(w, "\nCommand Groups:\n")
		for _, name := range slices.Sorted(maps.Keys(a.groups)) {
			group := a.groups[name]
			fmt.Fprintf(w, "  %-10s %s\n", group.Name, group.Summary)
		}
	}

	fmt.Fprintf(w, "\nUse \"repomirror <group> help\" for group details.\n")
}

// PrintHelp prints help for a specific group.
func (g *Group) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: repomirror %s <command>\n\n", g.Name)
	fmt.Fprintf(w, "Commands:\n")
	// Sort command names for deterministic output
	names := slices.Sorted(maps.Keys(g.Commands))
	for _, name := range names {
		cmd := g.Commands[name]
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintf(w, "\nUse \"repomirror %s <command> --help\" for command details.\n", g.Name)
}

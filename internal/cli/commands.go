// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"repomirror/internal/repository"
)

type pathResult struct {
	URL              string `json:"url"`
	WorkingDirectory string `json:"working_directory"`
	RootPath         string `json:"root_path"`
	Path             string `json:"path"`
	Hash             string `json:"hash"`
}

type statusResult struct {
	URL    string           `json:"url"`
	Path   string           `json:"path"`
	State  repository.State `json:"state"`
	Bare   bool             `json:"bare"`
	Branch string           `json:"branch,omitempty"`
	Head   string           `json:"head,omitempty"`
}

type headResult struct {
	URL  string `json:"url"`
	Path string `json:"path"`
	Head string `json:"head"`
}

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, env *Env) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "path",
		Summary: "Print the on-disk layout for a repository URL",
		Usage:   "Usage: repomirror path <url>",
		Run: func(_ context.Context, args []string) error {
			pos, err := parseFlags("path", args, 1, 1, nil)
			if err != nil {
				return usageErr("Usage: repomirror path <url>")
			}
			loc, err := env.Resolve(pos[0])
			if err != nil {
				return err
			}
			return env.PrintJSON(pathResult{
				URL:              loc.URL,
				WorkingDirectory: loc.WorkingDirectory,
				RootPath:         loc.RootPath,
				Path:             loc.Path,
				Hash:             loc.URLHash(),
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "list",
		Summary: "List every clone stored in the working directory",
		Usage:   "Usage: repomirror list",
		Run: func(ctx context.Context, args []string) error {
			if _, err := parseFlags("list", args, 0, 0, nil); err != nil {
				return usageErr("Usage: repomirror list")
			}
			mirrors, err := env.Scanner().ScanAll(ctx, env.Config.WorkingDirectory)
			if err != nil {
				return err
			}
			return env.PrintJSON(mirrors)
		},
	})

	app.AddCommand(&Command{
		Name:    "status",
		Summary: "Report whether the clone is ready, with its branch and HEAD",
		Usage:   "Usage: repomirror status <url>",
		Run: func(ctx context.Context, args []string) error {
			pos, err := parseFlags("status", args, 1, 1, nil)
			if err != nil {
				return usageErr("Usage: repomirror status <url>")
			}
			repo, err := env.Open(ctx, pos[0], false)
			if err != nil {
				return err
			}
			status, err := describe(ctx, repo)
			if err != nil {
				return err
			}
			return env.PrintJSON(status)
		},
	})

	app.AddCommand(&Command{
		Name:    "clone",
		Summary: "Clone the repository unless it is already present",
		Usage:   "Usage: repomirror clone <url>",
		Run: func(ctx context.Context, args []string) error {
			pos, err := parseFlags("clone", args, 1, 1, nil)
			if err != nil {
				return usageErr("Usage: repomirror clone <url>")
			}
			repo, err := env.Open(ctx, pos[0], false)
			if err != nil {
				return err
			}
			if err := repo.EnsureCloned(ctx); err != nil {
				return err
			}
			status, err := describe(ctx, repo)
			if err != nil {
				return err
			}
			return env.PrintJSON(status)
		},
	})

	app.AddCommand(&Command{
		Name:    "update",
		Summary: "Pull upstream changes, optionally checking out a ref first",
		Usage:   "Usage: repomirror update <url> [ref]",
		Run: func(ctx context.Context, args []string) error {
			pos, err := parseFlags("update", args, 1, 2, nil)
			if err != nil {
				return usageErr("Usage: repomirror update <url> [ref]")
			}
			repo, err := env.Open(ctx, pos[0], true)
			if err != nil {
				return err
			}
			if len(pos) == 2 {
				err = repo.UpdateTo(ctx, pos[1])
			} else {
				err = repo.Update(ctx)
			}
			if err != nil {
				return err
			}
			return printHead(ctx, env, repo, "")
		},
	})

	app.AddCommand(&Command{
		Name:    "export",
		Summary: "Copy the tracked files, without git metadata, to a directory",
		Usage:   "Usage: repomirror export <url> <destination>",
		Run: func(ctx context.Context, args []string) error {
			pos, err := parseFlags("export", args, 2, 2, nil)
			if err != nil {
				return usageErr("Usage: repomirror export <url> <destination>")
			}
			repo, err := env.Open(ctx, pos[0], true)
			if err != nil {
				return err
			}
			if err := repo.Export(ctx, pos[1]); err != nil {
				return err
			}
			return env.PrintJSON(map[string]string{"url": pos[0], "destination": pos[1]})
		},
	})

	app.AddCommand(&Command{
		Name:    "head",
		Summary: "Print the commit HEAD resolves to",
		Usage:   "Usage: repomirror head <url> [--worktree <branch>]",
		Run: func(ctx context.Context, args []string) error {
			var branch string
			pos, err := parseFlags("head", args, 1, 1, func(fs *flag.FlagSet) {
				fs.StringVar(&branch, "worktree", "", "inspect the worktree of this branch")
			})
			if err != nil {
				return usageErr("Usage: repomirror head <url> [--worktree <branch>]")
			}
			repo, err := env.Open(ctx, pos[0], true)
			if err != nil {
				return err
			}
			cwd := ""
			if branch != "" {
				cwd = repo.Location().WorktreePath(branch)
			}
			return printHead(ctx, env, repo, cwd)
		},
	})

	app.AddCommand(&Command{
		Name:    "clean",
		Summary: "Discard local changes, or delete the clone with --thorough",
		Usage:   "Usage: repomirror clean <url> [--thorough]",
		Run: func(ctx context.Context, args []string) error {
			var thorough bool
			pos, err := parseFlags("clean", args, 1, 1, func(fs *flag.FlagSet) {
				fs.BoolVar(&thorough, "thorough", false, "delete the clone and its worktrees")
			})
			if err != nil {
				return usageErr("Usage: repomirror clean <url> [--thorough]")
			}
			repo, err := env.Open(ctx, pos[0], false)
			if err != nil {
				return err
			}
			if err := repo.Clean(ctx, thorough); err != nil {
				return err
			}
			status, err := describe(ctx, repo)
			if err != nil {
				return err
			}
			return env.PrintJSON(status)
		},
	})

	app.AddCommand(&Command{
		Name:    "search",
		Summary: "List files in the clone matching a glob pattern",
		Usage:   "Usage: repomirror search <url> <pattern>",
		Run: func(ctx context.Context, args []string) error {
			pos, err := parseFlags("search", args, 2, 2, nil)
			if err != nil {
				return usageErr("Usage: repomirror search <url> <pattern>")
			}
			repo, err := env.Open(ctx, pos[0], true)
			if err != nil {
				return err
			}
			matches, err := repo.Search(pos[1])
			if err != nil {
				return err
			}
			if matches == nil {
				matches = []string{}
			}
			return env.PrintJSON(matches)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: repomirror version",
		Run: func(context.Context, []string) error {
			return env.PrintJSON(map[string]string{"version": version})
		},
	})

	refsGroup := app.AddGroup("refs", "List branches and tags")
	RegisterRefsCommands(refsGroup, env)

	worktreeGroup := app.AddGroup("worktree", "Manage branch worktrees")
	RegisterWorktreeCommands(worktreeGroup, env)

	return app
}

// parseFlags parses args with the flags define registers and checks the
// number of positional arguments left over.
func parseFlags(name string, args []string, minArgs, maxArgs int, define func(*flag.FlagSet)) ([]string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if define != nil {
		define(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	pos := fs.Args()
	if len(pos) < minArgs || len(pos) > maxArgs {
		return nil, fmt.Errorf("%s: expected %d to %d arguments, got %d", name, minArgs, maxArgs, len(pos))
	}
	return pos, nil
}

func describe(ctx context.Context, repo *repository.Repository) (statusResult, error) {
	loc := repo.Location()
	state, err := repo.State(ctx)
	if err != nil {
		return statusResult{}, err
	}
	status := statusResult{URL: loc.URL, Path: loc.Path, State: state, Bare: repo.Bare()}
	if state != repository.StateReady {
		return status, nil
	}

	// A freshly cloned empty repository has no HEAD commit yet.
	if head, err := repo.LatestCommit(ctx, ""); err == nil {
		status.Head = head
	}
	branch, err := repo.ActiveBranch(ctx)
	if err != nil {
		return statusResult{}, err
	}
	status.Branch = branch
	return status, nil
}

func printHead(ctx context.Context, env *Env, repo *repository.Repository, cwd string) error {
	head, err := repo.LatestCommit(ctx, cwd)
	if err != nil {
		return err
	}
	if cwd == "" {
		cwd = repo.Location().Path
	}
	return env.PrintJSON(headResult{URL: repo.Location().URL, Path: cwd, Head: head})
}

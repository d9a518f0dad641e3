// pattern: Imperative Shell
package cli

import (
	"context"

	"repomirror/internal/repository"
)

// RegisterWorktreeCommands registers the worktree command group commands.
func RegisterWorktreeCommands(group *Group, env *Env) {
	group.AddCommand(&Command{
		Name:    "list",
		Summary: "List worktrees of the clone",
		Usage:   "Usage: repomirror worktree list <url>",
		Run: func(ctx context.Context, args []string) error {
			pos, err := parseFlags("worktree list", args, 1, 1, nil)
			if err != nil {
				return usageErr("Usage: repomirror worktree list <url>")
			}
			repo, err := env.Open(ctx, pos[0], true)
			if err != nil {
				return err
			}
			worktrees, err := repo.ListWorktrees(ctx)
			if err != nil {
				return err
			}
			return env.PrintJSON(worktrees)
		},
	})

	group.AddCommand(&Command{
		Name:    "add",
		Summary: "Check out a remote branch in its own worktree",
		Usage:   "Usage: repomirror worktree add <url> <branch>",
		Run: func(ctx context.Context, args []string) error {
			pos, err := parseFlags("worktree add", args, 2, 2, nil)
			if err != nil {
				return usageErr("Usage: repomirror worktree add <url> <branch>")
			}
			repo, err := env.Open(ctx, pos[0], true)
			if err != nil {
				return err
			}
			wt, err := repo.AddWorktree(ctx, pos[1])
			if err != nil {
				return err
			}
			return env.PrintJSON(wt)
		},
	})

	group.AddCommand(&Command{
		Name:    "remove",
		Summary: "Delete a branch worktree and its local branch",
		Usage:   "Usage: repomirror worktree remove <url> <branch>",
		Run: func(ctx context.Context, args []string) error {
			pos, err := parseFlags("worktree remove", args, 2, 2, nil)
			if err != nil {
				return usageErr("Usage: repomirror worktree remove <url> <branch>")
			}
			repo, err := env.Open(ctx, pos[0], false)
			if err != nil {
				return err
			}
			if err := repo.RemoveWorktree(ctx, pos[1]); err != nil {
				return err
			}
			return env.PrintJSON(map[string]string{"branch": pos[1], "path": repo.Location().WorktreePath(pos[1])})
		},
	})

	group.AddCommand(&Command{
		Name:    "update",
		Summary: "Pull upstream changes into a branch worktree",
		Usage:   "Usage: repomirror worktree update <url> <branch>",
		Run: func(ctx context.Context, args []string) error {
			pos, err := parseFlags("worktree update", args, 2, 2, nil)
			if err != nil {
				return usageErr("Usage: repomirror worktree update <url> <branch>")
			}
			repo, err := env.Open(ctx, pos[0], false)
			if err != nil {
				return err
			}
			if err := repo.UpdateWorktree(ctx, pos[1]); err != nil {
				return err
			}
			return printWorktree(ctx, env, repo, pos[1])
		},
	})
}

func printWorktree(ctx context.Context, env *Env, repo *repository.Repository, branch string) error {
	path := repo.Location().WorktreePath(branch)
	head, err := repo.LatestCommit(ctx, path)
	if err != nil {
		return err
	}
	return env.PrintJSON(repository.Worktree{Path: path, Head: head, Branch: branch})
}

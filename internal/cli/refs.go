// pattern: Imperative Shell
package cli

import (
	"context"

	"repomirror/internal/repository"
)

// RegisterRefsCommands registers the refs command group commands.
func RegisterRefsCommands(group *Group, env *Env) {
	list := func(name, summary string, fn func(*repository.Repository, context.Context) ([]string, error)) {
		usage := "Usage: repomirror refs " + name + " <url>"
		group.AddCommand(&Command{
			Name:    name,
			Summary: summary,
			Usage:   usage,
			Run: func(ctx context.Context, args []string) error {
				pos, err := parseFlags("refs "+name, args, 1, 1, nil)
				if err != nil {
					return usageErr(usage)
				}
				repo, err := env.Open(ctx, pos[0], true)
				if err != nil {
					return err
				}
				names, err := fn(repo, ctx)
				if err != nil {
					return err
				}
				return env.PrintJSON(names)
			},
		})
	}

	list("branches", "List branches on the remote", (*repository.Repository).ListBranches)
	list("tags", "List tags on the remote", (*repository.Repository).ListTags)
	list("local", "List branches in the local clone", (*repository.Repository).ListLocalBranches)

	group.AddCommand(&Command{
		Name:    "active",
		Summary: "Print the checked out branch, empty when HEAD is detached",
		Usage:   "Usage: repomirror refs active <url>",
		Run: func(ctx context.Context, args []string) error {
			pos, err := parseFlags("refs active", args, 1, 1, nil)
			if err != nil {
				return usageErr("Usage: repomirror refs active <url>")
			}
			repo, err := env.Open(ctx, pos[0], true)
			if err != nil {
				return err
			}
			branch, err := repo.ActiveBranch(ctx)
			if err != nil {
				return err
			}
			return env.PrintJSON(map[string]any{"branch": branch, "detached": branch == ""})
		},
	})
}

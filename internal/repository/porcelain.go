// pattern: Functional Core

package repository

import (
	"strings"

	"repomirror/internal/refs"
)

// parseWorktreeList parses `git worktree list --porcelain`. Records are
// blocks of "key value" lines separated by blank lines; attributes such as
// "bare" or "detached" appear as keys without a value.
//
// Every record must carry "worktree". The bare canonical clone is skipped.
// A detached worktree gets an empty Branch; any other record must carry
// both "HEAD" and "branch", and the branch must be a refs/heads/ name.
func parseWorktreeList(output string) ([]Worktree, error) {
	worktrees := []Worktree{}
	for _, block := range splitRecords(output) {
		fields := make(map[string]string, len(block))
		for _, line := range block {
			key, value, _ := strings.Cut(line, " ")
			fields[key] = value
		}

		path, ok := fields["worktree"]
		if !ok || path == "" {
			return nil, recordError(block, "missing worktree")
		}
		if _, bare := fields["bare"]; bare {
			continue
		}

		head, ok := fields["HEAD"]
		if !ok || head == "" {
			return nil, recordError(block, "missing HEAD")
		}
		wt := Worktree{Path: path, Head: head}

		if _, detached := fields["detached"]; !detached {
			ref, ok := fields["branch"]
			if !ok {
				return nil, recordError(block, "missing branch")
			}
			name, err := refs.BranchName(ref)
			if err != nil {
				return nil, err
			}
			wt.Branch = name
		}
		worktrees = append(worktrees, wt)
	}
	return worktrees, nil
}

func splitRecords(output string) [][]string {
	var records [][]string
	var current []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			if len(current) > 0 {
				records = append(records, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		records = append(records, current)
	}
	return records
}

func recordError(block []string, reason string) error {
	return &refs.ParseError{Input: strings.Join(block, "\n"), Reason: "worktree record: " + reason}
}

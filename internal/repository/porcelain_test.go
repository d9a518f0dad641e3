package repository

import (
	"errors"
	"reflect"
	"testing"

	"repomirror/internal/refs"
)

func TestParseWorktreeList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Worktree
		wantErr bool
	}{
		{
			name:  "empty output",
			input: "",
			want:  []Worktree{},
		},
		{
			name: "canonical clone and one worktree",
			input: "worktree /data/eb/ab/ebab\nHEAD 1111111111111111111111111111111111111111\nbranch refs/heads/main\n\n" +
				"worktree /data/eb/ab/518a\nHEAD 2222222222222222222222222222222222222222\nbranch refs/heads/feature\n\n",
			want: []Worktree{
				{Path: "/data/eb/ab/ebab", Head: "1111111111111111111111111111111111111111", Branch: "main"},
				{Path: "/data/eb/ab/518a", Head: "2222222222222222222222222222222222222222", Branch: "feature"},
			},
		},
		{
			name:  "bare clone is skipped",
			input: "worktree /data/eb/ab/ebab\nbare\n\nworktree /data/eb/ab/518a\nHEAD abc\nbranch refs/heads/feature\n",
			want:  []Worktree{{Path: "/data/eb/ab/518a", Head: "abc", Branch: "feature"}},
		},
		{
			name:  "detached worktree has no branch",
			input: "worktree /w\nHEAD abc\ndetached\n",
			want:  []Worktree{{Path: "/w", Head: "abc"}},
		},
		{
			name:  "locked and prunable attributes are ignored",
			input: "worktree /w\nHEAD abc\nbranch refs/heads/dev\nlocked reason here\nprunable gitdir file points to non-existent location\n",
			want:  []Worktree{{Path: "/w", Head: "abc", Branch: "dev"}},
		},
		{
			name:  "nested branch names keep slashes",
			input: "worktree /w\nHEAD abc\nbranch refs/heads/feature/login\n",
			want:  []Worktree{{Path: "/w", Head: "abc", Branch: "feature/login"}},
		},
		{
			name:  "CRLF line endings",
			input: "worktree /w\r\nHEAD abc\r\nbranch refs/heads/dev\r\n\r\n",
			want:  []Worktree{{Path: "/w", Head: "abc", Branch: "dev"}},
		},
		{name: "missing worktree line", input: "HEAD abc\nbranch refs/heads/dev\n", wantErr: true},
		{name: "missing HEAD", input: "worktree /w\nbranch refs/heads/dev\n", wantErr: true},
		{name: "missing branch on attached record", input: "worktree /w\nHEAD abc\n", wantErr: true},
		{name: "branch outside refs/heads", input: "worktree /w\nHEAD abc\nbranch refs/tags/v1\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWorktreeList(tt.input)
			if tt.wantErr {
				var parseErr *refs.ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected *refs.ParseError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseWorktreeList() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseWorktreeList() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

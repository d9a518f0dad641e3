// pattern: Functional Core

package discovery

// Mirror is a canonical clone found under the working directory.
type Mirror struct {
	URL       string   `json:"url"`               // origin URL read from the clone's config
	Path      string   `json:"path"`              // canonical clone directory
	Bare      bool     `json:"bare"`              // whether git reports a bare repository
	Worktrees []string `json:"worktrees"`         // sibling worktree directories under the same root
	Problem   string   `json:"problem,omitempty"` // why the clone does not match its location, if it doesn't
}

// pattern: Functional Core

// Package refs classifies the textual references printed by git.
package refs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// Kind is the namespace a reference lives in.
type Kind int

const (
	KindOther Kind = iota
	KindBranch
	KindTag
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindBranch:
		return "branch"
	case KindTag:
		return "tag"
	case KindRemote:
		return "remote"
	default:
		return "other"
	}
}

var (
	ErrNotBranch = errors.New("not a branch reference")
	ErrNotTag    = errors.New("not a tag reference")
)

// ParseError describes output that does not follow the expected grammar.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Ref is a classified reference.
type Ref struct {
	Name  string // full name, e.g. refs/heads/main
	Kind  Kind
	Short string // name without its namespace prefix
}

// Parse classifies a full reference name. Empty input, embedded whitespace and
// namespace prefixes without a name are rejected.
func Parse(raw string) (Ref, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return Ref{}, &ParseError{Input: raw, Reason: "empty reference"}
	}
	if strings.ContainsAny(name, " \t\n") {
		return Ref{}, &ParseError{Input: raw, Reason: "reference contains whitespace"}
	}

	rn := plumbing.ReferenceName(name)
	ref := Ref{Name: name, Kind: KindOther, Short: rn.Short()}
	switch {
	case rn.IsBranch():
		ref.Kind = KindBranch
		ref.Short = strings.TrimPrefix(name, "refs/heads/")
	case rn.IsTag():
		ref.Kind = KindTag
		ref.Short = strings.TrimPrefix(name, "refs/tags/")
	case rn.IsRemote():
		ref.Kind = KindRemote
		ref.Short = strings.TrimPrefix(name, "refs/remotes/")
	}
	if ref.Short == "" {
		return Ref{}, &ParseError{Input: raw, Reason: "reference has no name after its prefix"}
	}
	return ref, nil
}

// BranchName reduces refs/heads/<name> to <name>.
func BranchName(raw string) (string, error) {
	return shortOf(raw, KindBranch, ErrNotBranch)
}

// TagName reduces refs/tags/<name> to <name>.
func TagName(raw string) (string, error) {
	return shortOf(raw, KindTag, ErrNotTag)
}

func shortOf(raw string, want Kind, sentinel error) (string, error) {
	ref, err := Parse(raw)
	if err != nil {
		return "", err
	}
	if ref.Kind != want {
		return "", &ParseError{Input: raw, Reason: sentinel.Error(), Err: sentinel}
	}
	return ref.Short, nil
}

// ParseRefList parses line-oriented ref listings such as `ls-remote --heads`
// ("<object>\t<ref>") or `for-each-ref --format=%(refname)` ("<ref>") and
// returns the short names of refs of the wanted kind in input order.
// Peeled tag entries ("<ref>^{}") are skipped. Empty output yields an empty slice.
func ParseRefList(output string, want Kind) ([]string, error) {
	names := []string{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) > 2 {
			return nil, &ParseError{Input: line, Reason: "expected \"<object> <ref>\" or \"<ref>\""}
		}
		name := fields[len(fields)-1]
		if strings.HasSuffix(name, "^{}") {
			continue
		}

		ref, err := Parse(name)
		if err != nil {
			return nil, err
		}
		if ref.Kind != want {
			return nil, &ParseError{Input: line, Reason: fmt.Sprintf("expected a %s reference, got %s", want, ref.Kind)}
		}
		names = append(names, ref.Short)
	}
	return names, nil
}

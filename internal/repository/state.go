// pattern: Functional Core

package repository

// State is a point in the repository lifecycle:
//
//	Unready -> Creating -> Cloning -> Ready
//	Cloning -> Failed -> Unready   (clone failed, rollback applied)
//	Ready   -> Unready             (thorough clean)
type State int

const (
	StateUnready State = iota
	StateCreating
	StateCloning
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnready:
		return "unready"
	case StateCreating:
		return "creating"
	case StateCloning:
		return "cloning"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

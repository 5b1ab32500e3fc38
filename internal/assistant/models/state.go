package models

// State is the dispatch state of a session. It is a single enumerated value
// rather than loading/error flags, so impossible combinations cannot be
// represented.
type State string

const (
	StateIdle     State = "idle"
	StateAwaiting State = "awaiting"
	StateFaulted  State = "faulted"
)

// AcceptsSubmit reports whether a new submission may start from this state.
// Faulted behaves like idle for input purposes; retrying is how a fault
// clears.
func (s State) AcceptsSubmit() bool {
	return s == StateIdle || s == StateFaulted
}

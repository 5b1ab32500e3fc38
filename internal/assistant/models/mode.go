package models

import "fmt"

// Mode is the capability tier of a session, fixed at creation. Switching
// modes means opening a new session, never mutating an existing one.
type Mode string

const (
	ModeAdmin   Mode = "admin"
	ModePatient Mode = "patient"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAdmin, ModePatient:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Policy is the static capability set derived from a Mode. It is read by the
// content classifier and by the dispatch pipeline when building the backend
// request, and never changes for the lifetime of a session.
type Policy struct {
	mode Mode
}

func PolicyFor(mode Mode) Policy {
	return Policy{mode: mode}
}

func (p Policy) Mode() Mode {
	return p.mode
}

// AllowStructured reports whether structured blocks may reach the renderer.
// Patient sessions never see structured content, whatever the backend sent.
func (p Policy) AllowStructured() bool {
	return p.mode == ModeAdmin
}

// AllowDatabase reports whether the backend request may carry the SQL tool.
func (p Policy) AllowDatabase() bool {
	return p.mode == ModeAdmin
}

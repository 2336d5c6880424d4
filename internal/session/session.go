// Package session models the upload-then-result flow as an explicit two-state machine.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/stripscan/internal/colour"
	imageutil "github.com/jmylchreest/stripscan/internal/image"
	"github.com/jmylchreest/stripscan/internal/strip"
)

// State is the page a session is on.
type State int

const (
	// AwaitingInput waits for a photo or upload.
	AwaitingInput State = iota

	// ShowingResult displays the analysis of the last submission.
	ShowingResult
)

// String returns the state's wire name.
func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case ShowingResult:
		return "showing_result"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "awaiting_input":
		*s = AwaitingInput
	case "showing_result":
		*s = ShowingResult
	default:
		return fmt.Errorf("unknown session state %q", text)
	}
	return nil
}

var (
	// ErrInvalidTransition is returned when an action is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNotFound is returned for unknown session IDs.
	ErrNotFound = errors.New("session not found")
)

// Upload is one submitted image.
type Upload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Validate checks that the upload carries data and, when named, a supported image extension.
func (u Upload) Validate() error {
	if len(u.Data) == 0 {
		return fmt.Errorf("%w: upload is empty", colour.ErrInvalidInput)
	}
	if u.Filename != "" && !imageutil.IsImageFile(u.Filename) {
		return fmt.Errorf("%w: unsupported file type %q (supported: %v)",
			colour.ErrInvalidInput, u.Filename, imageutil.SupportedImageExtensions())
	}
	return nil
}

// Session is the state of one user's interaction. Values are immutable in
// practice: transitions return a new Session.
type Session struct {
	ID        string        `json:"id"`
	State     State         `json:"state"`
	Upload    *Upload       `json:"upload,omitempty"`
	Report    *strip.Report `json:"report,omitempty"`
	Version   uint64        `json:"version"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// AnalyseFunc turns uploaded bytes into a report.
type AnalyseFunc func(data []byte) (strip.Report, error)

// New returns a session awaiting input.
func New(id string, now time.Time) Session {
	return Session{ID: id, State: AwaitingInput, UpdatedAt: now}
}

// Submit analyses up and moves s to ShowingResult. On any error s is
// returned unchanged.
func Submit(s Session, up Upload, analyse AnalyseFunc, now time.Time) (Session, error) {
	if s.State != AwaitingInput {
		return s, fmt.Errorf("%w: cannot submit while %s", ErrInvalidTransition, s.State)
	}
	if err := up.Validate(); err != nil {
		return s, err
	}

	report, err := analyse(up.Data)
	if err != nil {
		return s, err
	}

	next := s
	next.State = ShowingResult
	next.Upload = &up
	next.Report = &report
	next.UpdatedAt = now
	return next, nil
}

// Reset returns s to AwaitingInput, dropping the previous upload and result.
// Resetting a session that is already awaiting input is a no-op.
func Reset(s Session, now time.Time) Session {
	if s.State == AwaitingInput {
		return s
	}
	next := s
	next.State = AwaitingInput
	next.Upload = nil
	next.Report = nil
	next.UpdatedAt = now
	return next
}

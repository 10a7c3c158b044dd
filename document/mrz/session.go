package mrz

import (
	"log/slog"
	"sync"
)

type State string

const (
	StateScanning State = "SCANNING"
	StateAccepted State = "ACCEPTED"
)

// SessionState is the serializable state of a scanning session.
type SessionState struct {
	State          State   `json:"state"`
	PreviousRawMrz string  `json:"previous_raw_mrz,omitempty"`
	Accepted       *Record `json:"accepted,omitempty"`
}

// Session reconciles parse results across consecutive frames of one scan.
// It is safe for concurrent use, although frames are normally delivered one
// at a time.
type Session struct {
	mu    sync.Mutex
	state SessionState
}

func NewSession() *Session {
	return &Session{state: SessionState{State: StateScanning}}
}

// RestoreSession resumes a session from a stored snapshot.
func RestoreSession(state SessionState) *Session {
	if state.State == "" {
		state.State = StateScanning
	}
	if state.State == StateAccepted && state.Accepted == nil {
		state.State = StateScanning
	}
	return &Session{state: state}
}

// Scan feeds the OCR text of one frame to the session.
//
// A structural failure returns a nil record and the parse error. A record
// that fails the acceptance check is returned repaired together with
// ErrInvalidCheckDigits; the session keeps scanning. An acceptable record
// moves the session to StateAccepted, after which Scan keeps returning the
// accepted record until Reset.
func (s *Session) Scan(raw string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.State == StateAccepted {
		return s.state.Accepted.Clone(), nil
	}

	record, err := Parse(raw)
	if err != nil {
		s.remember(raw, err)
		return nil, err
	}

	repaired := record.Repaired()
	if !repaired.Acceptable() {
		s.remember(raw, ErrInvalidCheckDigits)
		return repaired, newParseError(ErrInvalidCheckDigits, record.Raw, nil)
	}

	slog.Debug("MRZ accepted", "format", repaired.Format, "document_kind", repaired.DocumentKind)
	s.state.State = StateAccepted
	s.state.Accepted = repaired
	s.state.PreviousRawMrz = raw
	return repaired.Clone(), nil
}

// remember stores a failing frame when it differs from the previous one.
func (s *Session) remember(raw string, err error) {
	if raw == s.state.PreviousRawMrz {
		return
	}
	slog.Debug("MRZ frame rejected", "kind", KindOf(err))
	s.state.PreviousRawMrz = raw
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.State
}

// Snapshot returns a copy of the session state for storage.
func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state
	if snap.Accepted != nil {
		snap.Accepted = snap.Accepted.Clone()
	}
	return snap
}

// Reset starts a new scan, forgetting the accepted record and the previous
// frame.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionState{State: StateScanning}
}

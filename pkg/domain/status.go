package domain

import (
	"fmt"
	"strings"
)

// Status is the result of evaluating a node for one tick.
type Status int

const (
	// StatusInvalid is the zero value. No node ever reports it.
	StatusInvalid Status = iota
	// Success means the node finished and achieved its goal.
	Success
	// Failure means the node finished without achieving its goal.
	Failure
	// Running means the node has not finished and must be ticked again.
	Running
)

// String returns the canonical upper-case form (e.g. "SUCCESS").
func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case Running:
		return "RUNNING"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Valid reports whether s is one of Success, Failure or Running.
func (s Status) Valid() bool {
	return s == Success || s == Failure || s == Running
}

// Invert swaps Success and Failure. Running (and anything else) is returned as is.
func (s Status) Invert() Status {
	switch s {
	case Success:
		return Failure
	case Failure:
		return Success
	default:
		return s
	}
}

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUCCESS":
		return Success, nil
	case "FAILURE":
		return Failure, nil
	case "RUNNING":
		return Running, nil
	default:
		return StatusInvalid, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

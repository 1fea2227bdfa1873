package chamber

import (
	"errors"
	"fmt"
)

var (
	// ErrRoomNotFound indicates a room id that does not exist in the graph.
	ErrRoomNotFound = errors.New("room not found")

	// ErrInvalidTransition indicates a caller contract violation: navigating
	// to a non-adjacent room, submitting with no active question or no
	// selected choice, or acting on an ended session.
	ErrInvalidTransition = errors.New("invalid transition")
)

// IntegrityError indicates malformed static chamber content. It is fatal at
// load time: a chamber that fails the integrity check must not be started.
type IntegrityError struct {
	ChamberID string
	Detail    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("chamber %q: %s", e.ChamberID, e.Detail)
}

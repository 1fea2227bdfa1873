package narrative

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownChoice indicates a choice id that does not exist on the
	// current node. Caller misuse; surfaced loudly.
	ErrUnknownChoice = errors.New("unknown choice")

	// ErrUnsupported indicates no narrative graph exists for a
	// (chamber, archetype) pair. Expected and recoverable: the caller falls
	// back to a static message and the chamber session is untouched.
	ErrUnsupported = errors.New("narrative unsupported")
)

// IntegrityError indicates malformed narrative content. Fatal at load time.
type IntegrityError struct {
	ChamberID string
	Archetype string
	Detail    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("narrative %s/%s: %s", e.ChamberID, e.Archetype, e.Detail)
}

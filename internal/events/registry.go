package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// session / maze
	"session.started": {},
	"session.ended":   {},
	"room.entered":    {},

	// answers
	"answer.correct":   {},
	"answer.incorrect": {},

	// chamber progression
	"chamber.completable": {},
	"chamber.completed":   {},

	// narrative
	"narrative.started":     {},
	"narrative.choice":      {},
	"narrative.completed":   {},
	"narrative.unsupported": {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}

package workflow

import "fmt"

// TransitionError reports a status change the rules do not allow
type TransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot move %s from %s to %s: %s", e.Entity, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot move %s from %s to %s", e.Entity, e.From, e.To)
}

package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is matched by every *CycleError.
var ErrCycle = errors.New("dependency cycle")

// CycleError means no load order exists because some mods depend on each other.
type CycleError struct {
	// Cycle lists the mods that lie on at least one dependency cycle.
	Cycle []string
	// Blocked lists mods that are not on a cycle but depend on one.
	Blocked []string
}

func (e *CycleError) Error() string {
	msg := fmt.Sprintf("dependency cycle among {%s}", strings.Join(e.Cycle, ", "))
	if len(e.Blocked) > 0 {
		msg += fmt.Sprintf("; blocked: {%s}", strings.Join(e.Blocked, ", "))
	}
	return msg
}

// Is reports whether target is ErrCycle.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

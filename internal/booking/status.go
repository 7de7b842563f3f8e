package booking

import (
	"errors"
	"fmt"

	"github.com/avstrong/discovertours/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

var ErrInvalidTransition = fmt.Errorf("invalid status transition: %w", apperr.ErrConflict)

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {},
	StatusCancelled: {},
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := allowedTransitions[status]; !ok {
		return "", fmt.Errorf("unknown status %q: %w", s, errUnknownStatus)
	}

	return status, nil
}

var errUnknownStatus = errors.New("unknown status")

// CanTransition reports whether from may move to to. Staying put is allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}

	return allowedTransitions[from][to]
}

func (s Status) Terminal() bool {
	next, ok := allowedTransitions[s]

	return ok && len(next) == 0
}

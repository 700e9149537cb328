package service

import (
	"fmt"

	"carebook/internal/models"
)

type transitionTable map[models.BookingStatus]map[models.BookingStatus]struct{}

// privilegedTransitions are offered to administrators.
var privilegedTransitions = transitionTable{
	models.StatusPending: {
		models.StatusConfirmed: {},
		models.StatusCompleted: {},
		models.StatusCancelled: {},
	},
	models.StatusConfirmed: {
		models.StatusCompleted: {},
		models.StatusCancelled: {},
	},
}

// ownerTransitions are offered to the booking's owner.
var ownerTransitions = transitionTable{
	models.StatusPending: {
		models.StatusCancelled: {},
	},
}

func tableFor(privileged bool) transitionTable {
	if privileged {
		return privilegedTransitions
	}
	return ownerTransitions
}

// CanTransition reports whether from -> to is offered to the actor class.
func CanTransition(from, to models.BookingStatus, privileged bool) bool {
	_, ok := tableFor(privileged)[from][to]
	return ok
}

// AllowedTransitions lists the target statuses offered from current, in display order.
func AllowedTransitions(current models.BookingStatus, privileged bool) []models.BookingStatus {
	targets := tableFor(privileged)[current]
	out := make([]models.BookingStatus, 0, len(targets))
	for _, s := range models.AllStatuses {
		if _, ok := targets[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// SourceStatuses lists the statuses from which to is offered to the actor class.
func SourceStatuses(to models.BookingStatus, privileged bool) []models.BookingStatus {
	var out []models.BookingStatus
	for _, from := range models.AllStatuses {
		if CanTransition(from, to, privileged) {
			out = append(out, from)
		}
	}
	return out
}

func checkTransition(from, to models.BookingStatus, privileged bool) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: booking is %s", ErrTerminalState, from)
	}
	if !CanTransition(from, to, privileged) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	return nil
}

// Package lifecycle holds the prompt version status rules, lineage traversal
// and version comparison. Everything here is pure and works on values passed in.
package lifecycle

import "promptops-backend/internal/models"

var transitions = map[models.VersionStatus][]models.VersionStatus{
	models.VersionStatusDraft:     {models.VersionStatusReview},
	models.VersionStatusReview:    {models.VersionStatusPublished, models.VersionStatusRejected, models.VersionStatusDraft},
	models.VersionStatusPublished: {models.VersionStatusArchived},
	models.VersionStatusArchived:  {models.VersionStatusPublished},
	models.VersionStatusRejected:  {models.VersionStatusDraft},
}

// AllowedTransitions returns the statuses reachable from status in one step.
// Unknown statuses have no transitions.
func AllowedTransitions(status models.VersionStatus) []models.VersionStatus {
	next := transitions[status]
	out := make([]models.VersionStatus, len(next))
	copy(out, next)
	return out
}

func CanTransition(current, target models.VersionStatus) bool {
	for _, s := range transitions[current] {
		if s == target {
			return true
		}
	}
	return false
}

// Transition validates a status change and returns the target status. It has
// no side effects; recording the change is the caller's job.
func Transition(current, target models.VersionStatus) (models.VersionStatus, error) {
	if !CanTransition(current, target) {
		return current, &TransitionError{From: current, To: target}
	}
	return target, nil
}

// TransitionTable returns a copy of the whole transition table.
func TransitionTable() map[models.VersionStatus][]models.VersionStatus {
	table := make(map[models.VersionStatus][]models.VersionStatus, len(transitions))
	for status := range transitions {
		table[status] = AllowedTransitions(status)
	}
	return table
}

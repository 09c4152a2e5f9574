package lifecycle

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"promptops-backend/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCycleDetected     = errors.New("version lineage contains a cycle")
)

// TransitionError describes a rejected status change. It matches
// ErrInvalidTransition with errors.Is.
type TransitionError struct {
	From models.VersionStatus
	To   models.VersionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// CycleError names the version id that was visited twice.
type CycleError struct {
	VersionID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("version lineage revisits %s", e.VersionID)
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}

// ValidationError carries field level messages for input the caller can
// correct and resubmit.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

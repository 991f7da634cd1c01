package tasks

import (
	"errors"
	"strings"
)

// Position is a task's zero-based offset in the sequence. It is recomputed
// after every structural change and only correlates a rendered row back to
// its record; it is not a stable identifier.
type Position int

// Task is one list entry
type Task struct {
	Description string
	Completed   bool
	Position    Position
}

// Sequence is the ordered list of tasks, the single source of truth
type Sequence []Task

var (
	// ErrNotFound is returned for a position outside the current sequence
	ErrNotFound = errors.New("task not found")
	// ErrPersist wraps failures writing the sequence to the durable slot.
	// The in-memory change has already been applied when it is returned.
	ErrPersist = errors.New("failed to persist tasks")
)

// Reindex rewrites every task's Position to its current index
func Reindex(seq Sequence) {
	for i := range seq {
		seq[i].Position = Position(i)
	}
}

// Clone returns a copy that shares nothing with seq
func (s Sequence) Clone() Sequence {
	if s == nil {
		return Sequence{}
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Contains reports whether pos addresses a task in s
func (s Sequence) Contains(pos Position) bool {
	return pos >= 0 && int(pos) < len(s)
}

// Counts returns the number of open and completed tasks
func (s Sequence) Counts() (open, done int) {
	for _, t := range s {
		if t.Completed {
			done++
		} else {
			open++
		}
	}
	return open, done
}

// isBlank reports whether a description is empty once trimmed
func isBlank(description string) bool {
	return strings.TrimSpace(description) == ""
}

package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// Listener is called with the current sequence after every committed change.
// It must not hold on to the slice.
type Listener func(Sequence)

// List owns the task sequence and applies every mutation to it. Each
// mutation reindexes, persists, then notifies listeners so the view can
// rebuild. A List is not safe for concurrent use; it is driven from a single
// event loop.
type List struct {
	store     *Store
	seq       Sequence
	listeners []Listener
	logger    *slog.Logger
}

// Open loads the sequence from store and returns a List that owns it
func Open(ctx context.Context, store *Store) *List {
	return &List{
		store:  store,
		seq:    store.Load(ctx),
		logger: store.logger,
	}
}

// OnChange registers a listener for committed changes
func (l *List) OnChange(fn Listener) {
	l.listeners = append(l.listeners, fn)
}

// Tasks returns a copy of the current sequence
func (l *List) Tasks() Sequence {
	return l.seq.Clone()
}

// Len returns the number of tasks
func (l *List) Len() int {
	return len(l.seq)
}

// Reload discards the in-memory sequence and re-runs the load path
func (l *List) Reload(ctx context.Context) {
	l.seq = l.store.Load(ctx)
	l.notify()
}

// Add appends a new open task. Blank descriptions are ignored and reported
// as not added; they are not an error.
func (l *List) Add(ctx context.Context, description string) (bool, error) {
	if isBlank(description) {
		return false, nil
	}
	l.seq = append(l.seq, Task{Description: description, Position: Position(len(l.seq))})
	l.logger.Debug("task added", "position", len(l.seq)-1)
	return true, l.commit(ctx)
}

// Edit replaces the description at pos. A blank description deletes the task.
func (l *List) Edit(ctx context.Context, pos Position, description string) error {
	if !l.seq.Contains(pos) {
		return l.notFound("edit", pos)
	}
	if isBlank(description) {
		return l.Delete(ctx, pos)
	}
	l.seq[pos].Description = description
	return l.commit(ctx)
}

// ToggleCompleted sets the completed flag at pos to checked
func (l *List) ToggleCompleted(ctx context.Context, pos Position, checked bool) error {
	if !l.seq.Contains(pos) {
		return l.notFound("toggle", pos)
	}
	l.seq[pos].Completed = checked
	return l.commit(ctx)
}

// Delete removes the task at pos
func (l *List) Delete(ctx context.Context, pos Position) error {
	if !l.seq.Contains(pos) {
		return l.notFound("delete", pos)
	}
	l.seq = append(l.seq[:pos], l.seq[pos+1:]...)
	l.logger.Debug("task deleted", "position", int(pos))
	return l.commit(ctx)
}

// MoveUp swaps the task at pos with its predecessor. At the top of the list
// the sequence is left as is.
func (l *List) MoveUp(ctx context.Context, pos Position) error {
	if !l.seq.Contains(pos) {
		return l.notFound("move", pos)
	}
	if pos > 0 {
		l.seq[pos-1], l.seq[pos] = l.seq[pos], l.seq[pos-1]
	}
	return l.commit(ctx)
}

// ClearCompleted removes every completed task, keeping the others in order,
// and returns how many were removed
func (l *List) ClearCompleted(ctx context.Context) (int, error) {
	kept := l.seq[:0]
	for _, t := range l.seq {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(l.seq) - len(kept)
	l.seq = kept
	l.logger.Debug("completed tasks cleared", "removed", removed)
	return removed, l.commit(ctx)
}

// commit reindexes, persists and notifies. Listeners run even when the save
// fails so the view never drifts from memory.
func (l *List) commit(ctx context.Context) error {
	Reindex(l.seq)
	err := l.store.Save(ctx, l.seq)
	l.notify()
	return err
}

func (l *List) notify() {
	for _, fn := range l.listeners {
		fn(l.seq)
	}
}

func (l *List) notFound(op string, pos Position) error {
	l.logger.Debug("position out of range", "op", op, "position", int(pos), "len", len(l.seq))
	return fmt.Errorf("%s position %d: %w", op, pos, ErrNotFound)
}

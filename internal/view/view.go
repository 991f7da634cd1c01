// Package view rebuilds rows from the task sequence and turns raw
// interaction events into list operations. It knows nothing about how rows
// are drawn; internal/ui draws them and feeds events back in.
package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/adriangreen/tm-list/internal/tasks"
)

// State is a row's interaction state
type State int

const (
	Idle State = iota
	Selected
	Editing
)

func (s State) String() string {
	switch s {
	case Selected:
		return "selected"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

// Row is one rendered task. Rows carry no identity across renders.
type Row struct {
	Position    tasks.Position
	Description string
	Completed   bool
	State       State
	Draft       string // text being edited, only meaningful while Editing
}

// ShowReorder reports whether the move-up affordance is visible
func (r Row) ShowReorder() bool { return r.State == Idle }

// ShowDelete reports whether the delete affordance is visible
func (r Row) ShowDelete() bool { return r.State == Selected }

// Controller is the set of list operations the renderer drives
type Controller interface {
	Add(ctx context.Context, description string) (bool, error)
	Edit(ctx context.Context, pos tasks.Position, description string) error
	ToggleCompleted(ctx context.Context, pos tasks.Position, checked bool) error
	Delete(ctx context.Context, pos tasks.Position) error
	MoveUp(ctx context.Context, pos tasks.Position) error
	ClearCompleted(ctx context.Context) (int, error)
	Tasks() tasks.Sequence
	OnChange(fn tasks.Listener)
}

// Loader builds a fresh controller from durable storage. It runs at start
// and again on every refresh.
type Loader func(ctx context.Context) Controller

// Renderer holds the rows and the text of the new-item field
type Renderer struct {
	ctx     context.Context
	load    Loader
	list    Controller
	rows    []Row
	input   string
	editing int // index of the row being edited, -1 when none
}

// New loads the list and renders it
func New(ctx context.Context, load Loader) *Renderer {
	r := &Renderer{ctx: ctx, load: load}
	r.boot()
	return r
}

func (r *Renderer) boot() {
	r.input = ""
	r.list = r.load(r.ctx)
	r.list.OnChange(r.Render)
	r.Render(r.list.Tasks())
}

// Render rebuilds every row from seq. Selection and editing are dropped.
func (r *Renderer) Render(seq tasks.Sequence) {
	rows := make([]Row, len(seq))
	for i, t := range seq {
		rows[i] = Row{
			Position:    t.Position,
			Description: t.Description,
			Completed:   t.Completed,
		}
	}
	r.rows = rows
	r.editing = -1
}

// Rows returns a copy of the current rows
func (r *Renderer) Rows() []Row {
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

// Input returns the new-item field text
func (r *Renderer) Input() string { return r.input }

// SetInput replaces the new-item field text
func (r *Renderer) SetInput(s string) { r.input = s }

// Editing returns the row being edited, if any
func (r *Renderer) Editing() (Row, bool) {
	if r.editing < 0 {
		return Row{}, false
	}
	return r.rows[r.editing], true
}

// Counts returns the number of open and completed rows
func (r *Renderer) Counts() (open, done int) {
	for _, row := range r.rows {
		if row.Completed {
			done++
		} else {
			open++
		}
	}
	return open, done
}

// ClickRow toggles a row between Idle and Selected
func (r *Renderer) ClickRow(pos tasks.Position) error {
	i, err := r.row(pos)
	if err != nil {
		return err
	}
	if r.editing == i {
		return nil
	}
	if handled, err := r.interrupt(); handled {
		return err
	}
	switch r.rows[i].State {
	case Idle:
		r.rows[i].State = Selected
	case Selected:
		r.rows[i].State = Idle
	}
	return nil
}

// ClickReorder moves an idle row up. The affordance is hidden on selected
// rows, so clicks there do nothing.
func (r *Renderer) ClickReorder(pos tasks.Position) error {
	i, err := r.row(pos)
	if err != nil {
		return err
	}
	if handled, err := r.interrupt(); handled {
		return err
	}
	if !r.rows[i].ShowReorder() {
		return nil
	}
	return r.list.MoveUp(r.ctx, pos)
}

// ClickDelete deletes a selected row. The affordance is hidden on idle rows.
func (r *Renderer) ClickDelete(pos tasks.Position) error {
	i, err := r.row(pos)
	if err != nil {
		return err
	}
	if handled, err := r.interrupt(); handled {
		return err
	}
	if !r.rows[i].ShowDelete() {
		return nil
	}
	return r.list.Delete(r.ctx, pos)
}

// ClickCheckbox sets the row's completed flag to checked
func (r *Renderer) ClickCheckbox(pos tasks.Position, checked bool) error {
	if _, err := r.row(pos); err != nil {
		return err
	}
	if handled, err := r.interrupt(); handled {
		return err
	}
	return r.list.ToggleCompleted(r.ctx, pos, checked)
}

// DoubleClickText starts editing a row in place
func (r *Renderer) DoubleClickText(pos tasks.Position) error {
	i, err := r.row(pos)
	if err != nil {
		return err
	}
	if r.editing == i {
		return nil
	}
	if handled, err := r.interrupt(); handled {
		return err
	}
	r.rows[i].State = Editing
	r.rows[i].Draft = r.rows[i].Description
	r.editing = i
	return nil
}

// SetDraft replaces the text of the row being edited
func (r *Renderer) SetDraft(text string) {
	if r.editing >= 0 {
		r.rows[r.editing].Draft = text
	}
}

// KeyEnter commits the edit in progress, the same way losing focus does
func (r *Renderer) KeyEnter() error {
	return r.Blur()
}

// Blur ends editing. A blank draft deletes the task; anything else is
// trimmed and saved.
func (r *Renderer) Blur() error {
	if r.editing < 0 {
		return nil
	}
	row := r.rows[r.editing]
	r.rows[r.editing].State = Idle
	r.editing = -1

	text := strings.TrimSpace(row.Draft)
	if text == "" {
		return r.list.Delete(r.ctx, row.Position)
	}
	return r.list.Edit(r.ctx, row.Position, text)
}

// Submit adds the field text as a new task and clears the field when a task
// was added. An edit in progress is committed first.
func (r *Renderer) Submit() error {
	if _, err := r.interrupt(); err != nil {
		return err
	}
	added, err := r.list.Add(r.ctx, r.input)
	if added {
		r.input = ""
	}
	return err
}

// Append is the secondary add trigger; it behaves exactly like Submit
func (r *Renderer) Append() error {
	return r.Submit()
}

// ClearCompleted archives every completed task, after committing an edit in
// progress
func (r *Renderer) ClearCompleted() (int, error) {
	if _, err := r.interrupt(); err != nil {
		return 0, err
	}
	return r.list.ClearCompleted(r.ctx)
}

// Refresh commits an edit in progress, then throws away all state, including
// the field text and the controller, and starts over from durable storage.
// The reload happens even when the commit fails to persist.
func (r *Renderer) Refresh() error {
	_, err := r.interrupt()
	r.boot()
	return err
}

// interrupt commits an edit in progress before another event is handled.
// The commit re-renders, so row events that see handled must be dropped:
// the rows they aimed at no longer exist. The field and the footer controls
// are not rebuilt and carry on.
func (r *Renderer) interrupt() (bool, error) {
	if r.editing < 0 {
		return false, nil
	}
	return true, r.Blur()
}

func (r *Renderer) row(pos tasks.Position) (int, error) {
	if pos < 0 || int(pos) >= len(r.rows) {
		return 0, fmt.Errorf("row %d: %w", pos, tasks.ErrNotFound)
	}
	return int(pos), nil
}

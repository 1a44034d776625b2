// Package dashboard implements the layout edit workflow: entering edit
// mode, changing a working copy of the layout, and saving, cancelling or
// resetting it.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Dicklesworthstone/shokodash/internal/layout"
	"github.com/Dicklesworthstone/shokodash/internal/notify"
)

// EditToastID is the id of the persistent edit-mode toast.
const EditToastID = "layoutEditMode"

// Toast texts.
const (
	EditToastTitle = "Edit Mode Enabled"
	SavedMessage   = "Layout Saved!"
	ResetMessage   = "Layout reset to default!"
)

// EditActions are offered on the edit-mode toast.
var EditActions = []string{"Reset to Default", "Cancel", "Save"}

var (
	// ErrNotEditing is returned by edits and saves outside edit mode.
	ErrNotEditing = errors.New("dashboard: not in edit mode")
	// ErrSaveInFlight is returned while a save is pending.
	ErrSaveInFlight = errors.New("dashboard: save already in progress")
	// ErrUnknownPanel is returned for a panel key not in the layout.
	ErrUnknownPanel = layout.ErrUnknownPanel
)

// State is the workflow state.
type State int

// Cancelling completes synchronously inside Cancel and is only reported
// by String.
const (
	Viewing State = iota
	Editing
	Saving
	Cancelling
	Resetting
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	case Cancelling:
		return "cancelling"
	case Resetting:
		return "resetting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// LayoutStore persists the layout.
type LayoutStore interface {
	Layout(ctx context.Context) (layout.Layouts, error)
	SaveLayout(ctx context.Context, l layout.Layouts) error
}

// Notifier shows and dismisses toasts.
type Notifier interface {
	Show(t notify.Toast) string
	Dismiss(id string)
}

// editSession is one edit activation.
type editSession struct {
	snapshot layout.Layouts
	working  layout.Layouts
}

// PendingSave is a save handed to the caller to run. Pass it back to
// Finish with the result.
type PendingSave struct {
	Layout  layout.Layouts
	reset   bool
	session *editSession
	// previous is the working copy a reset replaced.
	previous layout.Layouts
}

// Workflow is the edit state machine. Methods are safe for concurrent use.
type Workflow struct {
	store    LayoutStore
	notifier Notifier
	logger   *slog.Logger
	recalc   func(layout.Layouts)

	mu        sync.Mutex
	state     State
	persisted layout.Layouts
	session   *editSession
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithRecalc sets the hook fired after every change to the displayed
// layout.
func WithRecalc(fn func(layout.Layouts)) Option {
	return func(w *Workflow) {
		w.recalc = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = l
	}
}

// New creates a workflow in Viewing with the default layout until Load or
// SetPersisted is called.
func New(store LayoutStore, notifier Notifier, opts ...Option) *Workflow {
	w := &Workflow{
		store:     store,
		notifier:  notifier,
		logger:    slog.Default(),
		persisted: layout.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load fetches the persisted layout.
func (w *Workflow) Load(ctx context.Context) error {
	l, err := w.store.Layout(ctx)
	if err != nil {
		return err
	}
	w.SetPersisted(l)
	return nil
}

// SetPersisted replaces the last known persisted layout. An open edit
// session keeps its working copy.
func (w *Workflow) SetPersisted(l layout.Layouts) {
	w.mu.Lock()
	w.persisted = l.Clone()
	shown := w.session == nil
	w.mu.Unlock()
	if shown {
		w.fireRecalc()
	}
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Editing reports whether an edit session is open, including while its
// save is pending.
func (w *Workflow) Editing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session != nil
}

// Layout returns a copy of the layout to display: the working copy while
// editing, the persisted layout otherwise.
func (w *Workflow) Layout() layout.Layouts {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.displayedLocked().Clone()
}

// Persisted returns a copy of the last known persisted layout.
func (w *Workflow) Persisted() layout.Layouts {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.persisted.Clone()
}

// Dirty reports whether the working copy differs from the layout the
// session started from.
func (w *Workflow) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session != nil && !w.session.working.Equal(w.session.snapshot)
}

func (w *Workflow) displayedLocked() layout.Layouts {
	if w.session != nil {
		return w.session.working
	}
	return w.persisted
}

// Enter opens an edit session. Entering while a session is open does
// nothing.
func (w *Workflow) Enter() {
	w.mu.Lock()
	if w.session != nil {
		w.mu.Unlock()
		return
	}
	w.session = &editSession{
		snapshot: w.persisted.Clone(),
		working:  w.persisted.Clone(),
	}
	w.state = Editing
	w.mu.Unlock()

	w.notifier.Show(notify.Toast{
		ID:         EditToastID,
		Kind:       notify.KindInfo,
		Title:      EditToastTitle,
		Actions:    EditActions,
		Persistent: true,
	})
	w.logger.Debug("layout edit mode entered")
}

// Move moves a panel in the working copy.
func (w *Workflow) Move(bp layout.Breakpoint, key string, x, y int) error {
	return w.edit(bp, func(items []layout.Placement) ([]layout.Placement, error) {
		return layout.Move(items, bp.Cols(), key, x, y)
	})
}

// Resize resizes a panel in the working copy.
func (w *Workflow) Resize(bp layout.Breakpoint, key string, width, height int) error {
	return w.edit(bp, func(items []layout.Placement) ([]layout.Placement, error) {
		return layout.Resize(items, bp.Cols(), key, width, height)
	})
}

func (w *Workflow) edit(bp layout.Breakpoint, fn func([]layout.Placement) ([]layout.Placement, error)) error {
	if !bp.Valid() {
		return fmt.Errorf("%w: %q", layout.ErrUnknownBreakpoint, bp)
	}
	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	next, err := fn(w.session.working[bp])
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.session.working[bp] = next
	w.mu.Unlock()

	w.fireRecalc()
	return nil
}

func (w *Workflow) editableLocked() error {
	switch w.state {
	case Editing:
		return nil
	case Saving, Resetting:
		return ErrSaveInFlight
	default:
		return ErrNotEditing
	}
}

// BeginSave moves to Saving and returns the working copy to persist.
func (w *Workflow) BeginSave() (*PendingSave, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return nil, err
	}
	w.state = Saving
	return &PendingSave{Layout: w.session.working.Clone(), session: w.session}, nil
}

// BeginReset replaces the working copy with the default layout, moves to
// Resetting and returns the layout to persist.
func (w *Workflow) BeginReset() (*PendingSave, error) {
	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.state = Resetting
	previous := w.session.working
	w.session.working = layout.Default()
	p := &PendingSave{
		Layout:   w.session.working.Clone(),
		reset:    true,
		session:  w.session,
		previous: previous,
	}
	w.mu.Unlock()

	w.fireRecalc()
	return p, nil
}

// Finish applies the result of a pending save to whatever state exists
// now. On failure the session, if still open, goes back to Editing with
// the working copy it had before the save; a failed reset gets the user's
// edits back.
func (w *Workflow) Finish(p *PendingSave, err error) error {
	w.mu.Lock()
	same := w.session != nil && w.session == p.session
	if err != nil {
		restored := false
		if same {
			w.state = Editing
			if p.reset && p.previous != nil {
				w.session.working = p.previous
				restored = true
			}
		}
		w.mu.Unlock()
		if restored {
			w.fireRecalc()
		}
		w.logger.Warn("layout save failed", "reset", p.reset, "error", err)
		w.notifier.Show(notify.Toast{Kind: notify.KindError, Message: err.Error()})
		return err
	}

	w.persisted = p.Layout.Clone()
	if same {
		w.session = nil
		w.state = Viewing
	}
	w.mu.Unlock()

	if same {
		w.notifier.Dismiss(EditToastID)
		w.fireRecalc()
	}
	msg := SavedMessage
	if p.reset {
		msg = ResetMessage
	}
	w.notifier.Show(notify.Toast{Kind: notify.KindSuccess, Title: msg})
	w.logger.Info("layout saved", "reset", p.reset)
	return nil
}

// Save persists the working copy and waits for the result.
func (w *Workflow) Save(ctx context.Context) error {
	p, err := w.BeginSave()
	if err != nil {
		return err
	}
	return w.Finish(p, w.store.SaveLayout(ctx, p.Layout))
}

// Reset persists the default layout and waits for the result.
func (w *Workflow) Reset(ctx context.Context) error {
	p, err := w.BeginReset()
	if err != nil {
		return err
	}
	return w.Finish(p, w.store.SaveLayout(ctx, p.Layout))
}

// Cancel discards the working copy and returns to Viewing without any
// request. A pending save is not aborted; its result still updates the
// persisted layout when it arrives.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	if w.session == nil {
		w.mu.Unlock()
		return ErrNotEditing
	}
	w.session = nil
	w.state = Viewing
	w.mu.Unlock()

	w.notifier.Dismiss(EditToastID)
	w.fireRecalc()
	w.logger.Debug("layout edit cancelled")
	return nil
}

// Close tears the workflow down; an open session is cancelled.
func (w *Workflow) Close() {
	if w.Editing() {
		_ = w.Cancel()
	}
}

func (w *Workflow) fireRecalc() {
	if w.recalc == nil {
		return
	}
	w.recalc(w.Layout())
}

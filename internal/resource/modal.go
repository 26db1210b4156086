package resource

import (
	"errors"
	"fmt"

	"github.com/harrylevesque/ecoadmin/internal/models"
)

// ErrInvalidTransition is returned when an action is not allowed from the
// current modal state.
var ErrInvalidTransition = errors.New("invalid modal transition")

// Modal is the single active modal state of a screen. The concrete types are
// None, Viewing, Editing, Adding and ConfirmingDelete.
type Modal interface {
	modal()
	Name() string
}

// None means no modal is open.
type None struct{}

// Viewing shows one record read-only.
type Viewing struct {
	ID     string
	Record models.Record
}

// Editing holds a draft of an existing record.
type Editing struct {
	ID       string
	Original models.Record
	Draft    models.Record
}

// Adding holds a draft of a record that does not exist yet.
type Adding struct {
	Draft models.Record
}

// ConfirmingDelete waits for the user to confirm deleting ID. Prior is the
// state to return to on cancel.
type ConfirmingDelete struct {
	ID    string
	Prior Modal
}

func (None) modal()             {}
func (Viewing) modal()          {}
func (Editing) modal()          {}
func (Adding) modal()           {}
func (ConfirmingDelete) modal() {}

func (None) Name() string             { return "none" }
func (Viewing) Name() string          { return "viewing" }
func (Editing) Name() string          { return "editing" }
func (Adding) Name() string           { return "adding" }
func (ConfirmingDelete) Name() string { return "confirming-delete" }

// ModalController enforces the allowed transitions between modal states.
// Drafts are copied on every write, so a Modal value handed out never changes
// underneath its holder.
type ModalController struct {
	current Modal
	gen     uint64
}

func (c *ModalController) set(m Modal) {
	c.current = m
	c.gen++
}

// Generation changes on every state transition. Field edits keep it.
func (c *ModalController) Generation() uint64 {
	return c.gen
}

// Current returns the active state.
func (c *ModalController) Current() Modal {
	if c.current == nil {
		return None{}
	}
	return c.current
}

// Reset returns to None, discarding any draft.
func (c *ModalController) Reset() {
	c.set(None{})
}

func (c *ModalController) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, c.Current().Name())
}

// View opens rec read-only. Allowed from None.
func (c *ModalController) View(id string, rec models.Record) error {
	if _, ok := c.Current().(None); !ok {
		return c.invalid("view")
	}
	c.set(Viewing{ID: id, Record: rec})
	return nil
}

// Edit turns the viewed record into a draft.
func (c *ModalController) Edit() error {
	v, ok := c.Current().(Viewing)
	if !ok {
		return c.invalid("edit")
	}
	c.set(Editing{ID: v.ID, Original: v.Record, Draft: v.Record.Clone()})
	return nil
}

// EditRecord opens a draft of rec straight from the list.
func (c *ModalController) EditRecord(id string, rec models.Record) error {
	if _, ok := c.Current().(None); !ok {
		return c.invalid("edit")
	}
	c.set(Editing{ID: id, Original: rec, Draft: rec.Clone()})
	return nil
}

// Add opens a draft seeded with defaults. Allowed from None and Viewing.
func (c *ModalController) Add(defaults models.Record) error {
	switch c.Current().(type) {
	case None, Viewing:
	default:
		return c.invalid("add")
	}
	c.set(Adding{Draft: defaults.Clone()})
	return nil
}

// SetField writes one draft field under its canonical name.
func (c *ModalController) SetField(key string, value any) error {
	key = models.Canonical(key)
	switch m := c.Current().(type) {
	case Editing:
		d := m.Draft.Clone()
		d[key] = value
		m.Draft = d
		c.current = m
	case Adding:
		d := m.Draft.Clone()
		d[key] = value
		m.Draft = d
		c.current = m
	default:
		return c.invalid("edit a field")
	}
	return nil
}

// Cancel backs out of the current state: drafts and views close, a pending
// delete returns to where it came from.
func (c *ModalController) Cancel() error {
	switch m := c.Current().(type) {
	case Viewing, Editing, Adding:
		c.set(None{})
	case ConfirmingDelete:
		c.set(m.Prior)
	default:
		return c.invalid("cancel")
	}
	return nil
}

// Close dismisses a read-only view.
func (c *ModalController) Close() error {
	if _, ok := c.Current().(Viewing); !ok {
		return c.invalid("close")
	}
	c.set(None{})
	return nil
}

// RequestDelete asks for confirmation before deleting the open record.
func (c *ModalController) RequestDelete() error {
	var id string
	switch m := c.Current().(type) {
	case Viewing:
		id = m.ID
	case Editing:
		id = m.ID
	default:
		return c.invalid("delete")
	}
	c.set(ConfirmingDelete{ID: id, Prior: c.current})
	return nil
}

// CancelDelete abandons a pending delete.
func (c *ModalController) CancelDelete() error {
	m, ok := c.Current().(ConfirmingDelete)
	if !ok {
		return c.invalid("cancel delete")
	}
	c.set(m.Prior)
	return nil
}

// OpenID returns the id of the record the modal is about, if any.
func OpenID(m Modal) (string, bool) {
	switch t := m.(type) {
	case Viewing:
		return t.ID, true
	case Editing:
		return t.ID, true
	case ConfirmingDelete:
		return t.ID, true
	}
	return "", false
}

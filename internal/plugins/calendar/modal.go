package calendar

// ModalMode says what the event modal is doing.
type ModalMode string

const (
	ModalClosed ModalMode = ""
	ModalCreate ModalMode = "create"
	ModalEdit   ModalMode = "edit"
)

// Modal is the create/edit dialog. In edit mode Original holds the event
// as it was opened so a save can report only the changed fields.
type Modal struct {
	Mode          ModalMode   `json:"mode,omitempty"`
	Original      *Event      `json:"original,omitempty"`
	Form          EventForm   `json:"form"`
	Errors        FieldErrors `json:"errors,omitempty"`
	ConfirmDelete bool        `json:"confirmDelete,omitempty"`
}

// IsOpen reports whether the dialog is showing.
func (m Modal) IsOpen() bool {
	return m.Mode != ModalClosed
}

// OpenCreate shows an empty-ID create form.
func OpenCreate(form EventForm) Modal {
	return Modal{Mode: ModalCreate, Form: form}
}

// OpenEdit shows e for editing.
func OpenEdit(e Event) Modal {
	orig := e
	return Modal{Mode: ModalEdit, Original: &orig, Form: FormFromEvent(e)}
}

// Submit validates form. On failure the dialog stays open with field
// messages and no effect. On success it closes and returns an add effect
// (create) or an update effect carrying only the changed fields (edit).
// An edit that changes nothing closes without an effect.
func (m Modal) Submit(form EventForm, opts Options, c *Controller) (Modal, []Effect) {
	if !m.IsOpen() {
		return m, nil
	}

	loc := c.location()
	if m.Original != nil {
		loc = m.Original.Start.Location()
	}

	e, errs := form.Event(opts, loc)
	if len(errs) > 0 {
		m.Form = form
		m.Errors = errs
		return m, nil
	}

	if m.Mode == ModalCreate {
		e.ID = c.newID()
		return Modal{}, []Effect{{Kind: EffectAdd, Event: &e}}
	}

	e.ID = m.Original.ID
	patch := Diff(*m.Original, e)
	if patch.IsEmpty() {
		return Modal{}, nil
	}
	return Modal{}, []Effect{{Kind: EffectUpdate, ID: e.ID, Patch: patch}}
}

// RequestDelete asks for confirmation. Only events being edited can be
// deleted.
func (m Modal) RequestDelete() Modal {
	if m.Mode != ModalEdit {
		return m
	}
	m.ConfirmDelete = true
	return m
}

// CancelDelete declines the confirmation and leaves everything else as is.
func (m Modal) CancelDelete() Modal {
	m.ConfirmDelete = false
	return m
}

// ConfirmDeletion closes the dialog and emits the delete effect. Without
// a pending confirmation nothing happens.
func (m Modal) ConfirmDeletion() (Modal, []Effect) {
	if m.Mode != ModalEdit || !m.ConfirmDelete || m.Original == nil {
		return m, nil
	}
	return Modal{}, []Effect{{Kind: EffectDelete, ID: m.Original.ID}}
}

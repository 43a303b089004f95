package show

// History is a generic undo/redo stack of paired closures. Each recorded
// step carries an apply function and a revert function; History runs them
// but does not verify that revert actually undoes apply.
type History struct {
	undo []step
	redo []step
}

type step struct {
	apply  func()
	revert func()
}

func NewHistory() *History {
	return &History{}
}

// Do executes apply, records the step, and clears the redo stack - once a
// new edit lands, previously undone steps can no longer be replayed.
func (h *History) Do(apply, revert func()) {
	apply()

	h.undo = append(h.undo, step{apply: apply, revert: revert})
	h.redo = nil
}

// Undo reverts the most recent step and moves it to the redo stack.
func (h *History) Undo() error {
	if len(h.undo) == 0 {
		return ErrNothingToUndo
	}

	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	last.revert()

	h.redo = append(h.redo, last)

	return nil
}

// Redo re-applies the most recently undone step.
func (h *History) Redo() error {
	if len(h.redo) == 0 {
		return ErrNothingToRedo
	}

	last := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]

	last.apply()

	h.undo = append(h.undo, last)

	return nil
}

// Reset drops both stacks. Not undoable.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }

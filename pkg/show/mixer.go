package show

import (
	"fmt"
	"slices"
	"time"
)

// CueState is the derived display state of a single cue, computed from the
// cursor each time the console renders. It is never stored.
type CueState int

const (
	CueExecuted CueState = iota // before the cursor
	CueActive                   // at the cursor, next to run
	CuePending                  // after the cursor
)

// Mixer is a named ordered sequence of cues with an execution cursor.
//
// The cursor counts executed cues: 0 means nothing has run yet and cue 0 is
// active, len(cues) is the terminal position with everything executed. For N
// cues there are exactly N+1 cursor positions.
type Mixer struct {
	Name   string
	cues   []Cue
	cursor int
}

func NewMixer(name string) *Mixer {
	return &Mixer{Name: name}
}

// AddCue appends a cue to the end of the sequence. The cursor does not move.
func (m *Mixer) AddCue(name string, action Action, soundName string) Cue {
	cue := Cue{Name: name, Action: action, Sound: soundName}
	m.cues = append(m.cues, cue)

	return cue
}

// InsertCue places a cue at the given index, shifting later cues down.
// Inserting before the cursor shifts the cursor so the active cue is
// preserved.
func (m *Mixer) InsertCue(index int, cue Cue) error {
	if index < 0 || index > len(m.cues) {
		return fmt.Errorf("insert at %d: %w", index, ErrOutOfRange)
	}

	m.cues = slices.Insert(m.cues, index, cue)

	if index < m.cursor {
		m.cursor++
	}

	return nil
}

// DeleteCue removes the cue at index. Deleting before the cursor decrements
// it to preserve the active cue; deleting at the cursor leaves it in place,
// now pointing at what was the next cue, clamped to the terminal position.
func (m *Mixer) DeleteCue(index int) error {
	if index < 0 || index >= len(m.cues) {
		return fmt.Errorf("delete at %d: %w", index, ErrOutOfRange)
	}

	m.cues = slices.Delete(m.cues, index, index+1)

	if index < m.cursor {
		m.cursor--
	}

	if m.cursor > len(m.cues) {
		m.cursor = len(m.cues)
	}

	return nil
}

// Execute runs the active cue against the player and advances the cursor.
// At the terminal position it fails with ErrNothingToExecute rather than
// wrapping or re-executing.
//
// A cue with no action or no sound still advances the cursor - it is a
// placeholder the operator hasn't finished editing, not an error.
func (m *Mixer) Execute(reg *Registry, player Player) error {
	if m.cursor >= len(m.cues) {
		return fmt.Errorf("mixer %q: %w", m.Name, ErrNothingToExecute)
	}

	cue := m.cues[m.cursor]
	m.cursor++

	if cue.Action == ActionNone || cue.Sound == "" {
		return nil
	}

	sound, err := reg.Lookup(cue.Sound)
	if err != nil {
		return fmt.Errorf("cue %q: %w", cue.Name, err)
	}

	switch cue.Action {
	case ActionPlay:
		if err := player.Play(sound.Name, cue.Fade); err != nil {
			return fmt.Errorf("cue %q: %w", cue.Name, err)
		}
	case ActionStop:
		if err := player.Stop(sound.Name, cue.Fade); err != nil {
			return fmt.Errorf("cue %q: %w", cue.Name, err)
		}
	}

	return nil
}

// Back moves the cursor back one position. It only moves the pointer: audio
// side effects of the cue that had executed are not undone.
func (m *Mixer) Back() error {
	if m.cursor == 0 {
		return fmt.Errorf("mixer %q: %w", m.Name, ErrAlreadyAtStart)
	}

	m.cursor--

	return nil
}

// Reset returns the cursor to the start unconditionally.
func (m *Mixer) Reset() {
	m.cursor = 0
}

// JumpTo makes the cue at index the active one without executing anything.
func (m *Mixer) JumpTo(index int) error {
	if index < 0 || index >= len(m.cues) {
		return fmt.Errorf("jump to %d: %w", index, ErrOutOfRange)
	}

	m.cursor = index

	return nil
}

// Cursor reports how many cues have executed; equal to Len() at the
// terminal position.
func (m *Mixer) Cursor() int {
	return m.cursor
}

// Done reports whether every cue has executed.
func (m *Mixer) Done() bool {
	return m.cursor == len(m.cues)
}

func (m *Mixer) Len() int {
	return len(m.cues)
}

// Cues returns a copy of the cue sequence in execution order.
func (m *Mixer) Cues() []Cue {
	return slices.Clone(m.cues)
}

func (m *Mixer) Cue(index int) (Cue, error) {
	if index < 0 || index >= len(m.cues) {
		return Cue{}, fmt.Errorf("cue at %d: %w", index, ErrOutOfRange)
	}

	return m.cues[index], nil
}

// CurrentCue returns the active cue, or false at the terminal position.
func (m *Mixer) CurrentCue() (Cue, bool) {
	if m.cursor >= len(m.cues) {
		return Cue{}, false
	}

	return m.cues[m.cursor], true
}

// CueState derives the display state of the cue at index from the cursor.
func (m *Mixer) CueState(index int) CueState {
	switch {
	case index < m.cursor:
		return CueExecuted
	case index == m.cursor:
		return CueActive
	default:
		return CuePending
	}
}

// SetCueName renames the cue at index. Cue names need not be unique.
func (m *Mixer) SetCueName(index int, name string) error {
	if index < 0 || index >= len(m.cues) {
		return fmt.Errorf("cue at %d: %w", index, ErrOutOfRange)
	}

	m.cues[index].Name = name

	return nil
}

// SetCueAction updates the action of the cue at index.
func (m *Mixer) SetCueAction(index int, action Action) error {
	if index < 0 || index >= len(m.cues) {
		return fmt.Errorf("cue at %d: %w", index, ErrOutOfRange)
	}

	m.cues[index].Action = action

	return nil
}

// SetCueSound retargets the cue at index to a different sound name.
func (m *Mixer) SetCueSound(index int, soundName string) error {
	if index < 0 || index >= len(m.cues) {
		return fmt.Errorf("cue at %d: %w", index, ErrOutOfRange)
	}

	m.cues[index].Sound = soundName

	return nil
}

// SetCueFade sets the fade duration applied when the cue's action runs.
func (m *Mixer) SetCueFade(index int, fade time.Duration) error {
	if index < 0 || index >= len(m.cues) {
		return fmt.Errorf("cue at %d: %w", index, ErrOutOfRange)
	}

	m.cues[index].Fade = fade

	return nil
}

// retargetSound rewrites sound references, used by the project when a sound
// is renamed so name references never dangle.
func (m *Mixer) retargetSound(oldName, newName string) {
	for i := range m.cues {
		if m.cues[i].Sound == oldName {
			m.cues[i].Sound = newName
		}
	}
}

// referencesSound reports whether any cue targets the named sound.
func (m *Mixer) referencesSound(name string) bool {
	return slices.ContainsFunc(m.cues, func(c Cue) bool {
		return c.Sound == name
	})
}

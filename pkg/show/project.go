package show

import (
	"fmt"
	"slices"
)

// Engine is the audio collaborator as the project sees it: it decodes and
// holds sounds and carries the master gain. Load must fail if the file at
// path cannot be decoded - the registry never admits a sound the engine
// can't play.
type Engine interface {
	Load(name, path string) error
	Unload(name string)
	Rename(oldName, newName string)
	SetVolume(volume float64)
}

// Project is the root aggregate and the unit of save/load: master volume,
// the sound registry, and the named mixers. It owns the policy choke
// points - sound deletion is rejected while referenced (ErrSoundInUse) and
// sound renames cascade into every referencing cue.
//
// All mutation happens on the caller's single goroutine; the project itself
// holds no locks.
type Project struct {
	engine  Engine
	sounds  *Registry
	mixers  []*Mixer
	history *History
	volume  float64
}

func NewProject(engine Engine) *Project {
	return &Project{
		engine:  engine,
		sounds:  NewRegistry(),
		history: NewHistory(),
		volume:  1.0,
	}
}

func (p *Project) Sounds() *Registry { return p.sounds }

func (p *Project) History() *History { return p.history }

func (p *Project) Volume() float64 { return p.volume }

// SetVolume updates the master gain, applied globally by the engine.
// Volume changes are live-control, not edits, so they are not undoable.
func (p *Project) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume %v: %w", volume, ErrOutOfRange)
	}

	p.volume = volume
	p.engine.SetVolume(volume)

	return nil
}

// AddSound decodes the file through the engine, then registers it. The
// engine keeps the decoded buffer across undo/redo so replaying the edit
// never re-reads the file.
func (p *Project) AddSound(name, path string) (Sound, error) {
	if _, ok := p.sounds.sounds[name]; ok {
		return Sound{}, fmt.Errorf("sound %q: %w", name, ErrDuplicateName)
	}

	if err := p.engine.Load(name, path); err != nil {
		return Sound{}, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path, err)
	}

	sound := Sound{Name: name, Path: path}

	p.history.Do(
		func() { p.sounds.insertAt(p.sounds.Len(), sound) },
		func() { p.sounds.removeQuiet(name) },
	)

	return sound, nil
}

// RemoveSound deletes a sound from the registry. It fails with
// ErrSoundInUse while any cue in any mixer still references the name; the
// operator has to retarget or delete those cues first.
func (p *Project) RemoveSound(name string) error {
	sound, err := p.sounds.Lookup(name)
	if err != nil {
		return err
	}

	for _, mixer := range p.mixers {
		if mixer.referencesSound(name) {
			return fmt.Errorf("sound %q referenced by mixer %q: %w", name, mixer.Name, ErrSoundInUse)
		}
	}

	index := slices.Index(p.sounds.order, name)

	p.history.Do(
		func() { p.sounds.removeQuiet(name) },
		func() { p.sounds.insertAt(index, sound) },
	)

	return nil
}

// RenameSound renames a registry entry and rewrites the reference in every
// cue that targeted the old name, so cue references never dangle.
func (p *Project) RenameSound(oldName, newName string) error {
	if _, err := p.sounds.Lookup(oldName); err != nil {
		return err
	}

	if oldName == newName {
		return nil
	}

	if _, ok := p.sounds.sounds[newName]; ok {
		return fmt.Errorf("sound %q: %w", newName, ErrDuplicateName)
	}

	rename := func(from, to string) {
		if err := p.sounds.Rename(from, to); err != nil {
			return
		}

		p.engine.Rename(from, to)

		for _, mixer := range p.mixers {
			mixer.retargetSound(from, to)
		}
	}

	p.history.Do(
		func() { rename(oldName, newName) },
		func() { rename(newName, oldName) },
	)

	return nil
}

// AddMixer appends a new, empty mixer. Mixer names are unique within the
// project.
func (p *Project) AddMixer(name string) (*Mixer, error) {
	if p.findMixer(name) != nil {
		return nil, fmt.Errorf("mixer %q: %w", name, ErrDuplicateName)
	}

	mixer := NewMixer(name)

	p.history.Do(
		func() { p.mixers = append(p.mixers, mixer) },
		func() { p.mixers = p.mixers[:len(p.mixers)-1] },
	)

	return mixer, nil
}

func (p *Project) RemoveMixer(name string) error {
	mixer := p.findMixer(name)
	if mixer == nil {
		return fmt.Errorf("mixer %q: %w", name, ErrNotFound)
	}

	index := slices.Index(p.mixers, mixer)

	p.history.Do(
		func() { p.mixers = slices.Delete(p.mixers, index, index+1) },
		func() { p.mixers = slices.Insert(p.mixers, index, mixer) },
	)

	return nil
}

func (p *Project) RenameMixer(oldName, newName string) error {
	mixer := p.findMixer(oldName)
	if mixer == nil {
		return fmt.Errorf("mixer %q: %w", oldName, ErrNotFound)
	}

	if oldName == newName {
		return nil
	}

	if p.findMixer(newName) != nil {
		return fmt.Errorf("mixer %q: %w", newName, ErrDuplicateName)
	}

	p.history.Do(
		func() { mixer.Name = newName },
		func() { mixer.Name = oldName },
	)

	return nil
}

// AddCue appends a cue to the named mixer as an undoable edit.
func (p *Project) AddCue(mixerName string, cue Cue) error {
	mixer := p.findMixer(mixerName)
	if mixer == nil {
		return fmt.Errorf("mixer %q: %w", mixerName, ErrNotFound)
	}

	if cue.Sound != "" {
		if _, err := p.sounds.Lookup(cue.Sound); err != nil {
			return err
		}
	}

	index := mixer.Len()

	p.history.Do(
		func() { _ = mixer.InsertCue(index, cue) },
		func() { _ = mixer.DeleteCue(index) },
	)

	return nil
}

// DeleteCue removes a cue from the named mixer as an undoable edit. Undo
// restores the cursor exactly, including the adjustment DeleteCue made.
func (p *Project) DeleteCue(mixerName string, index int) error {
	mixer := p.findMixer(mixerName)
	if mixer == nil {
		return fmt.Errorf("mixer %q: %w", mixerName, ErrNotFound)
	}

	cue, err := mixer.Cue(index)
	if err != nil {
		return err
	}

	cursor := mixer.cursor

	p.history.Do(
		func() { _ = mixer.DeleteCue(index) },
		func() {
			_ = mixer.InsertCue(index, cue)
			mixer.cursor = cursor
		},
	)

	return nil
}

// UpdateCue replaces the cue at index in the named mixer as a single
// undoable edit. A nonempty target sound must exist in the registry.
func (p *Project) UpdateCue(mixerName string, index int, cue Cue) error {
	mixer := p.findMixer(mixerName)
	if mixer == nil {
		return fmt.Errorf("mixer %q: %w", mixerName, ErrNotFound)
	}

	previous, err := mixer.Cue(index)
	if err != nil {
		return err
	}

	if cue.Sound != "" {
		if _, err := p.sounds.Lookup(cue.Sound); err != nil {
			return err
		}
	}

	p.history.Do(
		func() { mixer.cues[index] = cue },
		func() { mixer.cues[index] = previous },
	)

	return nil
}

// Execute runs the named mixer's active cue. Playback is not an edit:
// nothing is recorded in history.
func (p *Project) Execute(mixerName string, player Player) error {
	mixer := p.findMixer(mixerName)
	if mixer == nil {
		return fmt.Errorf("mixer %q: %w", mixerName, ErrNotFound)
	}

	return mixer.Execute(p.sounds, player)
}

func (p *Project) Undo() error { return p.history.Undo() }

func (p *Project) Redo() error { return p.history.Redo() }

// Mixers returns the mixers in project order. The slice is a copy; the
// mixers themselves are shared.
func (p *Project) Mixers() []*Mixer {
	return slices.Clone(p.mixers)
}

func (p *Project) Mixer(name string) (*Mixer, error) {
	if mixer := p.findMixer(name); mixer != nil {
		return mixer, nil
	}

	return nil, fmt.Errorf("mixer %q: %w", name, ErrNotFound)
}

func (p *Project) findMixer(name string) *Mixer {
	for _, mixer := range p.mixers {
		if mixer.Name == name {
			return mixer
		}
	}

	return nil
}

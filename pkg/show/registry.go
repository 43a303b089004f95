package show

import (
	"fmt"
	"slices"
)

// Sound is a named audio file known to the registry. The decoded audio lives
// in the engine; the registry only tracks identity.
type Sound struct {
	Name string
	Path string
}

// Registry holds the set of loaded sounds for a project, keyed by name.
// Names are unique within a project. The registry never touches playback
// itself; reference-counting policy (ErrSoundInUse) is enforced by the
// owning Project, which can see the mixers.
type Registry struct {
	sounds map[string]Sound
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{
		sounds: map[string]Sound{},
	}
}

func (r *Registry) Add(name, path string) (Sound, error) {
	if name == "" {
		return Sound{}, fmt.Errorf("sound name must not be empty")
	}

	if _, ok := r.sounds[name]; ok {
		return Sound{}, fmt.Errorf("sound %q: %w", name, ErrDuplicateName)
	}

	sound := Sound{Name: name, Path: path}
	r.sounds[name] = sound
	r.order = append(r.order, name)

	return sound, nil
}

func (r *Registry) Rename(oldName, newName string) error {
	sound, ok := r.sounds[oldName]
	if !ok {
		return fmt.Errorf("sound %q: %w", oldName, ErrNotFound)
	}

	if newName == oldName {
		return nil
	}

	if _, ok := r.sounds[newName]; ok {
		return fmt.Errorf("sound %q: %w", newName, ErrDuplicateName)
	}

	delete(r.sounds, oldName)

	sound.Name = newName
	r.sounds[newName] = sound

	if idx := slices.Index(r.order, oldName); idx >= 0 {
		r.order[idx] = newName
	}

	return nil
}

func (r *Registry) Remove(name string) error {
	if _, ok := r.sounds[name]; !ok {
		return fmt.Errorf("sound %q: %w", name, ErrNotFound)
	}

	delete(r.sounds, name)

	if idx := slices.Index(r.order, name); idx >= 0 {
		r.order = slices.Delete(r.order, idx, idx+1)
	}

	return nil
}

func (r *Registry) Lookup(name string) (Sound, error) {
	sound, ok := r.sounds[name]
	if !ok {
		return Sound{}, fmt.Errorf("sound %q: %w", name, ErrNotFound)
	}

	return sound, nil
}

// Names returns sound names in the order they were added. The console uses
// this to populate its listings deterministically.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

func (r *Registry) Len() int {
	return len(r.sounds)
}

// insertAt and removeQuiet skip validation; the project uses them to replay
// undo/redo steps that were validated when first applied.
func (r *Registry) insertAt(index int, sound Sound) {
	r.sounds[sound.Name] = sound
	r.order = slices.Insert(r.order, index, sound.Name)
}

func (r *Registry) removeQuiet(name string) {
	delete(r.sounds, name)

	if idx := slices.Index(r.order, name); idx >= 0 {
		r.order = slices.Delete(r.order, idx, idx+1)
	}
}

package show_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cneill/stagecue/pkg/show"
)

// stubEngine implements show.Engine without touching any audio device.
type stubEngine struct {
	loaded   map[string]string // name -> path
	volume   float64
	failPath string
}

func newStubEngine() *stubEngine {
	return &stubEngine{loaded: map[string]string{}, volume: 1.0}
}

func (s *stubEngine) Load(name, path string) error {
	if path == s.failPath {
		return fmt.Errorf("cannot decode %q", path)
	}

	s.loaded[name] = path

	return nil
}

func (s *stubEngine) Unload(name string) {
	delete(s.loaded, name)
}

func (s *stubEngine) Rename(oldName, newName string) {
	if path, ok := s.loaded[oldName]; ok {
		delete(s.loaded, oldName)
		s.loaded[newName] = path
	}
}

func (s *stubEngine) SetVolume(volume float64) {
	s.volume = volume
}

func TestProject_AddSoundValidatesThroughEngine(t *testing.T) {
	t.Parallel()

	engine := newStubEngine()
	engine.failPath = "sounds/corrupt.wav"

	project := show.NewProject(engine)

	if _, err := project.AddSound("bad", "sounds/corrupt.wav"); !errors.Is(err, show.ErrFileUnreadable) {
		t.Errorf("expected ErrFileUnreadable, got %v", err)
	}

	if project.Sounds().Len() != 0 {
		t.Errorf("unreadable sound must not enter the registry")
	}

	if _, err := project.AddSound("bell", "sounds/bell.wav"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if _, err := project.AddSound("bell", "sounds/other.wav"); !errors.Is(err, show.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}

	if got := engine.loaded["bell"]; got != "sounds/bell.wav" {
		t.Errorf("engine did not load the sound: %v", engine.loaded)
	}
}

func TestProject_RemoveSoundInUse(t *testing.T) {
	t.Parallel()

	project := show.NewProject(newStubEngine())

	if _, err := project.AddSound("bell", "sounds/bell.wav"); err != nil {
		t.Fatalf("add sound failed: %v", err)
	}

	if _, err := project.AddMixer("M1"); err != nil {
		t.Fatalf("add mixer failed: %v", err)
	}

	if err := project.AddCue("M1", show.Cue{Name: "open", Action: show.ActionPlay, Sound: "bell"}); err != nil {
		t.Fatalf("add cue failed: %v", err)
	}

	// Policy: deletion is rejected while referenced, never cascaded.
	if err := project.RemoveSound("bell"); !errors.Is(err, show.ErrSoundInUse) {
		t.Errorf("expected ErrSoundInUse, got %v", err)
	}

	if _, err := project.Sounds().Lookup("bell"); err != nil {
		t.Errorf("rejected removal must not mutate the registry: %v", err)
	}

	if err := project.DeleteCue("M1", 0); err != nil {
		t.Fatalf("delete cue failed: %v", err)
	}

	if err := project.RemoveSound("bell"); err != nil {
		t.Errorf("expected removal to succeed once unreferenced, got %v", err)
	}
}

func TestProject_RenameSoundCascades(t *testing.T) {
	t.Parallel()

	engine := newStubEngine()
	project := show.NewProject(engine)

	if _, err := project.AddSound("bell", "sounds/bell.wav"); err != nil {
		t.Fatalf("add sound failed: %v", err)
	}

	if _, err := project.AddMixer("M1"); err != nil {
		t.Fatalf("add mixer failed: %v", err)
	}

	if err := project.AddCue("M1", show.Cue{Name: "open", Action: show.ActionPlay, Sound: "bell"}); err != nil {
		t.Fatalf("add cue failed: %v", err)
	}

	if err := project.RenameSound("bell", "chime"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	mixer, err := project.Mixer("M1")
	if err != nil {
		t.Fatalf("mixer lookup failed: %v", err)
	}

	if got := mixer.Cues()[0].Sound; got != "chime" {
		t.Errorf("expected cue retargeted to %q, got %q", "chime", got)
	}

	if _, ok := engine.loaded["chime"]; !ok {
		t.Errorf("engine rename not applied: %v", engine.loaded)
	}

	// Undo restores both the registry name and the cue reference.
	if err := project.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	if got := mixer.Cues()[0].Sound; got != "bell" {
		t.Errorf("expected cue restored to %q, got %q", "bell", got)
	}
}

func TestProject_SetVolume(t *testing.T) {
	t.Parallel()

	engine := newStubEngine()
	project := show.NewProject(engine)

	if err := project.SetVolume(1.5); !errors.Is(err, show.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for volume > 1, got %v", err)
	}

	if err := project.SetVolume(-0.1); !errors.Is(err, show.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for negative volume, got %v", err)
	}

	if err := project.SetVolume(0.25); err != nil {
		t.Fatalf("set volume failed: %v", err)
	}

	if engine.volume != 0.25 {
		t.Errorf("expected engine volume 0.25, got %v", engine.volume)
	}
}

func TestProject_MixerNamesUnique(t *testing.T) {
	t.Parallel()

	project := show.NewProject(newStubEngine())

	if _, err := project.AddMixer("M1"); err != nil {
		t.Fatalf("add mixer failed: %v", err)
	}

	if _, err := project.AddMixer("M1"); !errors.Is(err, show.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}

	if err := project.RemoveMixer("ghost"); !errors.Is(err, show.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if _, err := project.AddMixer("M2"); err != nil {
		t.Fatalf("add mixer failed: %v", err)
	}

	if err := project.RenameMixer("M2", "M1"); !errors.Is(err, show.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName on rename collision, got %v", err)
	}
}

func TestProject_UndoRedoSoundEdits(t *testing.T) {
	t.Parallel()

	project := show.NewProject(newStubEngine())

	if _, err := project.AddSound("bell", "sounds/bell.wav"); err != nil {
		t.Fatalf("add sound failed: %v", err)
	}

	if err := project.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	if project.Sounds().Len() != 0 {
		t.Errorf("expected registry empty after undo")
	}

	if err := project.Redo(); err != nil {
		t.Fatalf("redo failed: %v", err)
	}

	if _, err := project.Sounds().Lookup("bell"); err != nil {
		t.Errorf("expected sound back after redo: %v", err)
	}

	if err := project.RemoveSound("bell"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if err := project.Undo(); err != nil {
		t.Fatalf("undo of removal failed: %v", err)
	}

	if _, err := project.Sounds().Lookup("bell"); err != nil {
		t.Errorf("expected sound restored after undoing removal: %v", err)
	}
}

func TestProject_DeleteCueUndoRestoresCursor(t *testing.T) {
	t.Parallel()

	project := show.NewProject(newStubEngine())
	player := &fakePlayer{}

	if _, err := project.AddSound("bell", "sounds/bell.wav"); err != nil {
		t.Fatalf("add sound failed: %v", err)
	}

	if _, err := project.AddMixer("M1"); err != nil {
		t.Fatalf("add mixer failed: %v", err)
	}

	for _, name := range []string{"a", "b", "c"} {
		if err := project.AddCue("M1", show.Cue{Name: name, Action: show.ActionPlay, Sound: "bell"}); err != nil {
			t.Fatalf("add cue failed: %v", err)
		}
	}

	mixer, err := project.Mixer("M1")
	if err != nil {
		t.Fatalf("mixer lookup failed: %v", err)
	}

	if err := project.Execute("M1", player); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if err := project.Execute("M1", player); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	// Deleting before the cursor shifts it; undo must put it back exactly.
	if err := project.DeleteCue("M1", 0); err != nil {
		t.Fatalf("delete cue failed: %v", err)
	}

	if got := mixer.Cursor(); got != 1 {
		t.Fatalf("expected cursor 1 after deletion, got %d", got)
	}

	if err := project.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	if got := mixer.Cursor(); got != 2 {
		t.Errorf("expected cursor restored to 2, got %d", got)
	}

	if got := mixer.Len(); got != 3 {
		t.Errorf("expected 3 cues after undo, got %d", got)
	}

	if got := mixer.Cues()[0].Name; got != "a" {
		t.Errorf("expected cue %q restored at index 0, got %q", "a", got)
	}
}

func TestProject_AddCueRejectsUnknownSound(t *testing.T) {
	t.Parallel()

	project := show.NewProject(newStubEngine())

	if _, err := project.AddMixer("M1"); err != nil {
		t.Fatalf("add mixer failed: %v", err)
	}

	err := project.AddCue("M1", show.Cue{Name: "bad", Action: show.ActionPlay, Sound: "ghost"})
	if !errors.Is(err, show.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown sound, got %v", err)
	}
}

func TestProject_ExecuteScenario(t *testing.T) {
	t.Parallel()

	project := show.NewProject(newStubEngine())
	player := &fakePlayer{}

	if _, err := project.AddSound("bell", "sounds/bell.wav"); err != nil {
		t.Fatalf("add sound failed: %v", err)
	}

	if _, err := project.AddMixer("M1"); err != nil {
		t.Fatalf("add mixer failed: %v", err)
	}

	if err := project.AddCue("M1", show.Cue{Name: "open", Action: show.ActionPlay, Sound: "bell"}); err != nil {
		t.Fatalf("add cue failed: %v", err)
	}

	if err := project.AddCue("M1", show.Cue{Name: "close", Action: show.ActionStop, Sound: "bell"}); err != nil {
		t.Fatalf("add cue failed: %v", err)
	}

	mixer, err := project.Mixer("M1")
	if err != nil {
		t.Fatalf("mixer lookup failed: %v", err)
	}

	if err := project.Execute("M1", player); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if got := mixer.Cursor(); got != 1 {
		t.Errorf("expected cursor 1, got %d", got)
	}

	if err := project.Execute("M1", player); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if got := mixer.Cursor(); got != 2 {
		t.Errorf("expected cursor 2, got %d", got)
	}

	if err := project.Execute("M1", player); !errors.Is(err, show.ErrNothingToExecute) {
		t.Errorf("expected ErrNothingToExecute, got %v", err)
	}

	want := []playerCall{
		{action: "play", sound: "bell"},
		{action: "stop", sound: "bell"},
	}

	for i, call := range want {
		if player.calls[i] != call {
			t.Errorf("call %d: expected %+v, got %+v", i, call, player.calls[i])
		}
	}
}

package show_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/cneill/stagecue/pkg/show"
)

func TestRegistry_Add(t *testing.T) {
	t.Parallel()

	reg := show.NewRegistry()

	sound, err := reg.Add("bell", "sounds/bell.wav")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if sound.Name != "bell" || sound.Path != "sounds/bell.wav" {
		t.Errorf("unexpected sound: %+v", sound)
	}

	if _, err := reg.Add("bell", "sounds/other.wav"); !errors.Is(err, show.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}

	if _, err := reg.Add("", "sounds/x.wav"); err == nil {
		t.Errorf("expected error for empty name")
	}
}

func TestRegistry_Rename(t *testing.T) {
	t.Parallel()

	reg := show.NewRegistry()

	if _, err := reg.Add("bell", "sounds/bell.wav"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if _, err := reg.Add("horn", "sounds/horn.wav"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := reg.Rename("ghost", "whatever"); !errors.Is(err, show.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := reg.Rename("bell", "horn"); !errors.Is(err, show.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}

	if err := reg.Rename("bell", "chime"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	if _, err := reg.Lookup("bell"); !errors.Is(err, show.ErrNotFound) {
		t.Errorf("expected old name gone, got %v", err)
	}

	sound, err := reg.Lookup("chime")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if sound.Path != "sounds/bell.wav" {
		t.Errorf("rename lost the path: %+v", sound)
	}

	// Rename preserves ordering.
	if want := []string{"chime", "horn"}; !slices.Equal(reg.Names(), want) {
		t.Errorf("expected names %v, got %v", want, reg.Names())
	}
}

func TestRegistry_Remove(t *testing.T) {
	t.Parallel()

	reg := show.NewRegistry()

	if _, err := reg.Add("bell", "sounds/bell.wav"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := reg.Remove("ghost"); !errors.Is(err, show.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := reg.Remove("bell"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", reg.Len())
	}
}

func TestRegistry_NamesKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	reg := show.NewRegistry()
	names := []string{"thunder", "applause", "bell", "horn"}

	for _, name := range names {
		if _, err := reg.Add(name, "sounds/"+name+".wav"); err != nil {
			t.Fatalf("add %q failed: %v", name, err)
		}
	}

	if !slices.Equal(reg.Names(), names) {
		t.Errorf("expected names %v, got %v", names, reg.Names())
	}
}

package show

import (
	"fmt"
	"time"
)

// Action is what a cue does to its target sound when executed.
type Action int

const (
	// ActionNone is the state of a freshly added cue before the operator has
	// picked an action. Executing it only advances the cursor.
	ActionNone Action = iota
	ActionPlay
	ActionStop
)

func (a Action) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionStop:
		return "stop"
	default:
		return ""
	}
}

// ParseAction converts the serialized form back into an Action.
func ParseAction(raw string) (Action, error) {
	switch raw {
	case "":
		return ActionNone, nil
	case "play":
		return ActionPlay, nil
	case "stop":
		return ActionStop, nil
	default:
		return ActionNone, fmt.Errorf("unknown action %q", raw)
	}
}

// Cue is a single step in a mixer's sequence. It references its target sound
// by name only - resolution against the registry happens at execution time,
// so rename/delete policy is enforced in one place (the Project).
type Cue struct {
	Name   string
	Action Action
	Sound  string
	Fade   time.Duration
}

// Player is the audio-engine collaborator invoked when a cue executes.
// Calls are fire-and-forget: they return once the request is issued, not
// when playback completes.
type Player interface {
	Play(name string, fade time.Duration) error
	Stop(name string, fade time.Duration) error
}

package show

import "errors"

// The conditions below are all recoverable by the operator: they are surfaced
// by the console and never terminate the process.
var (
	ErrDuplicateName    = errors.New("name already in use")
	ErrNotFound         = errors.New("not found")
	ErrFileUnreadable   = errors.New("file unreadable")
	ErrSoundInUse       = errors.New("sound still referenced by a cue")
	ErrOutOfRange       = errors.New("index out of range")
	ErrNothingToExecute = errors.New("all cues executed")
	ErrAlreadyAtStart   = errors.New("already at first cue")
	ErrParse            = errors.New("failed to parse project file")
	ErrSchema           = errors.New("project file violates schema")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrNothingToRedo    = errors.New("nothing to redo")
)

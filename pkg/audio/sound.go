package audio

import (
	"github.com/gopxl/beep/v2"
)

// Sound is a fully decoded, in-memory audio file. Buffering at load time
// means a cue never waits on disk or on a decoder mid-show.
type Sound struct {
	Name   string
	Path   string
	Format beep.Format
	Buffer *beep.Buffer
}

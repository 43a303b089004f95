package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/cneill/stagecue/pkg/show"
)

//nolint:gochecknoglobals
var (
	labelColor    = color.RGB(255, 255, 255).Add(color.Bold)
	sublabelColor = color.RGB(120, 120, 120).Add(color.Italic)
	executedColor = color.RGB(255, 125, 125)
	activeColor   = color.RGB(125, 255, 125).Add(color.Bold)
	warnColor     = color.RGB(255, 200, 0)
	errorColor    = color.RGB(255, 0, 0)
)

func renderMixer(w io.Writer, mixer *show.Mixer) {
	fmt.Fprintf(w, "%s", labelColor.Sprint(mixer.Name))

	if mixer.Done() {
		fmt.Fprintf(w, " %s", sublabelColor.Sprint("(all cues executed)"))
	}

	fmt.Fprintln(w)

	for idx, cue := range mixer.Cues() {
		line := cueLine(idx, cue)

		switch mixer.CueState(idx) {
		case show.CueExecuted:
			line = executedColor.Sprint(line)
		case show.CueActive:
			line = activeColor.Sprint("> " + strings.TrimPrefix(line, "  "))
		case show.CuePending:
		}

		fmt.Fprintln(w, line)
	}
}

func cueLine(idx int, cue show.Cue) string {
	builder := &strings.Builder{}

	builder.WriteString("  ")
	builder.WriteString(strconv.Itoa(idx))
	builder.WriteString(". ")
	builder.WriteString(cue.Name)

	if cue.Action != show.ActionNone {
		builder.WriteString(" [")
		builder.WriteString(cue.Action.String())

		if cue.Sound != "" {
			builder.WriteString(" ")
			builder.WriteString(cue.Sound)
		}

		if cue.Fade > 0 {
			builder.WriteString(" fade ")
			builder.WriteString(cue.Fade.String())
		}

		builder.WriteString("]")
	}

	return builder.String()
}

func renderSounds(w io.Writer, registry *show.Registry) {
	fmt.Fprintln(w, labelColor.Sprint("Sounds"))

	names := registry.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, sublabelColor.Sprint("  (none)"))
		return
	}

	for _, name := range names {
		sound, err := registry.Lookup(name)
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "  %s %s\n", sound.Name, sublabelColor.Sprint(sound.Path))
	}
}

func renderMixers(w io.Writer, project *show.Project, current string) {
	fmt.Fprintln(w, labelColor.Sprint("Mixers"))

	mixers := project.Mixers()
	if len(mixers) == 0 {
		fmt.Fprintln(w, sublabelColor.Sprint("  (none)"))
		return
	}

	for _, mixer := range mixers {
		marker := "  "
		if mixer.Name == current {
			marker = "* "
		}

		fmt.Fprintf(w, "%s%s %s\n", marker, mixer.Name,
			sublabelColor.Sprintf("(%d/%d cues executed)", mixer.Cursor(), mixer.Len()))
	}
}

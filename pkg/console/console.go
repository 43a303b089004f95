// Package console is the operator surface: a line-oriented command loop that
// drives the project's mixers during a show and renders per-cue state with
// terminal colors. All semantics live in pkg/show; the console only parses
// commands and prints results.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cneill/stagecue/pkg/show"
)

type Opts struct {
	Project *show.Project
	Player  show.Player

	// Watcher is optional; when set, backing-file events are surfaced as
	// warnings between commands.
	Watcher *show.Watcher

	// SavePath is where "save" without an argument writes the project.
	SavePath string

	Input  io.Reader
	Output io.Writer
}

func (o *Opts) OK() error {
	if o.Project == nil {
		return fmt.Errorf("must supply a project")
	}

	if o.Player == nil {
		return fmt.Errorf("must supply a player")
	}

	if o.Input == nil {
		o.Input = os.Stdin
	}

	if o.Output == nil {
		o.Output = os.Stdout
	}

	return nil
}

type Console struct {
	*Opts

	current     string // selected mixer name
	drawLimiter *rate.Limiter
}

func New(opts *Opts) (*Console, error) {
	if err := opts.OK(); err != nil {
		return nil, fmt.Errorf("failed to configure console: %w", err)
	}

	console := &Console{
		Opts:        opts,
		drawLimiter: rate.NewLimiter(10, 2),
	}

	if mixers := opts.Project.Mixers(); len(mixers) > 0 {
		console.current = mixers[0].Name
	}

	return console, nil
}

func (c *Console) Run(ctx context.Context) error {
	if c.Watcher != nil {
		go c.watchFiles(ctx)
	}

	fmt.Fprintln(c.Output, sublabelColor.Sprint(`type "help" for commands`))
	c.render()

	scanner := bufio.NewScanner(c.Input)

	for {
		fmt.Fprint(c.Output, "> ")

		if !scanner.Scan() {
			break
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		quit, err := c.dispatch(line)
		if err != nil {
			fmt.Fprintln(c.Output, errorColor.Sprintf("error: %v", err))
		}

		if quit {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

//nolint:cyclop
func (c *Console) dispatch(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	command, args := fields[0], fields[1:]

	switch command {
	case "help", "h":
		c.printHelp()
	case "quit", "q", "exit":
		return true, nil

	case "go", "cue", "g":
		err = c.execute()
	case "back", "b":
		err = c.withMixer(func(m *show.Mixer) error { return m.Back() })
	case "reset":
		err = c.withMixer(func(m *show.Mixer) error { m.Reset(); return nil })
	case "jump", "j":
		err = c.jump(args)

	case "list", "ls", "l":
		err = c.withMixer(func(m *show.Mixer) error { renderMixer(c.Output, m); return nil })
		return false, err
	case "mixers":
		renderMixers(c.Output, c.Project, c.current)
		return false, nil
	case "sounds":
		renderSounds(c.Output, c.Project.Sounds())
		return false, nil
	case "use":
		err = c.use(args)

	case "vol", "volume":
		err = c.volume(args)
		return false, err

	case "add-sound":
		err = c.addSound(args)
		return false, err
	case "rm-sound":
		err = c.removeSound(args)
		return false, err
	case "rename-sound":
		err = c.renameSound(args)
		return false, err

	case "add-mixer":
		err = c.addMixer(args)
	case "rm-mixer":
		err = c.removeMixer(args)

	case "add-cue":
		err = c.addCue(args)
	case "rm-cue":
		err = c.removeCue(args)
	case "set-cue":
		err = c.setCue(args)

	case "undo":
		err = c.history(c.Project.Undo)
	case "redo":
		err = c.history(c.Project.Redo)

	case "save":
		err = c.save(args)
		return false, err

	default:
		return false, fmt.Errorf("unknown command %q", command)
	}

	if err == nil {
		c.render()
	}

	return false, err
}

func (c *Console) execute() error {
	if c.current == "" {
		return fmt.Errorf("no mixer selected")
	}

	return c.Project.Execute(c.current, c.Player)
}

func (c *Console) withMixer(fn func(*show.Mixer) error) error {
	if c.current == "" {
		return fmt.Errorf("no mixer selected")
	}

	mixer, err := c.Project.Mixer(c.current)
	if err != nil {
		return err
	}

	return fn(mixer)
}

func (c *Console) jump(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: jump INDEX")
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad index %q", args[0])
	}

	return c.withMixer(func(m *show.Mixer) error { return m.JumpTo(index) })
}

func (c *Console) use(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: use MIXER")
	}

	if _, err := c.Project.Mixer(args[0]); err != nil {
		return err
	}

	c.current = args[0]

	return nil
}

func (c *Console) volume(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(c.Output, "master volume: %.2f\n", c.Project.Volume())
		return nil
	}

	volume, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad volume %q", args[0])
	}

	return c.Project.SetVolume(volume)
}

func (c *Console) addSound(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: add-sound NAME PATH")
	}

	sound, err := c.Project.AddSound(args[0], args[1])
	if err != nil {
		return err
	}

	if c.Watcher != nil {
		if err := c.Watcher.Watch(sound.Name, sound.Path); err != nil {
			slog.Error("Failed to watch sound file", "path", sound.Path, "error", err)
		}
	}

	return nil
}

func (c *Console) removeSound(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm-sound NAME")
	}

	sound, err := c.Project.Sounds().Lookup(args[0])
	if err != nil {
		return err
	}

	if err := c.Project.RemoveSound(args[0]); err != nil {
		return err
	}

	if c.Watcher != nil {
		c.Watcher.Unwatch(sound.Path)
	}

	return nil
}

func (c *Console) renameSound(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: rename-sound OLD NEW")
	}

	if err := c.Project.RenameSound(args[0], args[1]); err != nil {
		return err
	}

	c.syncWatcher()

	return nil
}

// history runs an undo or redo and realigns watcher coverage, since those
// edits restore or remove sounds without going through Watch/Unwatch.
func (c *Console) history(fn func() error) error {
	if err := fn(); err != nil {
		return err
	}

	c.syncWatcher()

	return nil
}

func (c *Console) syncWatcher() {
	if c.Watcher == nil {
		return
	}

	registry := c.Project.Sounds()
	sounds := make(map[string]string, registry.Len())

	for _, name := range registry.Names() {
		sound, err := registry.Lookup(name)
		if err != nil {
			continue
		}

		sounds[sound.Name] = sound.Path
	}

	if err := c.Watcher.Sync(sounds); err != nil {
		slog.Error("Failed to re-sync sound file watcher", "error", err)
	}
}

func (c *Console) addMixer(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: add-mixer NAME")
	}

	if _, err := c.Project.AddMixer(args[0]); err != nil {
		return err
	}

	if c.current == "" {
		c.current = args[0]
	}

	return nil
}

func (c *Console) removeMixer(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm-mixer NAME")
	}

	if err := c.Project.RemoveMixer(args[0]); err != nil {
		return err
	}

	if c.current == args[0] {
		c.current = ""

		if mixers := c.Project.Mixers(); len(mixers) > 0 {
			c.current = mixers[0].Name
		}
	}

	return nil
}

// addCue appends an auto-named cue, optionally with action, sound and fade.
func (c *Console) addCue(args []string) error {
	if c.current == "" {
		return fmt.Errorf("no mixer selected")
	}

	mixer, err := c.Project.Mixer(c.current)
	if err != nil {
		return err
	}

	cue := show.Cue{Name: fmt.Sprintf("Cue %d", mixer.Len()+1)}

	if err := fillCue(&cue, args); err != nil {
		return err
	}

	return c.Project.AddCue(c.current, cue)
}

func (c *Console) removeCue(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm-cue INDEX")
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad index %q", args[0])
	}

	return c.Project.DeleteCue(c.current, index)
}

func (c *Console) setCue(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: set-cue INDEX ACTION [SOUND [FADE]]")
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad index %q", args[0])
	}

	mixer, err := c.Project.Mixer(c.current)
	if err != nil {
		return err
	}

	cue, err := mixer.Cue(index)
	if err != nil {
		return err
	}

	if err := fillCue(&cue, args[1:]); err != nil {
		return err
	}

	return c.Project.UpdateCue(c.current, index, cue)
}

func fillCue(cue *show.Cue, args []string) error {
	if len(args) > 0 {
		action, err := show.ParseAction(args[0])
		if err != nil {
			return err
		}

		cue.Action = action
	}

	if len(args) > 1 {
		cue.Sound = args[1]
	}

	if len(args) > 2 {
		fade, err := time.ParseDuration(args[2])
		if err != nil {
			return fmt.Errorf("bad fade %q", args[2])
		}

		cue.Fade = fade
	}

	return nil
}

func (c *Console) save(args []string) error {
	path := c.SavePath
	if len(args) > 0 {
		path = args[0]
	}

	if path == "" {
		return fmt.Errorf("usage: save PATH")
	}

	data, err := c.Project.Save()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}

	c.SavePath = path

	fmt.Fprintf(c.Output, "saved to %s\n", path)

	return nil
}

// render redraws the selected mixer, throttled so a held-down enter key
// doesn't flood the terminal.
func (c *Console) render() {
	if c.current == "" {
		return
	}

	if !c.drawLimiter.Allow() {
		return
	}

	mixer, err := c.Project.Mixer(c.current)
	if err != nil {
		return
	}

	renderMixer(c.Output, mixer)
}

func (c *Console) watchFiles(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.Watcher.Events:
			if !ok {
				return
			}

			slog.Warn("Sound file changed on disk", "sound", event.Sound, "path", event.Path, "kind", event.Kind)
			fmt.Fprintln(c.Output, warnColor.Sprintf("warning: sound %q file %s (%s)", event.Sound, event.Kind, event.Path))
		}
	}
}

func (c *Console) printHelp() {
	help := `show control:
  go | cue          execute the active cue and advance
  back              move the cursor back one cue (no audio rollback)
  reset             move the cursor to the first cue
  jump INDEX        make the cue at INDEX active without executing
  use MIXER         switch the selected mixer
  list              show the selected mixer's cues
  mixers            list mixers
  sounds            list sounds
  vol [0..1]        show or set master volume

editing (undo/redo applies):
  add-sound NAME PATH         load a sound file
  rm-sound NAME               remove a sound (fails while cues reference it)
  rename-sound OLD NEW        rename a sound everywhere
  add-mixer NAME / rm-mixer NAME
  add-cue [ACTION [SOUND [FADE]]]
  set-cue INDEX ACTION [SOUND [FADE]]
  rm-cue INDEX
  undo / redo

project:
  save [PATH]       write the project file
  quit`

	fmt.Fprintln(c.Output, help)
}

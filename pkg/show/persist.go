package show

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// fileNotice is prepended to every saved project so nobody edits one by
// hand and wonders why the show breaks.
const fileNotice = `## This is a stagecue project file, generated on save.
## Hand-editing it may leave the project unloadable.

`

type projectFile struct {
	Master masterFile  `yaml:"master"`
	Sounds []soundFile `yaml:"sounds"`
	Mixers []mixerFile `yaml:"mixers"`
}

type masterFile struct {
	Volume float64 `yaml:"volume"`
}

type soundFile struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type mixerFile struct {
	Name string    `yaml:"name"`
	Cues []cueFile `yaml:"cues"`
}

type cueFile struct {
	Name   string `yaml:"name"`
	Action string `yaml:"action,omitempty"`
	Sound  string `yaml:"sound,omitempty"`
	Fade   string `yaml:"fade,omitempty"`
}

// Save serializes the project. Cursor positions are deliberately not part
// of the format: a saved project is a show definition, not a saved run, so
// every mixer starts over on load.
func (p *Project) Save() ([]byte, error) {
	out := projectFile{
		Master: masterFile{Volume: p.volume},
	}

	for _, name := range p.sounds.Names() {
		sound := p.sounds.sounds[name]
		out.Sounds = append(out.Sounds, soundFile{Name: sound.Name, Path: sound.Path})
	}

	for _, mixer := range p.mixers {
		mf := mixerFile{Name: mixer.Name}

		for _, cue := range mixer.cues {
			cf := cueFile{
				Name:   cue.Name,
				Action: cue.Action.String(),
				Sound:  cue.Sound,
			}

			if cue.Fade > 0 {
				cf.Fade = cue.Fade.String()
			}

			mf.Cues = append(mf.Cues, cf)
		}

		out.Mixers = append(out.Mixers, mf)
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize project: %w", err)
	}

	return append([]byte(fileNotice), data...), nil
}

// Load parses and validates a saved project, decoding every sound through
// the engine. Malformed YAML fails with ErrParse; structurally valid YAML
// that breaks a project invariant fails with ErrSchema. Mixers load with
// their cursors at the start and a fresh history.
func Load(data []byte, engine Engine) (*Project, error) {
	var in projectFile

	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if err := in.validate(); err != nil {
		return nil, err
	}

	project := NewProject(engine)
	project.volume = in.Master.Volume

	for _, sf := range in.Sounds {
		if err := engine.Load(sf.Name, sf.Path); err != nil {
			return nil, fmt.Errorf("sound %q: %w: %v", sf.Name, ErrFileUnreadable, err)
		}

		project.sounds.insertAt(project.sounds.Len(), Sound{Name: sf.Name, Path: sf.Path})
	}

	for _, mf := range in.Mixers {
		mixer := NewMixer(mf.Name)

		for _, cf := range mf.Cues {
			action, _ := ParseAction(cf.Action) // validated above

			var fade time.Duration
			if cf.Fade != "" {
				fade, _ = time.ParseDuration(cf.Fade) // validated above
			}

			mixer.cues = append(mixer.cues, Cue{
				Name:   cf.Name,
				Action: action,
				Sound:  cf.Sound,
				Fade:   fade,
			})
		}

		project.mixers = append(project.mixers, mixer)
	}

	engine.SetVolume(project.volume)

	return project, nil
}

func (f *projectFile) validate() error {
	if f.Master.Volume < 0 || f.Master.Volume > 1 {
		return fmt.Errorf("%w: master volume %v outside [0, 1]", ErrSchema, f.Master.Volume)
	}

	soundNames := map[string]bool{}

	for _, sf := range f.Sounds {
		if sf.Name == "" {
			return fmt.Errorf("%w: sound with empty name", ErrSchema)
		}

		if soundNames[sf.Name] {
			return fmt.Errorf("%w: duplicate sound name %q", ErrSchema, sf.Name)
		}

		soundNames[sf.Name] = true
	}

	mixerNames := map[string]bool{}

	for _, mf := range f.Mixers {
		if mf.Name == "" {
			return fmt.Errorf("%w: mixer with empty name", ErrSchema)
		}

		if mixerNames[mf.Name] {
			return fmt.Errorf("%w: duplicate mixer name %q", ErrSchema, mf.Name)
		}

		mixerNames[mf.Name] = true

		for cueIdx, cf := range mf.Cues {
			if _, err := ParseAction(cf.Action); err != nil {
				return fmt.Errorf("%w: mixer %q cue %d: %v", ErrSchema, mf.Name, cueIdx, err)
			}

			if cf.Sound != "" && !soundNames[cf.Sound] {
				return fmt.Errorf("%w: mixer %q cue %d references unknown sound %q",
					ErrSchema, mf.Name, cueIdx, cf.Sound)
			}

			if cf.Fade != "" {
				if _, err := time.ParseDuration(cf.Fade); err != nil {
					return fmt.Errorf("%w: mixer %q cue %d: bad fade %q", ErrSchema, mf.Name, cueIdx, cf.Fade)
				}
			}
		}
	}

	return nil
}

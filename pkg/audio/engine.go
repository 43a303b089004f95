package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

var ErrSoundNotFound = errors.New("sound not found")

const resampleQuality = 4

type Opts struct {
	// BufferLag is the speaker buffer length: larger values survive scheduling
	// hiccups, smaller values react faster to Play/Stop.
	BufferLag time.Duration
}

func (o *Opts) OK() error {
	if o.BufferLag == 0 {
		o.BufferLag = time.Second / 20
	}

	if o.BufferLag < 0 {
		return fmt.Errorf("buffer lag must be positive")
	}

	return nil
}

// Engine decodes sound files into memory and plays them through the speaker
// with a single master gain. Play and Stop return as soon as the request is
// handed to the speaker; nothing waits for playback to finish.
//
// The speaker is initialized lazily with the format of the first loaded
// sound; later sounds with other sample rates are resampled on the fly.
type Engine struct {
	mutex  sync.RWMutex
	sounds map[string]*Sound
	active map[string]*playback
	volume float64

	speakerReady bool
	sampleRate   beep.SampleRate
	bufferLag    time.Duration
}

// playback is one live stream: the ctrl is what the speaker pulls from, the
// volume wrapper is what master gain changes reach into.
type playback struct {
	ctrl *beep.Ctrl
	vol  *effects.Volume
}

func NewEngine(opts *Opts) (*Engine, error) {
	if opts == nil {
		opts = &Opts{}
	}

	if err := opts.OK(); err != nil {
		return nil, fmt.Errorf("invalid audio engine options: %w", err)
	}

	return &Engine{
		sounds:    map[string]*Sound{},
		active:    map[string]*playback{},
		volume:    1.0,
		bufferLag: opts.BufferLag,
	}, nil
}

// Load opens, decodes and buffers the file at path under the given name.
// It fails without side effects if the file is missing or not decodable,
// which is what lets the registry validate sounds before admitting them.
func (e *Engine) Load(name, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	stream, format, err := decode(path, file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to decode %q: %w", path, err)
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(stream)

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close audio stream after buffering: %w", err)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.speakerReady {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(e.bufferLag)); err != nil {
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}

		e.speakerReady = true
		e.sampleRate = format.SampleRate
	}

	e.sounds[name] = &Sound{
		Name:   name,
		Path:   path,
		Format: format,
		Buffer: buffer,
	}

	return nil
}

// Unload stops any live stream of the named sound and drops its buffer.
func (e *Engine) Unload(name string) {
	e.stopActive(name, 0)

	e.mutex.Lock()
	delete(e.sounds, name)
	e.mutex.Unlock()
}

// Rename moves a loaded sound to a new name, following a registry rename.
func (e *Engine) Rename(oldName, newName string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if sound, ok := e.sounds[oldName]; ok {
		delete(e.sounds, oldName)
		sound.Name = newName
		e.sounds[newName] = sound
	}

	if pb, ok := e.active[oldName]; ok {
		delete(e.active, oldName)
		e.active[newName] = pb
	}
}

// Play starts the named sound from the beginning, fading in over fade if it
// is nonzero. Starting a sound that is already playing replaces its stream.
func (e *Engine) Play(name string, fade time.Duration) error {
	e.mutex.RLock()
	sound, ok := e.sounds[name]
	volume := e.volume
	e.mutex.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSoundNotFound, name)
	}

	var streamer beep.Streamer = sound.Buffer.Streamer(0, sound.Buffer.Len())

	if fade > 0 {
		length := sound.Format.SampleRate.N(fade)
		streamer = effects.Transition(streamer, length, 0.0, 1.0, effects.TransitionEqualPower)
	}

	if sound.Format.SampleRate != e.sampleRate {
		streamer = beep.Resample(resampleQuality, sound.Format.SampleRate, e.sampleRate, streamer)
	}

	vol := &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   masterGain(volume),
		Silent:   volume == 0,
	}
	ctrl := &beep.Ctrl{Streamer: vol}

	e.stopActive(name, 0)

	e.mutex.Lock()
	e.active[name] = &playback{ctrl: ctrl, vol: vol}
	e.mutex.Unlock()

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		e.clearActive(name, ctrl)
	})))

	return nil
}

// Stop ends the live stream of the named sound, fading out over fade if it
// is nonzero. Stopping a sound that isn't playing is a no-op: mid-show,
// a stale stop cue should be silent, not an error dialog.
func (e *Engine) Stop(name string, fade time.Duration) error {
	e.stopActive(name, fade)
	return nil
}

// SetVolume sets the master gain in [0, 1], applied to current and future
// streams.
func (e *Engine) SetVolume(volume float64) {
	e.mutex.Lock()
	e.volume = volume

	live := make([]*playback, 0, len(e.active))
	for _, pb := range e.active {
		live = append(live, pb)
	}
	e.mutex.Unlock()

	if len(live) == 0 {
		return
	}

	speaker.Lock()

	for _, pb := range live {
		pb.vol.Volume = masterGain(volume)
		pb.vol.Silent = volume == 0
	}

	speaker.Unlock()
}

// Close silences the speaker. Loaded buffers are plain memory and need no
// teardown.
func (e *Engine) Close() {
	e.mutex.Lock()
	ready := e.speakerReady
	e.active = map[string]*playback{}
	e.mutex.Unlock()

	if ready {
		speaker.Clear()
		speaker.Close()
	}
}

func (e *Engine) stopActive(name string, fade time.Duration) {
	e.mutex.Lock()
	pb, ok := e.active[name]
	delete(e.active, name)
	e.mutex.Unlock()

	if !ok {
		return
	}

	speaker.Lock()

	if fade > 0 {
		// The ctrl streams at the device rate, so the fade length is counted
		// in device samples. Take ends the stream once the fade completes.
		length := e.sampleRate.N(fade)
		inner := pb.ctrl.Streamer
		pb.ctrl.Streamer = beep.Take(length, effects.Transition(inner, length, 1.0, 0.0, effects.TransitionEqualPower))
	} else {
		pb.ctrl.Streamer = nil
	}

	speaker.Unlock()
}

func (e *Engine) clearActive(name string, ctrl *beep.Ctrl) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	// Only clear if a newer Play hasn't replaced the entry.
	if pb, ok := e.active[name]; ok && pb.ctrl == ctrl {
		delete(e.active, name)
	}
}

// masterGain converts a linear volume in [0, 1] to the exponential scale
// effects.Volume expects: with Base 2, Log2(v) yields a multiplier of v.
func masterGain(volume float64) float64 {
	if volume <= 0 {
		return 0
	}

	return math.Log2(volume)
}

func decode(path string, reader io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)

	extension := filepath.Ext(path)

	switch extension {
	case ".wav":
		stream, format, err = wav.Decode(reader)
		if err != nil {
			return stream, format, fmt.Errorf("failed to decode file as wav: %w", err)
		}
	case ".mp3":
		stream, format, err = mp3.Decode(reader)
		if err != nil {
			return stream, format, fmt.Errorf("failed to decode file as mp3: %w", err)
		}
	case ".ogg":
		stream, format, err = vorbis.Decode(reader)
		if err != nil {
			return stream, format, fmt.Errorf("failed to decode file as ogg: %w", err)
		}
	case ".flac":
		stream, format, err = flac.Decode(reader)
		if err != nil {
			return stream, format, fmt.Errorf("failed to decode file as flac: %w", err)
		}
	default:
		return stream, format, fmt.Errorf("unknown file format/extension: %s", extension)
	}

	return stream, format, nil
}

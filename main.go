package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/cneill/stagecue/internal/config"
	"github.com/cneill/stagecue/internal/version"
	"github.com/cneill/stagecue/pkg/audio"
	"github.com/cneill/stagecue/pkg/console"
	"github.com/cneill/stagecue/pkg/show"
	"github.com/fatih/color"
)

func run(ctx context.Context) error {
	cmd := cli.Command{
		Name:    "stagecue",
		Usage:   "load sounds, sequence them into cues, trigger them live",
		Version: version.String(),
		Flags:   allFlags(),
		Action:  setupConsole,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		return fmt.Errorf("command: %w", err)
	}

	return nil
}

func setupConsole(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool(FlagDebug) {
		file, err := setupLogging(cmd)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}

		defer file.Close()
	}

	cfg, err := config.Load(cmd.String(FlagConfig))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	color.NoColor = cmd.Bool(FlagNoColor) || cfg.Console.NoColor

	engine, err := audio.NewEngine(&audio.Opts{BufferLag: cfg.BufferLag()})
	if err != nil {
		return fmt.Errorf("failed to set up audio engine: %w", err)
	}

	defer engine.Close()

	projectPath := cmd.String(FlagProject)
	if projectPath == "" {
		projectPath = cfg.Console.DefaultProject
	}

	project, err := openProject(projectPath, engine)
	if err != nil {
		return err
	}

	watcher, err := show.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to set up sound file watcher: %w", err)
	}

	defer watcher.Close()

	// Cancelled before the deferred Close runs, so the watcher goroutines
	// are released when the operator quits the console.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go watcher.Run(ctx)

	for _, name := range project.Sounds().Names() {
		sound, err := project.Sounds().Lookup(name)
		if err != nil {
			continue
		}

		if err := watcher.Watch(sound.Name, sound.Path); err != nil {
			slog.Error("Failed to watch sound file", "path", sound.Path, "error", err)
		}
	}

	cons, err := console.New(&console.Opts{
		Project:  project,
		Player:   engine,
		Watcher:  watcher,
		SavePath: projectPath,
	})
	if err != nil {
		return fmt.Errorf("failed to set up console: %w", err)
	}

	if err := cons.Run(ctx); err != nil {
		return fmt.Errorf("console error: %w", err)
	}

	return nil
}

func openProject(path string, engine *audio.Engine) (*show.Project, error) {
	if path == "" {
		return show.NewProject(engine), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	project, err := show.Load(data, engine)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %q: %w", path, err)
	}

	return project, nil
}

func setupLogging(cmd *cli.Command) (*os.File, error) {
	level := slog.LevelInfo
	if cmd.Bool(FlagDebug) {
		level = slog.LevelDebug
	}

	var (
		logFileName = "stagecue_debug.log"
		err         error
	)

	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	sync.OnceFunc(func() {
		handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{AddSource: true, Level: level})
		logger := slog.New(handler)
		slog.SetDefault(logger)
	})()

	return logFile, nil
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/maxwell/internal/config"
	"github.com/san-kum/maxwell/internal/engine"
	"github.com/san-kum/maxwell/internal/logging"
	"github.com/san-kum/maxwell/internal/metrics"
	"github.com/san-kum/maxwell/internal/setup"
	"github.com/san-kum/maxwell/internal/storage"
	"github.com/san-kum/maxwell/internal/stream"
	"github.com/san-kum/maxwell/internal/tui"
)

func loadManifest(cmd *cobra.Command, args []string) (*config.Manifest, string, error) {
	path := configFile
	if len(args) > 0 {
		path = args[0]
	}

	var (
		m    *config.Manifest
		name string
	)
	switch {
	case path != "" && preset != "":
		return nil, "", errors.New("give either a manifest or --preset, not both")
	case path != "":
		loaded, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		m = loaded
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	case preset != "":
		m = config.GetPreset(preset)
		if m == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	default:
		return nil, "", errors.New("no manifest given; pass a path or --preset")
	}

	if cmd.Flags().Changed("steps") {
		m.Constants.Steps = stepsFlag
	}
	if cmd.Flags().Changed("dt") {
		m.Constants.Dt = dtFlag
	}
	return m, name, nil
}

// checkOutputs rejects a run whose stream would go nowhere.
func checkOutputs(out string, save bool) error {
	if out == "" && !save {
		return errors.New(`--out "" discards the stream; add --save to keep it`)
	}
	return nil
}

func openOutput() (io.Writer, func() error, error) {
	switch outPath {
	case "-":
		return os.Stdout, func() error { return nil }, nil
	case "":
		return nil, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newLogger() (zerolog.Logger, func() error, error) {
	if logFile == "" {
		return logging.New(logLevel, os.Stderr), func() error { return nil }, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}
	return logging.NewWithFile(logLevel, os.Stderr, f), f.Close, nil
}

// sink lets the encoder exist before the output files are opened.
type sink struct{ w io.Writer }

func (s *sink) Write(p []byte) (int, error) { return s.w.Write(p) }

func runSimulation(cmd *cobra.Command, args []string) error {
	log, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	if progress {
		log = log.Level(zerolog.WarnLevel)
	}

	m, name, err := loadManifest(cmd, args)
	if err != nil {
		return err
	}
	scene, err := setup.Build(m)
	if err != nil {
		return err
	}
	if err := checkOutputs(outPath, save); err != nil {
		return err
	}

	energy := metrics.NewEnergy()
	nonFinite := metrics.NewNonFinite()
	opts := []engine.Option{
		engine.WithLogger(log.With().Str("scene", name).Logger()),
		engine.WithMetric(energy),
		engine.WithMetric(metrics.NewEnergyDrift()),
		engine.WithMetric(metrics.NewPeakField()),
		engine.WithMetric(nonFinite),
	}
	if workers > 0 {
		opts = append(opts, engine.WithWorkers(workers))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var program *tea.Program
	if progress {
		program = tea.NewProgram(tui.NewModel(name, scene.Params.Steps, stop), tea.WithOutput(os.Stderr))
		opts = append(opts, engine.WithObserver(tui.NewReporter(program, scene.Params.Steps, 100*time.Millisecond)))
	}

	dst := &sink{}
	eng, err := engine.New(scene.Lattice, scene.Sources, scene.Params, stream.NewEncoder(dst), opts...)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput()
	if err != nil {
		return err
	}
	outClosed := false
	defer func() {
		if !outClosed {
			closeOut()
		}
	}()

	var run *storage.Run
	writers := make([]io.Writer, 0, 2)
	if out != nil {
		writers = append(writers, out)
	}
	if save {
		run, err = storage.New(dataDir).Create(name)
		if err != nil {
			return err
		}
		if err := run.SaveManifest(m); err != nil {
			run.Abort()
			return err
		}
		writers = append(writers, run)
	}
	dst.w = io.MultiWriter(writers...)

	log.Info().
		Str("scene", name).
		Int("side", scene.Lattice.Side()).
		Int("steps", scene.Params.Steps).
		Int("sources", len(scene.Sources)-1).
		Str("boundary", scene.Params.Boundary.String()).
		Int("cells_per_frame", eng.ExportedCellsPerFrame()).
		Msg("starting run")

	var (
		result *engine.Result
		runErr error
	)
	if program != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			result, runErr = eng.Run(ctx)
			program.Send(tui.DoneMsg{Result: result, Err: runErr})
		}()
		if _, err := program.Run(); err != nil {
			stop()
			<-done
			if run != nil {
				run.Abort()
			}
			return err
		}
		// the view quits on abort before the engine has unwound
		<-done
	} else {
		result, runErr = eng.Run(ctx)
	}

	outClosed = true
	if err := closeOut(); err != nil && runErr == nil {
		runErr = fmt.Errorf("closing output: %w", err)
	}

	if result != nil {
		ev := log.Info()
		if nonFinite.FirstStep() >= 0 {
			ev = log.Warn().Int("first_non_finite_step", nonFinite.FirstStep())
		}
		ev.Int("frames", result.Frames).
			Int64("records", result.Records).
			Dur("elapsed", result.Elapsed).
			Interface("metrics", result.Metrics).
			Msg("run finished")
	}

	if run != nil {
		meta := storage.RunMetadata{
			Name:            name,
			Side:            scene.Lattice.Side(),
			Density:         scene.Params.Density,
			Dt:              scene.Params.Dt,
			Steps:           scene.Params.Steps,
			Boundary:        scene.Params.Boundary.String(),
			TimeDecimation:  scene.Params.TimeDecimation,
			SpaceDecimation: scene.Params.SpaceDecimation,
			Completed:       runErr == nil,
			FirstNonFinite:  nonFinite.FirstStep(),
		}
		if result != nil {
			meta.Frames = result.Frames
			meta.Records = result.Records
			meta.Elapsed = result.Elapsed
			meta.Metrics = result.Metrics
		}
		if err := run.Finish(meta, energy.Series()); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		log.Info().Str("id", run.ID).Msg("run saved")
	}

	return runErr
}

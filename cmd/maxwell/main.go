package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/maxwell/internal/config"
)

var (
	dataDir  string
	logLevel string
	logFile  string

	// run
	outPath    string
	preset     string
	workers    int
	save       bool
	progress   bool
	stepsFlag  int
	dtFlag     float32
	configFile string
	initPreset string

	// inspect
	density  float32
	runID    string
	jsonOut  bool
	plotSkip bool
	sliceSVG string
	frameIdx int
	sliceZ   int

	// plot
	svgPath string
)

// main registers the maxwell commands and exits with status 1 when the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "maxwell",
		Short:        "finite-difference electromagnetic field simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".maxwell", "run store directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also append logs to this file")

	runCmd := &cobra.Command{
		Use:   "run [manifest]",
		Short: "run a scene and stream frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVarP(&outPath, "out", "o", "-", `stream destination, "-" for stdout, "" for none`)
	runCmd.Flags().StringVar(&preset, "preset", "", "use a built-in scene instead of a manifest")
	runCmd.Flags().StringVar(&configFile, "config", "", "manifest path (same as the positional argument)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "goroutines for the field update (0 = all CPUs)")
	runCmd.Flags().BoolVar(&save, "save", false, "also record the run in the store")
	runCmd.Flags().BoolVar(&progress, "progress", false, "show a progress view on stderr")
	runCmd.Flags().IntVar(&stepsFlag, "steps", 0, "override constants.steps")
	runCmd.Flags().Float32Var(&dtFlag, "dt", 0, "override constants.dt")

	inspectCmd := &cobra.Command{
		Use:   "inspect [stream-file]",
		Short: "summarise a recorded stream",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectStream,
	}
	inspectCmd.Flags().Float32Var(&density, "density", config.DefaultDensity, "lattice density the stream was produced with")
	inspectCmd.Flags().StringVar(&runID, "run", "", "inspect the stream of a stored run")
	inspectCmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	inspectCmd.Flags().BoolVar(&plotSkip, "skip-initial", false, "leave the initial frame out of the energy plot")
	inspectCmd.Flags().StringVar(&sliceSVG, "slice-svg", "", "write |E| on one z-plane of a frame as SVG")
	inspectCmd.Flags().IntVar(&frameIdx, "frame", 0, "frame for --slice-svg")
	inspectCmd.Flags().IntVar(&sliceZ, "z", -1, "plane for --slice-svg (default: middle)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the plot as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run's energy",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the field update",
		RunE:  benchEngine,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-12s side %d, %d steps, %d objects\n",
					name, p.Lattice.Side(), p.Constants.Steps, len(p.Objects))
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a preset manifest to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := initPreset
			m := config.GetPreset(name)
			if m == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
			}
			if err := config.Save(args[0], m); err != nil {
				return err
			}
			fmt.Printf("wrote %s preset to %s\n", name, args[0])
			return nil
		},
	}
	initCmd.Flags().StringVar(&initPreset, "preset", "dipole", "preset to write")

	rootCmd.AddCommand(runCmd, inspectCmd, listCmd, plotCmd, analyzeCmd, exportCmd, benchCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

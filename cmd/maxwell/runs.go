package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/maxwell/internal/analysis"
	"github.com/san-kum/maxwell/internal/engine"
	"github.com/san-kum/maxwell/internal/export"
	"github.com/san-kum/maxwell/internal/field"
	"github.com/san-kum/maxwell/internal/source"
	"github.com/san-kum/maxwell/internal/storage"
	"github.com/san-kum/maxwell/internal/stream"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSIDE\tSTEPS\tFRAMES\tBOUNDARY\tDONE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%t\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Side,
			run.Steps,
			run.Frames,
			run.Boundary,
			run.Completed,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	energy, times, err := st.LoadEnergy(args[0])
	if err != nil {
		return err
	}
	if len(energy) < 2 {
		return fmt.Errorf("not enough samples to plot")
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Name)
	fmt.Printf("t: 0 .. %gs\n\n", times[len(times)-1])
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("field energy"),
	))

	if svgPath != "" {
		svg := export.SeriesToSVG(energy, 800, 300, "#00ccff")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgPath)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	energy, _, err := st.LoadEnergy(args[0])
	if err != nil {
		return err
	}
	if len(energy) < 4 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Name)

	ps := analysis.PowerSpectrum(energy)
	plotData := ps[1:]

	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (energy)"),
	))
	fmt.Println()

	hz := analysis.DominantFrequency(energy, float64(meta.Dt))
	fmt.Printf("dominant frequency: %.4g Hz\n", hz)
	if hz > 0 {
		// energy oscillates at twice the field frequency
		fmt.Printf("field frequency:    %.4g Hz\n", hz/2)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func benchEngine(cmd *cobra.Command, args []string) error {
	sides := []int{16, 24, 32}
	workerCounts := []int{1, runtime.NumCPU()}
	const steps = 20

	fmt.Printf("benchmarking field update, %d steps per case\n\n", steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIDE\tWORKERS\tTIME\tSTEPS/SEC\tCELLS/SEC")

	for _, n := range sides {
		for _, wc := range workerCounts {
			lat, err := field.NewLattice(n)
			if err != nil {
				return err
			}
			c := n / 2
			_ = lat.Set(c, c, c, field.Cell{E: field.Vec3{Z: 1}})

			p := engine.Params{
				Permittivity: 1, Permeability: 1, Dt: 0.01,
				Steps: steps + 1, Boundary: field.Clip,
				TimeDecimation: 1, SpaceDecimation: 1, Density: float32(n),
			}
			eng, err := engine.New(lat, source.NewList(), p, stream.NewEncoder(io.Discard), engine.WithWorkers(wc))
			if err != nil {
				return err
			}

			start := time.Now()
			if _, err := eng.Run(cmd.Context()); err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(steps) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%v\t%.1f\t%.3g\n",
				n, wc, elapsed.Round(time.Microsecond), stepsPerSec, stepsPerSec*float64(n*n*n))
		}
	}

	return w.Flush()
}

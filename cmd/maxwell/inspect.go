package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/maxwell/internal/analysis"
	"github.com/san-kum/maxwell/internal/export"
	"github.com/san-kum/maxwell/internal/storage"
)

func inspectStream(cmd *cobra.Command, args []string) error {
	var path string
	switch {
	case runID != "":
		st := storage.New(dataDir)
		p, err := st.StreamPath(runID)
		if err != nil {
			return err
		}
		path = p
		if !cmd.Flags().Changed("density") {
			if meta, err := st.Load(runID); err == nil {
				density = meta.Density
			}
		}
	case len(args) == 1:
		path = args[0]
	default:
		return errors.New("give a stream file or --run")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if sliceSVG != "" {
		return writeSlice(f)
	}

	rep, err := analysis.Inspect(f, density)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Printf("stream: %s\n\n", path)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "side\t%d\n", rep.Side)
	fmt.Fprintf(w, "space decimation\t%d\n", rep.SpaceDecimation)
	fmt.Fprintf(w, "frame dt\t%gs\n", rep.FrameDt)
	fmt.Fprintf(w, "frames\t%d\n", rep.Frames)
	fmt.Fprintf(w, "records\t%d\n", rep.Records)
	fmt.Fprintf(w, "non-finite records\t%d\n", rep.NonFinite)
	if rep.Frames > 1 {
		fmt.Fprintf(w, "dominant frequency\t%.4g Hz\n", analysis.DominantFrequency(rep.Energy[1:], rep.FrameDt))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	series := rep.Energy
	if plotSkip && len(series) > 1 {
		series = series[1:]
	}
	if len(series) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(12),
			asciigraph.Width(70),
			asciigraph.Caption("energy per frame"),
		))
	}
	return nil
}

func writeSlice(r io.Reader) error {
	frame, err := analysis.ReadFrameAt(r, density, frameIdx)
	if err != nil {
		return err
	}
	z := sliceZ
	if z < 0 {
		z = int(math.Round(math.Cbrt(float64(len(frame.Records))))) / 2
	}
	grid, err := analysis.PlaneMagnitude(frame, z)
	if err != nil {
		return err
	}
	if err := os.WriteFile(sliceSVG, []byte(export.PlaneToSVG(grid, 12)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote frame %d plane z=%d to %s\n", frameIdx, z, sliceSVG)
	return nil
}

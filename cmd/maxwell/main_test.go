package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/maxwell/internal/stream"
)

// newRunCommand resets the run flags and returns a command carrying the
// flags loadManifest inspects.
func newRunCommand(t *testing.T) *cobra.Command {
	t.Helper()
	configFile, preset = "", ""
	stepsFlag, dtFlag = 0, 0
	outPath, save, progress, workers = "-", false, false, 0
	logLevel, logFile = "off", ""
	dataDir = t.TempDir()

	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().IntVar(&stepsFlag, "steps", 0, "")
	cmd.Flags().Float32Var(&dtFlag, "dt", 0, "")
	return cmd
}

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadManifest(t *testing.T) {
	manifest := writeManifest(t, `{"constants": {"steps": 4}}`)

	tests := []struct {
		name      string
		args      []string
		preset    string
		flags     map[string]string
		wantErr   bool
		wantName  string
		wantSteps int
		wantDt    float32
	}{
		{name: "path and preset", args: []string{manifest}, preset: "quiet", wantErr: true},
		{name: "nothing given", wantErr: true},
		{name: "unknown preset", preset: "nope", wantErr: true},
		{name: "preset", preset: "quiet", wantName: "quiet", wantSteps: 10, wantDt: 1e-11},
		{name: "preset with steps", preset: "quiet", flags: map[string]string{"steps": "3"}, wantName: "quiet", wantSteps: 3, wantDt: 1e-11},
		{name: "path with dt", args: []string{manifest}, flags: map[string]string{"dt": "0.5"}, wantName: "scene", wantSteps: 4, wantDt: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRunCommand(t)
			preset = tt.preset
			for k, v := range tt.flags {
				require.NoError(t, cmd.Flags().Set(k, v))
			}

			m, name, err := loadManifest(cmd, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantSteps, m.Constants.Steps)
			assert.Equal(t, tt.wantDt, m.Constants.Dt)
		})
	}
}

func TestCheckOutputs(t *testing.T) {
	assert.Error(t, checkOutputs("", false))
	assert.NoError(t, checkOutputs("", true))
	assert.NoError(t, checkOutputs("-", false))
	assert.NoError(t, checkOutputs("out.bin", false))
}

func TestRunSimulation_WritesStreamAndLogFile(t *testing.T) {
	cmd := newRunCommand(t)
	dir := t.TempDir()
	preset = "quiet"
	outPath = filepath.Join(dir, "quiet.bin")
	logLevel = "info"
	logFile = filepath.Join(dir, "run.log")
	require.NoError(t, cmd.Flags().Set("steps", "3"))

	require.NoError(t, runSimulation(cmd, nil))

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	// side 10, three undecimated frames
	assert.EqualValues(t, stream.HeaderSize+3*1000*stream.RecordSize, info.Size())

	logged, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "starting run")
	assert.Contains(t, string(logged), "run finished")
}

func TestRunSimulation_InvalidSceneKeepsOutput(t *testing.T) {
	cmd := newRunCommand(t)
	preset = "quiet"
	outPath = filepath.Join(t.TempDir(), "existing.bin")
	require.NoError(t, os.WriteFile(outPath, []byte("keep"), 0644))
	require.NoError(t, cmd.Flags().Set("steps", "0"))

	require.Error(t, runSimulation(cmd, nil))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestRunSimulation_DiscardedStream(t *testing.T) {
	cmd := newRunCommand(t)
	preset = "quiet"
	outPath = ""

	assert.Error(t, runSimulation(cmd, nil))
}

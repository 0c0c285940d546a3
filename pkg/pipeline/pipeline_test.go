package pipeline

import (
	"context"
	stdio "io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamnet/pkg/errors"
	"github.com/matzehuels/streamnet/pkg/netcalc"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fixtureDir lays out a small network with a confluence:
//
//	1,2 -> 3,  3 -> 4
func fixtureDir(t *testing.T) (topology, locals string) {
	t.Helper()
	dir := t.TempDir()
	topology = writeFile(t, dir, "flowlines.csv",
		"comid,tonode,fromnode\n"+
			"1,110,101\n"+
			"2,110,102\n"+
			"3,111,110\n"+
			"4,112,111\n")
	locals = writeFile(t, dir, "attrs.csv",
		"comid,x\n"+
			"1,1\n"+
			"2,2\n"+
			"3,4\n"+
			"4,8\n")
	return topology, locals
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(stdio.Discard, log.Options{})
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(raw)), "\n")
}

func TestValidateAndSetDefaults(t *testing.T) {
	topology, locals := fixtureDir(t)
	opts := Options{
		TopologyPath: topology,
		LocalPath:    locals,
		CalcType:     "sum",
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.IDColumn != "comid" || opts.ToColumn != "tonode" || opts.FromColumn != "fromnode" {
		t.Errorf("column defaults: %q %q %q", opts.IDColumn, opts.ToColumn, opts.FromColumn)
	}
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", opts.Workers, DefaultWorkers)
	}
	if opts.Precision != DefaultPrecision {
		t.Errorf("Precision = %d, want %d", opts.Precision, DefaultPrecision)
	}
	if opts.Mode != ModeMemory {
		t.Errorf("Mode = %q, want memory", opts.Mode)
	}
	if opts.Direction != "up" {
		t.Errorf("Direction = %q, want up", opts.Direction)
	}
	if opts.Calc() != netcalc.CalcSum {
		t.Errorf("Calc() = %v", opts.Calc())
	}
	want := filepath.Join(filepath.Dir(locals), "n_sum_attrs.csv")
	if opts.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", opts.OutputPath, want)
	}
	if !opts.IncludeSelf() || !opts.TrackMissing() {
		t.Error("self inclusion and missing tracking should default on")
	}
}

func TestValidateRejectsBadOptions(t *testing.T) {
	topology, locals := fixtureDir(t)

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{
			"missing topology",
			Options{LocalPath: locals, CalcType: "sum"},
			errors.ErrCodeInvalidInput,
		},
		{
			"missing locals",
			Options{TopologyPath: topology, CalcType: "sum"},
			errors.ErrCodeInvalidInput,
		},
		{
			"bad calc type",
			Options{TopologyPath: topology, LocalPath: locals, CalcType: "mean"},
			errors.ErrCodeInvalidCalcType,
		},
		{
			"reserved id column",
			Options{TopologyPath: topology, LocalPath: locals, CalcType: "sum", IDColumn: "strm_id"},
			errors.ErrCodeReservedColumn,
		},
		{
			"bad direction",
			Options{TopologyPath: topology, LocalPath: locals, CalcType: "sum", Direction: "sideways"},
			errors.ErrCodeInvalidInput,
		},
		{
			"disk mode without store path",
			Options{TopologyPath: topology, LocalPath: locals, CalcType: "sum", Mode: ModeDisk},
			errors.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteMemoryMode(t *testing.T) {
	topology, locals := fixtureDir(t)
	runner := NewRunner(quietLogger())

	result, err := runner.Execute(context.Background(), Options{
		TopologyPath: topology,
		LocalPath:    locals,
		CalcType:     "sum",
		Logger:       quietLogger(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.Segments != 4 || result.Stats.Headwaters != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Closure.Finalized != 4 {
		t.Errorf("Finalized = %d", result.Closure.Finalized)
	}

	lines := readLines(t, result.OutputPath)
	if lines[0] != "comid,n_x,mn_x" {
		t.Fatalf("header = %q", lines[0])
	}
	// Closures with self: 1→{1}, 2→{2}, 3→{1,2,3}, 4→{1,2,3,4}.
	want := []string{"1,1,0", "2,2,0", "3,7,0", "4,15,0"}
	for i, w := range want {
		if lines[i+1] != w {
			t.Errorf("row %d = %q, want %q", i+1, lines[i+1], w)
		}
	}
}

func TestExecuteDiskModeMatchesMemory(t *testing.T) {
	topology, locals := fixtureDir(t)
	dir := t.TempDir()
	runner := NewRunner(quietLogger())

	mem, err := runner.Execute(context.Background(), Options{
		TopologyPath: topology,
		LocalPath:    locals,
		CalcType:     "weighted_avg",
		OutputPath:   filepath.Join(dir, "mem.csv"),
		Logger:       quietLogger(),
	})
	if err != nil {
		t.Fatalf("memory Execute: %v", err)
	}

	disk, err := runner.Execute(context.Background(), Options{
		TopologyPath: topology,
		LocalPath:    locals,
		CalcType:     "weighted_avg",
		Mode:         ModeDisk,
		StorePath:    filepath.Join(dir, "closures.strm"),
		OutputPath:   filepath.Join(dir, "disk.csv"),
		Logger:       quietLogger(),
	})
	if err != nil {
		t.Fatalf("disk Execute: %v", err)
	}

	memLines := readLines(t, mem.OutputPath)
	diskLines := readLines(t, disk.OutputPath)
	if len(memLines) != len(diskLines) {
		t.Fatalf("line counts differ: %d vs %d", len(memLines), len(diskLines))
	}
	for i := range memLines {
		if memLines[i] != diskLines[i] {
			t.Errorf("line %d differs: %q vs %q", i, memLines[i], diskLines[i])
		}
	}

	if disk.Manifest == nil || disk.Manifest.Segments != 4 {
		t.Errorf("manifest = %+v", disk.Manifest)
	}
	if _, err := os.Stat(filepath.Join(dir, "closures.strm.manifest.json")); err != nil {
		t.Errorf("manifest sidecar missing: %v", err)
	}
}

func TestExecuteSkipSelf(t *testing.T) {
	topology, locals := fixtureDir(t)
	runner := NewRunner(quietLogger())

	result, err := runner.Execute(context.Background(), Options{
		TopologyPath: topology,
		LocalPath:    locals,
		CalcType:     "sum",
		SkipSelf:     true,
		Logger:       quietLogger(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	lines := readLines(t, result.OutputPath)
	// Headwaters have empty networks: nothing to aggregate, so every
	// field comes out blank.
	if lines[1] != "1,," {
		t.Errorf("row 1 = %q, want %q", lines[1], "1,,")
	}
	// Closure of 4 without self is {1,2,3}.
	if lines[4] != "4,7,0" {
		t.Errorf("row 4 = %q, want %q", lines[4], "4,7,0")
	}
}

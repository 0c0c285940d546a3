package netcalc

import (
	"context"
	"math"
	"testing"

	"github.com/matzehuels/streamnet/pkg/errors"
	"github.com/matzehuels/streamnet/pkg/network"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < eps
}

// weightedTable is three segments with one variable:
//
//	id 1: x=1, w=2
//	id 2: x=2, w=3
//	id 3: x=missing, w=5
func weightedTable() *LocalTable {
	t := NewLocalTable(3, []string{"x"})
	t.SetRow(1, 2, []float64{1})
	t.SetRow(2, 3, []float64{2})
	t.SetRow(3, 5, []float64{math.NaN()})
	return t
}

func TestParseCalcType(t *testing.T) {
	tests := []struct {
		in      string
		want    CalcType
		wantErr bool
	}{
		{"sum", CalcSum, false},
		{"min", CalcMin, false},
		{"max", CalcMax, false},
		{"weighted_avg", CalcWeightedAvg, false},
		{"SUM", CalcSum, false},
		{"  Weighted_Avg ", CalcWeightedAvg, false},
		{"mean", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCalcType(tt.in)
		if tt.wantErr {
			if !errors.Is(err, errors.ErrCodeInvalidCalcType) {
				t.Errorf("ParseCalcType(%q): err = %v, want INVALID_CALC_TYPE", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseCalcType(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestReduce(t *testing.T) {
	table := weightedTable()
	closure := []int64{1, 2, 3}

	tests := []struct {
		calc        CalcType
		wantValue   float64
		wantMissing float64
	}{
		{CalcSum, 3, 50},
		{CalcMin, 1, 50},
		{CalcMax, 2, 50},
		// (1*2 + 2*3) / (2+3) = 1.6; missing weight 5 of total 10.
		{CalcWeightedAvg, 1.6, 50},
	}
	for _, tt := range tests {
		value, missing := reduce(tt.calc, table, 0, closure)
		if !almostEqual(value, tt.wantValue) {
			t.Errorf("%s: value = %v, want %v", tt.calc, value, tt.wantValue)
		}
		if !almostEqual(missing, tt.wantMissing) {
			t.Errorf("%s: missing = %v, want %v", tt.calc, missing, tt.wantMissing)
		}
	}
}

func TestReduceAllMissing(t *testing.T) {
	table := NewLocalTable(2, []string{"x"})
	table.SetRow(1, 1, []float64{math.NaN()})
	table.SetRow(2, 1, []float64{math.NaN()})
	closure := []int64{1, 2}

	if v, m := reduce(CalcSum, table, 0, closure); v != 0 || !almostEqual(m, 100) {
		t.Errorf("sum over all-missing = %v, %v, want 0, 100", v, m)
	}
	if v, _ := reduce(CalcMin, table, 0, closure); !math.IsNaN(v) {
		t.Errorf("min over all-missing = %v, want NaN", v)
	}
	if v, _ := reduce(CalcMax, table, 0, closure); !math.IsNaN(v) {
		t.Errorf("max over all-missing = %v, want NaN", v)
	}
	if v, _ := reduce(CalcWeightedAvg, table, 0, closure); !math.IsNaN(v) {
		t.Errorf("weighted_avg over all-missing = %v, want NaN", v)
	}
}

func TestReduceNaNWeightSkipped(t *testing.T) {
	table := NewLocalTable(2, []string{"x"})
	table.SetRow(1, 1, []float64{4})
	table.SetRow(2, math.NaN(), []float64{8})
	closure := []int64{1, 2}

	// The NaN-weight row still counts for sum/min/max.
	if v, _ := reduce(CalcSum, table, 0, closure); !almostEqual(v, 12) {
		t.Errorf("sum = %v, want 12", v)
	}
	// But it is excluded from the weighted average and both sides of the
	// missing percentage.
	if v, m := reduce(CalcWeightedAvg, table, 0, closure); !almostEqual(v, 4) || !almostEqual(m, 0) {
		t.Errorf("weighted_avg = %v, %v, want 4, 0", v, m)
	}
}

func TestReduceAbsentRowsContributeNothing(t *testing.T) {
	table := NewLocalTable(3, []string{"x"})
	table.SetRow(1, 2, []float64{10})
	// ids 2 and 3 never get a row.
	closure := []int64{1, 2, 3}

	if v, m := reduce(CalcSum, table, 0, closure); !almostEqual(v, 10) || !almostEqual(m, 0) {
		t.Errorf("sum = %v, missing = %v, want 10, 0", v, m)
	}
}

func TestReduceEmptyClosure(t *testing.T) {
	table := weightedTable()
	if v, m := reduce(CalcSum, table, 0, nil); v != 0 || !math.IsNaN(m) {
		t.Errorf("sum over empty = %v, %v, want 0, NaN", v, m)
	}
	if v, _ := reduce(CalcMin, table, 0, nil); !math.IsNaN(v) {
		t.Errorf("min over empty = %v, want NaN", v)
	}
}

func runPartition() *network.Partition {
	return &network.Partition{
		NoAncestors: []int64{4},
		OneAncestor: []int64{1},
		Multi: []network.MultiSegment{
			{ID: 5, Ancestors: []int64{1, 2, 3}},
			{ID: 6, Ancestors: []int64{1, 2}},
		},
	}
}

func runTable() *LocalTable {
	t := NewLocalTable(6, []string{"x"})
	t.SetRow(1, 2, []float64{1})
	t.SetRow(2, 3, []float64{2})
	t.SetRow(3, 5, []float64{math.NaN()})
	t.SetRow(4, 1, []float64{7})
	t.SetRow(5, 1, []float64{9})
	t.SetRow(6, 1, []float64{11})
	return t
}

func rowByID(t *testing.T, rt *ResultTable, id int64) Row {
	t.Helper()
	for _, row := range rt.Rows() {
		if row.ID == id {
			return row
		}
	}
	t.Fatalf("no row for segment %d", id)
	return Row{}
}

func TestRun(t *testing.T) {
	rt, err := Run(context.Background(), runPartition(), runTable(), Options{
		CalcType:       CalcSum,
		IncludeMissing: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rt.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", rt.Len())
	}

	// Rows come back sorted by internal id.
	for i := 1; i < rt.Len(); i++ {
		if rt.Rows()[i-1].ID >= rt.Rows()[i].ID {
			t.Errorf("rows not sorted: %d before %d", rt.Rows()[i-1].ID, rt.Rows()[i].ID)
		}
	}

	// One-ancestor: the local value passes through untouched.
	if row := rowByID(t, rt, 1); !almostEqual(row.Values[0], 1) || !almostEqual(row.Missing[0], 0) {
		t.Errorf("segment 1 = %v, %v, want 1, 0", row.Values[0], row.Missing[0])
	}
	// No ancestors: nothing to aggregate, every field missing.
	if row := rowByID(t, rt, 4); !math.IsNaN(row.Values[0]) || !math.IsNaN(row.Missing[0]) {
		t.Errorf("segment 4 = %v, %v, want NaN, NaN", row.Values[0], row.Missing[0])
	}
	// Multi: full reduction.
	if row := rowByID(t, rt, 5); !almostEqual(row.Values[0], 3) || !almostEqual(row.Missing[0], 50) {
		t.Errorf("segment 5 = %v, %v, want 3, 50", row.Values[0], row.Missing[0])
	}
	if row := rowByID(t, rt, 6); !almostEqual(row.Values[0], 3) || !almostEqual(row.Missing[0], 0) {
		t.Errorf("segment 6 = %v, %v, want 3, 0", row.Values[0], row.Missing[0])
	}

	if cols := rt.Columns(); len(cols) != 2 || cols[0] != "n_x" || cols[1] != "mn_x" {
		t.Errorf("Columns() = %v", cols)
	}
}

// A headwater-only run must come back all-missing for every calc type: its
// value column is blank, not a zero sum or an extreme of nothing.
func TestRunNoAncestorsAllMissing(t *testing.T) {
	part := &network.Partition{NoAncestors: []int64{1}}

	for _, calc := range []CalcType{CalcSum, CalcMin, CalcMax, CalcWeightedAvg} {
		rt, err := Run(context.Background(), part, weightedTable(), Options{
			CalcType:       calc,
			IncludeMissing: true,
		})
		if err != nil {
			t.Fatalf("%s: Run: %v", calc, err)
		}
		row := rowByID(t, rt, 1)
		if !math.IsNaN(row.Values[0]) {
			t.Errorf("%s: value = %v, want NaN", calc, row.Values[0])
		}
		if !math.IsNaN(row.Missing[0]) {
			t.Errorf("%s: missing = %v, want NaN", calc, row.Missing[0])
		}
	}
}

func TestRunOneAncestorAbsentRow(t *testing.T) {
	table := NewLocalTable(2, []string{"x"})
	table.SetRow(2, 1, []float64{5})
	part := &network.Partition{OneAncestor: []int64{1}}

	rt, err := Run(context.Background(), part, table, Options{
		CalcType:       CalcSum,
		IncludeMissing: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	row := rowByID(t, rt, 1)
	if !math.IsNaN(row.Values[0]) || !almostEqual(row.Missing[0], 100) {
		t.Errorf("absent one-ancestor row = %v, %v, want NaN, 100", row.Values[0], row.Missing[0])
	}
}

// mapResolver serves closures from a map, standing in for a store reader.
type mapResolver map[int64][]int64

func (r mapResolver) Get(_ context.Context, id int64) ([]int64, error) {
	closure, ok := r[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "segment %d", id)
	}
	return closure, nil
}

func TestRunWithResolver(t *testing.T) {
	part := &network.Partition{
		Multi: []network.MultiSegment{{ID: 5}, {ID: 6}},
	}
	resolver := mapResolver{
		5: {1, 2, 3},
		6: {1, 2},
	}

	rt, err := Run(context.Background(), part, runTable(), Options{
		CalcType:       CalcWeightedAvg,
		IncludeMissing: true,
		Resolver:       resolver,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if row := rowByID(t, rt, 5); !almostEqual(row.Values[0], 1.6) || !almostEqual(row.Missing[0], 50) {
		t.Errorf("segment 5 = %v, %v, want 1.6, 50", row.Values[0], row.Missing[0])
	}
}

func TestRunResolverMissingClosureIsFatal(t *testing.T) {
	part := &network.Partition{Multi: []network.MultiSegment{{ID: 5}}}

	_, err := Run(context.Background(), part, runTable(), Options{
		CalcType: CalcSum,
		Resolver: mapResolver{},
	})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	n := int64(200)
	table := NewLocalTable(n, []string{"x", "y"})
	for id := int64(1); id <= n; id++ {
		table.SetRow(id, float64(id%7+1), []float64{float64(id), float64(n - id)})
	}
	part := &network.Partition{}
	for id := int64(3); id <= n; id++ {
		part.Multi = append(part.Multi, network.MultiSegment{
			ID:        id,
			Ancestors: []int64{1, 2, id},
		})
	}

	seq, err := Run(context.Background(), part, table, Options{CalcType: CalcWeightedAvg, IncludeMissing: true, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	par, err := Run(context.Background(), part, table, Options{CalcType: CalcWeightedAvg, IncludeMissing: true, Workers: 8})
	if err != nil {
		t.Fatal(err)
	}

	if seq.Len() != par.Len() {
		t.Fatalf("row counts differ: %d vs %d", seq.Len(), par.Len())
	}
	for i, srow := range seq.Rows() {
		prow := par.Rows()[i]
		if srow.ID != prow.ID {
			t.Fatalf("row %d: ids differ (%d vs %d)", i, srow.ID, prow.ID)
		}
		for v := range srow.Values {
			if !almostEqual(srow.Values[v], prow.Values[v]) || !almostEqual(srow.Missing[v], prow.Missing[v]) {
				t.Errorf("segment %d var %d differs between workers", srow.ID, v)
			}
		}
	}
}

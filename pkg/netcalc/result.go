package netcalc

import "sort"

// Row is one segment's aggregated output, keyed by internal id.
type Row struct {
	ID      int64
	Values  []float64 // one per variable, table order
	Missing []float64 // one per variable; nil when not tracked
}

// ResultTable holds the aggregated output of one run, sorted by internal
// id. Column names are derived from the variable names: n_<var> for values
// and mn_<var> for missing percentages.
type ResultTable struct {
	vars           []string
	includeMissing bool
	rows           []Row
}

// ValuePrefix and MissingPrefix name the derived output columns.
const (
	ValuePrefix   = "n_"
	MissingPrefix = "mn_"
)

// Vars returns the base variable names.
func (r *ResultTable) Vars() []string { return r.vars }

// IncludeMissing reports whether missing percentages were tracked.
func (r *ResultTable) IncludeMissing() bool { return r.includeMissing }

// Columns returns the derived output column names, values first, then
// missing percentages when tracked.
func (r *ResultTable) Columns() []string {
	cols := make([]string, 0, 2*len(r.vars))
	for _, v := range r.vars {
		cols = append(cols, ValuePrefix+v)
	}
	if r.includeMissing {
		for _, v := range r.vars {
			cols = append(cols, MissingPrefix+v)
		}
	}
	return cols
}

// Rows returns the rows in ascending internal-id order.
func (r *ResultTable) Rows() []Row { return r.rows }

// Len returns the number of rows.
func (r *ResultTable) Len() int { return len(r.rows) }

func (r *ResultTable) sortByID() {
	sort.Slice(r.rows, func(i, j int) bool { return r.rows[i].ID < r.rows[j].ID })
}

package io

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/matzehuels/streamnet/pkg/errors"
	"github.com/matzehuels/streamnet/pkg/netcalc"
	"github.com/matzehuels/streamnet/pkg/network"
)

// DefaultPrecision is the decimal precision results are rounded to on
// export when the caller does not override it.
const DefaultPrecision = 3

// DefaultOutputName derives the output path from the calculation type and
// the local input table: n_<calc>_<input file>, next to the input.
func DefaultOutputName(calc netcalc.CalcType, localPath string) string {
	dir, base := filepath.Split(localPath)
	return filepath.Join(dir, fmt.Sprintf("n_%s_%s", calc, base))
}

// WriteResultsCSV writes the aggregated results with external ids
// restored. Values are rounded to precision decimals; NaN cells are
// written empty. Row order follows the result table (ascending internal
// id, which is input row order).
func WriteResultsCSV(path, idColumn string, ids *network.IDMap, rt *netcalc.ResultTable, precision int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create output %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{idColumn}, rt.Columns()...)); err != nil {
		return err
	}

	record := make([]string, 1+len(rt.Columns()))
	for _, row := range rt.Rows() {
		ext, ok := ids.External(row.ID)
		if !ok {
			return errors.New(errors.ErrCodeSegmentNotFound,
				"segment %d has no external id", row.ID)
		}
		record[0] = ext
		i := 1
		for _, v := range row.Values {
			record[i] = formatValue(v, precision)
			i++
		}
		for _, m := range row.Missing {
			record[i] = formatValue(m, precision)
			i++
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// formatValue rounds to precision decimals and renders the shortest
// representation. NaN renders as the empty string.
func formatValue(v float64, precision int) string {
	if math.IsNaN(v) {
		return ""
	}
	pow := math.Pow10(precision)
	return strconv.FormatFloat(math.Round(v*pow)/pow, 'f', -1, 64)
}

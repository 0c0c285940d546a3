package io

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/streamnet/pkg/errors"
	"github.com/matzehuels/streamnet/pkg/netcalc"
	"github.com/matzehuels/streamnet/pkg/network"
)

// Default topology column names, matching the NHDPlus attribute tables
// this format comes from.
const (
	DefaultIDColumn   = "comid"
	DefaultToColumn   = "tonode"
	DefaultFromColumn = "fromnode"
)

// TopologyColumns names the three topology input columns.
type TopologyColumns struct {
	ID   string
	To   string
	From string
}

// LocalColumns describes how to interpret the local-value table header.
type LocalColumns struct {
	// ID is the segment id column. Required.
	ID string

	// Weight is the weight column for weighted averages and missing
	// percentages. Empty means no weight column: every row weighs 1.
	Weight string

	// Drop lists columns to ignore entirely.
	Drop []string
}

// ReadTopologyCSV reads the topology table. Column lookup on the header is
// case-insensitive; a missing column is a MISSING_COLUMN error. Cell
// values are treated as opaque identifiers, never parsed.
func ReadTopologyCSV(path string, cols TopologyColumns) ([]network.TopologyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open topology table %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read topology header of %s", path)
	}

	idIdx, err := findColumn(header, cols.ID, path)
	if err != nil {
		return nil, err
	}
	toIdx, err := findColumn(header, cols.To, path)
	if err != nil {
		return nil, err
	}
	fromIdx, err := findColumn(header, cols.From, path)
	if err != nil {
		return nil, err
	}

	var rows []network.TopologyRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read topology row of %s", path)
		}
		rows = append(rows, network.TopologyRow{
			ID:   strings.TrimSpace(record[idIdx]),
			To:   strings.TrimSpace(record[toIdx]),
			From: strings.TrimSpace(record[fromIdx]),
		})
	}
	return rows, nil
}

// LocalData is the parsed local-value table plus ingest accounting.
type LocalData struct {
	Table *netcalc.LocalTable

	// Unknown counts rows whose id matched no topology segment. Such rows
	// are skipped; the count is surfaced as a warning, not an error.
	Unknown int
}

// ReadLocalCSV reads the local-value table and resolves its rows against
// the topology's id mapping. Every column that is not the id, the weight,
// or explicitly dropped becomes a variable. Empty cells become NaN; any
// other unparseable cell is a fatal NON_NUMERIC_VALUE error.
func ReadLocalCSV(path string, cols LocalColumns, ids *network.IDMap) (*LocalData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open local table %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read local header of %s", path)
	}

	idIdx, err := findColumn(header, cols.ID, path)
	if err != nil {
		return nil, err
	}
	weightIdx := -1
	if cols.Weight != "" {
		weightIdx, err = findColumn(header, cols.Weight, path)
		if err != nil {
			return nil, err
		}
	}

	dropped := func(name string) bool {
		return slices.ContainsFunc(cols.Drop, func(d string) bool {
			return strings.EqualFold(d, name)
		})
	}

	// Everything else is a variable column.
	var vars []string
	var varIdx []int
	for i, name := range header {
		if i == idIdx || i == weightIdx || dropped(name) {
			continue
		}
		vars = append(vars, name)
		varIdx = append(varIdx, i)
	}

	data := &LocalData{Table: netcalc.NewLocalTable(int64(ids.Len()), vars)}
	vals := make([]float64, len(vars))
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read local row of %s", path)
		}

		id, ok := ids.Internal(strings.TrimSpace(record[idIdx]))
		if !ok {
			data.Unknown++
			continue
		}

		weight := 1.0
		if weightIdx >= 0 {
			weight, err = parseCell(record[weightIdx], path, line, header[weightIdx])
			if err != nil {
				return nil, err
			}
		}
		for i, col := range varIdx {
			vals[i], err = parseCell(record[col], path, line, header[col])
			if err != nil {
				return nil, err
			}
		}
		data.Table.SetRow(id, weight, vals)
	}
	return data, nil
}

// findColumn locates a header column case-insensitively.
func findColumn(header []string, name, path string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, errors.New(errors.ErrCodeMissingColumn, "column %q not found in %s", name, path)
}

// parseCell parses one numeric cell. Empty means missing.
func parseCell(cell, path string, line int, column string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeNonNumeric,
			"%s line %d: column %q has non-numeric value %q", path, line, column, cell)
	}
	return v, nil
}

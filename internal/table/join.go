package table

import (
	"fmt"
)

// refSuffix disambiguates right-side columns whose name already exists on
// the left. Mirrors the _x/_y behavior of dataframe merges without
// renaming the left side.
const refSuffix = "_ref"

// LeftJoin joins right onto left as a lookup: every left row is kept, and
// the cells of the matching right row are appended. Unmatched left rows get
// null cells for all right columns. The right key column is carried into
// the result alongside the left key, as dataframe merges do.
//
// Right keys are expected to be unique; when they are not, the last row
// wins so the result row count always equals the left row count. Keys are
// compared as exact strings, so callers must normalize both sides first.
func LeftJoin(left, right *Table, leftKey, rightKey string) (*Table, error) {
	if !left.HasColumn(leftKey) {
		return nil, fmt.Errorf("left table has no column %q", leftKey)
	}
	rightKeyIdx, ok := right.ColumnIndex(rightKey)
	if !ok {
		return nil, fmt.Errorf("right table has no column %q", rightKey)
	}

	// Column layout: all left columns, then all right columns, suffixing
	// collisions.
	columns := left.Columns()
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}
	rightCols := right.Columns()
	outRightNames := make([]string, len(rightCols))
	for i, c := range rightCols {
		name := c
		for taken[name] {
			name += refSuffix
		}
		taken[name] = true
		outRightNames[i] = name
		columns = append(columns, name)
	}

	out, err := New(columns)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string][]string, right.NumRows())
	for i := 0; i < right.NumRows(); i++ {
		row := right.Row(i)
		lookup[row[rightKeyIdx]] = row
	}

	leftKeyIdx, _ := left.ColumnIndex(leftKey)
	for i := 0; i < left.NumRows(); i++ {
		row := left.Row(i)
		if match, found := lookup[row[leftKeyIdx]]; found {
			row = append(row, match...)
		} else {
			row = append(row, make([]string, len(rightCols))...)
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

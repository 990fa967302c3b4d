package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		wantErr bool
	}{
		{
			name:    "simple columns",
			columns: []string{"A", "B", "C"},
		},
		{
			name:    "no columns",
			columns: nil,
		},
		{
			name:    "duplicate column",
			columns: []string{"A", "B", "A"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.columns)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.columns, tbl.Columns())
			assert.Equal(t, 0, tbl.NumRows())
		})
	}
}

func TestAppendRow(t *testing.T) {
	tbl, err := New([]string{"A", "B", "C"})
	require.NoError(t, err)

	// Short rows pad with null cells.
	require.NoError(t, tbl.AppendRow([]string{"1"}))
	assert.Equal(t, "1", tbl.Get(0, "A"))
	assert.Equal(t, "", tbl.Get(0, "B"))
	assert.Equal(t, "", tbl.Get(0, "C"))

	// Long rows are a structural error.
	assert.Error(t, tbl.AppendRow([]string{"1", "2", "3", "4"}))
	assert.Equal(t, 1, tbl.NumRows())
}

func TestAddColumn(t *testing.T) {
	tbl, err := New([]string{"A"})
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]string{"x"}))
	require.NoError(t, tbl.AppendRow([]string{"y"}))

	require.NoError(t, tbl.AddColumn("B", []string{"1", "2"}))
	assert.Equal(t, "2", tbl.Get(1, "B"))

	// Short value slices leave nulls.
	require.NoError(t, tbl.AddColumn("C", []string{"only"}))
	assert.Equal(t, "only", tbl.Get(0, "C"))
	assert.Equal(t, "", tbl.Get(1, "C"))

	// Duplicate name rejected.
	assert.Error(t, tbl.AddColumn("A", nil))
	// Too many values rejected.
	assert.Error(t, tbl.AddColumn("D", []string{"1", "2", "3"}))
}

func TestRenameColumn(t *testing.T) {
	tbl, err := New([]string{"Textbox4", "Other"})
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]string{"B", "v"}))

	require.NoError(t, tbl.RenameColumn("Textbox4", "HS_TYPE"))
	assert.Equal(t, []string{"HS_TYPE", "Other"}, tbl.Columns())
	assert.Equal(t, "B", tbl.Get(0, "HS_TYPE"))

	assert.Error(t, tbl.RenameColumn("missing", "X"))
	assert.Error(t, tbl.RenameColumn("HS_TYPE", "Other"))
}

func TestCloneIsIndependent(t *testing.T) {
	tbl, err := New([]string{"A"})
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]string{"orig"}))

	clone := tbl.Clone()
	require.NoError(t, clone.Set(0, "A", "changed"))
	require.NoError(t, clone.AddColumn("B", nil))

	assert.Equal(t, "orig", tbl.Get(0, "A"))
	assert.False(t, tbl.HasColumn("B"))
	assert.Equal(t, "changed", clone.Get(0, "A"))
}

func TestMissingColumns(t *testing.T) {
	tbl, err := New([]string{"COMMUNITY", "PLAN_CODE"})
	require.NoError(t, err)

	assert.Nil(t, tbl.MissingColumns([]string{"COMMUNITY"}))
	assert.Equal(t, []string{"SALE_DATE", "NHC_NAME"},
		tbl.MissingColumns([]string{"COMMUNITY", "SALE_DATE", "NHC_NAME"}))
}

func TestLeftJoin(t *testing.T) {
	sales, err := New([]string{"Comm_#", "BUYER"})
	require.NoError(t, err)
	require.NoError(t, sales.AppendRow([]string{"55501", "SMITH"}))
	require.NoError(t, sales.AppendRow([]string{"99999", "JONES"}))

	hub, err := New([]string{"Community Number", "Hub"})
	require.NoError(t, err)
	require.NoError(t, hub.AppendRow([]string{"55501", "North"}))

	out, err := LeftJoin(sales, hub, "Comm_#", "Community Number")
	require.NoError(t, err)

	// All left rows kept, right columns appended.
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, []string{"Comm_#", "BUYER", "Community Number", "Hub"}, out.Columns())
	assert.Equal(t, "North", out.Get(0, "Hub"))
	assert.Equal(t, "55501", out.Get(0, "Community Number"))

	// Unmatched rows survive with null right cells.
	assert.Equal(t, "JONES", out.Get(1, "BUYER"))
	assert.Equal(t, "", out.Get(1, "Hub"))
	assert.Equal(t, "", out.Get(1, "Community Number"))
}

func TestLeftJoinDuplicateRightKeysKeepRowCount(t *testing.T) {
	left, err := New([]string{"K"})
	require.NoError(t, err)
	require.NoError(t, left.AppendRow([]string{"a"}))

	right, err := New([]string{"K2", "V"})
	require.NoError(t, err)
	require.NoError(t, right.AppendRow([]string{"a", "first"}))
	require.NoError(t, right.AppendRow([]string{"a", "last"}))

	out, err := LeftJoin(left, right, "K", "K2")
	require.NoError(t, err)
	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, "last", out.Get(0, "V"))
}

func TestLeftJoinSuffixesCollidingColumns(t *testing.T) {
	left, err := New([]string{"K", "Name"})
	require.NoError(t, err)
	require.NoError(t, left.AppendRow([]string{"a", "left-name"}))

	right, err := New([]string{"K2", "Name"})
	require.NoError(t, err)
	require.NoError(t, right.AppendRow([]string{"a", "right-name"}))

	out, err := LeftJoin(left, right, "K", "K2")
	require.NoError(t, err)
	assert.Equal(t, []string{"K", "Name", "K2", "Name_ref"}, out.Columns())
	assert.Equal(t, "left-name", out.Get(0, "Name"))
	assert.Equal(t, "right-name", out.Get(0, "Name_ref"))
}

func TestLeftJoinMissingKeyColumns(t *testing.T) {
	left, err := New([]string{"K"})
	require.NoError(t, err)
	right, err := New([]string{"K2"})
	require.NoError(t, err)

	_, err = LeftJoin(left, right, "missing", "K2")
	assert.Error(t, err)
	_, err = LeftJoin(left, right, "K", "missing")
	assert.Error(t, err)
}

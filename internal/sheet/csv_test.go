package sheet

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	data := "DESIGN CODE,OPEN,JAN CONS.\n,01/01/24,31/01/24\n901,500,42\n902,,\n"

	tbl, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)

	row1, row2 := tbl.Header()
	assert.Equal(t, []string{"DESIGN CODE", "OPEN", "JAN CONS."}, row1)
	assert.Equal(t, "31/01/24", row2[2])

	rows := slices.Collect(tbl.Rows())
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].Number)
	assert.Equal(t, "42", rows[0].Cell(2))
	assert.Equal(t, 4, rows[1].Number)
}

func TestReadCSV_RaggedRows(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("CODE,OPEN\n,1/1/24\n901\n"))
	require.NoError(t, err)
	rows := slices.Collect(tbl.Rows())
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Cell(1))
}

func TestReadCSV_NoHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("CODE,OPEN\n"))
	assert.True(t, errors.Is(err, ErrNoHeader))
}

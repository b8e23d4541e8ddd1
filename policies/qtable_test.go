package policies

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/maze-rl/types"
)

func newTable(t *testing.T, nStates, nActions int) *QTable {
	t.Helper()
	table, err := NewQTable(nStates, nActions)
	require.NoError(t, err)
	return table
}

func TestNewQTableRejectsZeroDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {16, 0}, {0, 0}, {-1, 2}} {
		_, err := NewQTable(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrInvalidDimensions, "dims %v", dims)
	}
}

func TestNewQTableIsZero(t *testing.T) {
	table := newTable(t, 16, 5)
	r, c := table.Dims()
	assert.Equal(t, 16, r)
	assert.Equal(t, 5, c)
	for s := 0; s < 16; s++ {
		for a := 0; a < 5; a++ {
			v, err := table.Get(types.State(s), types.Action(a))
			require.NoError(t, err)
			assert.Zero(t, v)
		}
	}
}

func TestGetAfterSet(t *testing.T) {
	table := newTable(t, 4, 3)
	r := rand.New(rand.NewSource(1))
	expected := make(map[[2]int]float64)
	for s := 0; s < 4; s++ {
		for a := 0; a < 3; a++ {
			v := r.NormFloat64() * 100
			expected[[2]int{s, a}] = v
			require.NoError(t, table.Set(types.State(s), types.Action(a), v))
		}
	}
	for k, v := range expected {
		got, err := table.Get(types.State(k[0]), types.Action(k[1]))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestOutOfRange(t *testing.T) {
	table := newTable(t, 2, 2)
	_, err := table.Get(2, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = table.Get(0, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, table.Set(-1, 0, 1), ErrOutOfRange)
	_, err = table.Max(5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = table.BestAction(2)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestMaxAndBestAction(t *testing.T) {
	table := newTable(t, 3, 4)
	require.NoError(t, table.Set(0, 2, 3.5))
	require.NoError(t, table.Set(0, 1, -1))
	require.NoError(t, table.Set(1, 0, -2))
	require.NoError(t, table.Set(1, 1, -1))
	require.NoError(t, table.Set(1, 2, -3))
	require.NoError(t, table.Set(1, 3, -4))

	for s := 0; s < 3; s++ {
		row, err := table.Row(types.State(s))
		require.NoError(t, err)
		max := row[0]
		for _, v := range row {
			if v > max {
				max = v
			}
		}
		got, err := table.Max(types.State(s))
		require.NoError(t, err)
		assert.Equal(t, max, got, "state %d", s)

		best, err := table.BestAction(types.State(s))
		require.NoError(t, err)
		assert.Equal(t, max, row[best], "state %d", s)
	}

	best, err := table.BestAction(0)
	require.NoError(t, err)
	assert.Equal(t, types.Action(2), best)
	best, err = table.BestAction(1)
	require.NoError(t, err)
	assert.Equal(t, types.Action(1), best)
}

func TestBestActionTieBreaksOnLowestIndex(t *testing.T) {
	table := newTable(t, 1, 5)
	best, err := table.BestAction(0)
	require.NoError(t, err)
	assert.Equal(t, types.Action(0), best)

	require.NoError(t, table.Set(0, 3, 7))
	require.NoError(t, table.Set(0, 1, 7))
	best, err = table.BestAction(0)
	require.NoError(t, err)
	assert.Equal(t, types.Action(1), best)
}

func TestWriteToFormat(t *testing.T) {
	table := newTable(t, 2, 3)
	require.NoError(t, table.Set(0, 0, 1))
	require.NoError(t, table.Set(0, 2, -0.5))
	require.NoError(t, table.Set(1, 1, 12.3456789))

	var buf bytes.Buffer
	n, err := table.WriteTo(&buf)
	require.NoError(t, err)
	expected := "1.000000,0.000000,-0.500000,\n0.000000,12.345679,0.000000,\n"
	assert.Equal(t, expected, buf.String())
	assert.Equal(t, int64(len(expected)), n)
}

func TestRoundTrip(t *testing.T) {
	table := newTable(t, 16, 5)
	r := rand.New(rand.NewSource(42))
	for s := 0; s < 16; s++ {
		for a := 0; a < 5; a++ {
			require.NoError(t, table.Set(types.State(s), types.Action(a), r.Float64()*200-100))
		}
	}
	var buf bytes.Buffer
	_, err := table.WriteTo(&buf)
	require.NoError(t, err)
	size := buf.Len()

	loaded := newTable(t, 16, 5)
	n, err := loaded.ReadFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(size), n)

	for s := 0; s < 16; s++ {
		for a := 0; a < 5; a++ {
			want, _ := table.Get(types.State(s), types.Action(a))
			got, _ := loaded.Get(types.State(s), types.Action(a))
			assert.InDelta(t, want, got, 1e-6)
		}
	}
}

func TestReadFromAcceptsMissingTrailingCommaAndCRLF(t *testing.T) {
	table := newTable(t, 2, 2)
	_, err := table.ReadFrom(strings.NewReader("1.5,2\r\n3, 4,\r\n\n"))
	require.NoError(t, err)
	assert.Equal(t, "1.500000,2.000000,\n3.000000,4.000000,\n", table.String())
}

func TestReadFromMalformed(t *testing.T) {
	cases := map[string]string{
		"short line":    "1,2,\n3,\n",
		"long line":     "1,2,\n3,4,5,\n",
		"missing line":  "1,2,\n",
		"empty":         "",
		"blank line":    "1,2,\n\n3,4,\n",
		"extra line":    "1,2,\n3,4,\n5,6,\n",
		"not a number":  "1,x,\n3,4,\n",
		"empty token":   "1,,\n3,4,\n",
		"too long line": strings.Repeat("1", MaxLineLength+1) + "\n3,4,\n",
		"nan":           "NaN,1,\n3,4,\n",
		"infinity":      "1,+Inf,\n3,4,\n",
		"negative inf":  "1,2,\n-inf,4,\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			table := newTable(t, 2, 2)
			require.NoError(t, table.Set(0, 0, 9))
			_, err := table.ReadFrom(strings.NewReader(input))
			require.ErrorIs(t, err, ErrMalformedTable)

			v, err := table.Get(0, 0)
			require.NoError(t, err)
			assert.Equal(t, 9.0, v, "table must be left untouched")
		})
	}
}

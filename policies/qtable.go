package policies

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/zeu5/maze-rl/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MaxLineLength bounds a single line of a serialized table
const MaxLineLength = 64 * 1024

var (
	ErrInvalidDimensions = errors.New("qtable: dimensions must be positive")
	ErrOutOfRange        = errors.New("qtable: index out of range")
	ErrMalformedTable    = errors.New("qtable: malformed table")
)

// QTable is a dense states x actions grid of Q-values.
// Rows are states, columns are actions, all initialised to zero.
type QTable struct {
	nStates  int
	nActions int
	values   *mat.Dense
}

var _ types.Space = &QTable{}

func NewQTable(nStates, nActions int) (*QTable, error) {
	if nStates <= 0 || nActions <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, nStates, nActions)
	}
	return &QTable{
		nStates:  nStates,
		nActions: nActions,
		values:   mat.NewDense(nStates, nActions, nil),
	}, nil
}

func (q *QTable) NumStates() int {
	return q.nStates
}

func (q *QTable) NumActions() int {
	return q.nActions
}

// Dims returns the number of states and actions
func (q *QTable) Dims() (int, int) {
	return q.values.Dims()
}

func (q *QTable) checkState(state types.State) error {
	if state < 0 || int(state) >= q.nStates {
		return fmt.Errorf("%w: state %d not in [0, %d)", ErrOutOfRange, state, q.nStates)
	}
	return nil
}

func (q *QTable) check(state types.State, action types.Action) error {
	if err := q.checkState(state); err != nil {
		return err
	}
	if action < 0 || int(action) >= q.nActions {
		return fmt.Errorf("%w: action %d not in [0, %d)", ErrOutOfRange, action, q.nActions)
	}
	return nil
}

func (q *QTable) Get(state types.State, action types.Action) (float64, error) {
	if err := q.check(state, action); err != nil {
		return 0, err
	}
	return q.values.At(int(state), int(action)), nil
}

func (q *QTable) Set(state types.State, action types.Action, val float64) error {
	if err := q.check(state, action); err != nil {
		return err
	}
	q.values.Set(int(state), int(action), val)
	return nil
}

// Max value over all the actions of the state
func (q *QTable) Max(state types.State) (float64, error) {
	if err := q.checkState(state); err != nil {
		return 0, err
	}
	return floats.Max(q.values.RawRowView(int(state))), nil
}

// BestAction is the action with the highest value, the lowest index wins ties
func (q *QTable) BestAction(state types.State) (types.Action, error) {
	if err := q.checkState(state); err != nil {
		return 0, err
	}
	return types.Action(floats.MaxIdx(q.values.RawRowView(int(state)))), nil
}

// Row returns a copy of the values of the state
func (q *QTable) Row(state types.State) ([]float64, error) {
	if err := q.checkState(state); err != nil {
		return nil, err
	}
	return mat.Row(nil, int(state), q.values), nil
}

// WriteTo serializes the table: one line per state, each value
// followed by a comma, in state then action order.
func (q *QTable) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	buf := make([]byte, 0, 32)
	for s := 0; s < q.nStates; s++ {
		for _, v := range q.values.RawRowView(s) {
			buf = strconv.AppendFloat(buf[:0], v, 'f', 6, 64)
			buf = append(buf, ',')
			n, err := bw.Write(buf)
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return written, err
		}
		written++
	}
	return written, bw.Flush()
}

func (q *QTable) String() string {
	var b strings.Builder
	q.WriteTo(&b)
	return b.String()
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// ReadFrom loads a table written by WriteTo. It expects exactly
// one line per state with one value per action. The table is left
// untouched if the input is malformed.
func (q *QTable) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	scanner := bufio.NewScanner(cr)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineLength)

	values := make([]float64, 0, q.nStates*q.nActions)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if line > q.nStates {
			if text != "" {
				return cr.n, fmt.Errorf("%w: line %d: expected %d lines", ErrMalformedTable, line, q.nStates)
			}
			continue
		}
		row, err := parseRow(text, q.nActions)
		if err != nil {
			return cr.n, fmt.Errorf("%w: line %d: %s", ErrMalformedTable, line, err)
		}
		values = append(values, row...)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return cr.n, fmt.Errorf("%w: line %d longer than %d bytes", ErrMalformedTable, line+1, MaxLineLength)
		}
		return cr.n, err
	}
	if line < q.nStates {
		return cr.n, fmt.Errorf("%w: got %d lines, expected %d", ErrMalformedTable, line, q.nStates)
	}
	q.values = mat.NewDense(q.nStates, q.nActions, values)
	return cr.n, nil
}

func parseRow(text string, nActions int) ([]float64, error) {
	tokens := strings.Split(text, ",")
	if len(tokens) > 0 && strings.TrimSpace(tokens[len(tokens)-1]) == "" {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) != nActions {
		return nil, fmt.Errorf("got %d values, expected %d", len(tokens), nActions)
	}
	row := make([]float64, nActions)
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %v", i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("value %d: %q is not finite", i+1, tok)
		}
		row[i] = v
	}
	return row, nil
}

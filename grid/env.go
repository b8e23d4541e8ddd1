package grid

import (
	"fmt"

	"github.com/zeu5/maze-rl/types"
)

// Movements of the player on the board
const (
	Idle types.Action = iota
	Up
	Down
	Left
	Right
)

var AllMovements = []types.Action{Idle, Up, Down, Left, Right}

func MovementName(a types.Action) string {
	switch a {
	case Idle:
		return "Idle"
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Rewards handed out by the maze
const (
	RewardGoal    types.Reward = 100
	RewardOut     types.Reward = -100
	RewardCloser  types.Reward = 10
	RewardFarther types.Reward = -10
)

const (
	senseGoalAbove = 1 << iota
	senseGoalBelow
	senseGoalLeft
	senseGoalRight
)

// NumStates of the sensor encoding, one bit per direction of the goal
const NumStates = 16

type Position struct {
	X int
	Y int
}

func (p Position) Eq(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

func (p Position) distance(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// Maze is a square board where the player walks from Start to Goal.
// Stepping off the board ends the episode.
type Maze struct {
	Size   int
	Start  Position
	Goal   Position
	CurPos Position

	reward types.Reward
}

var _ types.Environment = &Maze{}
var _ types.Space = &Maze{}

func NewMaze(size int, start, goal Position) (*Maze, error) {
	if size <= 0 {
		return nil, fmt.Errorf("maze size %d must be positive", size)
	}
	m := &Maze{Size: size, Start: start, Goal: goal}
	if !m.inside(start) || !m.inside(goal) {
		return nil, fmt.Errorf("start %v and goal %v must be on the %dx%d board", start, goal, size, size)
	}
	if start.Eq(goal) {
		return nil, fmt.Errorf("start and goal are both %v", start)
	}
	m.CurPos = start
	return m, nil
}

// DefaultMaze is the 8x8 board with the goal at (4, 6)
func DefaultMaze() *Maze {
	m, _ := NewMaze(8, Position{0, 0}, Position{4, 6})
	return m
}

func (m *Maze) NumStates() int {
	return NumStates
}

func (m *Maze) NumActions() int {
	return len(AllMovements)
}

func (m *Maze) inside(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Size && p.Y < m.Size
}

func (m *Maze) Reset() error {
	m.CurPos = m.Start
	m.reward = 0
	return nil
}

func (m *Maze) IsTerminal() bool {
	return m.CurPos.Eq(m.Goal) || !m.inside(m.CurPos)
}

func (m *Maze) Apply(a types.Action) error {
	newPos := m.CurPos
	switch a {
	case Idle:
	case Up:
		newPos.Y -= 1
	case Down:
		newPos.Y += 1
	case Left:
		newPos.X -= 1
	case Right:
		newPos.X += 1
	default:
		return fmt.Errorf("%w: %d", types.ErrActionOutOfRange, a)
	}

	switch {
	case newPos.Eq(m.Goal):
		m.reward = RewardGoal
	case !m.inside(newPos):
		m.reward = RewardOut
	case newPos.distance(m.Goal) < m.CurPos.distance(m.Goal):
		m.reward = RewardCloser
	default:
		m.reward = RewardFarther
	}
	m.CurPos = newPos
	return nil
}

// ObserveState senses in which directions the goal lies
func (m *Maze) ObserveState() types.State {
	s := 0
	if m.Goal.Y < m.CurPos.Y {
		s |= senseGoalAbove
	}
	if m.Goal.Y > m.CurPos.Y {
		s |= senseGoalBelow
	}
	if m.Goal.X < m.CurPos.X {
		s |= senseGoalLeft
	}
	if m.Goal.X > m.CurPos.X {
		s |= senseGoalRight
	}
	return types.State(s)
}

func (m *Maze) ObserveReward() types.Reward {
	return m.reward
}

// StateName renders a sensor state as the flags it carries
func StateName(s types.State) string {
	flag := func(bit int, c byte) byte {
		if int(s)&bit != 0 {
			return c
		}
		return '-'
	}
	return string([]byte{
		flag(senseGoalAbove, 'U'),
		flag(senseGoalBelow, 'D'),
		flag(senseGoalLeft, 'L'),
		flag(senseGoalRight, 'R'),
	})
}

package components

import "fmt"

// Coord is a cell on the board. (0,0) is the top-left corner.
type Coord struct {
	X, Y int
}

// Add returns the cell one step from c in direction d.
func (c Coord) Add(d Direction) Coord {
	dx, dy := d.Delta()
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Direction is one of the four movement directions.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// NumDirections is the number of valid directions.
const NumDirections = 4

var (
	directionDeltas = [NumDirections][2]int{
		Up:    {0, -1},
		Down:  {0, 1},
		Left:  {-1, 0},
		Right: {1, 0},
	}
	directionOpposites = [NumDirections]Direction{
		Up:    Down,
		Down:  Up,
		Left:  Right,
		Right: Left,
	}
	directionNames = [NumDirections]string{
		Up:    "up",
		Down:  "down",
		Left:  "left",
		Right: "right",
	}
)

// Directions lists every direction in declaration order.
func Directions() [NumDirections]Direction {
	return [NumDirections]Direction{Up, Down, Left, Right}
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return d < NumDirections
}

// Delta returns the (dx, dy) step for d. Up decreases Y.
func (d Direction) Delta() (dx, dy int) {
	if !d.Valid() {
		return 0, 0
	}
	v := directionDeltas[d]
	return v[0], v[1]
}

// Opposite returns the reverse of d.
func (d Direction) Opposite() Direction {
	if !d.Valid() {
		return d
	}
	return directionOpposites[d]
}

// String returns the lower-case name of d.
func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// ParseDirection converts a name produced by String back into a Direction.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

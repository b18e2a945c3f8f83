package hex

// Direction names one of the six edges of a cell, clockwise from north-east.
type Direction uint8

const (
	NE Direction = iota
	E
	SE
	SW
	W
	NW
)

// Directions lists the six directions in ring order.
var Directions = [6]Direction{NE, E, SE, SW, W, NW}

// Valid reports whether d is one of the six enumerated directions.
func (d Direction) Valid() bool {
	return d <= NW
}

// Opposite returns the direction rotated by three steps.
func (d Direction) Opposite() Direction {
	return (d + 3) % 6
}

// Previous returns the counter-clockwise neighbor direction.
func (d Direction) Previous() Direction {
	return (d + 5) % 6
}

// Next returns the clockwise neighbor direction.
func (d Direction) Next() Direction {
	return (d + 1) % 6
}

// Previous2 steps two directions counter-clockwise.
func (d Direction) Previous2() Direction {
	return (d + 4) % 6
}

// Next2 steps two directions clockwise.
func (d Direction) Next2() Direction {
	return (d + 2) % 6
}

// String returns the compass abbreviation.
func (d Direction) String() string {
	switch d {
	case NE:
		return "NE"
	case E:
		return "E"
	case SE:
		return "SE"
	case SW:
		return "SW"
	case W:
		return "W"
	case NW:
		return "NW"
	default:
		return "Invalid"
	}
}

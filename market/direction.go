package market

import "fmt"

// Direction is the side of a position: +1 long, -1 short.
type Direction int8

const (
	Long  Direction = +1
	Short Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "BUY"
	case Short:
		return "SELL"
	}
	return fmt.Sprintf("Direction(%d)", int8(d))
}

// Valid reports whether d is Long or Short.
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// ParseDirection maps order-side strings ("BUY"/"SELL") to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "BUY", "buy", "LONG", "long":
		return Long, nil
	case "SELL", "sell", "SHORT", "short":
		return Short, nil
	}
	return 0, fmt.Errorf("parse direction: unknown side %q", s)
}

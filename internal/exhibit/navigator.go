package exhibit

import (
	"errors"
	"fmt"
)

type Key string

const (
	Summary           Key = "summary"
	DeadCode          Key = "dead_code"
	CommentedCode     Key = "commented_code"
	Todos             Key = "todos"
	OldestCode        Key = "oldest_code"
	HallOfShame       Key = "hall_of_shame"
	ComplexityHeatmap Key = "complexity_heatmap"
	Timeline          Key = "timeline"
)

// Order is the fixed exhibit sequence. Navigation bars render in this order
// and transition direction is computed from positions in it.
var Order = []Key{
	Summary,
	DeadCode,
	CommentedCode,
	Todos,
	OldestCode,
	HallOfShame,
	ComplexityHeatmap,
	Timeline,
}

type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

var ErrUnknownExhibit = errors.New("unknown exhibit")

// Index returns the position of k in Order, or -1.
func Index(k Key) int {
	for i, o := range Order {
		if o == k {
			return i
		}
	}
	return -1
}

func Parse(s string) (Key, error) {
	k := Key(s)
	if Index(k) < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownExhibit, s)
	}
	return k, nil
}

// DirectionBetween is forward only when to sits strictly after from; equal
// positions resolve to backward.
func DirectionBetween(from, to Key) Direction {
	if Index(to) > Index(from) {
		return Forward
	}
	return Backward
}

// Navigator tracks the active exhibit of one result set. A new result gets a
// new Navigator rather than resetting an old one.
type Navigator struct {
	active    Key
	direction Direction
}

func New() *Navigator {
	return &Navigator{active: Summary, direction: Forward}
}

func (n *Navigator) Active() Key {
	return n.active
}

func (n *Navigator) Direction() Direction {
	return n.direction
}

func (n *Navigator) Select(target Key) error {
	if Index(target) < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownExhibit, string(target))
	}
	n.direction = DirectionBetween(n.active, target)
	n.active = target
	return nil
}

// Next selects the following exhibit; on the last one it re-selects it.
func (n *Navigator) Next() {
	i := Index(n.active) + 1
	if i >= len(Order) {
		i = len(Order) - 1
	}
	_ = n.Select(Order[i])
}

// Prev selects the preceding exhibit; on the first one it re-selects it.
func (n *Navigator) Prev() {
	i := Index(n.active) - 1
	if i < 0 {
		i = 0
	}
	_ = n.Select(Order[i])
}

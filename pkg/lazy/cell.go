package lazy

import "errors"

var (
	// ErrPromoting is the panic value when a cell is accessed while its
	// promotion function is still running.
	ErrPromoting = errors.New("lazy: cell accessed during its own promotion")

	// ErrNotThunk is the panic value when the deferred description of an
	// already promoted cell is requested.
	ErrNotThunk = errors.New("lazy: cell already holds a value")
)

type state uint8

const (
	stateThunk state = iota
	statePromoting
	stateValue
)

// Cell holds a deferred description T until it is promoted to a value V.
type Cell[V, T any] struct {
	state state
	thunk T
	value V
}

// NewThunk returns a cell in the deferred state.
func NewThunk[V, T any](t T) *Cell[V, T] {
	return &Cell[V, T]{state: stateThunk, thunk: t}
}

// NewValue returns a cell that already holds a value.
func NewValue[V, T any](v V) *Cell[V, T] {
	return &Cell[V, T]{state: stateValue, value: v}
}

// IsThunk reports whether the cell still holds its deferred description.
// A cell in the middle of promotion is not a thunk.
func (c *Cell[V, T]) IsThunk() bool {
	return c.state == stateThunk
}

// IsPromoting reports whether the cell's promotion function is running.
func (c *Cell[V, T]) IsPromoting() bool {
	return c.state == statePromoting
}

// ValueWith returns the cell's value, promoting the thunk with f first if
// needed. f runs at most once over the life of the cell: once promotion
// succeeds, later calls return the stored value and ignore f.
//
// If f returns an error the cell is left holding its original thunk and the
// error is returned. If f panics the thunk is restored before the panic
// continues. Calling ValueWith on the cell from inside f panics with
// ErrPromoting.
func (c *Cell[V, T]) ValueWith(f func(T) (V, error)) (*V, error) {
	switch c.state {
	case stateValue:
		return &c.value, nil
	case statePromoting:
		panic(ErrPromoting)
	}

	c.state = statePromoting
	defer func() {
		if c.state == statePromoting {
			c.state = stateThunk
		}
	}()

	v, err := f(c.thunk)
	if err != nil {
		c.state = stateThunk
		return nil, err
	}

	var zero T
	c.value = v
	c.thunk = zero
	c.state = stateValue
	return &c.value, nil
}

// Value returns the promoted value. It panics if the cell has not been
// promoted yet.
func (c *Cell[V, T]) Value() *V {
	switch c.state {
	case stateValue:
		return &c.value
	case statePromoting:
		panic(ErrPromoting)
	default:
		panic(errors.New("lazy: cell has not been promoted"))
	}
}

// Thunk returns the deferred description. Callers must check IsThunk first:
// it panics with ErrNotThunk on a promoted cell and with ErrPromoting during
// promotion.
func (c *Cell[V, T]) Thunk() *T {
	switch c.state {
	case stateThunk:
		return &c.thunk
	case statePromoting:
		panic(ErrPromoting)
	default:
		panic(ErrNotThunk)
	}
}

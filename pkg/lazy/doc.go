// Package lazy provides a two-state cell that holds either a deferred
// description ("thunk") or the value materialized from it.
//
// A Cell starts as a thunk and is promoted to a value at most once. Promotion
// is one-way: a Cell that holds a value never goes back to holding a thunk.
//
//	cell := lazy.NewThunk[*Live, *Desc](desc)
//	live, err := cell.ValueWith(func(d *Desc) (*Live, error) {
//	    return build(d)
//	})
//
// Cells are not safe for concurrent use. Re-entering ValueWith on the same
// cell from inside its own promotion function panics with ErrPromoting.
package lazy

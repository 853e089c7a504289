package dom

import (
	"slices"
	"strconv"

	"github.com/vango-dev/lattice/internal/errors"
)

// ChildGroups manages the logical child slots of one parent element.
//
// Each slot holds at most one anchor node. An empty slot is a dynamic region
// that currently renders nothing but keeps its position, so a node placed
// into a slot is inserted before the anchor of the nearest following
// occupied slot. Slots are never reordered or compacted.
type ChildGroups struct {
	parent Element
	slots  []Node

	// lastIsDynamic is true while the last slot was handed out by NewGroup.
	lastIsDynamic bool
	groupCount    int
}

// NewChildGroups returns empty child groups for parent.
func NewChildGroups(parent Element) *ChildGroups {
	return &ChildGroups{parent: parent}
}

// Parent returns the element whose children are managed.
func (g *ChildGroups) Parent() Element {
	return g.parent
}

// Len returns the number of slots.
func (g *ChildGroups) Len() int {
	return len(g.slots)
}

// IsSingleGroup reports whether exactly one group has been created.
func (g *ChildGroups) IsSingleGroup() bool {
	return g.groupCount == 1
}

// LastIsDynamic reports whether the last slot was created by NewGroup and
// no fixed group has been appended after it.
func (g *ChildGroups) LastIsDynamic() bool {
	return g.lastIsDynamic
}

// NewGroup reserves an empty dynamic slot and returns its index.
func (g *ChildGroups) NewGroup() int {
	g.groupCount++
	g.lastIsDynamic = true
	g.slots = append(g.slots, Node{})
	return len(g.slots) - 1
}

// AppendNewGroupSync appends child to the parent now, in a closed slot of
// its own, and returns that slot's index.
func (g *ChildGroups) AppendNewGroupSync(child NodeRef) (int, error) {
	c := toNode(child)
	if err := g.parent.AppendChildNow(c); err != nil {
		return -1, err
	}
	g.groupCount++
	g.slots = append(g.slots, c)
	// No index was handed out for this group, so it is not dynamic.
	g.lastIsDynamic = false
	return len(g.slots) - 1, nil
}

// Child returns the anchor of slot index.
func (g *ChildGroups) Child(index int) (Node, bool) {
	g.check(index)
	n := g.slots[index]
	return n, !n.IsZero()
}

// NextGroupElem returns the anchor of the first occupied slot after index.
func (g *ChildGroups) NextGroupElem(index int) (Node, bool) {
	g.check(index)
	for _, n := range g.slots[index+1:] {
		if !n.IsZero() {
			return n, true
		}
	}
	return Node{}, false
}

// InsertOnlyChild places child in slot index, which must be empty.
func (g *ChildGroups) InsertOnlyChild(index int, child NodeRef) error {
	g.check(index)
	if !g.slots[index].IsZero() {
		panic(errors.New("E003").AtPath(g.slotPath(index)))
	}
	_, err := g.UpsertOnlyChild(index, child)
	return err
}

// UpsertOnlyChild places child in slot index, removing the previous anchor
// from the parent first. It reports whether the slot was occupied.
func (g *ChildGroups) UpsertOnlyChild(index int, child NodeRef) (existed bool, err error) {
	g.check(index)
	c := toNode(child)
	old := g.slots[index]
	g.slots[index] = c

	if !old.IsZero() {
		existed = true
		if err := g.parent.RemoveChild(old); err != nil {
			return existed, err
		}
	}
	return existed, g.InsertLastChild(index, c)
}

// InsertLastChild inserts child into the parent at the position of slot
// index without recording it in the slot.
func (g *ChildGroups) InsertLastChild(index int, child NodeRef) error {
	next, _ := g.NextGroupElem(index)
	return g.parent.InsertChildBefore(child, next)
}

// RemoveChild removes the anchor of slot index from the parent and leaves
// the slot empty. Removing from an empty slot does nothing.
func (g *ChildGroups) RemoveChild(index int) error {
	g.check(index)
	old := g.slots[index]
	if old.IsZero() {
		return nil
	}
	g.slots[index] = Node{}
	return g.parent.RemoveChild(old)
}

// SetFirstChild records child as the anchor of slot index without touching
// the parent.
func (g *ChildGroups) SetFirstChild(index int, child NodeRef) {
	g.check(index)
	g.slots[index] = toNode(child)
}

// ClearFirstChild empties slot index without touching the parent.
func (g *ChildGroups) ClearFirstChild(index int) {
	g.check(index)
	g.slots[index] = Node{}
}

// Clear removes every anchor from the parent and drops all slots.
func (g *ChildGroups) Clear() error {
	var errs []error
	for _, n := range g.slots {
		if n.IsZero() {
			continue
		}
		if err := g.parent.RemoveChild(n); err != nil {
			errs = append(errs, err)
		}
	}
	g.slots = nil
	g.groupCount = 0
	g.lastIsDynamic = false
	return joinErrs(errs)
}

// ShrinkToFit releases spare slot capacity.
func (g *ChildGroups) ShrinkToFit() {
	g.slots = slices.Clip(g.slots)
}

func (g *ChildGroups) check(index int) {
	if index < 0 || index >= len(g.slots) {
		panic(errors.New("E005").AtPath(g.slotPath(index)).
			WithMismatch("index < "+strconv.Itoa(len(g.slots)), strconv.Itoa(index)))
	}
}

func (g *ChildGroups) slotPath(index int) string {
	return g.parent.Tag() + "{" + strconv.Itoa(index) + "}"
}

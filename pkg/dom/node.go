package dom

import (
	"context"
	stderrors "errors"
	"io"
	"strconv"
)

// NodeRef is anything that can be viewed as a Node: Element, Text and Node
// itself.
type NodeRef interface {
	Node() Node
}

// Node holds either an Element or a Text. The zero Node is absent.
type Node struct {
	elem *elementData
	text *textData
}

// Node implements NodeRef.
func (n Node) Node() Node {
	return n
}

// Kind returns KindElement, KindText or KindNone.
func (n Node) Kind() NodeKind {
	switch {
	case n.elem != nil:
		return KindElement
	case n.text != nil:
		return KindText
	default:
		return KindNone
	}
}

// IsZero reports whether the node is absent.
func (n Node) IsZero() bool {
	return n.elem == nil && n.text == nil
}

// Element returns the node as an Element.
func (n Node) Element() (Element, bool) {
	return Element{d: n.elem}, n.elem != nil
}

// Text returns the node as a Text.
func (n Node) Text() (Text, bool) {
	return Text{d: n.text}, n.text != nil
}

// IsSame reports whether both nodes share the same underlying node. Absent
// nodes are never the same as anything.
func (n Node) IsSame(other NodeRef) bool {
	o := toNode(other)
	switch {
	case n.elem != nil:
		return n.elem == o.elem
	case n.text != nil:
		return n.text == o.text
	default:
		return false
	}
}

// IsThunk reports whether the node is still virtual. An absent node counts
// as virtual.
func (n Node) IsThunk() bool {
	switch {
	case n.elem != nil:
		return n.elem.cell.IsThunk()
	case n.text != nil:
		return n.text.cell.IsThunk()
	default:
		return true
	}
}

// Materialize promotes the node and returns its surface object.
func (n Node) Materialize() (Handle, error) {
	return n.handle()
}

// Hydrate promotes the node by taking over existing.
func (n Node) Hydrate(ctx context.Context, existing Handle) (Handle, error) {
	switch {
	case n.elem != nil:
		return Element{d: n.elem}.Hydrate(ctx, existing)
	case n.text != nil:
		return Text{d: n.text}.Hydrate(ctx, existing)
	default:
		return nil, absentErr()
	}
}

// WriteMarkup writes the node's markup to w.
func (n Node) WriteMarkup(w io.Writer) error {
	switch {
	case n.elem != nil:
		return Element{d: n.elem}.WriteMarkup(w)
	case n.text != nil:
		return Text{d: n.text}.WriteMarkup(w)
	default:
		return nil
	}
}

// String returns the node's markup.
func (n Node) String() string {
	switch {
	case n.elem != nil:
		return Element{d: n.elem}.String()
	case n.text != nil:
		return Text{d: n.text}.String()
	default:
		return ""
	}
}

func (n Node) tree() *Tree {
	switch {
	case n.elem != nil:
		return n.elem.tree
	case n.text != nil:
		return n.text.tree
	default:
		return nil
	}
}

func (n Node) handle() (Handle, error) {
	switch {
	case n.elem != nil:
		return Element{d: n.elem}.handle()
	case n.text != nil:
		return Text{d: n.text}.handle()
	default:
		return nil, nil
	}
}

func (n Node) hydrate(existing Handle, path string) (Handle, error) {
	switch {
	case n.elem != nil:
		return Element{d: n.elem}.hydrate(existing, path)
	case n.text != nil:
		return Text{d: n.text}.hydrate(existing, path)
	default:
		return nil, absentErr()
	}
}

// step names the node as a path segment at position i among its siblings.
func (n Node) step(i int) string {
	name := "#text"
	if n.elem != nil {
		name = n.elem.tag
	}
	return name + "[" + strconv.Itoa(i) + "]"
}

func toNode(r NodeRef) Node {
	if r == nil {
		return Node{}
	}
	return r.Node()
}

// allThunks reports whether every operand is still virtual.
func allThunks(nodes ...Node) bool {
	for _, n := range nodes {
		if !n.IsThunk() {
			return false
		}
	}
	return true
}

func indexOf(nodes []Node, target Node) int {
	for i, n := range nodes {
		if n.IsSame(target) {
			return i
		}
	}
	return -1
}

func stdIs(err, target error) bool {
	return stderrors.Is(err, target)
}

func joinErrs(errs []error) error {
	return stderrors.Join(errs...)
}

package dom

import (
	"errors"
	"io"
)

// Handle is an opaque reference to an object owned by a Surface.
// Handles must be comparable.
type Handle interface{}

// NodeKind discriminates node types.
type NodeKind uint8

const (
	KindNone    NodeKind = iota // absent node
	KindElement                 // <div>, <p>, ...
	KindText                    // text content
	KindOther                   // comments, doctypes and anything else a surface holds
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// Attr is a single attribute. Names are lower case for HTML elements.
type Attr struct {
	Name  string
	Value string
}

// EventHandler receives surface events. The payload type is surface specific.
type EventHandler func(event any)

// NodeInfo describes an existing surface object.
type NodeInfo struct {
	Kind      NodeKind
	Namespace string // "" for HTML, "svg" or "math" for foreign content
	Tag       string
	Text      string
	Attrs     []Attr
}

// ErrNotChild is returned by surfaces when a reference node is not a child
// of the given parent.
var ErrNotChild = errors.New("dom: node is not a child of the parent")

// Surface is a rendering target that holds live node objects.
//
// Structural calls move nodes: appending or inserting a node that already
// has a parent detaches it first.
type Surface interface {
	// CreateElement creates a detached element.
	CreateElement(namespace, tag string) (Handle, error)

	// CreateText creates a detached text node.
	CreateText(text string) (Handle, error)

	// AppendChild makes child the last child of parent.
	AppendChild(parent, child Handle) error

	// InsertBefore inserts child before next. A nil next, or a next that is
	// not a child of parent, appends child.
	InsertBefore(parent, child, next Handle) error

	// RemoveChild detaches child. It is a no-op when child is not a child of
	// parent.
	RemoveChild(parent, child Handle) error

	// ReplaceChild puts newChild where oldChild is. It returns ErrNotChild
	// when oldChild is not a child of parent.
	ReplaceChild(parent, newChild, oldChild Handle) error

	// ClearChildren detaches every child of parent.
	ClearChildren(parent Handle) error

	SetAttribute(elem Handle, name, value string) error
	RemoveAttribute(elem Handle, name string) error
	AddEventListener(elem Handle, event string, fn EventHandler) error

	// SetText replaces the content of a text node.
	SetText(text Handle, value string) error

	// Inspect describes a node.
	Inspect(node Handle) (NodeInfo, error)

	// Children returns the children of parent in order.
	Children(parent Handle) ([]Handle, error)

	// SplitText truncates text at byte offset and inserts a new text node
	// holding the remainder right after it. The new node is returned.
	SplitText(text Handle, offset int) (Handle, error)

	// Serialize writes the markup of node and its descendants.
	Serialize(w io.Writer, node Handle) error
}

package dom

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/lazy"
)

type elementData struct {
	tree      *Tree
	namespace string
	tag       string
	cell      *lazy.Cell[liveElement, *virtElement]
}

// virtElement is the in-memory description of an element.
type virtElement struct {
	attrs    []Attr
	events   []eventBinding
	effects  []func(Handle)
	children []Node
}

type eventBinding struct {
	name string
	fn   EventHandler
}

// liveElement is an element backed by a surface object.
type liveElement struct {
	handle Handle
}

// Element is a handle to an element node. The zero Element is not usable;
// create elements with Tree.Element.
type Element struct {
	d *elementData
}

// Node returns the element as a Node.
func (e Element) Node() Node {
	return Node{elem: e.d}
}

// Tree returns the tree the element belongs to.
func (e Element) Tree() *Tree {
	return e.d.tree
}

// Tag returns the element's tag name.
func (e Element) Tag() string {
	return e.d.tag
}

// Namespace returns the element's namespace, "" for HTML.
func (e Element) Namespace() string {
	return e.d.namespace
}

// IsThunk reports whether the element is still virtual.
func (e Element) IsThunk() bool {
	return e.d.cell.IsThunk()
}

// IsSame reports whether other refers to the same element.
func (e Element) IsSame(other NodeRef) bool {
	return e.Node().IsSame(other)
}

// AppendChildNow makes child the last child of e.
func (e Element) AppendChildNow(child NodeRef) error {
	c := toNode(child)
	e.d.tree.mustOwn(c)

	if allThunks(e.Node(), c) {
		e.virt().appendChild(c)
		return nil
	}

	parent, child2, err := e.handles(c)
	if err != nil {
		return err
	}
	return e.d.tree.surfaceErr("AppendChild", e.d.tree.surface.AppendChild(parent, child2))
}

// InsertChildBefore inserts child immediately before next. If next is nil,
// absent or not a child of e, child is appended.
func (e Element) InsertChildBefore(child, next NodeRef) error {
	c, n := toNode(child), toNode(next)
	e.d.tree.mustOwn(c)
	if !n.IsZero() {
		e.d.tree.mustOwn(n)
	}

	if allThunks(e.Node(), c, n) {
		e.virt().insertChildBefore(c, n)
		return nil
	}

	parent, ch, err := e.handles(c)
	if err != nil {
		return err
	}
	var nh Handle
	if !n.IsZero() {
		if nh, err = n.handle(); err != nil {
			return err
		}
	}
	return e.d.tree.surfaceErr("InsertBefore", e.d.tree.surface.InsertBefore(parent, ch, nh))
}

// ReplaceChild puts newChild in oldChild's position. It fails with E062
// when oldChild is not a child of e.
func (e Element) ReplaceChild(newChild, oldChild NodeRef) error {
	nc, oc := toNode(newChild), toNode(oldChild)
	e.d.tree.mustOwn(nc)
	e.d.tree.mustOwn(oc)

	if allThunks(e.Node(), nc, oc) {
		if !e.virt().replaceChild(nc, oc) {
			return errors.New("E062").AtPath(e.d.tag)
		}
		return nil
	}

	parent, nh, err := e.handles(nc)
	if err != nil {
		return err
	}
	oh, err := oc.handle()
	if err != nil {
		return err
	}
	return e.d.tree.surfaceErr("ReplaceChild", e.d.tree.surface.ReplaceChild(parent, nh, oh))
}

// RemoveChild detaches child from e. Removing a node that is not a child
// is a no-op.
func (e Element) RemoveChild(child NodeRef) error {
	c := toNode(child)
	e.d.tree.mustOwn(c)

	if allThunks(e.Node(), c) {
		e.virt().removeChild(c)
		return nil
	}

	parent, ch, err := e.handles(c)
	if err != nil {
		return err
	}
	return e.d.tree.surfaceErr("RemoveChild", e.d.tree.surface.RemoveChild(parent, ch))
}

// ClearChildren removes every child of e.
func (e Element) ClearChildren() error {
	if e.IsThunk() {
		e.virt().children = nil
		return nil
	}
	h := e.live().handle
	return e.d.tree.surfaceErr("ClearChildren", e.d.tree.surface.ClearChildren(h))
}

// SetAttribute sets an attribute, keeping the position of an existing
// attribute with the same name.
func (e Element) SetAttribute(name, value string) error {
	if e.IsThunk() {
		e.virt().setAttribute(name, value)
		return nil
	}
	h := e.live().handle
	return e.d.tree.surfaceErr("SetAttribute", e.d.tree.surface.SetAttribute(h, name, value))
}

// RemoveAttribute removes an attribute if present.
func (e Element) RemoveAttribute(name string) error {
	if e.IsThunk() {
		e.virt().removeAttribute(name)
		return nil
	}
	h := e.live().handle
	return e.d.tree.surfaceErr("RemoveAttribute", e.d.tree.surface.RemoveAttribute(h, name))
}

// On registers an event handler. Virtual elements keep the registration
// until they are materialized or hydrated.
func (e Element) On(event string, fn EventHandler) error {
	if e.IsThunk() {
		v := e.virt()
		v.events = append(v.events, eventBinding{name: event, fn: fn})
		return nil
	}
	h := e.live().handle
	return e.d.tree.surfaceErr("AddEventListener", e.d.tree.surface.AddEventListener(h, event, fn))
}

// Effect runs fn against the element's surface object. On a live element it
// runs now. On a virtual element it runs once, right after the element is
// materialized or hydrated, and never if that does not happen.
func (e Element) Effect(fn func(Handle)) {
	if e.IsThunk() {
		v := e.virt()
		v.effects = append(v.effects, fn)
		return
	}
	fn(e.live().handle)
}

// Materialize promotes the element and its children and returns the
// element's surface object. Materializing a live element returns its
// existing object.
func (e Element) Materialize() (Handle, error) {
	return e.handle()
}

// ShrinkToFit releases spare capacity held by the virtual description.
func (e Element) ShrinkToFit() {
	if !e.IsThunk() {
		return
	}
	v := e.virt()
	v.attrs = slices.Clip(v.attrs)
	v.events = slices.Clip(v.events)
	v.children = slices.Clip(v.children)
}

// Children returns the children of a virtual element. Live elements return
// nil; their children live on the surface.
func (e Element) Children() []Node {
	if !e.IsThunk() {
		return nil
	}
	return slices.Clone(e.virt().children)
}

// Attribute returns the value of an attribute of a virtual element.
func (e Element) Attribute(name string) (string, bool) {
	if !e.IsThunk() {
		info, err := e.d.tree.surface.Inspect(e.live().handle)
		if err != nil {
			e.d.tree.logger.Debug("inspect element failed", "tag", e.d.tag, "attribute", name, "error", err)
			return "", false
		}
		return findAttr(info.Attrs, name)
	}
	return findAttr(e.virt().attrs, name)
}

// WriteMarkup writes the element's markup to w.
func (e Element) WriteMarkup(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := e.writeMarkup(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// String returns the element's markup, or "" if it cannot be serialized.
func (e Element) String() string {
	var b strings.Builder
	if err := e.WriteMarkup(&b); err != nil {
		e.d.tree.logger.Debug("serialize element failed", "tag", e.d.tag, "error", err)
		return ""
	}
	return b.String()
}

func (e Element) virt() *virtElement {
	if !e.d.cell.IsThunk() {
		panic(errors.New("E002").AtPath(e.d.tag))
	}
	return *e.d.cell.Thunk()
}

func (e Element) live() *liveElement {
	return e.d.cell.Value()
}

// handle promotes the element if needed and returns its surface object.
func (e Element) handle() (Handle, error) {
	d := e.d
	if d.cell.IsPromoting() {
		panic(errors.New("E001").AtPath(d.tag))
	}

	var effects []func(Handle)
	live, err := d.cell.ValueWith(func(v *virtElement) (liveElement, error) {
		l, err := d.tree.materializeElement(d, v)
		if err == nil {
			effects = v.effects
		}
		return l, err
	})
	if err != nil {
		return nil, err
	}
	for _, fn := range effects {
		fn(live.handle)
	}
	return live.handle, nil
}

// handles promotes e and c and returns both surface objects.
func (e Element) handles(c Node) (Handle, Handle, error) {
	parent, err := e.handle()
	if err != nil {
		return nil, nil, err
	}
	child, err := c.handle()
	if err != nil {
		return nil, nil, err
	}
	return parent, child, nil
}

func (t *Tree) materializeElement(d *elementData, v *virtElement) (liveElement, error) {
	s, err := t.requireSurface()
	if err != nil {
		return liveElement{}, err
	}

	h, err := s.CreateElement(d.namespace, d.tag)
	if err != nil {
		return liveElement{}, t.surfaceErr("CreateElement", err)
	}
	for _, a := range v.attrs {
		if err := s.SetAttribute(h, a.Name, a.Value); err != nil {
			return liveElement{}, t.surfaceErr("SetAttribute", err)
		}
	}
	for _, ev := range v.events {
		if err := s.AddEventListener(h, ev.name, ev.fn); err != nil {
			return liveElement{}, t.surfaceErr("AddEventListener", err)
		}
	}
	for _, c := range v.children {
		ch, err := c.handle()
		if err != nil {
			return liveElement{}, err
		}
		if err := s.AppendChild(h, ch); err != nil {
			return liveElement{}, t.surfaceErr("AppendChild", err)
		}
	}

	t.observer.NodeMaterialized(KindElement)
	t.logger.Debug("materialized element", "tag", d.tag, "children", len(v.children))
	return liveElement{handle: h}, nil
}

func (v *virtElement) appendChild(c Node) {
	if i := indexOf(v.children, c); i >= 0 {
		v.children = slices.Delete(v.children, i, i+1)
	}
	v.children = append(v.children, c)
}

func (v *virtElement) insertChildBefore(c, next Node) {
	if c.IsSame(next) {
		return
	}
	if i := indexOf(v.children, c); i >= 0 {
		v.children = slices.Delete(v.children, i, i+1)
	}
	i := -1
	if !next.IsZero() {
		i = indexOf(v.children, next)
	}
	if i < 0 {
		v.children = append(v.children, c)
		return
	}
	v.children = slices.Insert(v.children, i, c)
}

func (v *virtElement) replaceChild(nc, oc Node) bool {
	i := indexOf(v.children, oc)
	if i < 0 {
		return false
	}
	if nc.IsSame(oc) {
		return true
	}
	if j := indexOf(v.children, nc); j >= 0 {
		v.children = slices.Delete(v.children, j, j+1)
		if j < i {
			i--
		}
	}
	v.children[i] = nc
	return true
}

func (v *virtElement) removeChild(c Node) {
	if i := indexOf(v.children, c); i >= 0 {
		v.children = slices.Delete(v.children, i, i+1)
	}
}

func (v *virtElement) setAttribute(name, value string) {
	for i := range v.attrs {
		if v.attrs[i].Name == name {
			v.attrs[i].Value = value
			return
		}
	}
	v.attrs = append(v.attrs, Attr{Name: name, Value: value})
}

func (v *virtElement) removeAttribute(name string) {
	v.attrs = slices.DeleteFunc(v.attrs, func(a Attr) bool {
		return a.Name == name
	})
}

func findAttr(attrs []Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func absentErr() error {
	return errors.New("E006")
}

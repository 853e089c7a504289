package htmlsurface

import (
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/lattice/pkg/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MutationType identifies a change made through the surface.
type MutationType int

const (
	Insert MutationType = iota + 1
	Remove
	Replace
	ChAttr
	RmAttr
	SetText
)

func (t MutationType) String() string {
	switch t {
	case Insert:
		return "Insert"
	case Remove:
		return "Remove"
	case Replace:
		return "Replace"
	case ChAttr:
		return "Attr"
	case RmAttr:
		return "RmAttr"
	case SetText:
		return "Text"
	}
	return ""
}

// Mutation describes one change to an attached or detached node.
type Mutation struct {
	Type MutationType
	Node *html.Node
	Name string
}

// Option configures a Surface.
type Option func(*Surface)

// WithMutationHook calls fn after every change to the node tree.
func WithMutationHook(fn func(Mutation)) Option {
	return func(s *Surface) {
		s.onMutation = fn
	}
}

// Surface is a dom.Surface whose objects are *html.Node values.
type Surface struct {
	listeners  map[*html.Node]map[string][]dom.EventHandler
	onMutation func(Mutation)
}

var _ dom.Surface = (*Surface)(nil)

// New creates a surface.
func New(opts ...Option) *Surface {
	s := &Surface{
		listeners: make(map[*html.Node]map[string][]dom.EventHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Surface) mutated(t MutationType, n *html.Node, name string) {
	if s.onMutation != nil {
		s.onMutation(Mutation{Type: t, Node: n, Name: name})
	}
}

func node(h dom.Handle) (*html.Node, error) {
	n, ok := h.(*html.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("htmlsurface: handle %T is not an *html.Node", h)
	}
	return n, nil
}

func nodes(hs ...dom.Handle) ([]*html.Node, error) {
	out := make([]*html.Node, len(hs))
	for i, h := range hs {
		n, err := node(h)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// CreateElement creates a detached element. namespace is "" for HTML or a
// foreign namespace such as "svg".
func (s *Surface) CreateElement(namespace, tag string) (dom.Handle, error) {
	n := &html.Node{
		Type:      html.ElementNode,
		Data:      tag,
		Namespace: namespace,
	}
	if namespace == "" {
		n.DataAtom = atom.Lookup([]byte(tag))
	}
	return n, nil
}

// CreateText creates a detached text node.
func (s *Surface) CreateText(text string) (dom.Handle, error) {
	return &html.Node{Type: html.TextNode, Data: text}, nil
}

// AppendChild moves child to the end of parent.
func (s *Surface) AppendChild(parent, child dom.Handle) error {
	ns, err := nodes(parent, child)
	if err != nil {
		return err
	}
	p, c := ns[0], ns[1]
	if p.Type == html.TextNode {
		return fmt.Errorf("htmlsurface: text node cannot have children")
	}
	detach(c)
	p.AppendChild(c)
	s.mutated(Insert, c, "")
	return nil
}

// InsertBefore moves child before next. A nil next, or one that belongs to
// another parent, appends.
func (s *Surface) InsertBefore(parent, child, next dom.Handle) error {
	if next == nil {
		return s.AppendChild(parent, child)
	}
	ns, err := nodes(parent, child, next)
	if err != nil {
		return err
	}
	p, c, ref := ns[0], ns[1], ns[2]
	if ref.Parent != p {
		return s.AppendChild(parent, child)
	}
	if c == ref {
		return nil
	}
	detach(c)
	p.InsertBefore(c, ref)
	s.mutated(Insert, c, "")
	return nil
}

// RemoveChild detaches child from parent. It does nothing if child has
// another parent.
func (s *Surface) RemoveChild(parent, child dom.Handle) error {
	ns, err := nodes(parent, child)
	if err != nil {
		return err
	}
	if ns[1].Parent != ns[0] {
		return nil
	}
	ns[0].RemoveChild(ns[1])
	s.mutated(Remove, ns[1], "")
	return nil
}

// ReplaceChild puts newChild where oldChild is.
func (s *Surface) ReplaceChild(parent, newChild, oldChild dom.Handle) error {
	ns, err := nodes(parent, newChild, oldChild)
	if err != nil {
		return err
	}
	p, nc, oc := ns[0], ns[1], ns[2]
	if oc.Parent != p {
		return dom.ErrNotChild
	}
	if nc == oc {
		return nil
	}
	detach(nc)
	p.InsertBefore(nc, oc)
	p.RemoveChild(oc)
	s.mutated(Replace, nc, "")
	return nil
}

// ClearChildren detaches every child of parent.
func (s *Surface) ClearChildren(parent dom.Handle) error {
	p, err := node(parent)
	if err != nil {
		return err
	}
	for c := p.FirstChild; c != nil; c = p.FirstChild {
		p.RemoveChild(c)
		s.mutated(Remove, c, "")
	}
	return nil
}

// SetAttribute sets an attribute in place or appends it.
func (s *Surface) SetAttribute(elem dom.Handle, name, value string) error {
	n, err := node(elem)
	if err != nil {
		return err
	}
	if n.Type != html.ElementNode {
		return fmt.Errorf("htmlsurface: cannot set attribute %q on a non-element", name)
	}
	defer s.mutated(ChAttr, n, name)
	for i, a := range n.Attr {
		if attrName(a) == name {
			n.Attr[i].Val = value
			return nil
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

// RemoveAttribute removes an attribute if present.
func (s *Surface) RemoveAttribute(elem dom.Handle, name string) error {
	n, err := node(elem)
	if err != nil {
		return err
	}
	for i, a := range n.Attr {
		if attrName(a) == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			s.mutated(RmAttr, n, name)
			return nil
		}
	}
	return nil
}

// AddEventListener records fn for Dispatch.
func (s *Surface) AddEventListener(elem dom.Handle, event string, fn dom.EventHandler) error {
	n, err := node(elem)
	if err != nil {
		return err
	}
	byEvent := s.listeners[n]
	if byEvent == nil {
		byEvent = make(map[string][]dom.EventHandler)
		s.listeners[n] = byEvent
	}
	byEvent[event] = append(byEvent[event], fn)
	return nil
}

// Dispatch calls the listeners registered for event on n in registration
// order and returns how many ran.
func (s *Surface) Dispatch(n *html.Node, event string, payload any) int {
	fns := s.listeners[n][event]
	for _, fn := range fns {
		fn(payload)
	}
	return len(fns)
}

// Listeners returns the number of listeners registered for event on n.
func (s *Surface) Listeners(n *html.Node, event string) int {
	return len(s.listeners[n][event])
}

// SetText replaces the content of a text node.
func (s *Surface) SetText(text dom.Handle, value string) error {
	n, err := node(text)
	if err != nil {
		return err
	}
	if n.Type != html.TextNode {
		return fmt.Errorf("htmlsurface: SetText on a non-text node")
	}
	n.Data = value
	s.mutated(SetText, n, "")
	return nil
}

// Inspect describes n.
func (s *Surface) Inspect(h dom.Handle) (dom.NodeInfo, error) {
	n, err := node(h)
	if err != nil {
		return dom.NodeInfo{}, err
	}
	switch n.Type {
	case html.ElementNode:
		info := dom.NodeInfo{
			Kind:      dom.KindElement,
			Namespace: n.Namespace,
			Tag:       n.Data,
			Attrs:     make([]dom.Attr, len(n.Attr)),
		}
		for i, a := range n.Attr {
			info.Attrs[i] = dom.Attr{Name: attrName(a), Value: a.Val}
		}
		return info, nil
	case html.TextNode:
		return dom.NodeInfo{Kind: dom.KindText, Text: n.Data}, nil
	default:
		return dom.NodeInfo{Kind: dom.KindOther}, nil
	}
}

// Children returns the children of parent in order.
func (s *Surface) Children(parent dom.Handle) ([]dom.Handle, error) {
	p, err := node(parent)
	if err != nil {
		return nil, err
	}
	var out []dom.Handle
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out, nil
}

// SplitText keeps the first offset bytes in text and moves the rest into a
// new sibling text node, which is returned.
func (s *Surface) SplitText(text dom.Handle, offset int) (dom.Handle, error) {
	n, err := node(text)
	if err != nil {
		return nil, err
	}
	if n.Type != html.TextNode || offset < 0 || offset > len(n.Data) {
		return nil, fmt.Errorf("htmlsurface: cannot split at %d", offset)
	}
	rest := &html.Node{Type: html.TextNode, Data: n.Data[offset:]}
	n.Data = n.Data[:offset]
	if n.Parent != nil {
		n.Parent.InsertBefore(rest, n.NextSibling)
	}
	return rest, nil
}

// Serialize renders n with html.Render.
func (s *Surface) Serialize(w io.Writer, h dom.Handle) error {
	n, err := node(h)
	if err != nil {
		return err
	}
	return html.Render(w, n)
}

// Forget drops listeners registered on n and its descendants.
func (s *Surface) Forget(n *html.Node) {
	delete(s.listeners, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.Forget(c)
	}
}

func attrName(a html.Attribute) string {
	if a.Namespace == "" {
		return a.Key
	}
	return a.Namespace + ":" + a.Key
}

// Render returns the markup of n, or "" if it cannot be rendered.
func Render(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

package dom

import (
	stderrors "errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/net/html"
)

// fakeNode is a node of recordingSurface.
type fakeNode struct {
	kind      NodeKind
	namespace string
	tag       string
	text      string
	attrs     []Attr
	listeners map[string][]EventHandler
	parent    *fakeNode
	children  []*fakeNode
}

// recordingSurface is an in-memory Surface that counts every call.
type recordingSurface struct {
	calls    map[string]int
	failOn   string
	onCreate func(tag string)
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{calls: map[string]int{}}
}

func (s *recordingSurface) total() int {
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *recordingSurface) record(op string) error {
	s.calls[op]++
	if op == s.failOn {
		return fmt.Errorf("%s rejected", op)
	}
	return nil
}

func (s *recordingSurface) CreateElement(namespace, tag string) (Handle, error) {
	if err := s.record("CreateElement"); err != nil {
		return nil, err
	}
	if s.onCreate != nil {
		s.onCreate(tag)
	}
	return &fakeNode{kind: KindElement, namespace: namespace, tag: tag}, nil
}

func (s *recordingSurface) CreateText(text string) (Handle, error) {
	if err := s.record("CreateText"); err != nil {
		return nil, err
	}
	return &fakeNode{kind: KindText, text: text}, nil
}

func (s *recordingSurface) AppendChild(parent, child Handle) error {
	if err := s.record("AppendChild"); err != nil {
		return err
	}
	p, c := parent.(*fakeNode), child.(*fakeNode)
	detach(c)
	c.parent = p
	p.children = append(p.children, c)
	return nil
}

func (s *recordingSurface) InsertBefore(parent, child, next Handle) error {
	if err := s.record("InsertBefore"); err != nil {
		return err
	}
	p, c := parent.(*fakeNode), child.(*fakeNode)
	detach(c)
	c.parent = p
	i := -1
	if n, ok := next.(*fakeNode); ok && n != nil {
		i = slices.Index(p.children, n)
	}
	if i < 0 {
		p.children = append(p.children, c)
		return nil
	}
	p.children = slices.Insert(p.children, i, c)
	return nil
}

func (s *recordingSurface) RemoveChild(parent, child Handle) error {
	if err := s.record("RemoveChild"); err != nil {
		return err
	}
	if c := child.(*fakeNode); c.parent == parent.(*fakeNode) {
		detach(c)
	}
	return nil
}

func (s *recordingSurface) ReplaceChild(parent, newChild, oldChild Handle) error {
	if err := s.record("ReplaceChild"); err != nil {
		return err
	}
	p, nc, oc := parent.(*fakeNode), newChild.(*fakeNode), oldChild.(*fakeNode)
	if oc.parent != p {
		return ErrNotChild
	}
	if nc == oc {
		return nil
	}
	detach(nc)
	i := slices.Index(p.children, oc)
	p.children[i] = nc
	nc.parent = p
	oc.parent = nil
	return nil
}

func (s *recordingSurface) ClearChildren(parent Handle) error {
	if err := s.record("ClearChildren"); err != nil {
		return err
	}
	p := parent.(*fakeNode)
	for _, c := range p.children {
		c.parent = nil
	}
	p.children = nil
	return nil
}

func (s *recordingSurface) SetAttribute(elem Handle, name, value string) error {
	if err := s.record("SetAttribute"); err != nil {
		return err
	}
	n := elem.(*fakeNode)
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return nil
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	return nil
}

func (s *recordingSurface) RemoveAttribute(elem Handle, name string) error {
	if err := s.record("RemoveAttribute"); err != nil {
		return err
	}
	n := elem.(*fakeNode)
	n.attrs = slices.DeleteFunc(n.attrs, func(a Attr) bool { return a.Name == name })
	return nil
}

func (s *recordingSurface) AddEventListener(elem Handle, event string, fn EventHandler) error {
	if err := s.record("AddEventListener"); err != nil {
		return err
	}
	n := elem.(*fakeNode)
	if n.listeners == nil {
		n.listeners = map[string][]EventHandler{}
	}
	n.listeners[event] = append(n.listeners[event], fn)
	return nil
}

func (s *recordingSurface) SetText(text Handle, value string) error {
	if err := s.record("SetText"); err != nil {
		return err
	}
	text.(*fakeNode).text = value
	return nil
}

func (s *recordingSurface) Inspect(node Handle) (NodeInfo, error) {
	n, ok := node.(*fakeNode)
	if !ok || n == nil {
		return NodeInfo{}, stderrors.New("not a fake node")
	}
	if s.failOn == "Inspect" {
		return NodeInfo{}, stderrors.New("Inspect rejected")
	}
	return NodeInfo{
		Kind:      n.kind,
		Namespace: n.namespace,
		Tag:       n.tag,
		Text:      n.text,
		Attrs:     slices.Clone(n.attrs),
	}, nil
}

func (s *recordingSurface) Children(parent Handle) ([]Handle, error) {
	p := parent.(*fakeNode)
	out := make([]Handle, len(p.children))
	for i, c := range p.children {
		out[i] = c
	}
	return out, nil
}

func (s *recordingSurface) SplitText(text Handle, offset int) (Handle, error) {
	if err := s.record("SplitText"); err != nil {
		return nil, err
	}
	n := text.(*fakeNode)
	rest := &fakeNode{kind: KindText, text: n.text[offset:], parent: n.parent}
	n.text = n.text[:offset]
	if p := n.parent; p != nil {
		i := slices.Index(p.children, n)
		p.children = slices.Insert(p.children, i+1, rest)
	}
	return rest, nil
}

func (s *recordingSurface) Serialize(w io.Writer, node Handle) error {
	n := node.(*fakeNode)
	switch n.kind {
	case KindText:
		_, err := io.WriteString(w, html.EscapeString(n.text))
		return err
	case KindOther:
		_, err := io.WriteString(w, "<!---->")
		return err
	}
	io.WriteString(w, "<"+n.tag)
	for _, a := range n.attrs {
		io.WriteString(w, " "+a.Name+`="`+html.EscapeString(a.Value)+`"`)
	}
	io.WriteString(w, ">")
	for _, c := range n.children {
		if err := s.Serialize(w, c); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+n.tag+">")
	return err
}

func detach(n *fakeNode) {
	p := n.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
}

// el builds a physical element for hydration tests.
func el(tag string, children ...*fakeNode) *fakeNode {
	n := &fakeNode{kind: KindElement, tag: tag}
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

func txt(s string) *fakeNode {
	return &fakeNode{kind: KindText, text: s}
}

func comment() *fakeNode {
	return &fakeNode{kind: KindOther}
}

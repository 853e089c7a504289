package dom

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/vango-dev/lattice/internal/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Hydrate promotes the element by taking over existing and its subtree
// instead of creating new surface objects. The physical structure must match
// the description: tags and text are checked, attributes are made to match,
// event handlers and effects are attached. Comments are skipped. Adjacent
// virtual text nodes may share one physical text node, which is split.
//
// The whole subtree is matched before anything is promoted. On a mismatch a
// hydration error (E040 to E044) carrying the tree path is returned, the
// element and its descendants stay virtual and existing is left untouched.
func (e Element) Hydrate(ctx context.Context, existing Handle) (Handle, error) {
	return e.d.tree.hydrateRoot(ctx, e.Node(), existing)
}

// Hydrate promotes the text node by taking over existing, which must be a
// text node with the same content.
func (t Text) Hydrate(ctx context.Context, existing Handle) (Handle, error) {
	return t.d.tree.hydrateRoot(ctx, t.Node(), existing)
}

func (t *Tree) hydrateRoot(ctx context.Context, n Node, existing Handle) (Handle, error) {
	_, span := t.tracer.Start(ctx, "dom.Hydrate")
	defer span.End()

	root := "#text"
	if n.elem != nil {
		root = n.elem.tag
	}
	span.SetAttributes(attribute.String("dom.root", root))

	if _, err := t.requireSurface(); err != nil {
		return nil, err
	}
	var h Handle
	err := t.checkRoot(n, existing, root)
	if err == nil {
		h, err = n.hydrate(existing, root)
	}
	if err != nil {
		code := "E060"
		var e *errors.Error
		if stderrors.As(err, &e) {
			code = e.Code
		}
		t.observer.HydrationFailed(code)
		t.logger.Debug("hydration failed", "root", root, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	t.logger.Debug("hydrated", "root", root)
	return h, nil
}

func (e Element) hydrate(existing Handle, path string) (Handle, error) {
	d := e.d
	if d.cell.IsPromoting() {
		panic(errors.New("E001").AtPath(path))
	}

	var effects []func(Handle)
	live, err := d.cell.ValueWith(func(v *virtElement) (liveElement, error) {
		if err := d.tree.hydrateElement(d, v, existing, path); err != nil {
			return liveElement{}, err
		}
		effects = v.effects
		return liveElement{handle: existing}, nil
	})
	if err != nil {
		return nil, err
	}
	for _, fn := range effects {
		fn(live.handle)
	}
	return live.handle, nil
}

func (t *Tree) hydrateElement(d *elementData, v *virtElement, existing Handle, path string) error {
	s := t.surface
	info, err := s.Inspect(existing)
	if err != nil {
		return t.surfaceErr("Inspect", err)
	}
	if info.Kind != KindElement {
		return errors.New("E040").AtPath(path).WithMismatch("element <"+d.tag+">", info.Kind.String())
	}
	if info.Tag != d.tag || info.Namespace != d.namespace {
		return errors.New("E041").AtPath(path).WithMismatch(qualified(d.namespace, d.tag), qualified(info.Namespace, info.Tag))
	}

	if err := t.reconcileAttrs(existing, info.Attrs, v.attrs); err != nil {
		return err
	}
	for _, ev := range v.events {
		if err := s.AddEventListener(existing, ev.name, ev.fn); err != nil {
			return t.surfaceErr("AddEventListener", err)
		}
	}

	phys, err := s.Children(existing)
	if err != nil {
		return t.surfaceErr("Children", err)
	}

	pi := 0
	next := func() (Handle, NodeInfo, bool, error) {
		for pi < len(phys) {
			ci, err := s.Inspect(phys[pi])
			if err != nil {
				return nil, NodeInfo{}, false, t.surfaceErr("Inspect", err)
			}
			if ci.Kind == KindOther {
				pi++
				continue
			}
			return phys[pi], ci, true, nil
		}
		return nil, NodeInfo{}, false, nil
	}

	for i, c := range v.children {
		childPath := path + "/" + c.step(i)
		ph, pinfo, ok, err := next()
		if err != nil {
			return err
		}

		if !c.IsThunk() {
			ch, err := c.handle()
			if err != nil {
				return err
			}
			if !ok {
				if err := s.AppendChild(existing, ch); err != nil {
					return t.surfaceErr("AppendChild", err)
				}
				continue
			}
			if err := s.ReplaceChild(existing, ch, ph); err != nil {
				return t.surfaceErr("ReplaceChild", err)
			}
			pi++
			continue
		}

		if c.elem != nil {
			if !ok {
				return errors.New("E043").AtPath(childPath).WithMismatch("<"+c.elem.tag+">", "nothing")
			}
			if _, err := (Element{d: c.elem}).hydrate(ph, childPath); err != nil {
				return err
			}
			pi++
			continue
		}

		txt := Text{d: c.text}
		want := txt.Data()
		if want == "" {
			// The parser never produces empty text nodes.
			h, err := txt.handle()
			if err != nil {
				return err
			}
			if err := s.InsertBefore(existing, h, ph); err != nil {
				return t.surfaceErr("InsertBefore", err)
			}
			continue
		}
		if !ok {
			return errors.New("E043").AtPath(childPath).WithMismatch(quote(want), "nothing")
		}
		rest, err := txt.hydrateSplit(ph, pinfo, childPath)
		if err != nil {
			return err
		}
		if rest != nil {
			phys[pi] = rest
			continue
		}
		pi++
	}

	if _, pinfo, ok, err := next(); err != nil {
		return err
	} else if ok {
		return errors.New("E044").AtPath(path).WithMismatch("end of children", describe(pinfo))
	}

	t.observer.NodeHydrated(KindElement)
	return nil
}

// checkRoot matches the whole subtree of n against existing before any cell
// is promoted or the surface is changed, so a mismatch leaves both the
// description and the physical tree as they were.
func (t *Tree) checkRoot(n Node, existing Handle, path string) error {
	if n.elem == nil || !n.elem.cell.IsThunk() {
		return nil
	}
	return t.checkElement(n.elem, existing, path)
}

func (t *Tree) checkElement(d *elementData, existing Handle, path string) error {
	if d.cell.IsPromoting() {
		panic(errors.New("E001").AtPath(path))
	}
	v := Element{d: d}.virt()

	s := t.surface
	info, err := s.Inspect(existing)
	if err != nil {
		return t.surfaceErr("Inspect", err)
	}
	if info.Kind != KindElement {
		return errors.New("E040").AtPath(path).WithMismatch("element <"+d.tag+">", info.Kind.String())
	}
	if info.Tag != d.tag || info.Namespace != d.namespace {
		return errors.New("E041").AtPath(path).WithMismatch(qualified(d.namespace, d.tag), qualified(info.Namespace, info.Tag))
	}

	phys, err := s.Children(existing)
	if err != nil {
		return t.surfaceErr("Children", err)
	}

	// off is how much of the text at phys[pi] earlier siblings have claimed.
	pi, off := 0, 0
	next := func() (Handle, NodeInfo, bool, error) {
		for pi < len(phys) {
			ci, err := s.Inspect(phys[pi])
			if err != nil {
				return nil, NodeInfo{}, false, t.surfaceErr("Inspect", err)
			}
			if ci.Kind == KindOther {
				pi++
				continue
			}
			ci.Text = ci.Text[min(off, len(ci.Text)):]
			return phys[pi], ci, true, nil
		}
		return nil, NodeInfo{}, false, nil
	}
	advance := func() {
		pi++
		off = 0
	}

	for i, c := range v.children {
		childPath := path + "/" + c.step(i)
		ph, pinfo, ok, err := next()
		if err != nil {
			return err
		}

		if !c.IsThunk() {
			if ok {
				advance()
			}
			continue
		}

		if c.elem != nil {
			if !ok {
				return errors.New("E043").AtPath(childPath).WithMismatch("<"+c.elem.tag+">", "nothing")
			}
			if err := t.checkElement(c.elem, ph, childPath); err != nil {
				return err
			}
			advance()
			continue
		}

		want := Text{d: c.text}.Data()
		if want == "" {
			continue
		}
		if !ok {
			return errors.New("E043").AtPath(childPath).WithMismatch(quote(want), "nothing")
		}
		if pinfo.Kind != KindText {
			return errors.New("E040").AtPath(childPath).WithMismatch("text", describe(pinfo))
		}
		switch {
		case pinfo.Text == want:
			advance()
		case len(pinfo.Text) > len(want) && strings.HasPrefix(pinfo.Text, want):
			off += len(want)
		default:
			return errors.New("E042").AtPath(childPath).WithMismatch(quote(want), quote(pinfo.Text))
		}
	}

	if _, pinfo, ok, err := next(); err != nil {
		return err
	} else if ok {
		return errors.New("E044").AtPath(path).WithMismatch("end of children", describe(pinfo))
	}
	return nil
}

// reconcileAttrs makes the physical attributes match the description.
func (t *Tree) reconcileAttrs(h Handle, have, want []Attr) error {
	for _, a := range have {
		if _, ok := findAttr(want, a.Name); !ok {
			if err := t.surface.RemoveAttribute(h, a.Name); err != nil {
				return t.surfaceErr("RemoveAttribute", err)
			}
		}
	}
	for _, a := range want {
		if v, ok := findAttr(have, a.Name); ok && v == a.Value {
			continue
		}
		if err := t.surface.SetAttribute(h, a.Name, a.Value); err != nil {
			return t.surfaceErr("SetAttribute", err)
		}
	}
	return nil
}

func (t Text) hydrate(existing Handle, path string) (Handle, error) {
	info, err := t.d.tree.surface.Inspect(existing)
	if err != nil {
		return nil, t.d.tree.surfaceErr("Inspect", err)
	}
	if _, err := t.hydrateSplit(existing, info, path); err != nil {
		return nil, err
	}
	return t.d.cell.Value().handle, nil
}

// hydrateSplit takes over existing. When the physical text is longer than
// the description and starts with it, the physical node is split and the
// remainder is returned for the next sibling to claim.
func (t Text) hydrateSplit(existing Handle, info NodeInfo, path string) (rest Handle, err error) {
	d := t.d
	if !d.cell.IsThunk() {
		return nil, nil
	}
	_, err = d.cell.ValueWith(func(v *virtText) (liveText, error) {
		if info.Kind != KindText {
			return liveText{}, errors.New("E040").AtPath(path).WithMismatch("text", describe(info))
		}
		switch {
		case info.Text == v.text:
		case len(info.Text) > len(v.text) && strings.HasPrefix(info.Text, v.text):
			r, err := d.tree.surface.SplitText(existing, len(v.text))
			if err != nil {
				return liveText{}, d.tree.surfaceErr("SplitText", err)
			}
			rest = r
		default:
			return liveText{}, errors.New("E042").AtPath(path).WithMismatch(quote(v.text), quote(info.Text))
		}
		d.tree.observer.NodeHydrated(KindText)
		return liveText{handle: existing}, nil
	})
	if err != nil {
		return nil, err
	}
	return rest, nil
}

func qualified(namespace, tag string) string {
	if namespace == "" {
		return "<" + tag + ">"
	}
	return "<" + namespace + ":" + tag + ">"
}

func quote(s string) string {
	const max = 40
	if len(s) > max {
		s = s[:max] + "..."
	}
	return `"` + s + `"`
}

func describe(info NodeInfo) string {
	switch info.Kind {
	case KindElement:
		return qualified(info.Namespace, info.Tag)
	case KindText:
		return "text " + quote(info.Text)
	default:
		return info.Kind.String()
	}
}

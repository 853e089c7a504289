package demo

import (
	"log/slog"
	"strconv"

	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/render"
)

// Counter is a count with increment and decrement buttons. While the count
// is a positive even number an "even" badge is shown between the count and
// the footer.
type Counter struct {
	tree   *dom.Tree
	root   dom.Element
	label  dom.Text
	groups *dom.ChildGroups
	badge  int
	count  int
}

// NewCounter builds a counter starting at start.
func NewCounter(t *dom.Tree, start int) (*Counter, error) {
	c := &Counter{tree: t, count: start}

	c.root = t.Element("div")
	if err := c.root.SetAttribute("class", "counter"); err != nil {
		return nil, err
	}
	c.groups = dom.NewChildGroups(c.root)

	c.label = t.Text(strconv.Itoa(start))
	p := t.Element("p")
	if err := p.SetAttribute("id", "count"); err != nil {
		return nil, err
	}
	if err := p.AppendChildNow(c.label); err != nil {
		return nil, err
	}

	for _, b := range []struct {
		id, label string
		delta     int
	}{{"dec", "-", -1}, {"inc", "+", 1}} {
		btn, err := c.button(b.id, b.label, b.delta)
		if err != nil {
			return nil, err
		}
		if _, err := c.groups.AppendNewGroupSync(btn); err != nil {
			return nil, err
		}
	}
	if _, err := c.groups.AppendNewGroupSync(p); err != nil {
		return nil, err
	}

	c.badge = c.groups.NewGroup()

	footer := t.Element("footer")
	if err := footer.AppendChildNow(t.Text("built with lattice")); err != nil {
		return nil, err
	}
	if _, err := c.groups.AppendNewGroupSync(footer); err != nil {
		return nil, err
	}

	if err := c.sync(); err != nil {
		return nil, err
	}
	return c, nil
}

// Build returns the root element of a counter starting at zero.
func Build(t *dom.Tree) (dom.Element, error) {
	c, err := NewCounter(t, 0)
	if err != nil {
		return dom.Element{}, err
	}
	return c.Root(), nil
}

// Page returns the counter page.
func Page(t *dom.Tree) (render.PageData, error) {
	root, err := Build(t)
	if err != nil {
		return render.PageData{}, err
	}
	return render.PageData{
		Title: "Counter",
		Meta:  []render.MetaTag{{Name: "description", Content: "A counter built on lazy nodes"}},
		Body:  root,
	}, nil
}

func (c *Counter) button(id, label string, delta int) (dom.Element, error) {
	b := c.tree.Element("button")
	if err := b.SetAttribute("id", id); err != nil {
		return dom.Element{}, err
	}
	if err := b.AppendChildNow(c.tree.Text(label)); err != nil {
		return dom.Element{}, err
	}
	err := b.On("click", func(any) {
		if err := c.Set(c.count + delta); err != nil {
			slog.Warn("counter update failed", "button", id, "error", err)
		}
	})
	return b, err
}

// Root returns the counter's root element.
func (c *Counter) Root() dom.Element {
	return c.root
}

// Count returns the current count.
func (c *Counter) Count() int {
	return c.count
}

// BadgeShown reports whether the badge slot is occupied.
func (c *Counter) BadgeShown() bool {
	_, ok := c.groups.Child(c.badge)
	return ok
}

// Set changes the count. On a live tree the label update is deferred to
// the tree's queue; the badge is inserted or removed immediately.
func (c *Counter) Set(n int) error {
	c.count = n
	c.label.SetText(strconv.Itoa(n))
	return c.sync()
}

func (c *Counter) sync() error {
	want := c.count > 0 && c.count%2 == 0
	if want == c.BadgeShown() {
		return nil
	}
	if !want {
		return c.groups.RemoveChild(c.badge)
	}
	span := c.tree.Element("span")
	if err := span.SetAttribute("class", "badge"); err != nil {
		return err
	}
	if err := span.AppendChildNow(c.tree.Text("even")); err != nil {
		return err
	}
	return c.groups.InsertOnlyChild(c.badge, span)
}

package htmlsurface

import (
	"context"
	"strings"
	"testing"

	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/update"
	"golang.org/x/net/html"
)

func buildPage(tree *dom.Tree, clicks *int) (dom.Element, dom.Text) {
	root := tree.Element("div")
	root.SetAttribute("id", "app")
	root.SetAttribute("title", `say "hi" & <bye>`)

	h1 := tree.Element("h1")
	h1.AppendChildNow(tree.Text("Tom & Jerry"))
	root.AppendChildNow(h1)

	btn := tree.Element("button")
	btn.On("click", func(any) { *clicks++ })
	btn.AppendChildNow(tree.Text("+"))
	root.AppendChildNow(btn)

	p := tree.Element("p")
	count := tree.Text("0")
	p.AppendChildNow(tree.Text("count: "))
	p.AppendChildNow(count)
	p.AppendChildNow(tree.Text(" clicks"))
	root.AppendChildNow(p)

	img := tree.Element("img")
	img.SetAttribute("src", "/a.png")
	img.SetAttribute("alt", "")
	root.AppendChildNow(img)

	pre := tree.Element("pre")
	pre.AppendChildNow(tree.Text("\nline 1\n  line 2"))
	root.AppendChildNow(pre)

	script := tree.Element("script")
	script.AppendChildNow(tree.Text("if (a < b && c > d) {}"))
	root.AppendChildNow(script)

	svg := tree.ElementNS("svg", "svg")
	svg.SetAttribute("width", "10")
	circle := tree.ElementNS("svg", "circle")
	circle.SetAttribute("r", "4")
	svg.AppendChildNow(circle)
	root.AppendChildNow(svg)

	ul := tree.Element("ul")
	for _, s := range []string{"a", "b"} {
		li := tree.Element("li")
		li.AppendChildNow(tree.Text(s))
		ul.AppendChildNow(li)
	}
	root.AppendChildNow(ul)

	return root, count
}

func TestHydrationRoundTrip(t *testing.T) {
	s := New()
	q := update.New()
	tree := dom.NewTree(s, dom.WithQueue(q))

	clicks := 0
	root, count := buildPage(tree, &clicks)
	before := root.String()
	if before == "" {
		t.Fatal("virtual tree did not serialize")
	}

	body, err := ParseFragment(before)
	if err != nil {
		t.Fatalf("ParseFragment() error = %v", err)
	}
	if got := Render(body.FirstChild); got != before {
		t.Fatalf("parse/render changed markup:\n got %q\nwant %q", got, before)
	}

	h, err := root.Hydrate(context.Background(), body.FirstChild)
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if h.(*html.Node) != body.FirstChild {
		t.Error("Hydrate should take over the parsed node")
	}

	if after := root.String(); after != before {
		t.Errorf("round trip differs:\n got %q\nwant %q", after, before)
	}

	btn := FindByID(body, "app").FirstChild.NextSibling
	if n := s.Dispatch(btn, "click", nil); n != 1 || clicks != 1 {
		t.Errorf("Dispatch() = %d, clicks = %d, want 1, 1", n, clicks)
	}

	count.SetText("1")
	if !strings.Contains(root.String(), "count: 0 clicks") {
		t.Error("text changed before flush")
	}
	if err := q.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(root.String(), "count: 1 clicks") {
		t.Errorf("text not updated: %s", root.String())
	}
}

func TestHydrationMismatch(t *testing.T) {
	tree := dom.NewTree(New())
	root := tree.Element("div")
	root.AppendChildNow(tree.Element("span"))

	body, _ := ParseFragment("<div><p></p></div>")
	_, err := root.Hydrate(context.Background(), body.FirstChild)
	if !errors.HasCode(err, "E041") {
		t.Errorf("Hydrate() error = %v, want E041", err)
	}
}

func TestHydrationMismatchKeepsMarkup(t *testing.T) {
	tree := dom.NewTree(New())
	root := tree.Element("div")
	span := tree.Element("span")
	span.AppendChildNow(tree.Text("ok"))
	root.AppendChildNow(span)
	root.AppendChildNow(tree.Element("em"))

	body, _ := ParseFragment("<div><span>ok</span><b></b></div>")
	_, err := root.Hydrate(context.Background(), body.FirstChild)
	if !errors.HasCode(err, "E041") {
		t.Fatalf("Hydrate() error = %v, want E041", err)
	}
	if !span.IsThunk() {
		t.Error("span promoted by a failed hydration")
	}

	if _, err := root.Materialize(); err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if got := root.String(); got != "<div><span>ok</span><em></em></div>" {
		t.Errorf("String() = %q", got)
	}
	if got := Render(body); got != "<body><div><span>ok</span><b></b></div></body>" {
		t.Errorf("existing markup = %q", got)
	}
}

func TestSlotUpsertOnLiveTree(t *testing.T) {
	tree := dom.NewTree(New())
	parent := tree.Element("div")
	if _, err := parent.Materialize(); err != nil {
		t.Fatal(err)
	}
	g := dom.NewChildGroups(parent)
	g.AppendNewGroupSync(tree.Text("<"))
	slot := g.NewGroup()
	g.AppendNewGroupSync(tree.Text(">"))

	x := tree.Element("x")
	g.InsertOnlyChild(slot, x)
	y := tree.Element("y")
	if existed, err := g.UpsertOnlyChild(slot, y); err != nil || !existed {
		t.Fatalf("UpsertOnlyChild() = %v, %v", existed, err)
	}

	if got := parent.String(); got != "<div>&lt;<y></y>&gt;</div>" {
		t.Errorf("String() = %q", got)
	}
	xh, _ := x.Materialize()
	if xh.(*html.Node).Parent != nil {
		t.Error("x is still attached")
	}
}

func TestSurfacePrimitives(t *testing.T) {
	var muts []MutationType
	s := New(WithMutationHook(func(m Mutation) { muts = append(muts, m.Type) }))

	ph, _ := s.CreateElement("", "ul")
	a, _ := s.CreateText("a")
	b, _ := s.CreateText("b")
	c, _ := s.CreateText("c")
	p := ph.(*html.Node)

	s.AppendChild(p, a)
	s.AppendChild(p, c)
	s.InsertBefore(p, b, c)
	if got := Render(p); got != "<ul>abc</ul>" {
		t.Errorf("after insert: %q", got)
	}

	// Appending an attached node moves it.
	s.AppendChild(p, a)
	if got := Render(p); got != "<ul>bca</ul>" {
		t.Errorf("after move: %q", got)
	}

	other, _ := s.CreateText("z")
	if err := s.ReplaceChild(p, b, other); err != dom.ErrNotChild {
		t.Errorf("ReplaceChild(non-child) error = %v, want ErrNotChild", err)
	}
	if err := s.RemoveChild(p, other); err != nil {
		t.Errorf("RemoveChild(non-child) error = %v", err)
	}

	s.SetAttribute(p, "class", "x")
	s.SetAttribute(p, "id", "y")
	s.SetAttribute(p, "class", "z")
	if got := Render(p); got != `<ul class="z" id="y">bca</ul>` {
		t.Errorf("attributes: %q", got)
	}
	s.RemoveAttribute(p, "class")

	rest, err := s.SplitText(b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if rest.(*html.Node).Data != "b" || b.(*html.Node).Data != "" {
		t.Error("SplitText at 0 should move everything to the new node")
	}

	s.ClearChildren(p)
	if p.FirstChild != nil {
		t.Error("ClearChildren left children")
	}
	if len(muts) == 0 || muts[0] != Insert {
		t.Errorf("mutations = %v", muts)
	}

	if _, err := s.Inspect("not a node"); err == nil {
		t.Error("Inspect should reject foreign handles")
	}
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<!DOCTYPE html><html><head><title>x</title></head><body><div id="root"><p>hi</p></div></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	if Head(doc) == nil || Body(doc) == nil {
		t.Fatal("missing head or body")
	}
	root := FindByID(doc, "root")
	if root == nil {
		t.Fatal("FindByID() = nil")
	}
	if got := Render(root); got != `<div id="root"><p>hi</p></div>` {
		t.Errorf("Render() = %q", got)
	}
	if FindByID(doc, "missing") != nil {
		t.Error("FindByID found a missing id")
	}
}

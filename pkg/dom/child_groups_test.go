package dom

import "testing"

func liveParent(t *testing.T) (*Tree, Element) {
	t.Helper()
	tree, _, _ := newTestTree()
	parent := tree.Element("div")
	if _, err := parent.Materialize(); err != nil {
		t.Fatal(err)
	}
	return tree, parent
}

func TestNextGroupElem(t *testing.T) {
	tree, parent := liveParent(t)
	g := NewChildGroups(parent)

	a, b := tree.Text("A"), tree.Text("B")
	i0, i1, i2 := g.NewGroup(), g.NewGroup(), g.NewGroup()
	g.InsertOnlyChild(i0, a)
	g.InsertOnlyChild(i2, b)

	if n, ok := g.NextGroupElem(0); !ok || !n.IsSame(b) {
		t.Errorf("NextGroupElem(0) = %v, %v, want B", n, ok)
	}
	if n, ok := g.NextGroupElem(i1); !ok || !n.IsSame(b) {
		t.Errorf("NextGroupElem(1) = %v, %v, want B", n, ok)
	}
	if _, ok := g.NextGroupElem(i2); ok {
		t.Error("NextGroupElem(2) should find nothing")
	}
	if got := parent.String(); got != "<div>AB</div>" {
		t.Errorf("String() = %q", got)
	}
}

func TestUpsertReplacesAndDetaches(t *testing.T) {
	tree, parent := liveParent(t)
	g := NewChildGroups(parent)

	g.AppendNewGroupSync(tree.Text("["))
	slot := g.NewGroup()
	g.AppendNewGroupSync(tree.Text("]"))

	x := tree.Element("x")
	if err := g.InsertOnlyChild(slot, x); err != nil {
		t.Fatal(err)
	}
	y := tree.Element("y")
	existed, err := g.UpsertOnlyChild(slot, y)
	if err != nil {
		t.Fatal(err)
	}
	if !existed {
		t.Error("UpsertOnlyChild should report the old anchor")
	}
	if got := parent.String(); got != "<div>[<y></y>]</div>" {
		t.Errorf("String() = %q", got)
	}
	xh, _ := x.Materialize()
	if xh.(*fakeNode).parent != nil {
		t.Error("replaced anchor is still attached")
	}
	if n, _ := g.Child(slot); !n.IsSame(y) {
		t.Error("slot should hold the new anchor")
	}
}

func TestReinsertAfterRemove(t *testing.T) {
	tree, parent := liveParent(t)
	g := NewChildGroups(parent)

	s0, s1, s2 := g.NewGroup(), g.NewGroup(), g.NewGroup()
	g.InsertOnlyChild(s0, tree.Text("a"))
	b := tree.Text("b")
	g.InsertOnlyChild(s1, b)

	if err := g.RemoveChild(s1); err != nil {
		t.Fatal(err)
	}
	if got := parent.String(); got != "<div>a</div>" {
		t.Errorf("after remove: %q", got)
	}

	// Slot 2 becomes occupied while slot 1 is empty.
	g.InsertOnlyChild(s2, tree.Text("c"))
	g.RemoveChild(s0)

	g.InsertOnlyChild(s1, b)
	if got := parent.String(); got != "<div>bc</div>" {
		t.Errorf("after reinsert: %q", got)
	}
	g.InsertOnlyChild(s0, tree.Text("a"))
	if got := parent.String(); got != "<div>abc</div>" {
		t.Errorf("after refill: %q", got)
	}

	if err := g.RemoveChild(s0); err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveChild(s0); err != nil {
		t.Errorf("removing from an empty slot should be a no-op, got %v", err)
	}
}

func TestAppendNewGroupSyncTwice(t *testing.T) {
	tree, parent := liveParent(t)
	g := NewChildGroups(parent)

	i, err := g.AppendNewGroupSync(tree.Element("header"))
	if err != nil {
		t.Fatal(err)
	}
	j, _ := g.AppendNewGroupSync(tree.Element("footer"))
	if i == j {
		t.Fatalf("slots share index %d", i)
	}
	if g.LastIsDynamic() {
		t.Error("appended groups should be closed")
	}

	g.RemoveChild(i)
	if got := parent.String(); got != "<div><footer></footer></div>" {
		t.Errorf("after removing first: %q", got)
	}
	g.RemoveChild(j)
	if got := parent.String(); got != "<div></div>" {
		t.Errorf("after removing second: %q", got)
	}
}

func TestChildGroupsOnVirtualParent(t *testing.T) {
	tree, s, _ := newTestTree()
	parent := tree.Element("ul")
	g := NewChildGroups(parent)

	g.AppendNewGroupSync(tree.Element("li"))
	slot := g.NewGroup()
	g.AppendNewGroupSync(tree.Text("end"))
	g.InsertOnlyChild(slot, tree.Text("mid"))

	if got := parent.String(); got != "<ul><li></li>midend</ul>" {
		t.Errorf("String() = %q", got)
	}
	if s.total() != 0 {
		t.Errorf("surface calls = %v, want none", s.calls)
	}
}

func TestIsSingleGroup(t *testing.T) {
	tree, parent := liveParent(t)
	g := NewChildGroups(parent)
	if g.IsSingleGroup() {
		t.Error("empty groups reported single")
	}
	g.NewGroup()
	if !g.IsSingleGroup() {
		t.Error("one group should be single")
	}
	g.AppendNewGroupSync(tree.Text("x"))
	if g.IsSingleGroup() {
		t.Error("two groups reported single")
	}
}

func TestSetAndClearFirstChild(t *testing.T) {
	tree, s, _ := newTestTree()
	parent := tree.Element("div")
	g := NewChildGroups(parent)
	slot := g.NewGroup()

	a := tree.Text("a")
	g.SetFirstChild(slot, a)
	if n, ok := g.Child(slot); !ok || !n.IsSame(a) {
		t.Error("SetFirstChild did not record the anchor")
	}
	g.ClearFirstChild(slot)
	if _, ok := g.Child(slot); ok {
		t.Error("ClearFirstChild left the anchor")
	}
	if s.total() != 0 || parent.String() != "<div></div>" {
		t.Error("slot bookkeeping should not touch the parent")
	}
}

func TestChildGroupsPanics(t *testing.T) {
	tree, parent := liveParent(t)
	g := NewChildGroups(parent)
	slot := g.NewGroup()
	g.InsertOnlyChild(slot, tree.Text("a"))

	expectPanicCode(t, "E003", func() { g.InsertOnlyChild(slot, tree.Text("b")) })
	expectPanicCode(t, "E005", func() { g.RemoveChild(5) })
	expectPanicCode(t, "E005", func() { g.NextGroupElem(-1) })
}

func TestChildGroupsClear(t *testing.T) {
	tree, parent := liveParent(t)
	g := NewChildGroups(parent)
	g.AppendNewGroupSync(tree.Text("a"))
	slot := g.NewGroup()
	g.InsertOnlyChild(slot, tree.Text("b"))
	g.ShrinkToFit()

	if err := g.Clear(); err != nil {
		t.Fatal(err)
	}
	if g.Len() != 0 || g.IsSingleGroup() {
		t.Error("Clear should drop all slots")
	}
	if got := parent.String(); got != "<div></div>" {
		t.Errorf("String() = %q", got)
	}
}

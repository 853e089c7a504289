package dom

import (
	"bufio"
	"io"
	"strings"

	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/lazy"
)

type textData struct {
	tree *Tree
	cell *lazy.Cell[liveText, *virtText]
}

type virtText struct {
	text string
}

type liveText struct {
	handle Handle
}

// Text is a handle to a text node. Create text nodes with Tree.Text.
type Text struct {
	d *textData
}

// Node returns the text as a Node.
func (t Text) Node() Node {
	return Node{text: t.d}
}

// Tree returns the tree the text node belongs to.
func (t Text) Tree() *Tree {
	return t.d.tree
}

// IsThunk reports whether the text node is still virtual.
func (t Text) IsThunk() bool {
	return t.d.cell.IsThunk()
}

// IsSame reports whether other refers to the same text node.
func (t Text) IsSame(other NodeRef) bool {
	return t.Node().IsSame(other)
}

// Data returns the text content. For a live node this is what the surface
// currently holds, so it may lag behind a pending SetText.
func (t Text) Data() string {
	if t.IsThunk() {
		return (*t.d.cell.Thunk()).text
	}
	info, err := t.d.tree.surface.Inspect(t.d.cell.Value().handle)
	if err != nil {
		t.d.tree.logger.Debug("inspect text failed", "error", err)
		return ""
	}
	return info.Text
}

// SetText changes the text content. A virtual node changes immediately. A
// live node queues the write on the tree's update queue; repeated calls
// before the next flush keep only the last value.
func (t Text) SetText(text string) {
	if t.IsThunk() {
		(*t.d.cell.Thunk()).text = text
		return
	}

	d := t.d
	h := d.cell.Value().handle
	d.tree.queue.EnqueueKeyed(d, func() error {
		return d.tree.surfaceErr("SetText", d.tree.surface.SetText(h, text))
	})
}

// Materialize promotes the text node and returns its surface object.
func (t Text) Materialize() (Handle, error) {
	return t.handle()
}

// WriteMarkup writes the escaped text to w.
func (t Text) WriteMarkup(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := t.writeMarkup(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// String returns the text node's markup.
func (t Text) String() string {
	var b strings.Builder
	if err := t.WriteMarkup(&b); err != nil {
		t.d.tree.logger.Debug("serialize text failed", "error", err)
		return ""
	}
	return b.String()
}

func (t Text) handle() (Handle, error) {
	d := t.d
	if d.cell.IsPromoting() {
		panic(errors.New("E001").AtPath("#text"))
	}
	live, err := d.cell.ValueWith(func(v *virtText) (liveText, error) {
		s, err := d.tree.requireSurface()
		if err != nil {
			return liveText{}, err
		}
		h, err := s.CreateText(v.text)
		if err != nil {
			return liveText{}, d.tree.surfaceErr("CreateText", err)
		}
		d.tree.observer.NodeMaterialized(KindText)
		return liveText{handle: h}, nil
	})
	if err != nil {
		return nil, err
	}
	return live.handle, nil
}

// Package document mounts dom trees into an HTML document.
//
// A live Document wraps a parsed document and the htmlsurface.Surface its
// tree materializes into. A dry Document has no root; it can only collect
// elements for <head> so a server renderer can emit them.
package document

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/surface/htmlsurface"
	"golang.org/x/net/html"
)

// Document tracks the elements mounted in one document.
type Document struct {
	tree    *dom.Tree
	surface *htmlsurface.Surface
	root    *html.Node
	logger  *slog.Logger

	nextID  uint64
	mounted map[uint64]dom.Element
	head    []dom.Element
	headIDs map[string]bool
}

// New returns a live document. tree must materialize into s, and root is
// the parsed document whose mount points are replaced.
func New(tree *dom.Tree, s *htmlsurface.Surface, root *html.Node) *Document {
	d := NewDry(tree)
	d.surface = s
	d.root = root
	return d
}

// NewDry returns a document with no live root.
func NewDry(tree *dom.Tree) *Document {
	return &Document{
		tree:    tree,
		logger:  slog.Default().With("component", "document"),
		mounted: make(map[uint64]dom.Element),
		headIDs: make(map[string]bool),
	}
}

// IsDry reports whether the document has no live root.
func (d *Document) IsDry() bool {
	return d.root == nil
}

// Root returns the parsed document, or nil for a dry document.
func (d *Document) Root() *html.Node {
	return d.root
}

// MountHandle restores a mount point replaced by Mount.
type MountHandle struct {
	doc        *Document
	id         uint64
	mountPoint *html.Node
}

// Mount replaces the element with the given id by elem.
func (d *Document) Mount(id string, elem dom.Element) (*MountHandle, error) {
	mp, err := d.mountPoint(id)
	if err != nil {
		return nil, err
	}
	h, err := elem.Materialize()
	if err != nil {
		return nil, err
	}
	if err := d.surface.ReplaceChild(mp.Parent, h, mp); err != nil {
		return nil, errors.New("E060").Wrap(err)
	}

	m := &MountHandle{doc: d, id: d.track(elem), mountPoint: mp}
	d.logger.Debug("mounted", "id", id, "tag", elem.Tag())
	return m, nil
}

// Hydrate takes over the first child of the mount point with the given id
// using elem. The mount point stays in place.
func (d *Document) Hydrate(ctx context.Context, id string, elem dom.Element) error {
	mp, err := d.mountPoint(id)
	if err != nil {
		return err
	}
	first := mp.FirstChild
	for first != nil && first.Type != html.ElementNode {
		first = first.NextSibling
	}
	if first == nil {
		return errors.New("E082").AtPath("#" + id)
	}
	if _, err := elem.Hydrate(ctx, first); err != nil {
		return err
	}
	d.track(elem)
	d.logger.Debug("hydrated", "id", id, "tag", elem.Tag())
	return nil
}

// Unmount removes the mounted element and puts the mount point back.
func (m *MountHandle) Unmount() error {
	d := m.doc
	elem, ok := d.mounted[m.id]
	if !ok {
		return nil
	}
	delete(d.mounted, m.id)

	h, err := elem.Materialize()
	if err != nil {
		return err
	}
	n := h.(*html.Node)
	if n.Parent == nil {
		return nil
	}
	if err := d.surface.ReplaceChild(n.Parent, m.mountPoint, n); err != nil {
		return errors.New("E060").Wrap(err)
	}
	return nil
}

// UnmountAll removes every mounted element and every element added with
// MountInHead. Mount points are not restored.
func (d *Document) UnmountAll() error {
	var errs []error
	if !d.IsDry() {
		for _, elem := range d.mounted {
			errs = append(errs, d.remove(elem))
		}
		for _, elem := range d.head {
			errs = append(errs, d.remove(elem))
		}
	}
	clear(d.mounted)
	clear(d.headIDs)
	d.head = nil
	return joinErrors(errs)
}

// MountInHead adds elem to <head> under id. If an element with id already
// exists nothing happens and false is returned. Otherwise id is set on elem.
func (d *Document) MountInHead(id string, elem dom.Element) (bool, error) {
	if d.headIDs[id] {
		return false, nil
	}
	if !d.IsDry() && htmlsurface.FindByID(d.root, id) != nil {
		return false, nil
	}

	if err := elem.SetAttribute("id", id); err != nil {
		return false, err
	}
	if !d.IsDry() {
		head := htmlsurface.Head(d.root)
		if head == nil {
			return false, nil
		}
		h, err := elem.Materialize()
		if err != nil {
			return false, err
		}
		if err := d.surface.AppendChild(head, h); err != nil {
			return false, errors.New("E060").Wrap(err)
		}
	}

	d.head = append(d.head, elem)
	d.headIDs[id] = true
	return true, nil
}

// HeadInnerHTML returns the markup of the elements added with MountInHead,
// in the order they were added.
func (d *Document) HeadInnerHTML() string {
	var b strings.Builder
	for _, elem := range d.head {
		b.WriteString(elem.String())
	}
	return b.String()
}

func (d *Document) mountPoint(id string) (*html.Node, error) {
	if d.IsDry() {
		return nil, errors.New("E080")
	}
	mp := htmlsurface.FindByID(d.root, id)
	if mp == nil || mp.Parent == nil {
		return nil, errors.New("E081").AtPath("#" + id)
	}
	return mp, nil
}

func (d *Document) track(elem dom.Element) uint64 {
	d.nextID++
	d.mounted[d.nextID] = elem
	return d.nextID
}

func (d *Document) remove(elem dom.Element) error {
	h, err := elem.Materialize()
	if err != nil {
		return err
	}
	n := h.(*html.Node)
	if n.Parent == nil {
		return nil
	}
	d.surface.Forget(n)
	return d.surface.RemoveChild(n.Parent, n)
}

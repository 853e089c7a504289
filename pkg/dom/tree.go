package dom

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/lazy"
	"github.com/vango-dev/lattice/pkg/update"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lattice/dom"

// Observer receives node lifecycle events.
type Observer interface {
	// NodeMaterialized is called when a virtual node gets a new surface object.
	NodeMaterialized(kind NodeKind)

	// NodeHydrated is called when a virtual node takes over an existing
	// surface object.
	NodeHydrated(kind NodeKind)

	// HydrationFailed is called once per failed Hydrate call with the error code.
	HydrationFailed(code string)

	// SurfaceFailed is called when a surface call returns an error.
	SurfaceFailed(op string)
}

type nopObserver struct{}

func (nopObserver) NodeMaterialized(NodeKind) {}
func (nopObserver) NodeHydrated(NodeKind)     {}
func (nopObserver) HydrationFailed(string)    {}
func (nopObserver) SurfaceFailed(string)      {}

// Tree creates nodes bound to one Surface. A Tree with a nil Surface is dry:
// its nodes can be built and serialized but never materialized.
type Tree struct {
	surface  Surface
	queue    *update.Queue
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Tree.
type Option func(*Tree)

// WithQueue sets the queue that receives deferred text updates.
// The default is update.Default().
func WithQueue(q *update.Queue) Option {
	return func(t *Tree) {
		t.queue = q
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(t *Tree) {
		t.observer = o
	}
}

// WithLogger sets the tree's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithTracer sets the tracer used for hydration spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(t *Tree) {
		t.tracer = tracer
	}
}

// NewTree creates a tree bound to surface. surface may be nil.
func NewTree(surface Surface, opts ...Option) *Tree {
	t := &Tree{surface: surface}
	for _, opt := range opts {
		opt(t)
	}
	if t.queue == nil {
		t.queue = update.Default()
	}
	if t.observer == nil {
		t.observer = nopObserver{}
	}
	if t.logger == nil {
		t.logger = slog.Default().With("component", "dom")
	}
	if t.tracer == nil {
		t.tracer = otel.Tracer(tracerName)
	}
	return t
}

// Surface returns the tree's surface, or nil for a dry tree.
func (t *Tree) Surface() Surface {
	return t.surface
}

// Queue returns the queue used for deferred updates.
func (t *Tree) Queue() *update.Queue {
	return t.queue
}

// IsDry reports whether the tree has no surface.
func (t *Tree) IsDry() bool {
	return t.surface == nil
}

// Element creates a virtual HTML element.
func (t *Tree) Element(tag string) Element {
	return t.ElementNS("", tag)
}

// ElementNS creates a virtual element in a namespace such as "svg".
func (t *Tree) ElementNS(namespace, tag string) Element {
	return Element{d: &elementData{
		tree:      t,
		namespace: namespace,
		tag:       tag,
		cell:      lazy.NewThunk[liveElement](&virtElement{}),
	}}
}

// Text creates a virtual text node.
func (t *Tree) Text(text string) Text {
	return Text{d: &textData{
		tree: t,
		cell: lazy.NewThunk[liveText](&virtText{text: text}),
	}}
}

// AdoptElement wraps an existing live element, such as a document's head,
// in an Element handle.
func (t *Tree) AdoptElement(h Handle) (Element, error) {
	s, err := t.requireSurface()
	if err != nil {
		return Element{}, err
	}
	info, err := s.Inspect(h)
	if err != nil {
		return Element{}, t.surfaceErr("Inspect", err)
	}
	if info.Kind != KindElement {
		return Element{}, errors.New("E040").WithMismatch("element", info.Kind.String())
	}
	return Element{d: &elementData{
		tree:      t,
		namespace: info.Namespace,
		tag:       info.Tag,
		cell:      lazy.NewValue[liveElement, *virtElement](liveElement{handle: h}),
	}}, nil
}

func (t *Tree) requireSurface() (Surface, error) {
	if t.surface == nil {
		return nil, errors.New("E061")
	}
	return t.surface, nil
}

// surfaceErr wraps a surface error in a structured error.
func (t *Tree) surfaceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	t.observer.SurfaceFailed(op)
	code := "E060"
	if stdIs(err, ErrNotChild) {
		code = "E062"
	}
	return errors.New(code).Wrap(fmt.Errorf("%s: %w", op, err))
}

func (t *Tree) mustOwn(n Node) {
	if n.IsZero() {
		panic(errors.New("E006"))
	}
	if n.tree() != t {
		panic(errors.New("E004"))
	}
}

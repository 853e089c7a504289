package ssr

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/document"
	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/surface/htmlsurface"
	"github.com/vango-dev/lattice/pkg/telemetry"
	"github.com/vango-dev/lattice/pkg/update"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

// liveMountID is the id of the placeholder the live root replaces.
const liveMountID = "live-root"

// BuildFunc builds the root element of a live page.
type BuildFunc func(t *dom.Tree) (dom.Element, error)

// LiveOption configures a Live.
type LiveOption func(*liveOptions)

type liveOptions struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *telemetry.Metrics
}

// WithLiveLogger sets the logger of the live tree and its queue.
func WithLiveLogger(logger *slog.Logger) LiveOption {
	return func(o *liveOptions) {
		o.logger = logger
	}
}

// WithLiveTracer sets the tracer of the live tree and its queue.
func WithLiveTracer(tracer trace.Tracer) LiveOption {
	return func(o *liveOptions) {
		o.tracer = tracer
	}
}

// WithLiveMetrics records tree and queue activity in m.
func WithLiveMetrics(m *telemetry.Metrics) LiveOption {
	return func(o *liveOptions) {
		o.metrics = m
	}
}

// Live is a server-side live mirror of one page. Its tree materializes
// into an htmlsurface.Surface; after every update the mirror's markup is
// broadcast to connected browsers.
type Live struct {
	mu      sync.Mutex
	tree    *dom.Tree
	surface *htmlsurface.Surface
	queue   *update.Queue
	doc     *document.Document
	root    dom.Element
	node    *html.Node
	hub     *LiveHub
	logger  *slog.Logger
}

// NewLive builds the page with build and mounts it in a fresh live document.
func NewLive(build BuildFunc, opts ...LiveOption) (*Live, error) {
	o := liveOptions{logger: slog.Default().With("component", "ssr")}
	for _, opt := range opts {
		opt(&o)
	}

	queueOpts := []update.Option{update.WithLogger(o.logger)}
	treeOpts := []dom.Option{dom.WithLogger(o.logger)}
	if o.tracer != nil {
		queueOpts = append(queueOpts, update.WithTracer(o.tracer))
		treeOpts = append(treeOpts, dom.WithTracer(o.tracer))
	}
	if o.metrics != nil {
		queueOpts = append(queueOpts, update.WithObserver(o.metrics))
		treeOpts = append(treeOpts, dom.WithObserver(o.metrics))
	}
	queue := update.New(queueOpts...)
	treeOpts = append(treeOpts, dom.WithQueue(queue))

	s := htmlsurface.New()
	tree := dom.NewTree(s, treeOpts...)

	container, err := htmlsurface.ParseFragment(`<div id="` + liveMountID + `"></div>`)
	if err != nil {
		return nil, err
	}
	doc := document.New(tree, s, container)

	root, err := build(tree)
	if err != nil {
		return nil, err
	}
	if _, err := doc.Mount(liveMountID, root); err != nil {
		return nil, err
	}
	h, err := root.Materialize()
	if err != nil {
		return nil, err
	}

	l := &Live{
		tree:    tree,
		surface: s,
		queue:   queue,
		doc:     doc,
		root:    root,
		node:    h.(*html.Node),
		hub:     NewLiveHub(o.logger),
		logger:  o.logger,
	}
	l.hub.snapshot = l.Markup
	l.hub.onEvent = func(msg Message) {
		if _, err := l.Dispatch(context.Background(), msg.ID, msg.Event, msg.Value); err != nil {
			l.logger.Debug("live event dropped", "id", msg.ID, "event", msg.Event, "error", err)
		}
	}
	return l, nil
}

// Tree returns the live tree.
func (l *Live) Tree() *dom.Tree {
	return l.tree
}

// Root returns the live root element.
func (l *Live) Root() dom.Element {
	return l.root
}

// Hub returns the websocket hub of the page.
func (l *Live) Hub() *LiveHub {
	return l.hub
}

// Markup returns the current markup of the root element.
func (l *Live) Markup() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.markup()
}

func (l *Live) markup() string {
	var b strings.Builder
	if err := html.Render(&b, l.node); err != nil {
		l.logger.Warn("render live root failed", "error", err)
		return ""
	}
	return b.String()
}

// Update runs fn with exclusive access to the tree, flushes deferred
// updates and broadcasts the new markup.
func (l *Live) Update(ctx context.Context, fn func(root dom.Element)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.root)
	return l.commit(ctx)
}

// Dispatch invokes the listeners for event on the element with the given
// id, then commits like Update. It returns the number of listeners invoked.
func (l *Live) Dispatch(ctx context.Context, id, event string, payload any) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	target := htmlsurface.FindByID(l.node, id)
	if target == nil {
		return 0, errors.New("E081").AtPath("#" + id)
	}
	n := l.surface.Dispatch(target, event, payload)
	if n == 0 {
		return 0, nil
	}
	return n, l.commit(ctx)
}

func (l *Live) commit(ctx context.Context) error {
	err := l.queue.Flush(ctx)
	l.hub.Broadcast(l.markup())
	return err
}

// Close disconnects every client and unmounts the page.
func (l *Live) Close() error {
	l.hub.Close()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doc.UnmountAll()
}

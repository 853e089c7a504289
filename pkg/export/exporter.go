package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/render"
	"github.com/vango-dev/lattice/pkg/update"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ContentTypeHTML is the content type of exported pages.
const ContentTypeHTML = "text/html; charset=utf-8"

// BuildFunc builds the page served at a path on the given tree.
type BuildFunc func(t *dom.Tree) (render.PageData, error)

// Page is one exported route.
type Page struct {
	// Path is the URL path, such as "/" or "/about".
	Path string

	// Build produces the page content.
	Build BuildFunc
}

// Result summarizes an export run.
type Result struct {
	Keys     []string
	Bytes    int64
	Duration time.Duration
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the exporter's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// WithTracer sets the tracer used for export spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Exporter) {
		e.tracer = tracer
	}
}

// WithObserver sets the observer of the dry trees pages are built on.
func WithObserver(o dom.Observer) Option {
	return func(e *Exporter) {
		e.observer = o
	}
}

// Exporter renders pages and writes them to a Store.
type Exporter struct {
	store    Store
	renderer *render.Renderer
	logger   *slog.Logger
	tracer   trace.Tracer
	observer dom.Observer
}

// New creates an Exporter writing to store.
func New(store Store, renderer *render.Renderer, opts ...Option) *Exporter {
	e := &Exporter{
		store:    store,
		renderer: renderer,
		logger:   slog.Default().With("component", "export"),
		tracer:   otel.Tracer("lattice/export"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders every page and stores it. Pages are built on dry trees,
// so nothing is ever materialized. The first failure stops the run.
func (e *Exporter) Export(ctx context.Context, pages []Page) (Result, error) {
	ctx, span := e.tracer.Start(ctx, "export.Export",
		trace.WithAttributes(attribute.Int("export.pages", len(pages))))
	defer span.End()

	start := time.Now()
	var result Result
	for _, page := range pages {
		key := KeyForPath(page.Path)
		n, err := e.exportPage(ctx, key, page)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return result, fmt.Errorf("export %s: %w", page.Path, err)
		}
		result.Keys = append(result.Keys, key)
		result.Bytes += int64(n)
		e.logger.Debug("page exported", "path", page.Path, "key", key, "bytes", n)
	}
	result.Duration = time.Since(start)
	e.logger.Info("export complete", "pages", len(result.Keys), "bytes", result.Bytes,
		"duration", result.Duration)
	return result, nil
}

func (e *Exporter) exportPage(ctx context.Context, key string, page Page) (int, error) {
	opts := []dom.Option{dom.WithQueue(update.New()), dom.WithTracer(e.tracer)}
	if e.observer != nil {
		opts = append(opts, dom.WithObserver(e.observer))
	}
	tree := dom.NewTree(nil, opts...)

	data, err := page.Build(tree)
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := e.renderer.RenderPage(ctx, &buf, data); err != nil {
		return 0, err
	}
	if err := e.store.Put(ctx, key, ContentTypeHTML, buf.Bytes()); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// KeyForPath maps a URL path to a store key. Directory style paths get an
// index.html, paths with an extension are kept as is.
//
//	"/"          -> "index.html"
//	"/about"     -> "about/index.html"
//	"/feed.html" -> "feed.html"
func KeyForPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "index.html"
	}
	last := p[strings.LastIndex(p, "/")+1:]
	if strings.Contains(last, ".") {
		return p
	}
	return p + "/index.html"
}

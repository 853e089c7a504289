package render

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/dom"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMountID is the id of the element that wraps the page body.
const DefaultMountID = "app"

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// MountID is the id of the mount point wrapping the body.
	// Defaults to DefaultMountID.
	MountID string

	// Lang is the default language for pages that do not set one.
	// Defaults to "en".
	Lang string

	// ClientScript is an optional script path loaded at the end of the body.
	ClientScript string

	// LiveURL is the websocket path of the live endpoint. When set, an
	// inline script replaces the mount point content with every markup
	// message received.
	LiveURL string
}

// Renderer writes dom nodes and pages as HTML.
type Renderer struct {
	config RendererConfig
	tracer trace.Tracer
	logger *slog.Logger
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.MountID == "" {
		config.MountID = DefaultMountID
	}
	if config.Lang == "" {
		config.Lang = "en"
	}
	return &Renderer{
		config: config,
		tracer: otel.Tracer("lattice/render"),
		logger: slog.Default().With("component", "render"),
	}
}

// Config returns the renderer's configuration with defaults applied.
func (r *Renderer) Config() RendererConfig {
	return r.config
}

// RenderToString renders a node to a string.
func (r *Renderer) RenderToString(node dom.NodeRef) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter writes the markup of node to w. A nil node writes nothing.
func (r *Renderer) RenderToWriter(w io.Writer, node dom.NodeRef) error {
	if node == nil {
		return nil
	}
	if err := node.Node().WriteMarkup(w); err != nil {
		return renderErr(err)
	}
	return nil
}

// renderErr keeps structured errors and wraps anything else in E101.
func renderErr(err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	return errors.New("E101").Wrap(err)
}

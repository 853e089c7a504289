package render

import (
	"context"
	"fmt"
	"io"

	"github.com/vango-dev/lattice/pkg/dom"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the root node placed inside the mount point.
	Body dom.NodeRef

	// BodyHTML is trusted markup placed inside the mount point when Body
	// is nil, such as the serialized root of a live page.
	BodyHTML string

	// Title is the page title
	Title string

	// Meta contains meta tags for the page
	Meta []MetaTag

	// Links contains link tags (stylesheets, favicon, etc.)
	Links []LinkTag

	// Scripts contains script tags to include
	Scripts []ScriptTag

	// Styles contains inline CSS styles
	Styles []string

	// StyleSheets contains paths to external stylesheets
	StyleSheets []string

	// HeadHTML is trusted markup appended to <head>, usually
	// document.Document.HeadInnerHTML().
	HeadHTML string

	// Lang is the language attribute for the html element.
	// Defaults to the renderer's Lang.
	Lang string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name      string // name attribute
	Content   string // content attribute
	Property  string // property attribute (for OpenGraph)
	HTTPEquiv string // http-equiv attribute
	Charset   string // charset attribute
}

// LinkTag represents a link element in the document head.
type LinkTag struct {
	Rel         string // rel attribute
	Href        string // href attribute
	Type        string // type attribute
	Sizes       string // sizes attribute
	CrossOrigin string // crossorigin attribute
	Media       string // media attribute
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Type   string // type attribute
	Defer  bool   // defer attribute
	Async  bool   // async attribute
	Module bool   // type="module"
	Inline string // inline script content
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(ctx context.Context, w io.Writer, page PageData) error {
	_, span := r.tracer.Start(ctx, "render.Page")
	defer span.End()
	span.SetAttributes(attribute.String("render.title", page.Title))

	err := r.renderPage(w, page, func() {})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Warn("page render failed", "title", page.Title, "error", err)
	}
	return err
}

// renderPage writes the page, calling flush after the head and the body.
func (r *Renderer) renderPage(w io.Writer, page PageData, flush func()) error {
	lang := page.Lang
	if lang == "" {
		lang = r.config.Lang
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}

	if err := r.renderHead(w, page); err != nil {
		return err
	}
	flush()

	if _, err := io.WriteString(w, "<body>\n"); err != nil {
		return err
	}
	if err := r.renderMountPoint(w, page); err != nil {
		return err
	}
	flush()

	if err := r.renderClientScript(w); err != nil {
		return err
	}
	for _, script := range page.Scripts {
		if !script.Defer && !script.Async {
			if err := r.renderScriptTag(w, script); err != nil {
				return err
			}
		}
	}

	if _, err := io.WriteString(w, "</body>\n</html>\n"); err != nil {
		return err
	}
	flush()
	return nil
}

// renderMountPoint writes the body inside the mount point element.
func (r *Renderer) renderMountPoint(w io.Writer, page PageData) error {
	if _, err := fmt.Fprintf(w, `<div id="%s">`, escapeAttr(r.config.MountID)); err != nil {
		return err
	}
	if page.Body != nil {
		if err := r.RenderToWriter(w, page.Body); err != nil {
			return err
		}
	} else if _, err := io.WriteString(w, page.BodyHTML); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</div>\n")
	return err
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<head>\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `  <meta charset="utf-8">`+"\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `  <meta name="viewport" content="width=device-width, initial-scale=1">`+"\n"); err != nil {
		return err
	}

	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeText(page.Title)); err != nil {
			return err
		}
	}

	for _, meta := range page.Meta {
		if err := r.renderMetaTag(w, meta); err != nil {
			return err
		}
	}

	for _, link := range page.Links {
		if err := r.renderLinkTag(w, link); err != nil {
			return err
		}
	}

	for _, href := range page.StyleSheets {
		if _, err := fmt.Fprintf(w, `  <link rel="stylesheet" href="%s">`+"\n", escapeAttr(href)); err != nil {
			return err
		}
	}

	for _, style := range page.Styles {
		if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", style); err != nil {
			return err
		}
	}

	// Scripts in head (defer/async)
	for _, script := range page.Scripts {
		if script.Defer || script.Async {
			if err := r.renderScriptTag(w, script); err != nil {
				return err
			}
		}
	}

	if page.HeadHTML != "" {
		if _, err := fmt.Fprintf(w, "  %s\n", page.HeadHTML); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</head>\n")
	return err
}

// renderMetaTag renders a meta element.
func (r *Renderer) renderMetaTag(w io.Writer, meta MetaTag) error {
	return writeTag(w, "meta", []attr{
		{"charset", meta.Charset},
		{"name", meta.Name},
		{"property", meta.Property},
		{"http-equiv", meta.HTTPEquiv},
		{"content", meta.Content},
	})
}

// renderLinkTag renders a link element.
func (r *Renderer) renderLinkTag(w io.Writer, link LinkTag) error {
	return writeTag(w, "link", []attr{
		{"rel", link.Rel},
		{"href", link.Href},
		{"type", link.Type},
		{"sizes", link.Sizes},
		{"crossorigin", link.CrossOrigin},
		{"media", link.Media},
	})
}

type attr struct {
	name, value string
}

// writeTag writes an indented void tag, skipping empty attributes.
func writeTag(w io.Writer, tag string, attrs []attr) error {
	if _, err := fmt.Fprintf(w, "  <%s", tag); err != nil {
		return err
	}
	for _, a := range attrs {
		if a.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.name, escapeAttr(a.value)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">\n")
	return err
}

// renderScriptTag renders a script element.
func (r *Renderer) renderScriptTag(w io.Writer, script ScriptTag) error {
	if _, err := io.WriteString(w, "  <script"); err != nil {
		return err
	}

	if script.Src != "" {
		if _, err := fmt.Fprintf(w, ` src="%s"`, escapeAttr(script.Src)); err != nil {
			return err
		}
	}

	if script.Module {
		if _, err := io.WriteString(w, ` type="module"`); err != nil {
			return err
		}
	} else if script.Type != "" {
		if _, err := fmt.Fprintf(w, ` type="%s"`, escapeAttr(script.Type)); err != nil {
			return err
		}
	}

	if script.Defer {
		if _, err := io.WriteString(w, " defer"); err != nil {
			return err
		}
	}
	if script.Async {
		if _, err := io.WriteString(w, " async"); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, ">%s</script>\n", script.Inline); err != nil {
		return err
	}
	return nil
}

// liveScript replaces the mount point content with each markup message and
// reports clicks on elements with an id as event messages.
const liveScript = `(function(){` +
	`var p=location.protocol==="https:"?"wss://":"ws://";` +
	`var ws=new WebSocket(p+location.host+"%s");` +
	`ws.onmessage=function(e){var m=JSON.parse(e.data);` +
	`if(m.type==="markup"){document.getElementById("%s").innerHTML=m.html;}};` +
	`document.addEventListener("click",function(e){` +
	`var t=e.target.closest&&e.target.closest("[id]");` +
	`if(t&&ws.readyState===1){ws.send(JSON.stringify({type:"event",id:t.id,event:"click"}));}});` +
	`})();`

// renderClientScript writes the live connection script and the optional
// client script.
func (r *Renderer) renderClientScript(w io.Writer) error {
	if r.config.LiveURL != "" {
		script := fmt.Sprintf(liveScript, escapeJS(r.config.LiveURL), escapeJS(r.config.MountID))
		if _, err := fmt.Fprintf(w, "  <script>%s</script>\n", script); err != nil {
			return err
		}
	}
	if r.config.ClientScript != "" {
		return r.renderScriptTag(w, ScriptTag{Src: r.config.ClientScript, Defer: true})
	}
	return nil
}

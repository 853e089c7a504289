package render

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/dom"
)

func counter(tree *dom.Tree) dom.Element {
	div := tree.Element("div")
	div.SetAttribute("class", "counter")
	p := tree.Element("p")
	p.AppendChildNow(tree.Text("count: 3"))
	div.AppendChildNow(p)
	return div
}

func TestRenderToString(t *testing.T) {
	tree := dom.NewTree(nil)
	r := NewRenderer(RendererConfig{})

	got, err := r.RenderToString(counter(tree))
	if err != nil {
		t.Fatalf("RenderToString() error = %v", err)
	}
	if want := `<div class="counter"><p>count: 3</p></div>`; got != want {
		t.Errorf("RenderToString() = %q, want %q", got, want)
	}

	if got, _ := r.RenderToString(nil); got != "" {
		t.Errorf("RenderToString(nil) = %q, want empty", got)
	}
}

func TestRenderToStringError(t *testing.T) {
	tree := dom.NewTree(nil)
	hr := tree.Element("hr")
	hr.AppendChildNow(tree.Text("x"))

	_, err := NewRenderer(RendererConfig{}).RenderToString(hr)
	if !errors.HasCode(err, "E100") {
		t.Errorf("error = %v, want E100", err)
	}
}

func TestRenderPage(t *testing.T) {
	tree := dom.NewTree(nil)
	r := NewRenderer(RendererConfig{MountID: "root", LiveURL: "/live"})

	var buf bytes.Buffer
	err := r.RenderPage(context.Background(), &buf, PageData{
		Body:        counter(tree),
		Title:       "Tom & Jerry",
		Lang:        "fr",
		Meta:        []MetaTag{{Name: "description", Content: `a "quoted" page`}},
		Links:       []LinkTag{{Rel: "icon", Href: "/favicon.ico"}},
		StyleSheets: []string{"/app.css"},
		Scripts:     []ScriptTag{{Src: "/head.js", Defer: true}, {Inline: "boot()"}},
		HeadHTML:    `<style id="theme">p{}</style>`,
	})
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	html := buf.String()

	checks := []string{
		"<!DOCTYPE html>\n",
		`<html lang="fr">`,
		"<title>Tom &amp; Jerry</title>",
		`<meta name="description" content="a &#34;quoted&#34; page">`,
		`<link rel="icon" href="/favicon.ico">`,
		`<link rel="stylesheet" href="/app.css">`,
		`<script src="/head.js" defer></script>`,
		`<style id="theme">p{}</style>`,
		`<div id="root"><div class="counter"><p>count: 3</p></div></div>`,
		`new WebSocket(p+location.host+"/live")`,
		`<script>boot()</script>`,
		"</body>\n</html>\n",
	}
	for _, want := range checks {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q\n%s", want, html)
		}
	}
	if strings.Index(html, "/head.js") > strings.Index(html, "</head>") {
		t.Error("deferred script should be in head")
	}
}

func TestRenderPageDefaults(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	if r.Config().MountID != DefaultMountID || r.Config().Lang != "en" {
		t.Errorf("Config() = %+v", r.Config())
	}

	var buf bytes.Buffer
	if err := r.RenderPage(context.Background(), &buf, PageData{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `<div id="app"></div>`) {
		t.Errorf("empty body should render an empty mount point:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "WebSocket") {
		t.Error("live script rendered without LiveURL")
	}
}

func TestStreamingRendererFlushes(t *testing.T) {
	var buf bytes.Buffer
	fw := &FlushableWriter{Writer: &buf}
	sr := &StreamingRenderer{
		Renderer: NewRenderer(RendererConfig{}),
		flusher:  fw,
		w:        fw,
	}

	tree := dom.NewTree(nil)
	if err := sr.RenderPage(context.Background(), PageData{Body: counter(tree), Title: "Flush"}); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	// head, body and end of document
	if fw.FlushCount != 3 {
		t.Errorf("FlushCount = %d, want 3", fw.FlushCount)
	}
	if !strings.Contains(buf.String(), "<p>count: 3</p>") {
		t.Error("body missing")
	}
}

func TestStreamingRendererWithRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	sr := NewStreamingRenderer(w, RendererConfig{})
	tree := dom.NewTree(nil)

	if err := sr.RenderPage(context.Background(), PageData{Body: tree.Text("hi")}); err != nil {
		t.Fatal(err)
	}
	if !w.Flushed {
		t.Error("recorder was not flushed")
	}
	if !strings.Contains(w.Body.String(), `<div id="app">hi</div>`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`a"b`, "a&#34;b"},
		{"<&>", "&lt;&amp;&gt;"},
		{"it's", "it&#39;s"},
		{"a\nb\tc\r", "a&#10;b&#9;c&#13;"},
	}
	for _, tt := range tests {
		if got := escapeAttr(tt.in); got != tt.want {
			t.Errorf("escapeAttr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeJS(t *testing.T) {
	got := escapeJS(`</script>"\`)
	want := `\u003c/script\u003e\"\\`
	if got != want {
		t.Errorf("escapeJS() = %q, want %q", got, want)
	}
}

func TestRenderPageBodyHTML(t *testing.T) {
	r := NewRenderer(RendererConfig{})

	var buf bytes.Buffer
	if err := r.RenderPage(context.Background(), &buf, PageData{BodyHTML: "<p>live</p>"}); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if !strings.Contains(buf.String(), `<div id="app"><p>live</p></div>`) {
		t.Errorf("page = %q, want BodyHTML inside the mount point", buf.String())
	}
}

func TestStreamingRendererWith(t *testing.T) {
	tree := dom.NewTree(nil)
	rec := httptest.NewRecorder()
	sr := NewStreamingRendererWith(rec, NewRenderer(RendererConfig{MountID: "m"}))
	if err := sr.RenderPage(context.Background(), PageData{Body: tree.Text("x")}); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if !strings.Contains(rec.Body.String(), `<div id="m">x</div>`) {
		t.Errorf("body = %q", rec.Body.String())
	}
	if !rec.Flushed {
		t.Error("recorder was not flushed")
	}
}

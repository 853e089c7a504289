package ssr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/render"
	"github.com/vango-dev/lattice/pkg/telemetry"
)

// counterPage builds a button that increments a count shown in a paragraph.
func counterPage(t *dom.Tree) (dom.Element, error) {
	count := 0
	label := t.Text("0")

	inc := t.Element("button")
	inc.SetAttribute("id", "inc")
	inc.AppendChildNow(t.Text("+"))
	inc.On("click", func(any) {
		count++
		label.SetText(strconv.Itoa(count))
	})

	p := t.Element("p")
	p.AppendChildNow(label)

	root := t.Element("div")
	root.AppendChildNow(inc)
	root.AppendChildNow(p)
	return root, nil
}

func newTestServer(t *testing.T) (*Server, *telemetry.Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
	s := New(Config{Metrics: m, Gatherer: reg, StyleSheets: []string{"/app.css"}})
	return s, m, reg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServerHandle(t *testing.T) {
	s, _, _ := newTestServer(t)

	var dry bool
	s.Handle("/", func(r *http.Request, tree *dom.Tree) (render.PageData, error) {
		dry = tree.IsDry()
		h1 := tree.Element("h1")
		if err := h1.AppendChildNow(tree.Text("Hello " + r.URL.Query().Get("name"))); err != nil {
			return render.PageData{}, err
		}
		return render.PageData{Title: "Home", Body: h1}, nil
	})

	rec := get(t, s.Handler(), "/?name=%3Cyou%3E")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<div id="app"><h1>Hello &lt;you&gt;</h1></div>`) {
		t.Errorf("body = %q, want escaped h1 in mount point", body)
	}
	if !strings.Contains(body, `href="/app.css"`) {
		t.Error("server stylesheet missing from page")
	}
	if !dry {
		t.Error("pages must be built on a dry tree")
	}
}

func TestServerHealthAndNotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := get(t, s.Handler(), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(t, s.Handler(), "/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", rec.Code)
	}
}

func TestServerMetrics(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.Handle("/", func(r *http.Request, tree *dom.Tree) (render.PageData, error) {
		return render.PageData{Body: tree.Text("x")}, nil
	})

	get(t, s.Handler(), "/")
	get(t, s.Handler(), "/")

	rec := get(t, s.Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	want := `lattice_http_requests_total{route="/",status="200"} 2`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics missing %q:\n%s", want, rec.Body.String())
	}
}

func TestServerPageError(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.Handle("/broken", func(r *http.Request, tree *dom.Tree) (render.PageData, error) {
		return render.PageData{}, errors.New("E100")
	})

	rec := get(t, s.Handler(), "/broken")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<html") {
		t.Errorf("body = %q, want no page", rec.Body.String())
	}
}

func TestNewLiveBuildError(t *testing.T) {
	_, err := NewLive(func(*dom.Tree) (dom.Element, error) {
		return dom.Element{}, errors.New("E100")
	})
	if !errors.HasCode(err, "E100") {
		t.Errorf("NewLive() error = %v, want E100", err)
	}
}

func TestServerRecoversPanics(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.Handle("/boom", func(r *http.Request, tree *dom.Tree) (render.PageData, error) {
		panic("boom")
	})

	rec := get(t, s.Handler(), "/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestLiveDispatch(t *testing.T) {
	live, err := NewLive(counterPage)
	if err != nil {
		t.Fatalf("NewLive() error = %v", err)
	}
	if live.Tree().IsDry() {
		t.Fatal("live tree must have a surface")
	}
	if live.Root().IsThunk() {
		t.Error("live root should be materialized")
	}

	before := live.Markup()
	if !strings.Contains(before, "<p>0</p>") {
		t.Fatalf("Markup() = %q, want <p>0</p>", before)
	}

	n, err := live.Dispatch(context.Background(), "inc", "click", nil)
	if err != nil || n != 1 {
		t.Fatalf("Dispatch() = %d, %v, want 1, nil", n, err)
	}
	if got := live.Markup(); !strings.Contains(got, "<p>1</p>") {
		t.Errorf("Markup() = %q, want <p>1</p>", got)
	}

	if n, err := live.Dispatch(context.Background(), "inc", "dblclick", nil); n != 0 || err != nil {
		t.Errorf("Dispatch(unbound event) = %d, %v, want 0, nil", n, err)
	}
	if _, err := live.Dispatch(context.Background(), "nope", "click", nil); !errors.HasCode(err, "E081") {
		t.Errorf("Dispatch(unknown id) = %v, want E081", err)
	}
}

func TestLiveUpdate(t *testing.T) {
	live, err := NewLive(counterPage)
	if err != nil {
		t.Fatal(err)
	}

	err = live.Update(context.Background(), func(root dom.Element) {
		footer := live.Tree().Element("footer")
		footer.AppendChildNow(live.Tree().Text("end"))
		root.AppendChildNow(footer)
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := live.Markup(); !strings.HasSuffix(got, "<footer>end</footer></div>") {
		t.Errorf("Markup() = %q, want footer appended", got)
	}
}

func TestLiveWebSocket(t *testing.T) {
	s, _, _ := newTestServer(t)
	live, err := NewLive(counterPage)
	if err != nil {
		t.Fatal(err)
	}
	s.HandleLive("/", live, render.PageData{Title: "Counter"})

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(page), `<div id="app"><div><button id="inc">+</button><p>0</p></div></div>`) {
		t.Errorf("live page = %q", page)
	}
	if !strings.Contains(string(page), `new WebSocket(p+location.host+"/live")`) {
		t.Error("live page missing websocket script")
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if msg.Type != MessageMarkup || !strings.Contains(msg.HTML, "<p>0</p>") {
		t.Errorf("snapshot = %+v", msg)
	}

	if err := conn.WriteJSON(Message{Type: MessageEvent, ID: "inc", Event: "click"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if !strings.Contains(msg.HTML, "<p>1</p>") {
		t.Errorf("update = %q, want <p>1</p>", msg.HTML)
	}
	if n := live.Hub().ClientCount(); n != 1 {
		t.Errorf("ClientCount() = %d, want 1", n)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package demo

import (
	"context"
	"strings"

	"github.com/vango-dev/lattice/internal/errors"
	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/surface/htmlsurface"
	"github.com/vango-dev/lattice/pkg/update"
	"golang.org/x/net/html"
)

// RoundTrip renders build on a dry tree, parses the markup, hydrates a
// second build on a live tree over the parsed nodes and serializes the
// result. It returns the server markup, and an E140 error when the
// hydrated markup differs from it.
func RoundTrip(ctx context.Context, build func(t *dom.Tree) (dom.Element, error)) (string, error) {
	server, err := build(dom.NewTree(nil, dom.WithQueue(update.New())))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := server.WriteMarkup(&b); err != nil {
		return "", err
	}
	markup := b.String()

	container, err := htmlsurface.ParseFragment(markup)
	if err != nil {
		return markup, err
	}
	first := container.FirstChild
	for first != nil && first.Type != html.ElementNode {
		first = first.NextSibling
	}
	if first == nil {
		return markup, errors.New("E082").AtPath("body")
	}

	live := dom.NewTree(htmlsurface.New(), dom.WithQueue(update.New()))
	client, err := build(live)
	if err != nil {
		return markup, err
	}
	if _, err := client.Hydrate(ctx, first); err != nil {
		return markup, err
	}

	var got string
	for n := container.FirstChild; n != nil; n = n.NextSibling {
		got += htmlsurface.Render(n)
	}
	if got != markup {
		return markup, errors.New("E140").WithMismatch(markup, got)
	}
	return markup, nil
}

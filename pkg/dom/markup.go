package dom

import (
	"bufio"
	"strings"

	"github.com/vango-dev/lattice/internal/errors"
	"golang.org/x/net/html"
)

// voidElements never have children and are written as self-closing tags.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"keygen": true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// rawTextElements have their text children written without escaping.
var rawTextElements = map[string]bool{
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"noscript":  true,
	"plaintext": true,
	"script":    true,
	"style":     true,
	"xmp":       true,
}

// writeMarkup writes the element the same way x/net/html renders an
// equivalent parsed node, so virtual and live output agree byte for byte.
func (e Element) writeMarkup(w *bufio.Writer) error {
	if !e.IsThunk() {
		return e.d.tree.surface.Serialize(w, e.live().handle)
	}

	d, v := e.d, e.virt()
	w.WriteByte('<')
	w.WriteString(d.tag)
	for _, a := range v.attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		w.WriteString(html.EscapeString(a.Value))
		w.WriteByte('"')
	}

	if voidElements[d.tag] {
		if len(v.children) > 0 {
			return errors.New("E100").AtPath(d.tag)
		}
		_, err := w.WriteString("/>")
		return err
	}
	w.WriteByte('>')

	if len(v.children) > 0 {
		if t, ok := v.children[0].Text(); ok && strings.HasPrefix(t.Data(), "\n") {
			switch d.tag {
			case "pre", "listing", "textarea":
				w.WriteByte('\n')
			}
		}
	}

	raw := d.namespace == "" && rawTextElements[d.tag]
	for _, c := range v.children {
		var err error
		switch {
		case c.elem != nil:
			err = Element{d: c.elem}.writeMarkup(w)
		case raw:
			_, err = w.WriteString(Text{d: c.text}.Data())
		default:
			err = Text{d: c.text}.writeMarkup(w)
		}
		if err != nil {
			return err
		}
	}

	w.WriteString("</")
	w.WriteString(d.tag)
	return w.WriteByte('>')
}

func (t Text) writeMarkup(w *bufio.Writer) error {
	if !t.IsThunk() {
		return t.d.tree.surface.Serialize(w, t.d.cell.Value().handle)
	}
	_, err := w.WriteString(html.EscapeString((*t.d.cell.Thunk()).text))
	return err
}

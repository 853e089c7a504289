package render

import (
	"strings"

	"golang.org/x/net/html"
)

// escapeText escapes text content the way html.Render does.
func escapeText(s string) string {
	return html.EscapeString(s)
}

// escapeAttr escapes an attribute value. Whitespace that could break
// attribute parsing is written as character references.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&#34;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeJS makes s safe inside a double quoted JavaScript string in a
// <script> element.
func escapeJS(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "<", `\u003c`, ">", `\u003e`, "\n", `\n`, "\r", `\r`)
	return r.Replace(s)
}

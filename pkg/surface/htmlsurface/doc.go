// Package htmlsurface implements dom.Surface over golang.org/x/net/html
// nodes.
//
// Handles are *html.Node. The surface is the live target used for
// server-side live trees and for hydrating markup parsed with ParseFragment
// or ParseDocument. Serialization is html.Render, so markup written by a
// virtual dom tree and by the same tree once live is identical.
//
// A Surface is not safe for concurrent use.
package htmlsurface

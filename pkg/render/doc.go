// Package render writes dom trees as complete HTML pages.
//
// Pages are rendered from dry or virtual trees, so rendering never creates
// surface objects. The body node is wrapped in a mount point element whose
// id is the configured MountID; a client, or document.Document.Hydrate,
// later takes over the markup inside it.
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// # Full Page Rendering
//
//	page := render.PageData{
//	    Body:     root,
//	    Title:    "Counter",
//	    HeadHTML: doc.HeadInnerHTML(),
//	}
//	err := renderer.RenderPage(w, page)
//
// # Streaming
//
// StreamingRenderer flushes after the head and after the body:
//
//	sr := render.NewStreamingRenderer(w, config)
//	err := sr.RenderPage(ctx, page)
package render

// Package export writes rendered pages to a static store.
//
// An Exporter renders every page with a dry dom.Tree through pkg/render and
// hands the markup to a Store. Two stores are provided: DirStore writes to
// the local filesystem and S3Store uploads objects with the AWS SDK.
//
//	store, _ := export.NewDirStore("dist")
//	exp := export.New(store, render.NewRenderer(render.RendererConfig{}))
//	result, err := exp.Export(ctx, []export.Page{{Path: "/", Build: home}})
package export

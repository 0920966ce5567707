// Package web embeds the storefront templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// Templates holds the page templates, layout.html at the root.
var Templates fs.FS = mustSub(templateFiles, "templates")

// Static holds the files served under /static/.
var Static fs.FS = mustSub(staticFiles, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package view renders the server-side HTML pages.

Templates use the Django syntax of pongo2 and are embedded into the binary,
so the API has no runtime dependency on the working directory. Every page
receives `current_user` (the session identity, or nil) and `request_id` in
addition to its own data.
*/
package view

import (
	"bytes"
	"embed"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/flosch/pongo2/v6"

	"github.com/taibuivan/chirper/internal/platform/ctxutil"
)

// # Page Names

const (
	PageLogin    = "login.html"
	PageRegister = "register.html"
	PageSettings = "settings.html"
	PageHome     = "home.html"
	PagePost     = "post.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// embedLoader resolves template names against the embedded templates directory.
type embedLoader struct {
	fs embed.FS
}

func (loader embedLoader) Abs(_, name string) string {
	return path.Join("templates", path.Clean("/"+name))
}

func (loader embedLoader) Get(name string) (io.Reader, error) {
	data, err := loader.fs.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// Data is the per-page template context.
type Data = pongo2.Context

// Renderer executes embedded templates into HTTP responses.
type Renderer struct {
	set *pongo2.TemplateSet
}

// NewRenderer builds a renderer. In debug mode templates are re-parsed on every render.
func NewRenderer(debug bool) *Renderer {
	set := pongo2.NewSet("chirper", embedLoader{fs: templateFS})
	set.Debug = debug
	return &Renderer{set: set}
}

/*
Render writes page with status.

Parameters:
  - writer: http.ResponseWriter
  - request: *http.Request
  - status: int
  - page: string (one of the Page* constants)
  - data: Data (may be nil)
*/
func (renderer *Renderer) Render(writer http.ResponseWriter, request *http.Request, status int, page string, data Data) {
	ctx := pongo2.Context{
		"current_user": ctxutil.GetIdentity(request.Context()),
		"request_id":   ctxutil.GetRequestID(request.Context()),
	}
	ctx.Update(data)

	var buffer bytes.Buffer
	if err := renderer.execute(page, ctx, &buffer); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "view_render_failed",
			slog.String("page", page),
			slog.Any("error", err),
		)
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_, _ = buffer.WriteTo(writer)
}

func (renderer *Renderer) execute(page string, ctx pongo2.Context, out io.Writer) error {
	template, err := renderer.set.FromCache(page)
	if err != nil {
		return err
	}
	return template.ExecuteWriter(ctx, out)
}

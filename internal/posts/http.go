// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/constants"
	"github.com/taibuivan/chirper/internal/platform/middleware"
	requestutil "github.com/taibuivan/chirper/internal/platform/request"
	"github.com/taibuivan/chirper/internal/platform/respond"
	"github.com/taibuivan/chirper/internal/platform/view"
	"github.com/taibuivan/chirper/pkg/pagination"
)

// Handler implements the post endpoints.
type Handler struct {
	service        *Service
	renderer       *view.Renderer
	maxUploadBytes int64
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, renderer *view.Renderer, maxUploadBytes int64) *Handler {
	return &Handler{service: service, renderer: renderer, maxUploadBytes: maxUploadBytes}
}

// Routes returns a [chi.Router] configured with post routes.
//
// # Endpoints
//   - GET  /                : Home timeline, paged (anonymous allowed).
//   - GET  /{id}            : One post as JSON.
//   - POST /                : New post, multipart `body` and optional `file`.
//   - POST /{id}/attachment : Replace the attachment of an own post.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.home)
	router.Get("/{"+FieldPostID+"}", handler.get)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Post("/", handler.create)
		r.Post("/{"+FieldPostID+"}/attachment", handler.attach)
	})

	return router
}

/*
Home lists the timeline.

GET /posts?page=&limit=

Description: Browsers get the home page; clients accepting JSON get the page
of posts with pagination metadata.
*/
func (handler *Handler) home(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	posts, total, err := handler.service.Timeline(request.Context(), paginationParams)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	meta := pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total)
	if wantsJSON(request) {
		respond.Paginated(writer, posts, meta)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, view.PageHome, view.Data{
		"posts":    posts,
		"page":     meta,
		"has_prev": meta.HasPrev(),
		"has_next": meta.HasNext(),
		"prev":     meta.Page - 1,
		"next":     meta.Page + 1,
	})
}

/*
Get returns a single post.

GET /posts/{id}

Description: JSON by default; browsers asking for text/html get the post page.
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	post, err := handler.service.Get(request.Context(), requestutil.Param(request, FieldPostID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if wantsHTML(request) {
		handler.renderer.Render(writer, request, http.StatusOK, view.PagePost, view.Data{"post": post})
		return
	}
	respond.OK(writer, post)
}

/*
Create publishes a post.

POST /posts

Response:
  - 302: Back to the timeline for form submissions
  - 201: The post, for clients accepting JSON
  - 400: Empty or too long body, or a file that is not an image
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.ParseForm(writer, request, handler.maxUploadBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := CreateInput{Body: request.PostFormValue(FieldBody)}
	input.Image, input.ImageName, err = requestutil.FormFile(request, FieldFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.Create(request.Context(), identity, input)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	if wantsJSON(request) {
		respond.Created(writer, post)
		return
	}
	http.Redirect(writer, request, constants.HomePath, http.StatusFound)
}

// Attach handles POST /posts/{id}/attachment.
func (handler *Handler) attach(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.ParseForm(writer, request, handler.maxUploadBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	data, name, err := requestutil.FormFile(request, FieldFile)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.AttachImage(request.Context(), identity, requestutil.Param(request, FieldPostID), data, name)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

// fail answers form posts with plain text and API clients with the JSON envelope.
func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	if wantsJSON(request) {
		respond.Error(writer, request, err)
		return
	}
	appErr := respond.Classify(request, err)
	if appErr.Code == apperr.CodeInternal || appErr.Code == apperr.CodeStorage {
		http.Error(writer, http.StatusText(appErr.HTTPStatus), appErr.HTTPStatus)
		return
	}
	http.Error(writer, appErr.Message, appErr.HTTPStatus)
}

func wantsJSON(request *http.Request) bool {
	return strings.Contains(request.Header.Get("Accept"), "application/json")
}

func wantsHTML(request *http.Request) bool {
	return strings.Contains(request.Header.Get("Accept"), "text/html")
}

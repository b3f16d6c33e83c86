// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/constants"
	"github.com/taibuivan/chirper/internal/platform/respond"
	"github.com/taibuivan/chirper/pkg/uuid"
)

// Handler serves stored images read-only, whatever the backing [Store].
type Handler struct {
	store Store
}

// NewHandler creates a [Handler].
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes mounts GET /{prefix}/{file}.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{prefix}/{file}", handler.serve)
	return router
}

// serve only answers keys of the form "<prefix>/<uuid>.png" for a known category prefix.
func (handler *Handler) serve(writer http.ResponseWriter, request *http.Request) {
	prefix := chi.URLParam(request, "prefix")
	file := chi.URLParam(request, "file")

	stem, isPNG := strings.CutSuffix(file, ".png")
	if !isPNG || !uuid.Valid(stem) || (prefix != constants.AvatarPrefix && prefix != constants.AttachmentPrefix) {
		respond.Error(writer, request, apperr.NotFound("Image"))
		return
	}
	key := path.Join(prefix, file)

	data, err := handler.store.Get(request.Context(), key)
	if errors.Is(err, ErrObjectNotFound) {
		respond.Error(writer, request, apperr.NotFound("Image"))
		return
	}
	if err != nil {
		respond.Error(writer, request, apperr.StorageError(err))
		return
	}

	writer.Header().Set("Content-Type", pngContentType)
	writer.Header().Set("X-Content-Type-Options", "nosniff")
	writer.Header().Set("Cache-Control", "no-cache")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(data)
}

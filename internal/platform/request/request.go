// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns (JSON and multipart forms), ensuring consistent error
handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/ctxutil"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/platform/validate"
	"github.com/taibuivan/chirper/pkg/pointer"
)

// multipartMemory is the in-memory part of a parsed multipart form; the rest spills to disk.
const multipartMemory = 8 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ParseForm parses an urlencoded or multipart body, capping its size at maxBytes.

Parameters:
  - writer: http.ResponseWriter (needed by [http.MaxBytesReader])
  - request: *http.Request
  - maxBytes: int64

Returns:
  - error: validate.ErrInvalidForm when the body is malformed or too large
*/
func ParseForm(writer http.ResponseWriter, request *http.Request, maxBytes int64) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes)

	var err error
	if strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/form-data") {
		err = request.ParseMultipartForm(multipartMemory)
	} else {
		err = request.ParseForm()
	}
	if err != nil {
		return validate.ErrInvalidForm.WithCause(err)
	}
	return nil
}

/*
FormFile returns the bytes and declared name of an uploaded file field.
A missing or empty field yields (nil, "", nil).

Parameters:
  - request: *http.Request (already parsed with [ParseForm])
  - field: string

Returns:
  - []byte: File content
  - string: Client-declared filename
  - error: Read failures
*/
func FormFile(request *http.Request, field string) ([]byte, string, error) {
	file, header, err := request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("request_form_file_failed: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("request_form_file_read_failed: %w", err)
	}
	if len(data) == 0 {
		return nil, "", nil
	}
	return data, header.Filename, nil
}

// OptionalFormValue returns a pointer to a trimmed form value, or nil when the field is absent or blank.
func OptionalFormValue(request *http.Request, field string) *string {
	raw, ok := request.Form[field]
	if !ok || len(raw) == 0 {
		return nil
	}
	value := strings.TrimSpace(raw[0])
	if value == "" {
		return nil
	}
	return pointer.To(value)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Identity extracts the session identity from the request context.

Returns nil if the request is anonymous.
*/
func Identity(request *http.Request) *sec.Identity {
	return ctxutil.GetIdentity(request.Context())
}

/*
RequiredIdentity ensures the request carries a session and returns it.

Returns:
  - *sec.Identity: The authenticated principal
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredIdentity(request *http.Request) (*sec.Identity, error) {
	identity := ctxutil.GetIdentity(request.Context())
	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return identity, nil
}

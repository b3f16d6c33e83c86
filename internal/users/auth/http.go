// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/constants"
	"github.com/taibuivan/chirper/internal/platform/ctxutil"
	"github.com/taibuivan/chirper/internal/platform/middleware"
	requestutil "github.com/taibuivan/chirper/internal/platform/request"
	"github.com/taibuivan/chirper/internal/platform/respond"
	"github.com/taibuivan/chirper/internal/platform/view"
)

// # Definitions & Constructors

// Handler serves the login, registration, token and logout endpoints.
type Handler struct {
	service        *Service
	renderer       *view.Renderer
	cookie         middleware.SessionCookie
	maxUploadBytes int64
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, renderer *view.Renderer, cookie middleware.SessionCookie, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		renderer:       renderer,
		cookie:         cookie,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - GET  /          : Login page.
//   - POST /          : Form login, sets the cookie and redirects.
//   - GET  /register  : Registration page.
//   - POST /register  : Multipart registration with optional avatar.
//   - POST /token     : Form login answering with JSON.
//   - GET  /logout    : Clears the session cookie.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.loginPage)
	router.Post("/", handler.login)
	router.Get("/register", handler.registerPage)
	router.Post("/register", handler.register)
	router.Post("/token", handler.token)
	router.Get("/logout", handler.logout)

	return router
}

// # Login

func (handler *Handler) loginPage(writer http.ResponseWriter, request *http.Request) {
	handler.renderer.Render(writer, request, http.StatusOK, view.PageLogin, view.Data{
		FieldNext: safeNext(request.URL.Query().Get(FieldNext)),
	})
}

/*
Login handles the form login.

POST /auth

Description: On success the session cookie is set and the browser is sent to
the safe `next` target or the home page. Wrong credentials re-render the form.
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request, handler.maxUploadBytes); err != nil {
		handler.renderer.Render(writer, request, http.StatusBadRequest, view.PageLogin, view.Data{"msg": MsgUnknownError})
		return
	}

	username := request.PostFormValue(FieldUsername)
	next := safeNext(request.PostFormValue(FieldNext))

	session, err := handler.service.Login(request.Context(), username, request.PostFormValue(FieldPassword))
	if err != nil {
		data := view.Data{FieldUsername: username, FieldNext: next, "msg": MsgBadCredentials}
		status := http.StatusOK
		if !isCredentialError(err) {
			ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "auth_login_failed", slog.Any("error", err))
			data["msg"] = MsgUnknownError
			status = http.StatusInternalServerError
		}
		handler.renderer.Render(writer, request, status, view.PageLogin, data)
		return
	}

	handler.cookie.Set(writer, session.Token, session.ExpiresAt)

	if next == "" {
		next = constants.HomePath
	}
	http.Redirect(writer, request, next, http.StatusFound)
}

/*
Token handles the API login.

POST /auth/token

Response:
  - 200: {access_token, token_type, expires_at}; the cookie is set as well
  - 401: Bad credentials
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request, handler.maxUploadBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(),
		request.PostFormValue(FieldUsername),
		request.PostFormValue(FieldPassword),
	)
	if err != nil {
		if isCredentialError(err) {
			err = apperr.Unauthorized(MsgBadCredentials)
		}
		respond.Error(writer, request, err)
		return
	}

	handler.cookie.Set(writer, session.Token, session.ExpiresAt)
	respond.JSON(writer, http.StatusOK, map[string]any{
		FieldAccessToken: session.Token,
		FieldTokenType:   constants.TokenType,
		FieldExpiresAt:   session.ExpiresAt,
	})
}

// # Registration

func (handler *Handler) registerPage(writer http.ResponseWriter, request *http.Request) {
	handler.renderer.Render(writer, request, http.StatusOK, view.PageRegister, nil)
}

/*
Register handles account creation.

POST /auth/register

Description: Multipart form with an optional avatar. An undecodable avatar is
answered with 400 and nothing is persisted.
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request, handler.maxUploadBytes); err != nil {
		handler.renderer.Render(writer, request, http.StatusBadRequest, view.PageRegister, view.Data{"msg": MsgInvalidRegistration})
		return
	}

	input := RegisterInput{
		Username:        request.PostFormValue(FieldUsername),
		Email:           request.PostFormValue(FieldEmail),
		FirstName:       strings.TrimSpace(request.PostFormValue(FieldFirstName)),
		LastName:        strings.TrimSpace(request.PostFormValue(FieldLastName)),
		PhoneNumber:     strings.TrimSpace(request.PostFormValue(FieldPhoneNumber)),
		Password:        request.PostFormValue(FieldPassword),
		PasswordConfirm: request.PostFormValue(FieldPasswordConfirm),
	}

	avatar, avatarName, err := requestutil.FormFile(request, FieldAvatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.Avatar = avatar
	input.AvatarName = avatarName

	user, err := handler.service.Register(request.Context(), input)
	if err != nil {
		handler.renderRegisterError(writer, request, input, err)
		return
	}

	handler.renderer.Render(writer, request, http.StatusOK, view.PageLogin, view.Data{
		"msg":         MsgRegistered,
		FieldUsername: user.Username,
	})
}

func (handler *Handler) renderRegisterError(writer http.ResponseWriter, request *http.Request, input RegisterInput, err error) {
	input.Password, input.PasswordConfirm, input.Avatar = "", "", nil
	data := view.Data{"form": input, "msg": MsgInvalidRegistration}

	appErr := respond.Classify(request, err)
	switch appErr.Code {
	case apperr.CodeValidation:
		data["errors"] = appErr.Details
	case apperr.CodeConflict:
	default:
		data["msg"] = appErr.Message
	}

	status := appErr.HTTPStatus
	if appErr.Code == apperr.CodeValidation || appErr.Code == apperr.CodeConflict {
		status = http.StatusOK
	}
	handler.renderer.Render(writer, request, status, view.PageRegister, data)
}

// # Logout

// Logout clears the session cookie. Tokens are stateless, so a copied token
// stays valid until it expires.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.cookie.Clear(writer)
	handler.renderer.Render(writer, request, http.StatusOK, view.PageLogin, view.Data{"msg": MsgLoggedOut})
}

// # Helpers

func isCredentialError(err error) bool {
	return apperr.HasCode(err, apperr.CodeNotFound) ||
		apperr.HasCode(err, apperr.CodeBadCredential) ||
		apperr.HasCode(err, apperr.CodeValidation)
}

// safeNext keeps only same-site absolute paths so the login redirect cannot
// be pointed at another host.
func safeNext(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host != "" || parsed.Scheme != "" {
		return ""
	}
	return raw
}

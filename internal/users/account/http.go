// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/constants"
	"github.com/taibuivan/chirper/internal/platform/middleware"
	requestutil "github.com/taibuivan/chirper/internal/platform/request"
	"github.com/taibuivan/chirper/internal/platform/respond"
	"github.com/taibuivan/chirper/internal/platform/view"
)

// # Definitions & Constructors

// Handler implements the account endpoints. Every route needs a session.
type Handler struct {
	service        *Service
	renderer       *view.Renderer
	maxUploadBytes int64
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, renderer *view.Renderer, maxUploadBytes int64) *Handler {
	return &Handler{service: service, renderer: renderer, maxUploadBytes: maxUploadBytes}
}

// Routes returns a [chi.Router] configured with account routes.
//
// # Endpoints
//   - GET  /me                  : Current user as JSON.
//   - GET  /settings            : Settings page (redirects anonymous visitors).
//   - POST /settings            : Multipart settings form.
//   - PUT  /password            : JSON password change.
//   - PUT  /phone_number/{phone}: Phone number change.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Pages
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSessionOrRedirect(constants.LoginPath))
		r.Get("/settings", handler.settingsPage)
		r.Post("/settings", handler.updateSettings)
	})

	// API
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/me", handler.me)
		r.Put("/password", handler.changePassword)
		r.Put("/phone_number/{"+FieldPhoneParam+"}", handler.updatePhone)
	})

	return router
}

/*
Me returns the signed-in user's profile.

GET /users/me

Response:
  - 200: auth.User
  - 401: No session
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.GetProfile(request.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Settings

func (handler *Handler) settingsPage(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.GetProfile(request.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.render(writer, request, http.StatusOK, user, "")
}

/*
UpdateSettings handles the settings form.

POST /users/settings

Description: Re-renders the settings page with a status message. An invalid
avatar is answered with a bare 400 and no changes are saved.
*/
func (handler *Handler) updateSettings(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.ParseForm(writer, request, handler.maxUploadBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := SettingsInput{
		Email:           requestutil.OptionalFormValue(request, FieldEmail),
		FirstName:       requestutil.OptionalFormValue(request, FieldFirstName),
		LastName:        requestutil.OptionalFormValue(request, FieldLastName),
		PhoneNumber:     requestutil.OptionalFormValue(request, FieldPhoneNumber),
		CurrentPassword: request.PostFormValue(FieldCurrentPassword),
		NewPassword:     request.PostFormValue(FieldNewPassword),
	}

	input.Avatar, input.AvatarName, err = requestutil.FormFile(request, FieldAvatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdateSettings(request.Context(), identity.UserID, input)
	if err == nil {
		message := MsgNoChanges
		if result.Changed {
			message = MsgUpdated
		}
		handler.render(writer, request, http.StatusOK, result.User, message)
		return
	}

	appErr := respond.Classify(request, err)
	switch appErr.Code {
	case apperr.CodeInvalidImage:
		http.Error(writer, appErr.Message, appErr.HTTPStatus)
		return
	case apperr.CodeValidation, apperr.CodeBadCredential:
		user, loadErr := handler.service.GetProfile(request.Context(), identity.UserID)
		if loadErr != nil {
			respond.Error(writer, request, loadErr)
			return
		}
		message := appErr.Message
		if len(appErr.Details) == 1 && appErr.Details[0].Field == FieldCurrentPassword {
			message = appErr.Details[0].Message
		}
		handler.renderWithErrors(writer, request, user, message, appErr.Details)
	default:
		respond.Error(writer, request, appErr)
	}
}

func (handler *Handler) render(writer http.ResponseWriter, request *http.Request, status int, user *User, message string) {
	handler.renderer.Render(writer, request, status, view.PageSettings, view.Data{
		"user":       user,
		"avatar_url": avatarURL(user),
		"msg":        message,
	})
}

func (handler *Handler) renderWithErrors(writer http.ResponseWriter, request *http.Request, user *User, message string, details []apperr.FieldError) {
	data := view.Data{
		"user":       user,
		"avatar_url": avatarURL(user),
		"msg":        message,
	}
	if len(details) > 1 || (len(details) == 1 && details[0].Field != FieldCurrentPassword) {
		data["errors"] = details
	}
	handler.renderer.Render(writer, request, http.StatusOK, view.PageSettings, data)
}

func avatarURL(user *User) string {
	if key := user.AvatarKey(); key != "" {
		return "/static/" + key
	}
	return ""
}

// # Password & Phone

/*
ChangePassword updates the password after checking the current one.

PUT /users/password

Request:
  - Body: ChangePasswordInput

Response:
  - 204: Changed
  - 400: Validation
  - 401: Current password incorrect
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ChangePasswordInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ChangePassword(request.Context(), identity.UserID, input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// UpdatePhone handles PUT /users/phone_number/{phone}.
func (handler *Handler) updatePhone(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	phone, err := handler.service.UpdatePhone(request.Context(), identity.UserID, requestutil.Param(request, FieldPhoneParam))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldPhoneNumber: phone})
}

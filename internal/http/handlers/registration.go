package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
)

// Register — саморегистрация агента: /inscription или /inscription/{token}.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))

	if err := multipartForm(w, r); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	doc, err := formFile(r, "id_document")
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	in := models.RegistrationInput{
		Matricule:       strings.TrimSpace(r.FormValue("matricule")),
		FirstName:       strings.TrimSpace(r.FormValue("first_name")),
		LastName:        strings.TrimSpace(r.FormValue("last_name")),
		Phone:           strings.TrimSpace(r.FormValue("phone")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Address:         strings.TrimSpace(r.FormValue("address")),
		IDNumber:        strings.TrimSpace(r.FormValue("id_number")),
		ProjectType:     strings.TrimSpace(r.FormValue("project_type")),
		Username:        strings.TrimSpace(r.FormValue("username")),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
		IDDocument:      doc,
	}
	if err := h.check(in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.Register(r.Context(), token, in)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

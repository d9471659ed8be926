package handlers

import (
	"net/http"
	"strings"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
)

func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	items, err := h.API.Agents(r.Context(), models.AgentFilter{
		Status:    q.Get("status"),
		Matricule: q.Get("matricule"),
		Name:      q.Get("name"),
		Page:      page,
	})
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) CreateAgent(w http.ResponseWriter, r *http.Request) {
	if err := multipartForm(w, r); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	doc, err := formFile(r, "id_document")
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	in := models.AgentInput{
		Matricule:   strings.TrimSpace(r.FormValue("matricule")),
		FirstName:   strings.TrimSpace(r.FormValue("first_name")),
		LastName:    strings.TrimSpace(r.FormValue("last_name")),
		Phone:       strings.TrimSpace(r.FormValue("phone")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Address:     strings.TrimSpace(r.FormValue("address")),
		IDNumber:    strings.TrimSpace(r.FormValue("id_number")),
		ProjectType: strings.TrimSpace(r.FormValue("project_type")),
		Status:      models.AgentStatus(r.FormValue("status")),
		IDDocument:  doc,
	}
	if err := h.check(in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.CreateAgent(r.Context(), in)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

package handlers

import (
	"net/http"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
)

func (h *Handlers) ListIncidents(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	items, err := h.API.Incidents(r.Context(), models.IncidentFilter{
		IncidentType: q.Get("incident_type"),
		Status:       q.Get("status"),
		Equipement:   q.Get("equipement"),
		Agent:        q.Get("agent"),
		Page:         page,
	})
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// CreateIncident: reported_at приходит датой формы и уходит в API как ISO 8601.
func (h *Handlers) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var in models.IncidentInput
	if err := decodeStrict(w, r, &in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}
	if err := h.check(in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	var err error
	if in.ReportedAt, err = isoDate("reported_at", in.ReportedAt); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.CreateIncident(r.Context(), in)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) ListInvites(w http.ResponseWriter, r *http.Request) {
	items, err := h.API.Invites(r.Context())
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var in models.InviteInput
	if err := decodeStrict(w, r, &in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}
	if err := h.check(in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	var err error
	if in.ExpiresAt, err = isoDate("expires_at", in.ExpiresAt); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.CreateInvite(r.Context(), in)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

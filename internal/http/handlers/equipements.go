package handlers

import (
	"net/http"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
)

func (h *Handlers) ListEquipements(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	items, err := h.API.Equipements(r.Context(), models.EquipementFilter{
		Type:         q.Get("type"),
		Status:       q.Get("status"),
		Condition:    q.Get("condition"),
		SerialNumber: q.Get("serial_number"),
		IMEI:         q.Get("imei"),
		Page:         page,
	})
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) CreateEquipement(w http.ResponseWriter, r *http.Request) {
	var in models.EquipementInput
	if err := decodeStrict(w, r, &in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}
	if err := h.check(in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.CreateEquipement(r.Context(), in)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

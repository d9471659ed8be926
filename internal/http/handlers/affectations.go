package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
)

func (h *Handlers) ListAffectations(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	items, err := h.API.Affectations(r.Context(), models.AffectationFilter{
		Agent:            q.Get("agent"),
		Equipement:       q.Get("equipement"),
		IsActive:         q.Get("is_active"),
		AssignedAtAfter:  q.Get("assigned_at_after"),
		AssignedAtBefore: q.Get("assigned_at_before"),
		Page:             page,
	})
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) CreateAffectation(w http.ResponseWriter, r *http.Request) {
	if err := multipartForm(w, r); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	in, err := affectationInput(r)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}
	if err := h.check(in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.CreateAffectation(r.Context(), in)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

func affectationInput(r *http.Request) (models.AffectationInput, error) {
	var (
		in  models.AffectationInput
		err error
	)

	if in.Equipement, err = formID(r, "equipement"); err != nil {
		return in, err
	}
	if in.Agent, err = formID(r, "agent"); err != nil {
		return in, err
	}
	if in.AssignedAt, err = formDate(r, "assigned_at"); err != nil {
		return in, err
	}
	if in.ExpectedReturnAt, err = formDate(r, "expected_return_at"); err != nil {
		return in, err
	}
	if in.Signature, err = formFile(r, "signature"); err != nil {
		return in, err
	}
	if in.EquipementPhoto, err = formFile(r, "equipement_photo"); err != nil {
		return in, err
	}

	in.IsActive = formBool(r, "is_active")
	in.Notes = r.FormValue("notes")

	return in, nil
}

// AffectationPDF — бланк выдачи.
func (h *Handlers) AffectationPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		gwerrors.WriteError(w, r, gwerrors.Invalid("id must be a positive integer"))
		return
	}

	d, err := h.API.AffectationPDF(r.Context(), id)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeDownload(w, d)
}

func (h *Handlers) ListRestitutions(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	items, err := h.API.Restitutions(r.Context(), models.RestitutionFilter{
		ReturnedAtAfter:  q.Get("returned_at_after"),
		ReturnedAtBefore: q.Get("returned_at_before"),
		Condition:        q.Get("condition"),
		Page:             page,
	})
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) CreateRestitution(w http.ResponseWriter, r *http.Request) {
	if err := multipartForm(w, r); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	var (
		in  models.RestitutionInput
		err error
	)
	if in.Affectation, err = formID(r, "affectation"); err == nil {
		if in.ReturnedAt, err = formDate(r, "returned_at"); err == nil {
			in.EquipementPhoto, err = formFile(r, "equipement_photo")
		}
	}
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	in.Condition = models.Condition(r.FormValue("condition"))
	in.Notes = r.FormValue("notes")

	if err := h.check(in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	out, err := h.API.CreateRestitution(r.Context(), in)
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

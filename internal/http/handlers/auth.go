package handlers

import (
	"errors"
	"net/http"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
	"github.com/pribylovaa/equiptrack-gateway/internal/session"
)

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeStrict(w, r, &in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}
	if err := h.check(in); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	if _, err := h.Session.Login(r.Context(), in.Username, in.Password); err != nil {
		writeLoginError(w, r, err)
		return
	}

	st, err := h.Session.Status(r.Context())
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// writeLoginError: отказ сервера — 401 без redirect (оператор уже на странице входа),
// прочие сбои — статус по общей таблице, но с сообщением для оператора.
func writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	var le *session.LoginError
	if !errors.As(err, &le) {
		gwerrors.WriteError(w, r, err)
		return
	}

	if errors.Is(err, session.ErrInvalidCredentials) || errors.Is(err, session.ErrEmptyCredentials) {
		gwerrors.Write(w, r, http.StatusUnauthorized, gwerrors.NewResponse("invalid_credentials", le.Message))
		return
	}

	status, resp := gwerrors.ToHTTP(le.Err)
	resp.Error.Message = le.Message
	resp.Error.Redirect = ""
	gwerrors.Write(w, r, status, resp)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Logout(r.Context()); err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SessionStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Session.Status(r.Context())
	if err != nil {
		gwerrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
	"github.com/pribylovaa/equiptrack-gateway/internal/service"
	"github.com/pribylovaa/equiptrack-gateway/internal/session"
	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
)

type fakeSession struct {
	loginErr  error
	status    models.SessionStatus
	logoutErr error
	user      string
	pass      string
	loggedOut bool
}

func (f *fakeSession) Login(_ context.Context, u, p string) (*storage.Credentials, error) {
	f.user, f.pass = u, p
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.status = models.SessionStatus{Authenticated: true, User: &models.SessionUser{Username: u}}
	return &storage.Credentials{AccessToken: "a", RefreshToken: "r", User: &storage.Identity{Username: u}}, nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.loggedOut = true
	return f.logoutErr
}

func (f *fakeSession) Status(context.Context) (models.SessionStatus, error) {
	return f.status, nil
}

// fakeAPI переопределяет только нужные тестам методы; остальные паникуют.
type fakeAPI struct {
	API

	agentFilter models.AgentFilter
	agentInput  models.AgentInput
	affInput    models.AffectationInput
	restInput   models.RestitutionInput
	incInput    models.IncidentInput
	regToken    string
	regInput    models.RegistrationInput
	pdfID       int64
	format      models.ExportFormat
	err         error
}

func (f *fakeAPI) Agents(_ context.Context, fl models.AgentFilter) ([]models.Agent, error) {
	f.agentFilter = fl
	return []models.Agent{{ID: 1, Matricule: "AG-1"}}, f.err
}

func (f *fakeAPI) CreateAgent(_ context.Context, in models.AgentInput) (models.Agent, error) {
	f.agentInput = in
	return models.Agent{ID: 2, FirstName: in.FirstName}, f.err
}

func (f *fakeAPI) CreateAffectation(_ context.Context, in models.AffectationInput) (models.Affectation, error) {
	f.affInput = in
	return models.Affectation{ID: 3}, f.err
}

func (f *fakeAPI) CreateRestitution(_ context.Context, in models.RestitutionInput) (models.Restitution, error) {
	f.restInput = in
	return models.Restitution{ID: 4}, f.err
}

func (f *fakeAPI) CreateIncident(_ context.Context, in models.IncidentInput) (models.Incident, error) {
	f.incInput = in
	return models.Incident{ID: 5}, f.err
}

func (f *fakeAPI) AffectationPDF(_ context.Context, id int64) (models.Download, error) {
	f.pdfID = id
	return models.Download{FileName: "affectation_7.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, f.err
}

func (f *fakeAPI) Reports(context.Context) (models.Reports, error) {
	return models.Reports{AgentsActive: 1, AgentsInactive: 1}, f.err
}

func (f *fakeAPI) ExportReports(_ context.Context, format models.ExportFormat) (models.Download, error) {
	f.format = format
	return models.Download{FileName: format.FileName(), Data: []byte("PK")}, f.err
}

func (f *fakeAPI) Register(_ context.Context, token string, in models.RegistrationInput) (models.Registration, error) {
	f.regToken, f.regInput = token, in
	return models.Registration{AgentID: 9, Username: in.Username}, f.err
}

type fakeDash struct {
	d   *service.Dashboard
	err error
}

func (f *fakeDash) Dashboard(context.Context) (*service.Dashboard, error) { return f.d, f.err }

type envelope struct {
	Error struct {
		Code     string `json:"code"`
		Message  string `json:"message"`
		Redirect string `json:"redirect"`
	} `json:"error"`
}

func decodeErr(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type part struct {
	name, file, data string
}

func multipartReq(t *testing.T, target string, parts ...part) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.file != "" {
			fw, err := mw.CreateFormFile(p.name, p.file)
			require.NoError(t, err)
			_, _ = fw.Write([]byte(p.data))
			continue
		}
		require.NoError(t, mw.WriteField(p.name, p.data))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{}
	h := New(sess, &fakeAPI{}, &fakeDash{})

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(http.MethodPost, "/auth/login", `{"username":"admin","password":"secret"}`))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "admin", sess.user)
	require.Equal(t, "secret", sess.pass)

	var st models.SessionStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	require.True(t, st.Authenticated)
	require.Equal(t, "admin", st.User.Username)
}

func TestLogin_Validation(t *testing.T) {
	t.Parallel()

	h := New(&fakeSession{}, &fakeAPI{}, &fakeDash{})

	cases := []struct {
		name, body, msg string
	}{
		{"no username", `{"password":"secret"}`, "username is required"},
		{"short password", `{"username":"admin","password":"abc"}`, "password must be at least 4 characters"},
		{"unknown field", `{"username":"admin","password":"secret","x":1}`, "invalid JSON body"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Login(rr, jsonReq(http.MethodPost, "/auth/login", tc.body))

			require.Equal(t, http.StatusBadRequest, rr.Code)
			env := decodeErr(t, rr)
			require.Equal(t, "invalid_argument", env.Error.Code)
			require.Equal(t, tc.msg, env.Error.Message)
		})
	}
}

func TestLogin_Rejected(t *testing.T) {
	t.Parallel()

	rejected := &session.LoginError{
		Message: "Aucun compte actif",
		Err:     gwerrors.FromResponse(http.StatusUnauthorized, []byte(`{"detail":"Aucun compte actif"}`)),
	}
	h := New(&fakeSession{loginErr: rejected}, &fakeAPI{}, &fakeDash{})

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(http.MethodPost, "/auth/login", `{"username":"admin","password":"wrong"}`))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	env := decodeErr(t, rr)
	require.Equal(t, "invalid_credentials", env.Error.Code)
	require.Equal(t, "Aucun compte actif", env.Error.Message)
	require.Empty(t, env.Error.Redirect)
}

func TestLogin_UpstreamDown(t *testing.T) {
	t.Parallel()

	down := &session.LoginError{
		Message: session.LoginFallbackMessage,
		Err:     gwerrors.FromResponse(http.StatusInternalServerError, nil),
	}
	h := New(&fakeSession{loginErr: down}, &fakeAPI{}, &fakeDash{})

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(http.MethodPost, "/auth/login", `{"username":"admin","password":"secret"}`))

	require.Equal(t, http.StatusBadGateway, rr.Code)
	env := decodeErr(t, rr)
	require.Equal(t, session.LoginFallbackMessage, env.Error.Message)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{}
	h := New(sess, &fakeAPI{}, &fakeDash{})

	rr := httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.True(t, sess.loggedOut)
}

func TestListAgents_Filters(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := New(&fakeSession{}, api, &fakeDash{})

	rr := httptest.NewRecorder()
	h.ListAgents(rr, httptest.NewRequest(http.MethodGet, "/agents?status=ACTIVE&name=Kone&page=2", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, models.AgentFilter{Status: "ACTIVE", Name: "Kone", Page: 2}, api.agentFilter)

	rr = httptest.NewRecorder()
	h.ListAgents(rr, httptest.NewRequest(http.MethodGet, "/agents?page=zero", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListAgents_Unauthenticated(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{err: gwerrors.ErrUnauthenticated}
	h := New(&fakeSession{}, api, &fakeDash{})

	rr := httptest.NewRecorder()
	h.ListAgents(rr, httptest.NewRequest(http.MethodGet, "/agents", nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "/login", decodeErr(t, rr).Error.Redirect)
}

func TestCreateAgent_Multipart(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := New(&fakeSession{}, api, &fakeDash{})

	rr := httptest.NewRecorder()
	h.CreateAgent(rr, multipartReq(t, "/agents",
		part{name: "first_name", data: " Awa "},
		part{name: "last_name", data: "Kone"},
		part{name: "phone", data: "0700000000"},
		part{name: "id_number", data: "CNI-1"},
		part{name: "project_type", data: "RGPH"},
		part{name: "id_document", file: "cni.png", data: "PNGDATA"},
	))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "Awa", api.agentInput.FirstName)
	require.NotNil(t, api.agentInput.IDDocument)
	require.Equal(t, "cni.png", api.agentInput.IDDocument.Name)
	require.Equal(t, []byte("PNGDATA"), api.agentInput.IDDocument.Data)
}

func TestCreateAgent_MissingDocument(t *testing.T) {
	t.Parallel()

	h := New(&fakeSession{}, &fakeAPI{}, &fakeDash{})

	rr := httptest.NewRecorder()
	h.CreateAgent(rr, multipartReq(t, "/agents",
		part{name: "first_name", data: "Awa"},
		part{name: "last_name", data: "Kone"},
		part{name: "id_number", data: "CNI-1"},
		part{name: "project_type", data: "RGPH"},
	))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "id_document is required", decodeErr(t, rr).Error.Message)
}

func TestCreateAffectation_ConvertsDates(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := New(&fakeSession{}, api, &fakeDash{})

	rr := httptest.NewRecorder()
	h.CreateAffectation(rr, multipartReq(t, "/affectations",
		part{name: "equipement", data: "10"},
		part{name: "agent", data: "20"},
		part{name: "assigned_at", data: "2025-03-01"},
		part{name: "is_active", data: "on"},
		part{name: "signature", file: "sig.png", data: "SIG"},
	))

	require.Equal(t, http.StatusCreated, rr.Code)

	want, err := models.ISODate("2025-03-01")
	require.NoError(t, err)
	require.Equal(t, want, api.affInput.AssignedAt)
	require.Empty(t, api.affInput.ExpectedReturnAt)
	require.EqualValues(t, 10, api.affInput.Equipement)
	require.EqualValues(t, 20, api.affInput.Agent)
	require.True(t, api.affInput.IsActive)
	require.NotNil(t, api.affInput.Signature)
	require.Nil(t, api.affInput.EquipementPhoto)
}

func TestCreateAffectation_BadInput(t *testing.T) {
	t.Parallel()

	h := New(&fakeSession{}, &fakeAPI{}, &fakeDash{})

	rr := httptest.NewRecorder()
	h.CreateAffectation(rr, multipartReq(t, "/affectations",
		part{name: "equipement", data: "-1"},
	))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "equipement must be a positive integer", decodeErr(t, rr).Error.Message)

	rr = httptest.NewRecorder()
	h.CreateAffectation(rr, multipartReq(t, "/affectations",
		part{name: "equipement", data: "1"},
		part{name: "agent", data: "2"},
		part{name: "assigned_at", data: "01/03/2025"},
	))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.CreateAffectation(rr, jsonReq(http.MethodPost, "/affectations", `{}`))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid multipart form", decodeErr(t, rr).Error.Message)
}

func TestCreateRestitution(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := New(&fakeSession{}, api, &fakeDash{})

	rr := httptest.NewRecorder()
	h.CreateRestitution(rr, multipartReq(t, "/restitutions",
		part{name: "affectation", data: "3"},
		part{name: "returned_at", data: "2025-03-02"},
		part{name: "condition", data: "DAMAGED"},
		part{name: "notes", data: "ecran fissure"},
	))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.EqualValues(t, 3, api.restInput.Affectation)
	require.Equal(t, models.ConditionDamaged, api.restInput.Condition)
	require.Equal(t, "ecran fissure", api.restInput.Notes)

	rr = httptest.NewRecorder()
	h.CreateRestitution(rr, multipartReq(t, "/restitutions",
		part{name: "affectation", data: "3"},
		part{name: "returned_at", data: "2025-03-02"},
		part{name: "condition", data: "LOST"},
	))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "condition must be one of: GOOD DAMAGED NEEDS_REPAIR", decodeErr(t, rr).Error.Message)
}

func TestCreateIncident_ReportedAt(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := New(&fakeSession{}, api, &fakeDash{})

	rr := httptest.NewRecorder()
	h.CreateIncident(rr, jsonReq(http.MethodPost, "/incidents",
		`{"equipement":4,"incident_type":"THEFT","description":"vol","reported_at":"2025-03-05"}`))

	require.Equal(t, http.StatusCreated, rr.Code)
	want, err := models.ISODate("2025-03-05")
	require.NoError(t, err)
	require.Equal(t, want, api.incInput.ReportedAt)
	require.Equal(t, models.IncidentTheft, api.incInput.IncidentType)
}

func TestAffectationPDF(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := New(&fakeSession{}, api, &fakeDash{})

	rr := httptest.NewRecorder()
	h.AffectationPDF(rr, withParam(httptest.NewRequest(http.MethodGet, "/affectations/7/pdf", nil), "id", "7"))

	require.Equal(t, http.StatusOK, rr.Code)
	require.EqualValues(t, 7, api.pdfID)
	require.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename=affectation_7.pdf`, rr.Header().Get("Content-Disposition"))
	require.Equal(t, "%PDF", rr.Body.String())

	rr = httptest.NewRecorder()
	h.AffectationPDF(rr, withParam(httptest.NewRequest(http.MethodGet, "/affectations/x/pdf", nil), "id", "x"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportReports(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := New(&fakeSession{}, api, &fakeDash{})

	rr := httptest.NewRecorder()
	h.ExportReports(rr, httptest.NewRequest(http.MethodGet, "/rapports/export?format=excel", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, models.ExportExcel, api.format)
	require.Equal(t, "application/octet-stream", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "rapports.xlsx")

	rr = httptest.NewRecorder()
	h.ExportReports(rr, httptest.NewRequest(http.MethodGet, "/rapports/export?format=csv", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReports_WithSummary(t *testing.T) {
	t.Parallel()

	h := New(&fakeSession{}, &fakeAPI{}, &fakeDash{})

	rr := httptest.NewRecorder()
	h.Reports(rr, httptest.NewRequest(http.MethodGet, "/rapports", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var out reportsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, 2, out.Summary.AgentsTotal)
}

func TestRegister_WithToken(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := New(&fakeSession{}, api, &fakeDash{})

	req := multipartReq(t, "/inscription/tok-1",
		part{name: "first_name", data: "Awa"},
		part{name: "last_name", data: "Kone"},
		part{name: "phone", data: "0700000000"},
		part{name: "id_number", data: "CNI-1"},
		part{name: "project_type", data: "RGPH"},
		part{name: "username", data: "awa"},
		part{name: "password", data: "secret"},
		part{name: "password_confirm", data: "secret"},
		part{name: "id_document", file: "cni.pdf", data: "PDF"},
	)

	rr := httptest.NewRecorder()
	h.Register(rr, withParam(req, "token", "tok-1"))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "tok-1", api.regToken)
	require.Equal(t, "awa", api.regInput.Username)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	t.Parallel()

	h := New(&fakeSession{}, &fakeAPI{}, &fakeDash{})

	rr := httptest.NewRecorder()
	h.Register(rr, multipartReq(t, "/inscription",
		part{name: "first_name", data: "Awa"},
		part{name: "last_name", data: "Kone"},
		part{name: "phone", data: "0700000000"},
		part{name: "id_number", data: "CNI-1"},
		part{name: "project_type", data: "RGPH"},
		part{name: "password", data: "secret"},
		part{name: "password_confirm", data: "other"},
		part{name: "id_document", file: "cni.pdf", data: "PDF"},
	))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "password_confirm does not match", decodeErr(t, rr).Error.Message)
}

func TestGetDashboard(t *testing.T) {
	t.Parallel()

	d := &service.Dashboard{
		Activities: []service.Activity{{Type: "Affectation", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Label: "Affectation SN -> M"}},
		Errors:     []string{"Impossible de charger les incidents."},
	}
	h := New(&fakeSession{}, &fakeAPI{}, &fakeDash{d: d})

	rr := httptest.NewRecorder()
	h.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var out service.Dashboard
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, d.Activities[0].Label, out.Activities[0].Label)
	require.Equal(t, d.Errors, out.Errors)

	h = New(&fakeSession{}, &fakeAPI{}, &fakeDash{err: errors.Join(gwerrors.ErrUnauthenticated)})
	rr = httptest.NewRecorder()
	h.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
	"github.com/pribylovaa/equiptrack-gateway/internal/service"
	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
)

// Пределы входящих тел: JSON и multipart с вложениями.
const (
	maxJSONBody      = 1 << 20
	maxMultipartBody = 32 << 20
)

// Session — вход, выход и статус сессии оператора.
type Session interface {
	Login(ctx context.Context, username, password string) (*storage.Credentials, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (models.SessionStatus, error)
}

// API — ресурсы EquipTrack, которые back-office отдаёт браузеру.
type API interface {
	Agents(ctx context.Context, f models.AgentFilter) ([]models.Agent, error)
	CreateAgent(ctx context.Context, in models.AgentInput) (models.Agent, error)
	Equipements(ctx context.Context, f models.EquipementFilter) ([]models.Equipement, error)
	CreateEquipement(ctx context.Context, in models.EquipementInput) (models.Equipement, error)
	Affectations(ctx context.Context, f models.AffectationFilter) ([]models.Affectation, error)
	CreateAffectation(ctx context.Context, in models.AffectationInput) (models.Affectation, error)
	AffectationPDF(ctx context.Context, id int64) (models.Download, error)
	Restitutions(ctx context.Context, f models.RestitutionFilter) ([]models.Restitution, error)
	CreateRestitution(ctx context.Context, in models.RestitutionInput) (models.Restitution, error)
	Incidents(ctx context.Context, f models.IncidentFilter) ([]models.Incident, error)
	CreateIncident(ctx context.Context, in models.IncidentInput) (models.Incident, error)
	Invites(ctx context.Context) ([]models.Invite, error)
	CreateInvite(ctx context.Context, in models.InviteInput) (models.Invite, error)
	Reports(ctx context.Context) (models.Reports, error)
	ExportReports(ctx context.Context, format models.ExportFormat) (models.Download, error)
	Register(ctx context.Context, token string, in models.RegistrationInput) (models.Registration, error)
}

// Dashboard — данные главной страницы.
type Dashboard interface {
	Dashboard(ctx context.Context) (*service.Dashboard, error)
}

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	Session   Session
	API       API
	Dashboard Dashboard

	validate *validator.Validate
}

func New(sess Session, api API, dash Dashboard) *Handlers {
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)

	return &Handlers{
		Session:   sess,
		API:       api,
		Dashboard: dash,
		validate:  v,
	}
}

// fieldName — имя поля в сообщениях валидации: json-тег, иначе имя поля формы.
func fieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("form"); tag != "" {
		return tag
	}
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return f.Name
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через gwerrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeDownload отдаёт бинарный ответ API как вложение.
func writeDownload(w http.ResponseWriter, d models.Download) {
	ct := d.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Data)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return gwerrors.Invalid("invalid JSON body")
	}
	return nil
}

// check прогоняет validate-теги и превращает первую ошибку в InputError.
func (h *Handlers) check(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &gwerrors.InputError{Message: describe(verrs[0])}
	}

	return gwerrors.Invalid("invalid input")
}

func describe(fe validator.FieldError) string {
	f := fe.Field()

	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, fe.Param())
	case "email":
		return f + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f, fe.Param())
	case "eqfield":
		return f + " does not match"
	default:
		return f + " is invalid"
	}
}

// multipartForm разбирает входящую форму с вложениями.
func multipartForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
		return gwerrors.Invalid("invalid multipart form")
	}
	return nil
}

// formFile читает вложение целиком; отсутствующее поле — nil.
func formFile(r *http.Request, field string) (*models.File, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, gwerrors.Invalid("%s: invalid file", field)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, gwerrors.Invalid("%s: unreadable file", field)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &models.File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formID читает положительный идентификатор из поля формы; пустое — 0.
func formID(r *http.Request, field string) (int64, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return 0, nil
	}

	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, gwerrors.Invalid("%s must be a positive integer", field)
	}

	return id, nil
}

// formDate переводит дату формы в формат API.
func formDate(r *http.Request, field string) (string, error) {
	return isoDate(field, r.FormValue(field))
}

// isoDate — дата из браузера ("2006-01-02") в формате API.
func isoDate(field, value string) (string, error) {
	v, err := models.ISODate(value)
	if err != nil {
		return "", gwerrors.Invalid("%s must be a date (YYYY-MM-DD)", field)
	}
	return v, nil
}

// formBool — чекбокс формы: "true", "on", "1".
func formBool(r *http.Request, field string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(field))) {
	case "true", "on", "1":
		return true
	default:
		return false
	}
}

// queryPage читает ?page=; пустое — 0 (страница по умолчанию).
func queryPage(r *http.Request) (int, error) {
	v := r.URL.Query().Get("page")
	if v == "" {
		return 0, nil
	}

	page, err := strconv.Atoi(v)
	if err != nil || page < 1 {
		return 0, gwerrors.Invalid("page must be a positive integer")
	}

	return page, nil
}

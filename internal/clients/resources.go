package clients

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pribylovaa/equiptrack-gateway/internal/models"
)

func (a *API) Agents(ctx context.Context, f models.AgentFilter) ([]models.Agent, error) {
	const op = "clients/API.Agents"

	items, err := list[models.Agent](ctx, a, "/agents/", f.Values())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range items {
		items[i].ResolveMedia(a.base)
	}

	return items, nil
}

func (a *API) CreateAgent(ctx context.Context, in models.AgentInput) (models.Agent, error) {
	const op = "clients/API.CreateAgent"

	var out models.Agent
	if err := a.postForm(ctx, "/agents/", in.Form(), &out); err != nil {
		return models.Agent{}, fmt.Errorf("%s: %w", op, err)
	}
	out.ResolveMedia(a.base)

	return out, nil
}

func (a *API) Equipements(ctx context.Context, f models.EquipementFilter) ([]models.Equipement, error) {
	const op = "clients/API.Equipements"

	items, err := list[models.Equipement](ctx, a, "/equipements/", f.Values())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range items {
		items[i].ResolveMedia(a.base)
	}

	return items, nil
}

func (a *API) CreateEquipement(ctx context.Context, in models.EquipementInput) (models.Equipement, error) {
	const op = "clients/API.CreateEquipement"

	var out models.Equipement
	if err := a.postJSON(ctx, "/equipements/", in, &out); err != nil {
		return models.Equipement{}, fmt.Errorf("%s: %w", op, err)
	}
	out.ResolveMedia(a.base)

	return out, nil
}

func (a *API) Affectations(ctx context.Context, f models.AffectationFilter) ([]models.Affectation, error) {
	const op = "clients/API.Affectations"

	items, err := list[models.Affectation](ctx, a, "/affectations/", f.Values())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range items {
		items[i].ResolveMedia(a.base)
	}

	return items, nil
}

func (a *API) CreateAffectation(ctx context.Context, in models.AffectationInput) (models.Affectation, error) {
	const op = "clients/API.CreateAffectation"

	var out models.Affectation
	if err := a.postForm(ctx, "/affectations/", in.Form(), &out); err != nil {
		return models.Affectation{}, fmt.Errorf("%s: %w", op, err)
	}
	out.ResolveMedia(a.base)

	return out, nil
}

// AffectationPDF — бланк выдачи в PDF, GET /affectations/{id}/pdf/.
func (a *API) AffectationPDF(ctx context.Context, id int64) (models.Download, error) {
	const op = "clients/API.AffectationPDF"

	sid := strconv.FormatInt(id, 10)
	d, err := a.download(ctx, "/affectations/"+sid+"/pdf/", nil, "affectation_"+sid+".pdf")
	if err != nil {
		return models.Download{}, fmt.Errorf("%s: %w", op, err)
	}

	return d, nil
}

func (a *API) Restitutions(ctx context.Context, f models.RestitutionFilter) ([]models.Restitution, error) {
	const op = "clients/API.Restitutions"

	items, err := list[models.Restitution](ctx, a, "/restitutions/", f.Values())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range items {
		items[i].ResolveMedia(a.base)
	}

	return items, nil
}

func (a *API) CreateRestitution(ctx context.Context, in models.RestitutionInput) (models.Restitution, error) {
	const op = "clients/API.CreateRestitution"

	var out models.Restitution
	if err := a.postForm(ctx, "/restitutions/", in.Form(), &out); err != nil {
		return models.Restitution{}, fmt.Errorf("%s: %w", op, err)
	}
	out.ResolveMedia(a.base)

	return out, nil
}

func (a *API) Incidents(ctx context.Context, f models.IncidentFilter) ([]models.Incident, error) {
	const op = "clients/API.Incidents"

	items, err := list[models.Incident](ctx, a, "/incidents/", f.Values())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (a *API) CreateIncident(ctx context.Context, in models.IncidentInput) (models.Incident, error) {
	const op = "clients/API.CreateIncident"

	var out models.Incident
	if err := a.postJSON(ctx, "/incidents/", in, &out); err != nil {
		return models.Incident{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (a *API) Invites(ctx context.Context) ([]models.Invite, error) {
	const op = "clients/API.Invites"

	items, err := list[models.Invite](ctx, a, "/invites/", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (a *API) CreateInvite(ctx context.Context, in models.InviteInput) (models.Invite, error) {
	const op = "clients/API.CreateInvite"

	var out models.Invite
	if err := a.postJSON(ctx, "/invites/", in, &out); err != nil {
		return models.Invite{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (a *API) Reports(ctx context.Context) (models.Reports, error) {
	const op = "clients/API.Reports"

	var out models.Reports
	if err := a.getJSON(ctx, "/rapports/", nil, &out); err != nil {
		return models.Reports{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ExportReports — выгрузка /rapports/?export=excel|pdf.
func (a *API) ExportReports(ctx context.Context, format models.ExportFormat) (models.Download, error) {
	const op = "clients/API.ExportReports"

	if format != models.ExportExcel && format != models.ExportPDF {
		return models.Download{}, fmt.Errorf("%s: unknown export format %q", op, format)
	}

	d, err := a.download(ctx, "/rapports/", url.Values{"export": {string(format)}}, format.FileName())
	if err != nil {
		return models.Download{}, fmt.Errorf("%s: %w", op, err)
	}

	return d, nil
}

// Register — саморегистрация агента: по приглашению (/invites/{token}/register/)
// или открытая (/agents/register/), если token пустой.
func (a *API) Register(ctx context.Context, token string, in models.RegistrationInput) (models.Registration, error) {
	const op = "clients/API.Register"

	path := "/agents/register/"
	if token != "" {
		path = "/invites/" + url.PathEscape(token) + "/register/"
	}

	var out models.Registration
	if err := a.postForm(ctx, path, in.Form(), &out); err != nil {
		return models.Registration{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
)

type fakeAPI struct {
	reports      models.Reports
	incidents    []models.Incident
	affectations []models.Affectation
	restitutions []models.Restitution

	reportsErr, incidentsErr, affectationsErr, restitutionsErr error
}

func (f *fakeAPI) Reports(context.Context) (models.Reports, error) {
	return f.reports, f.reportsErr
}

func (f *fakeAPI) Incidents(_ context.Context, fl models.IncidentFilter) ([]models.Incident, error) {
	if fl.Page != 1 {
		return nil, fmt.Errorf("unexpected page %d", fl.Page)
	}
	return f.incidents, f.incidentsErr
}

func (f *fakeAPI) Affectations(_ context.Context, fl models.AffectationFilter) ([]models.Affectation, error) {
	if fl.Page != 1 {
		return nil, fmt.Errorf("unexpected page %d", fl.Page)
	}
	return f.affectations, f.affectationsErr
}

func (f *fakeAPI) Restitutions(_ context.Context, fl models.RestitutionFilter) ([]models.Restitution, error) {
	if fl.Page != 1 {
		return nil, fmt.Errorf("unexpected page %d", fl.Page)
	}
	return f.restitutions, f.restitutionsErr
}

func at(day int) *time.Time {
	t := time.Date(2025, 3, day, 10, 0, 0, 0, time.UTC)
	return &t
}

func TestRecent_MergeSortAndLimit(t *testing.T) {
	t.Parallel()

	affectations := []models.Affectation{
		{ID: 1, Equipement: 10, Agent: 20, AssignedAt: at(1)},
		{
			ID: 2, Equipement: 11, Agent: 21, AssignedAt: at(4),
			EquipementDetail: &models.Equipement{SerialNumber: "SN-11"},
			AgentDetail:      &models.Agent{Matricule: "M-21"},
		},
		{ID: 3, Equipement: 12, Agent: 22}, // без даты
	}
	restitutions := []models.Restitution{
		{ID: 5, Affectation: 1, ReturnedAt: at(3)},
		{
			ID: 6, Affectation: 2, ReturnedAt: at(2),
			AffectationDetail: &models.Affectation{Equipement: 11},
		},
		{
			ID: 7, Affectation: 3, ReturnedAt: at(5),
			AffectationDetail: &models.Affectation{EquipementDetail: &models.Equipement{SerialNumber: "SN-12"}},
		},
		{ID: 8, Affectation: 4}, // без даты
	}

	got := Recent(affectations, restitutions, RecentActivities)
	require.Len(t, got, 3)

	require.Equal(t, "Restitution SN-12", got[0].Label)
	require.Equal(t, "Affectation SN-11 -> M-21", got[1].Label)
	require.Equal(t, "Restitution 1", got[2].Label)
	require.Equal(t, "Restitution", got[0].Type)
	require.True(t, got[0].Date.Equal(*at(5)))

	all := Recent(affectations, restitutions, 10)
	require.Len(t, all, 5)
	require.Equal(t, "Restitution 11", all[3].Label)
	require.Equal(t, "Affectation 10 -> 20", all[4].Label)
}

func TestRecent_Empty(t *testing.T) {
	t.Parallel()

	got := Recent(nil, nil, RecentActivities)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestDashboard_OK(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		reports: models.Reports{
			AgentsActive:   3,
			AgentsInactive: 1,
			EquipementsByStatus: []models.StatusCount{
				{Status: "AVAILABLE", Total: 2},
				{Status: "ASSIGNED", Total: 1},
			},
			IncidentsByStatus: []models.StatusCount{{Status: "OPEN", Total: 4}},
		},
		incidents:    []models.Incident{{ID: 1}, {ID: 2}},
		affectations: []models.Affectation{{ID: 1, Equipement: 1, Agent: 2, AssignedAt: at(1)}},
	}

	d, err := New(api).Dashboard(context.Background())
	require.NoError(t, err)
	require.Empty(t, d.Errors)

	require.Equal(t, 4, d.Summary.AgentsTotal)
	require.Equal(t, 3, d.Summary.EquipementsTotal)
	require.Equal(t, 67, d.Summary.AvailabilityPercent)
	require.Equal(t, 4, d.Summary.IncidentsOpen)
	require.Len(t, d.Incidents, 2)
	require.Len(t, d.Activities, 1)
	require.Equal(t, "Affectation 1 -> 2", d.Activities[0].Label)
}

func TestDashboard_SectionFailureIsReported(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		reports:         models.Reports{AgentsActive: 1},
		incidentsErr:    gwerrors.FromResponse(500, []byte(`{"detail":"Erreur serveur"}`)),
		restitutionsErr: errors.New("connection reset"),
	}

	d, err := New(api).Dashboard(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"Erreur serveur", msgActivities}, d.Errors)
	require.Equal(t, 1, d.Stats.AgentsActive)
	require.NotNil(t, d.Incidents)
	require.Empty(t, d.Incidents)
	require.Empty(t, d.Activities)
}

func TestDashboard_UnauthenticatedAborts(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		reportsErr: fmt.Errorf("clients/API.Reports: %w", gwerrors.ErrUnauthenticated),
	}

	d, err := New(api).Dashboard(context.Background())
	require.Nil(t, d)
	require.ErrorIs(t, err, gwerrors.ErrUnauthenticated)
}

func TestDashboard_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := &fakeAPI{affectationsErr: context.Canceled}

	_, err := New(api).Dashboard(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

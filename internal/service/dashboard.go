// service — сценарии back-office, которым нужно несколько вызовов API.
//
// Dashboard грузит разделы главной страницы параллельно. Раздел, который не
// загрузился, не роняет страницу: вместо данных оператор видит сообщение.
// Исключение — потеря сессии: она прерывает загрузку целиком.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
	"github.com/pribylovaa/equiptrack-gateway/pkg/log"
)

// RecentActivities — сколько последних событий показывает главная.
const RecentActivities = 3

const (
	msgReports    = "Impossible de charger les rapports."
	msgIncidents  = "Impossible de charger les incidents."
	msgActivities = "Impossible de charger les activites."
)

// API — вызовы EquipTrack API, нужные главной странице.
type API interface {
	Reports(ctx context.Context) (models.Reports, error)
	Incidents(ctx context.Context, f models.IncidentFilter) ([]models.Incident, error)
	Affectations(ctx context.Context, f models.AffectationFilter) ([]models.Affectation, error)
	Restitutions(ctx context.Context, f models.RestitutionFilter) ([]models.Restitution, error)
}

// Activity — строка ленты «последние операции».
type Activity struct {
	Type  string    `json:"type"`
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
}

// Dashboard — данные главной страницы.
type Dashboard struct {
	Stats      models.Reports       `json:"stats"`
	Summary    models.ReportSummary `json:"summary"`
	Incidents  []models.Incident    `json:"incidents"`
	Activities []Activity           `json:"activities"`
	Errors     []string             `json:"errors,omitempty"`
}

// Service — сценарии back-office поверх API.
type Service struct {
	api API
}

// New создаёт новый экземпляр Service.
func New(api API) *Service {
	return &Service{api: api}
}

// Dashboard загружает статистику, инциденты и ленту активности.
// Ошибка возвращается только при потере сессии (errors.ErrUnauthenticated)
// или отмене контекста; прочие сбои попадают в Dashboard.Errors.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	const op = "service/Service.Dashboard"

	var (
		d            = &Dashboard{Incidents: []models.Incident{}, Activities: []Activity{}}
		affectations []models.Affectation
		restitutions []models.Restitution
		failed       [3]string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := s.api.Reports(gctx)
		if err != nil {
			return soft(gctx, err, &failed[0], msgReports)
		}
		d.Stats = r
		d.Summary = r.Summary()
		return nil
	})

	g.Go(func() error {
		items, err := s.api.Incidents(gctx, models.IncidentFilter{Page: 1})
		if err != nil {
			return soft(gctx, err, &failed[1], msgIncidents)
		}
		if items != nil {
			d.Incidents = items
		}
		return nil
	})

	g.Go(func() error {
		ag, actx := errgroup.WithContext(gctx)

		ag.Go(func() error {
			var err error
			affectations, err = s.api.Affectations(actx, models.AffectationFilter{Page: 1})
			return err
		})
		ag.Go(func() error {
			var err error
			restitutions, err = s.api.Restitutions(actx, models.RestitutionFilter{Page: 1})
			return err
		})

		if err := ag.Wait(); err != nil {
			return soft(gctx, err, &failed[2], msgActivities)
		}

		d.Activities = Recent(affectations, restitutions, RecentActivities)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, msg := range failed {
		if msg != "" {
			d.Errors = append(d.Errors, msg)
		}
	}

	return d, nil
}

// soft решает, прерывает ли ошибка раздела всю страницу.
// Остальные ошибки превращаются в сообщение раздела.
func soft(ctx context.Context, err error, slot *string, fallback string) error {
	if errors.Is(err, gwerrors.ErrUnauthenticated) || errors.Is(err, context.Canceled) {
		return err
	}

	log.From(ctx).Warn("dashboard_section_failed", slog.String("err", err.Error()))
	*slot = gwerrors.Message(err, fallback)

	return nil
}

// Recent сливает выдачи и возвраты, отбрасывает записи без даты
// и возвращает limit самых свежих.
func Recent(affectations []models.Affectation, restitutions []models.Restitution, limit int) []Activity {
	out := make([]Activity, 0, len(affectations)+len(restitutions))

	for _, a := range affectations {
		if a.AssignedAt == nil {
			continue
		}
		out = append(out, Activity{
			Type:  "Affectation",
			Date:  *a.AssignedAt,
			Label: fmt.Sprintf("Affectation %s -> %s", equipementLabel(a.EquipementDetail, a.Equipement), agentLabel(a)),
		})
	}

	for _, r := range restitutions {
		if r.ReturnedAt == nil {
			continue
		}
		out = append(out, Activity{
			Type:  "Restitution",
			Date:  *r.ReturnedAt,
			Label: "Restitution " + restitutionLabel(r),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

func equipementLabel(detail *models.Equipement, id int64) string {
	if detail != nil && detail.SerialNumber != "" {
		return detail.SerialNumber
	}

	return strconv.FormatInt(id, 10)
}

func agentLabel(a models.Affectation) string {
	if a.AgentDetail != nil && a.AgentDetail.Matricule != "" {
		return a.AgentDetail.Matricule
	}

	return strconv.FormatInt(a.Agent, 10)
}

func restitutionLabel(r models.Restitution) string {
	if ad := r.AffectationDetail; ad != nil {
		if ad.EquipementDetail != nil && ad.EquipementDetail.SerialNumber != "" {
			return ad.EquipementDetail.SerialNumber
		}
		if ad.Equipement != 0 {
			return strconv.FormatInt(ad.Equipement, 10)
		}
	}

	return strconv.FormatInt(r.Affectation, 10)
}

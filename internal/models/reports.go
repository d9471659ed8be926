package models

import "math"

type StatusCount struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
}

type IncidentTypeCount struct {
	IncidentType string `json:"incident_type"`
	Total        int    `json:"total"`
}

// Reports — агрегаты /rapports/.
type Reports struct {
	EquipementsByStatus []StatusCount       `json:"equipements_by_status"`
	IncidentsByType     []IncidentTypeCount `json:"incidents_by_type"`
	IncidentsByStatus   []StatusCount       `json:"incidents_by_status"`
	AgentsActive        int                 `json:"agents_active"`
	AgentsInactive      int                 `json:"agents_inactive"`
}

// ReportSummary — карточки главной страницы.
type ReportSummary struct {
	AgentsActive         int `json:"agents_active"`
	AgentsTotal          int `json:"agents_total"`
	EquipementsTotal     int `json:"equipements_total"`
	EquipementsAvailable int `json:"equipements_available"`
	AvailabilityPercent  int `json:"availability_percent"`
	IncidentsOpen        int `json:"incidents_open"`
}

// Summary считает карточки; процент округляется до целого, 0 без оборудования.
func (r Reports) Summary() ReportSummary {
	s := ReportSummary{
		AgentsActive: r.AgentsActive,
		AgentsTotal:  r.AgentsActive + r.AgentsInactive,
	}

	for _, c := range r.EquipementsByStatus {
		s.EquipementsTotal += c.Total
		if c.Status == string(EquipementAvailable) {
			s.EquipementsAvailable = c.Total
		}
	}
	if s.EquipementsTotal > 0 {
		s.AvailabilityPercent = int(math.Round(float64(s.EquipementsAvailable) * 100 / float64(s.EquipementsTotal)))
	}

	for _, c := range r.IncidentsByStatus {
		if c.Status == string(IncidentOpen) {
			s.IncidentsOpen = c.Total
		}
	}

	return s
}

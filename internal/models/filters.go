package models

import (
	"net/url"
	"strconv"
)

// Фильтры списков; пустые значения в query не попадают.

type AgentFilter struct {
	Status    string
	Matricule string
	Name      string
	Page      int
}

func (f AgentFilter) Values() url.Values {
	v := url.Values{}
	set(v, "status", f.Status)
	set(v, "matricule", f.Matricule)
	set(v, "name", f.Name)
	setPage(v, f.Page)
	return v
}

type EquipementFilter struct {
	Type         string
	Status       string
	Condition    string
	SerialNumber string
	IMEI         string
	Page         int
}

func (f EquipementFilter) Values() url.Values {
	v := url.Values{}
	set(v, "type", f.Type)
	set(v, "status", f.Status)
	set(v, "condition", f.Condition)
	set(v, "serial_number", f.SerialNumber)
	set(v, "imei", f.IMEI)
	setPage(v, f.Page)
	return v
}

type AffectationFilter struct {
	Agent            string
	Equipement       string
	IsActive         string
	AssignedAtAfter  string
	AssignedAtBefore string
	Page             int
}

func (f AffectationFilter) Values() url.Values {
	v := url.Values{}
	set(v, "agent", f.Agent)
	set(v, "equipement", f.Equipement)
	set(v, "is_active", f.IsActive)
	set(v, "assigned_at_after", f.AssignedAtAfter)
	set(v, "assigned_at_before", f.AssignedAtBefore)
	setPage(v, f.Page)
	return v
}

type RestitutionFilter struct {
	ReturnedAtAfter  string
	ReturnedAtBefore string
	Condition        string
	Page             int
}

func (f RestitutionFilter) Values() url.Values {
	v := url.Values{}
	set(v, "returned_at_after", f.ReturnedAtAfter)
	set(v, "returned_at_before", f.ReturnedAtBefore)
	set(v, "condition", f.Condition)
	setPage(v, f.Page)
	return v
}

type IncidentFilter struct {
	IncidentType string
	Status       string
	Equipement   string
	Agent        string
	Page         int
}

func (f IncidentFilter) Values() url.Values {
	v := url.Values{}
	set(v, "incident_type", f.IncidentType)
	set(v, "status", f.Status)
	set(v, "equipement", f.Equipement)
	set(v, "agent", f.Agent)
	setPage(v, f.Page)
	return v
}

func set(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setPage(v url.Values, page int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
}

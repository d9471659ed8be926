package models

type AgentStatus string

const (
	AgentActive   AgentStatus = "ACTIVE"
	AgentInactive AgentStatus = "INACTIVE"
)

type EquipementType string

const (
	EquipementTablette  EquipementType = "TABLETTE"
	EquipementChargeur  EquipementType = "CHARGEUR"
	EquipementPowerbank EquipementType = "POWERBANK"
)

type EquipementStatus string

const (
	EquipementAvailable   EquipementStatus = "AVAILABLE"
	EquipementAssigned    EquipementStatus = "ASSIGNED"
	EquipementMaintenance EquipementStatus = "MAINTENANCE"
	EquipementLost        EquipementStatus = "LOST"
	EquipementRetired     EquipementStatus = "RETIRED"
)

// Condition — состояние оборудования (и при возврате).
type Condition string

const (
	ConditionGood        Condition = "GOOD"
	ConditionDamaged     Condition = "DAMAGED"
	ConditionNeedsRepair Condition = "NEEDS_REPAIR"
)

type IncidentType string

const (
	IncidentLoss      IncidentType = "LOSS"
	IncidentTheft     IncidentType = "THEFT"
	IncidentBreakdown IncidentType = "BREAKDOWN"
)

type IncidentStatus string

const (
	IncidentOpen   IncidentStatus = "OPEN"
	IncidentClosed IncidentStatus = "CLOSED"
)

// ExportFormat — формат выгрузки /rapports/?export=.
type ExportFormat string

const (
	ExportExcel ExportFormat = "excel"
	ExportPDF   ExportFormat = "pdf"
)

// FileName — имя файла выгрузки, как его отдаёт браузеру back-office.
func (f ExportFormat) FileName() string {
	if f == ExportExcel {
		return "rapports.xlsx"
	}

	return "rapports.pdf"
}

package models

import "time"

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

type Agent struct {
	ID          int64       `json:"id"`
	User        *int64      `json:"user"`
	UserDetail  *User       `json:"user_detail,omitempty"`
	Matricule   string      `json:"matricule"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	Address     string      `json:"address"`
	IDNumber    string      `json:"id_number"`
	IDDocument  string      `json:"id_document"`
	ProjectType string      `json:"project_type"`
	Status      AgentStatus `json:"status"`
	CreatedAt   *time.Time  `json:"created_at,omitempty"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
}

type Equipement struct {
	ID           int64            `json:"id"`
	Type         EquipementType   `json:"type"`
	SerialNumber string           `json:"serial_number"`
	IMEI         *string          `json:"imei"`
	Status       EquipementStatus `json:"status"`
	Condition    Condition        `json:"condition"`
	QRCodeImage  string           `json:"qr_code_image"`
	CreatedAt    *time.Time       `json:"created_at,omitempty"`
	UpdatedAt    *time.Time       `json:"updated_at,omitempty"`
}

type Affectation struct {
	ID               int64       `json:"id"`
	Equipement       int64       `json:"equipement"`
	EquipementDetail *Equipement `json:"equipement_detail,omitempty"`
	Agent            int64       `json:"agent"`
	AgentDetail      *Agent      `json:"agent_detail,omitempty"`
	AssignedBy       *int64      `json:"assigned_by"`
	AssignedAt       *time.Time  `json:"assigned_at"`
	ExpectedReturnAt *time.Time  `json:"expected_return_at"`
	Signature        string      `json:"signature"`
	EquipementPhoto  string      `json:"equipement_photo"`
	Notes            string      `json:"notes"`
	IsActive         bool        `json:"is_active"`
}

type Restitution struct {
	ID                int64        `json:"id"`
	Affectation       int64        `json:"affectation"`
	AffectationDetail *Affectation `json:"affectation_detail,omitempty"`
	ReceivedBy        *int64       `json:"received_by"`
	ReturnedAt        *time.Time   `json:"returned_at"`
	Condition         Condition    `json:"condition"`
	Notes             string       `json:"notes"`
	EquipementPhoto   string       `json:"equipement_photo"`
}

type Incident struct {
	ID               int64          `json:"id"`
	Equipement       int64          `json:"equipement"`
	EquipementDetail *Equipement    `json:"equipement_detail,omitempty"`
	Agent            *int64         `json:"agent"`
	AgentDetail      *Agent         `json:"agent_detail,omitempty"`
	ReportedBy       *int64         `json:"reported_by"`
	IncidentType     IncidentType   `json:"incident_type"`
	Description      string         `json:"description"`
	Status           IncidentStatus `json:"status"`
	ReportedAt       *time.Time     `json:"reported_at"`
	ClosedAt         *time.Time     `json:"closed_at"`
}

type Invite struct {
	ID        int64      `json:"id"`
	Token     string     `json:"token"`
	Link      string     `json:"link"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	CreatedBy *int64     `json:"created_by"`
	CreatedAt *time.Time `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	Notes     string     `json:"notes"`
}

// Registration — ответ саморегистрации агента.
type Registration struct {
	AgentID   int64  `json:"agent_id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Matricule string `json:"matricule"`
}

// Download — бинарный ответ API (PDF, выгрузки).
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

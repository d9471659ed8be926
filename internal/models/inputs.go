package models

import "strconv"

// File — вложение формы (скан документа, подпись, фото).
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type FormField struct {
	Name  string
	Value string
}

type FormFile struct {
	Field string
	File  *File
}

// Form — содержимое multipart-запроса к API в порядке добавления.
type Form struct {
	Fields []FormField
	Files  []FormFile
}

func (f *Form) add(name, value string) {
	f.Fields = append(f.Fields, FormField{Name: name, Value: value})
}

func (f *Form) addOptional(name, value string) {
	if value != "" {
		f.add(name, value)
	}
}

func (f *Form) attach(field string, file *File) {
	if file != nil && len(file.Data) > 0 {
		f.Files = append(f.Files, FormFile{Field: field, File: file})
	}
}

// AgentInput — создание агента back-office (POST /agents/, multipart).
type AgentInput struct {
	Matricule   string      `form:"matricule" validate:"omitempty,max=50"`
	FirstName   string      `form:"first_name" validate:"required,max=150"`
	LastName    string      `form:"last_name" validate:"required,max=150"`
	Phone       string      `form:"phone" validate:"omitempty,max=30"`
	Email       string      `form:"email" validate:"omitempty,email"`
	Address     string      `form:"address" validate:"omitempty"`
	IDNumber    string      `form:"id_number" validate:"required,max=100"`
	ProjectType string      `form:"project_type" validate:"required,max=100"`
	Status      AgentStatus `form:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	IDDocument  *File       `form:"id_document" validate:"required"`
}

func (in AgentInput) Form() Form {
	var f Form
	f.addOptional("matricule", in.Matricule)
	f.add("first_name", in.FirstName)
	f.add("last_name", in.LastName)
	f.add("phone", in.Phone)
	f.addOptional("email", in.Email)
	f.addOptional("address", in.Address)
	f.add("id_number", in.IDNumber)
	f.add("project_type", in.ProjectType)
	f.addOptional("status", string(in.Status))
	f.attach("id_document", in.IDDocument)
	return f
}

// RegistrationInput — саморегистрация агента (по приглашению или открытая).
type RegistrationInput struct {
	Matricule       string `form:"matricule" validate:"omitempty,max=50"`
	FirstName       string `form:"first_name" validate:"required,max=150"`
	LastName        string `form:"last_name" validate:"required,max=150"`
	Phone           string `form:"phone" validate:"required,max=30"`
	Email           string `form:"email" validate:"omitempty,email"`
	Address         string `form:"address"`
	IDNumber        string `form:"id_number" validate:"required,max=100"`
	ProjectType     string `form:"project_type" validate:"required,max=100"`
	Username        string `form:"username" validate:"omitempty,max=150"`
	Password        string `form:"password" validate:"required,min=4"`
	PasswordConfirm string `form:"password_confirm" validate:"omitempty,eqfield=Password"`
	IDDocument      *File  `form:"id_document" validate:"required"`
}

func (in RegistrationInput) Form() Form {
	var f Form
	f.addOptional("matricule", in.Matricule)
	f.add("first_name", in.FirstName)
	f.add("last_name", in.LastName)
	f.add("phone", in.Phone)
	f.addOptional("email", in.Email)
	f.addOptional("address", in.Address)
	f.add("id_number", in.IDNumber)
	f.add("project_type", in.ProjectType)
	f.addOptional("username", in.Username)
	f.add("password", in.Password)
	f.attach("id_document", in.IDDocument)
	return f
}

// AffectationInput — выдача оборудования агенту (multipart).
// Даты уже в формате API (см. ISODate).
type AffectationInput struct {
	Equipement       int64  `form:"equipement" validate:"required,gt=0"`
	Agent            int64  `form:"agent" validate:"required,gt=0"`
	AssignedAt       string `form:"assigned_at" validate:"required"`
	ExpectedReturnAt string `form:"expected_return_at"`
	IsActive         bool   `form:"is_active"`
	Signature        *File  `form:"signature"`
	EquipementPhoto  *File  `form:"equipement_photo"`
	Notes            string `form:"notes"`
}

func (in AffectationInput) Form() Form {
	var f Form
	f.add("equipement", strconv.FormatInt(in.Equipement, 10))
	f.add("agent", strconv.FormatInt(in.Agent, 10))
	f.add("assigned_at", in.AssignedAt)
	f.addOptional("expected_return_at", in.ExpectedReturnAt)
	f.add("is_active", strconv.FormatBool(in.IsActive))
	f.attach("signature", in.Signature)
	f.attach("equipement_photo", in.EquipementPhoto)
	f.addOptional("notes", in.Notes)
	return f
}

// RestitutionInput — возврат оборудования (multipart).
type RestitutionInput struct {
	Affectation     int64     `form:"affectation" validate:"required,gt=0"`
	ReturnedAt      string    `form:"returned_at" validate:"required"`
	Condition       Condition `form:"condition" validate:"required,oneof=GOOD DAMAGED NEEDS_REPAIR"`
	Notes           string    `form:"notes"`
	EquipementPhoto *File     `form:"equipement_photo"`
}

func (in RestitutionInput) Form() Form {
	var f Form
	f.add("affectation", strconv.FormatInt(in.Affectation, 10))
	f.add("returned_at", in.ReturnedAt)
	f.add("condition", string(in.Condition))
	f.addOptional("notes", in.Notes)
	f.attach("equipement_photo", in.EquipementPhoto)
	return f
}

// EquipementInput — создание оборудования (JSON).
type EquipementInput struct {
	Type         EquipementType   `json:"type" validate:"required,oneof=TABLETTE CHARGEUR POWERBANK"`
	SerialNumber string           `json:"serial_number" validate:"required,max=100"`
	IMEI         string           `json:"imei,omitempty" validate:"omitempty,max=50"`
	Status       EquipementStatus `json:"status,omitempty" validate:"omitempty,oneof=AVAILABLE ASSIGNED MAINTENANCE LOST RETIRED"`
	Condition    Condition        `json:"condition,omitempty" validate:"omitempty,oneof=GOOD DAMAGED NEEDS_REPAIR"`
}

// IncidentInput — заявление об инциденте (JSON).
type IncidentInput struct {
	Equipement   int64          `json:"equipement" validate:"required,gt=0"`
	Agent        *int64         `json:"agent,omitempty"`
	IncidentType IncidentType   `json:"incident_type" validate:"required,oneof=LOSS THEFT BREAKDOWN"`
	Description  string         `json:"description" validate:"required"`
	Status       IncidentStatus `json:"status,omitempty" validate:"omitempty,oneof=OPEN CLOSED"`
	ReportedAt   string         `json:"reported_at,omitempty"`
}

// InviteInput — приглашение агента (JSON); пустые поля не отправляются.
type InviteInput struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Notes     string `json:"notes,omitempty" validate:"omitempty,max=255"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

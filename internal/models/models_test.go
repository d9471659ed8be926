package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeList_Shapes(t *testing.T) {
	t.Parallel()

	bare, err := DecodeList[Agent]([]byte(`[{"id":1,"matricule":"AG-1"},{"id":2,"matricule":"AG-2"}]`))
	require.NoError(t, err)
	require.Len(t, bare, 2)
	require.Equal(t, "AG-2", bare[1].Matricule)

	paged, err := DecodeList[Incident]([]byte(`{"count":1,"next":null,"results":[{"id":7,"incident_type":"THEFT"}]}`))
	require.NoError(t, err)
	require.Len(t, paged, 1)
	require.Equal(t, IncidentTheft, paged[0].IncidentType)

	for _, body := range []string{``, `null`, `{}`, `{"results":null}`, `{"results":{}}`, `"x"`, `42`} {
		got, err := DecodeList[Agent]([]byte(body))
		require.NoError(t, err, body)
		require.NotNil(t, got, body)
		require.Empty(t, got, body)
	}
}

func TestDecodeList_MalformedItems(t *testing.T) {
	t.Parallel()

	_, err := DecodeList[Agent]([]byte(`[{"id":"not-a-number"}]`))
	require.Error(t, err)

	_, err = DecodeList[Agent]([]byte(`{"results":[`))
	require.Error(t, err)
}

func TestMediaURL(t *testing.T) {
	t.Parallel()

	const base = "http://localhost:8000/api"

	require.Equal(t, "", MediaURL(base, ""))
	require.Equal(t, "https://cdn.local/a.png", MediaURL(base, "https://cdn.local/a.png"))
	require.Equal(t, "http://x/a.png", MediaURL(base, "http://x/a.png"))
	require.Equal(t, "http://localhost:8000/media/id_documents/a.png", MediaURL(base, "/media/id_documents/a.png"))
	require.Equal(t, "http://localhost:8000/media/a.png", MediaURL(base+"/", "/media/a.png"))
	require.Equal(t, "http://api.local/v2/media/a.png", MediaURL("http://api.local/v2", "/media/a.png"))
}

func TestISODateIn(t *testing.T) {
	t.Parallel()

	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}

	got, err := ISODateIn("2024-06-15", paris)
	require.NoError(t, err)
	require.Equal(t, "2024-06-14T22:00:00.000Z", got)

	got, err = ISODateIn("2024-06-15", time.UTC)
	require.NoError(t, err)
	require.Equal(t, "2024-06-15T00:00:00.000Z", got)

	got, err = ISODateIn("  ", time.UTC)
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = ISODateIn("15/06/2024", time.UTC)
	require.Error(t, err)
}

func TestReports_Summary(t *testing.T) {
	t.Parallel()

	r := Reports{
		EquipementsByStatus: []StatusCount{{Status: "AVAILABLE", Total: 2}, {Status: "ASSIGNED", Total: 1}},
		IncidentsByStatus:   []StatusCount{{Status: "OPEN", Total: 4}, {Status: "CLOSED", Total: 9}},
		AgentsActive:        5,
		AgentsInactive:      2,
	}

	s := r.Summary()
	require.Equal(t, 5, s.AgentsActive)
	require.Equal(t, 7, s.AgentsTotal)
	require.Equal(t, 3, s.EquipementsTotal)
	require.Equal(t, 2, s.EquipementsAvailable)
	require.Equal(t, 67, s.AvailabilityPercent)
	require.Equal(t, 4, s.IncidentsOpen)

	require.Zero(t, Reports{}.Summary().AvailabilityPercent)
}

func TestInputs_Form(t *testing.T) {
	t.Parallel()

	doc := &File{Name: "cni.png", ContentType: "image/png", Data: []byte{1, 2}}

	f := AgentInput{FirstName: "Awa", LastName: "Diop", IDNumber: "N1", ProjectType: "RGPH", IDDocument: doc}.Form()
	require.Equal(t, []FormField{
		{"first_name", "Awa"}, {"last_name", "Diop"}, {"phone", ""},
		{"id_number", "N1"}, {"project_type", "RGPH"},
	}, f.Fields)
	require.Len(t, f.Files, 1)
	require.Equal(t, "id_document", f.Files[0].Field)

	a := AffectationInput{Equipement: 3, Agent: 4, AssignedAt: "2024-06-14T22:00:00.000Z", IsActive: true, Signature: &File{}}.Form()
	require.Contains(t, a.Fields, FormField{"is_active", "true"})
	require.Contains(t, a.Fields, FormField{"equipement", "3"})
	require.Empty(t, a.Files, "empty attachments are not sent")

	r := RestitutionInput{Affectation: 9, ReturnedAt: "x", Condition: ConditionDamaged}.Form()
	require.Contains(t, r.Fields, FormField{"condition", "DAMAGED"})

	reg := RegistrationInput{FirstName: "A", Password: "secret", PasswordConfirm: "secret"}.Form()
	for _, fld := range reg.Fields {
		require.NotEqual(t, "password_confirm", fld.Name)
	}
}

func TestFilters_Values(t *testing.T) {
	t.Parallel()

	require.Equal(t, "name=diop&page=2&status=ACTIVE", AgentFilter{Status: "ACTIVE", Name: "diop", Page: 2}.Values().Encode())
	require.Empty(t, EquipementFilter{}.Values())
	require.Equal(t, "is_active=true", AffectationFilter{IsActive: "true"}.Values().Encode())
	require.Equal(t, "condition=GOOD&returned_at_after=2024-01-01", RestitutionFilter{Condition: "GOOD", ReturnedAtAfter: "2024-01-01"}.Values().Encode())
	require.Equal(t, "incident_type=LOSS&page=1", IncidentFilter{IncidentType: "LOSS", Page: 1}.Values().Encode())
}

func TestResolveMedia(t *testing.T) {
	t.Parallel()

	r := Restitution{
		EquipementPhoto: "/media/r.png",
		AffectationDetail: &Affectation{
			Signature:        "/media/s.png",
			EquipementDetail: &Equipement{QRCodeImage: "/media/qr.png"},
			AgentDetail:      &Agent{IDDocument: "https://cdn/x.png"},
		},
	}
	r.ResolveMedia("http://api.local/api")

	require.Equal(t, "http://api.local/media/r.png", r.EquipementPhoto)
	require.Equal(t, "http://api.local/media/s.png", r.AffectationDetail.Signature)
	require.Equal(t, "http://api.local/media/qr.png", r.AffectationDetail.EquipementDetail.QRCodeImage)
	require.Equal(t, "https://cdn/x.png", r.AffectationDetail.AgentDetail.IDDocument)
	require.Equal(t, "rapports.xlsx", ExportExcel.FileName())
	require.Equal(t, "rapports.pdf", ExportPDF.FileName())
}

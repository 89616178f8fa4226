package reports

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/samaquete/admin/internal/app/system/csvutil"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/domain/models"
)

func header(t *testing.T, records []csvutil.Record) string {
	t.Helper()
	var buf bytes.Buffer
	if err := csvutil.Encode(&buf, records); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	line, _, _ := strings.Cut(buf.String(), "\n")
	return line
}

// rows encodes records and reads them back keyed by header.
func rows(t *testing.T, records []csvutil.Record) []map[string]string {
	t.Helper()
	var buf bytes.Buffer
	if err := csvutil.Encode(&buf, records); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	lines, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	out := make([]map[string]string, 0, len(lines))
	for _, line := range lines[1:] {
		row := make(map[string]string, len(line))
		for i, v := range line {
			row[lines[0][i]] = v
		}
		out = append(out, row)
	}
	return out
}

func TestExportUsers(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	users := []identity.UserRecord{{
		UID:           "u1",
		Email:         "admin@thies.sn",
		DisplayName:   "Abbé Diouf",
		EmailVerified: true,
		CreatedAt:     created,
		CustomClaims:  map[string]any{"role": "parish_admin", "dioceseId": "THIES", "parishId": "p1"},
	}}

	recs := ExportUsers(users, time.UTC)
	want := "UID,Email,Nom,Rôle,Diocèse ID,Paroisse ID,Église ID,Archidiocèse ID,Email vérifié,Compte désactivé,Date de création,Dernière connexion"
	if got := header(t, recs); got != want {
		t.Fatalf("header = %q, want %q", got, want)
	}

	row := rows(t, recs)[0]
	checks := map[string]string{
		"Rôle":               "parish_admin",
		"Paroisse ID":        "p1",
		"Email vérifié":      "Oui",
		"Compte désactivé":   "Non",
		"Date de création":   "01/03/2025 09:00:00",
		"Dernière connexion": "",
	}
	for k, v := range checks {
		if row[k] != v {
			t.Errorf("%s = %q, want %q", k, row[k], v)
		}
	}
}

func TestExportFideles_Header(t *testing.T) {
	recs := ExportFideles([]models.Fidele{{ID: "f1", FirstName: "Awa", TotalDonations: 5000, DonationCount: 2}}, nil)
	want := "UID,Prénom,Nom,Email,Téléphone,Pays,Username,Paroisse ID,Nom Paroisse,Total Dons (FCFA),Nombre de dons,Date d'inscription,Dernière mise à jour"
	if got := header(t, recs); got != want {
		t.Fatalf("header = %q, want %q", got, want)
	}
}

func TestExportDonations(t *testing.T) {
	dakar, err := time.LoadLocation("Africa/Dakar")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	ds := []models.PaymentDonation{
		{DonationID: "d1", Amount: 1000, Status: "completed", CreatedAt: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)},
		{DonationID: "d2", Amount: 500, Status: "failed", PaymentMethod: "wave"},
		{DonationID: "d3", Amount: 200, Status: "refunded"},
	}
	recs := ExportDonations(ds, dakar)
	if len(recs) != 3 {
		t.Fatalf("len = %d", len(recs))
	}

	tests := []struct {
		row    int
		key    string
		expect string
	}{
		{0, "Statut", "Complété"},
		{0, "Méthode de paiement", "PayDunya"},
		{0, "Date de création", "02/01/2025 10:00:00"},
		{1, "Statut", "Échoué"},
		{1, "Méthode de paiement", "wave"},
		{2, "Statut", "refunded"},
		{1, "Date de création", ""},
	}
	got := rows(t, recs)
	for _, tt := range tests {
		if got := got[tt.row][tt.key]; got != tt.expect {
			t.Errorf("row %d %s = %q, want %q", tt.row, tt.key, got, tt.expect)
		}
	}
}

func TestComputeActivityStats(t *testing.T) {
	loc := time.FixedZone("WAT", 0)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, loc)
	at := func(d time.Duration) time.Time { return now.Add(-d) }

	logs := []models.ActivityLog{
		{ID: "1", Action: "create", EntityType: "news", Timestamp: at(time.Hour)},
		{ID: "2", Action: "update", EntityType: "news", Timestamp: at(14 * time.Hour)},
		{ID: "3", Action: "create", EntityType: "parish", Timestamp: at(16 * time.Hour)},
		{ID: "4", Action: "login", Timestamp: at(3 * 24 * time.Hour)},
		{ID: "5", Action: "delete", EntityType: "church", Timestamp: at(8 * 24 * time.Hour)},
		{ID: "6", Action: "create", EntityType: "news", Timestamp: at(20 * 24 * time.Hour)},
	}

	s := ComputeActivityStats(logs, now, loc, 0)
	if s.Total != 6 {
		t.Errorf("Total = %d, want 6", s.Total)
	}
	if s.Today != 2 {
		t.Errorf("Today = %d, want 2", s.Today)
	}
	if s.ThisWeek != 4 {
		t.Errorf("ThisWeek = %d, want 4", s.ThisWeek)
	}
	if s.ByAction["create"] != 3 || s.ByAction["login"] != 1 {
		t.Errorf("ByAction = %v", s.ByAction)
	}
	if s.ByEntity["news"] != 3 || s.ByEntity[""] != 0 {
		t.Errorf("ByEntity = %v", s.ByEntity)
	}
	if s.WindowDays != DefaultWindowDays {
		t.Errorf("WindowDays = %d", s.WindowDays)
	}
	if len(s.Recent) != 5 || s.Recent[0].ID != "1" || s.Recent[4].ID != "5" {
		t.Errorf("Recent = %+v", s.Recent)
	}
}

func TestComputeActivityStats_Empty(t *testing.T) {
	s := ComputeActivityStats(nil, time.Now(), nil, 7)
	if s.Total != 0 || len(s.Recent) != 0 || s.WindowDays != 7 {
		t.Errorf("unexpected %+v", s)
	}
}

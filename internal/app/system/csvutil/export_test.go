package csvutil_test

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samaquete/admin/internal/app/system/csvutil"
)

func TestEncode(t *testing.T) {
	when := time.Date(2025, 3, 9, 14, 5, 7, 0, time.UTC)
	records := []csvutil.Record{
		{{"Nom", "Saint, Joseph"}, {"Actif", true}, {"Créé", when}, {"Note", `dit "oui"`}},
		{{"Nom", "Ligne\nsuivante"}, {"Actif", false}, {"Créé", nil}, {"Note", map[string]any{"a": 1}}},
	}

	var buf bytes.Buffer
	if err := csvutil.Encode(&buf, records); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := "Nom,Actif,Créé,Note\n" +
		"\"Saint, Joseph\",Oui,09/03/2025 14:05:07,\"dit \"\"oui\"\"\"\n" +
		"\"Ligne\nsuivante\",Non,,\"{\"\"a\"\":1}\"\n"
	if buf.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := csvutil.Encode(&buf, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestWriteAttachment(t *testing.T) {
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		format      csvutil.Format
		contentType string
	}{
		{csvutil.ParseFormat("csv"), "text/csv; charset=utf-8"},
		{csvutil.ParseFormat("excel"), "application/vnd.ms-excel"},
		{csvutil.ParseFormat(""), "text/csv; charset=utf-8"},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		recs := []csvutil.Record{{{"A", "1"}}}
		if err := csvutil.WriteAttachment(rr, "utilisateurs", tt.format, now, recs); err != nil {
			t.Fatalf("WriteAttachment: %v", err)
		}
		if ct := rr.Header().Get("Content-Type"); ct != tt.contentType {
			t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
		}
		if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="utilisateurs_2025-01-02.csv"`) {
			t.Errorf("Content-Disposition = %q", cd)
		}
		if !bytes.HasPrefix(rr.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
			t.Error("missing UTF-8 BOM")
		}
		if !strings.HasSuffix(rr.Body.String(), "A\n1\n") {
			t.Errorf("body = %q", rr.Body.String())
		}
	}
}

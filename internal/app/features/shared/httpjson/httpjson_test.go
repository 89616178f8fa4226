package httpjson

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samaquete/admin/internal/app/system/apperr"
)

func TestDecode(t *testing.T) {
	type payload struct {
		Name   string `json:"name"`
		Amount int64  `json:"amount"`
	}
	tests := []struct {
		name  string
		body  string
		limit int64
		field string
	}{
		{"ok", `{"name":"Awa","amount":500}`, 1024, ""},
		{"empty", ``, 1024, "body"},
		{"syntax", `{"name":`, 1024, "body"},
		{"wrong type", `{"amount":"beaucoup"}`, 1024, "amount"},
		{"trailing data", `{"name":"a"} {"name":"b"}`, 1024, "body"},
		{"too large", `{"name":"` + strings.Repeat("x", 200) + `"}`, 64, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var p payload
			err := Decode(httptest.NewRecorder(), r, &p, tt.limit)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if p.Name != "Awa" || p.Amount != 500 {
					t.Errorf("decoded %+v", p)
				}
				return
			}
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("err = %v, want validation on %q", err, tt.field)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"id": "x"})
	if rec.Code != 201 {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"id":"x"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

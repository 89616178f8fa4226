package inputval

import (
	"errors"
	"testing"

	"github.com/samaquete/admin/internal/app/system/apperr"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"admin@samaquete.sn", true},
		{"cure.paroisse+info@diocese-thies.sn", true},
		{"a@b.co", true},
		{"", false},
		{"   ", false},
		{"admin", false},
		{"admin@", false},
		{"@samaquete.sn", false},
		{"Admin <admin@samaquete.sn>", false},
		{"ad min@samaquete.sn", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://api.samaquete.sn", true},
		{"http://localhost:8080/admin", true},
		{"  https://example.com  ", true},
		{"", false},
		{"ftp://example.com", false},
		{"example.com", false},
		{"//example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.url); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"FFFFFFFFFFFFFFFFFFFFFFFF", true},
		{"507f1f77bcf86cd79943901", false},
		{"507f1f77bcf86cd79943901g", false},
		{"DAKAR", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := IsValidObjectID(tt.id); got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type createUser struct {
		Name  string `json:"name" validate:"required,max=10" label:"Nom"`
		Email string `json:"email" validate:"required,email" label:"Email"`
		Role  string `json:"role" validate:"required,role" label:"Rôle"`
	}

	tests := []struct {
		name      string
		input     createUser
		wantField string
		wantFirst string
	}{
		{name: "valid", input: createUser{Name: "Awa", Email: "awa@test.sn", Role: "parish_admin"}},
		{name: "missing name", input: createUser{Email: "awa@test.sn", Role: "parish_admin"}, wantField: "name", wantFirst: "Nom est requis."},
		{name: "name too long", input: createUser{Name: "Awa Ndiaye Diop", Email: "awa@test.sn", Role: "parish_admin"}, wantField: "name", wantFirst: "Nom doit contenir au plus 10 caractères."},
		{name: "bad email", input: createUser{Name: "Awa", Email: "awa", Role: "parish_admin"}, wantField: "email", wantFirst: "Une adresse email valide est requise."},
		{name: "bad role", input: createUser{Name: "Awa", Email: "awa@test.sn", Role: "pope"}, wantField: "role", wantFirst: "Rôle : rôle invalide."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.input)
			if res.HasErrors() != (tt.wantFirst != "") {
				t.Fatalf("HasErrors = %v, errors %v", res.HasErrors(), res.Errors)
			}
			if tt.wantFirst == "" {
				if res.Err() != nil {
					t.Errorf("Err() = %v, want nil", res.Err())
				}
				return
			}
			if res.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", res.First(), tt.wantFirst)
			}
			var ve *apperr.ValidationError
			if !errors.As(res.Err(), &ve) || ve.Field != tt.wantField {
				t.Errorf("Err() = %v, want field %q", res.Err(), tt.wantField)
			}
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type prayerTime struct {
		Time string   `json:"time" validate:"required,hhmm"`
		Days []string `json:"days" validate:"dive,weekday"`
	}

	tests := []struct {
		name  string
		input prayerTime
		ok    bool
	}{
		{"valid", prayerTime{Time: "07:30", Days: []string{"sunday", "monday"}}, true},
		{"no days", prayerTime{Time: "18:00"}, true},
		{"bad hour", prayerTime{Time: "25:00"}, false},
		{"missing colon", prayerTime{Time: "0730"}, false},
		{"bad day", prayerTime{Time: "07:30", Days: []string{"dimanche"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := !Validate(tt.input).HasErrors(); got != tt.ok {
				t.Errorf("valid = %v, want %v", got, tt.ok)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{Errors: []FieldError{{Message: "A"}, {Message: "B"}}}
	if r.All() != "A; B" {
		t.Errorf("All() = %q", r.All())
	}
	if (&Result{}).All() != "" || (&Result{}).First() != "" {
		t.Error("empty result should render empty strings")
	}
}

func TestIsValidTime(t *testing.T) {
	for _, s := range []string{"00:00", "07:30", "18:45", "23:59"} {
		if !IsValidTime(s) {
			t.Errorf("IsValidTime(%q) = false", s)
		}
	}
	for _, s := range []string{"", "7:30", "24:00", "12:60", "12h30", "12:30:00"} {
		if IsValidTime(s) {
			t.Errorf("IsValidTime(%q) = true", s)
		}
	}
}

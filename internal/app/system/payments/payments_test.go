package payments_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/payments"
	"github.com/samaquete/admin/internal/app/system/requestid"
	"github.com/samaquete/admin/internal/domain/models"
)

func TestFetchPayments_ForwardsTokenAndQuery(t *testing.T) {
	var gotAuth, gotPath, gotParish, gotDiocese, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotParish = r.URL.Query().Get("parishId")
		gotDiocese = r.URL.Query().Get("dioceseId")
		gotReqID = r.Header.Get(requestid.Header)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"p1","planId":"DONATION_QUETE","amount":5000,"status":"PAID"}]`))
	}))
	defer srv.Close()

	c := payments.New(srv.URL+"/", 5*time.Second)
	ctx := requestid.With(context.Background(), "req-1")
	recs, err := c.FetchPayments(ctx, "id-token", "par1", "THIES")
	if err != nil {
		t.Fatalf("FetchPayments: %v", err)
	}
	if gotAuth != "Bearer id-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/admin/payments" || gotParish != "par1" || gotDiocese != "THIES" {
		t.Errorf("path=%q parish=%q diocese=%q", gotPath, gotParish, gotDiocese)
	}
	if gotReqID != "req-1" {
		t.Errorf("request id = %q", gotReqID)
	}
	if len(recs) != 1 || recs[0].Amount != 5000 {
		t.Errorf("records = %+v", recs)
	}
}

func TestFetchPayments_WrappedBodies(t *testing.T) {
	bodies := map[string]string{
		"payments": `{"payments":[{"id":"a"},{"id":"b"}]}`,
		"data":     `{"data":[{"id":"a"},{"id":"b"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			recs, err := payments.New(srv.URL, time.Second).FetchPayments(context.Background(), "t", "", "")
			if err != nil {
				t.Fatalf("FetchPayments: %v", err)
			}
			if len(recs) != 2 {
				t.Errorf("got %d records, want 2", len(recs))
			}
		})
	}
}

func TestFetchPayments_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := payments.New(srv.URL, time.Second).FetchPayments(context.Background(), "t", "", "")
	var se *payments.UpstreamStatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *UpstreamStatusError, got %v", err)
	}
	if se.Status != http.StatusUnauthorized || se.Body != "token expired" {
		t.Errorf("got %+v", se)
	}
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Error("status error should wrap ErrUpstream")
	}
}

func TestFetchPayments_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := payments.New(url, time.Second).FetchPayments(context.Background(), "t", "", "")
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestIsDonation(t *testing.T) {
	tests := []struct {
		name string
		p    models.PaymentRecord
		want bool
	}{
		{"plan prefix", models.PaymentRecord{PlanID: "DONATION_DENIER"}, true},
		{"type field", models.PaymentRecord{Type: "Donation"}, true},
		{"plan contains", models.PaymentRecord{PlanID: "monthly-donation"}, true},
		{"subscription", models.PaymentRecord{PlanID: "PREMIUM_MONTHLY", Type: "subscription"}, false},
		{"empty", models.PaymentRecord{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := payments.IsDonation(tt.p); got != tt.want {
				t.Errorf("IsDonation = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := map[string]string{
		"PAID":      "completed",
		"completed": "completed",
		"Success":   "completed",
		"PENDING":   "pending",
		"CANCELED":  "failed",
		"cancelled": "failed",
		"FAILED":    "failed",
		"EXPIRED":   "failed",
		"REFUNDED":  "refunded",
	}
	for in, want := range tests {
		if got := payments.NormalizeStatus(in); got != want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToDonationsAndStats(t *testing.T) {
	recs := []models.PaymentRecord{
		{ID: "1", PlanID: "DONATION_QUETE", Amount: 1000, Status: "PAID"},
		{ID: "2", DonationID: "d2", Type: "donation", Amount: 2500, Status: "PENDING"},
		{ID: "3", PlanID: "DONATION_MESSE", Amount: 4000, Status: "EXPIRED"},
		{ID: "4", PlanID: "PREMIUM", Amount: 9999, Status: "PAID"},
		{ID: "5", PlanID: "DONATION_CIERGE", Amount: 500, Status: "SUCCESS"},
	}
	ds := payments.ToDonations(recs)
	if len(ds) != 4 {
		t.Fatalf("got %d donations, want 4", len(ds))
	}
	if ds[1].DonationID != "d2" || ds[0].DonationID != "1" {
		t.Errorf("donation ids: %q, %q", ds[0].DonationID, ds[1].DonationID)
	}

	st := payments.Stats(ds)
	want := models.PaymentStats{Total: 4, Completed: 2, Pending: 1, Failed: 1, TotalAmount: 1500}
	if st != want {
		t.Errorf("Stats = %+v, want %+v", st, want)
	}
}
